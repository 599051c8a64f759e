package testutil

import (
	"context"
	"sync"
)

// PublishedEvent captures one Publish call on the mock publisher.
type PublishedEvent struct {
	RoutingKey string
	Event      interface{}
}

// MockPublisher is an in-memory messaging.PublisherInterface implementation
// that records published events for assertions.
type MockPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent

	// PublishErr, when set, is returned from every Publish call.
	PublishErr error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Events = append(m.Events, PublishedEvent{RoutingKey: routingKey, Event: eventData})
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// RoutingKeys returns the routing keys of all recorded events in order.
func (m *MockPublisher) RoutingKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		keys = append(keys, e.RoutingKey)
	}
	return keys
}
