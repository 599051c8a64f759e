package laborder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

var (
	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid lab order status transition")

	// ErrSelfVerify is returned when the verifying user also entered
	// the results. Verification is a second pair of eyes.
	ErrSelfVerify = errors.New("results cannot be verified by the user who entered them")
)

var validPriorities = map[string]bool{
	PriorityRoutine: true, PriorityUrgent: true, PriorityStat: true,
}

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface) *Service {
	return &Service{repo: repo, publisher: publisher}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) CreateOrder(ctx context.Context, orderedBy string, req CreateLabOrderRequest) (*LabOrderResponse, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	if req.PanelCode == "" || req.PanelName == "" {
		return nil, fmt.Errorf("panel code and panel name are required")
	}
	if req.Priority == "" {
		req.Priority = PriorityRoutine
	}
	if !validPriorities[req.Priority] {
		return nil, fmt.Errorf("unknown priority %q", req.Priority)
	}

	o, err := s.repo.CreateOrder(ctx, orderedBy, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create lab order: %w", err)
	}

	s.publishEvent(ctx, messaging.EventLabOrdered, o)
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*LabOrderResponse, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab order: %w", err)
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedLabOrderListResponse, error) {
	params.Validate()

	orders, total, err := s.repo.ListOrders(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list lab orders: %w", err)
	}

	return &PaginatedLabOrderListResponse{
		Success: true,
		Orders:  orders,
		Meta:    params.CalculateMeta(total),
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*LabOrderResponse, error) {
	current, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab order: %w", err)
	}

	if !CanTransition(current.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, req.Status)
	}
	if req.Status == StatusCancelled && req.Reason == "" {
		return nil, fmt.Errorf("cancellation reason is required")
	}

	o, err := s.repo.UpdateStatus(ctx, id, req.Status, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("failed to update lab order status: %w", err)
	}
	return o, nil
}

func (s *Service) EnterResults(ctx context.Context, id, enteredBy string, req EnterResultsRequest) (*LabOrderResponse, error) {
	if len(req.Results) == 0 {
		return nil, fmt.Errorf("at least one result is required")
	}
	for _, res := range req.Results {
		if res.TestCode == "" || res.TestName == "" || res.Value == "" {
			return nil, fmt.Errorf("test code, test name and value are required for every result")
		}
	}

	current, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab order: %w", err)
	}
	if current.Status != StatusInProgress {
		return nil, fmt.Errorf("%w: results can only be entered while in progress, order is %s", ErrInvalidTransition, current.Status)
	}

	o, err := s.repo.EnterResults(ctx, id, enteredBy, req.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to enter lab results: %w", err)
	}

	s.publishEvent(ctx, messaging.EventLabResulted, o)
	return o, nil
}

func (s *Service) VerifyOrder(ctx context.Context, id, verifiedBy string) (*LabOrderResponse, error) {
	current, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab order: %w", err)
	}
	if current.Status != StatusResulted {
		return nil, fmt.Errorf("%w: only resulted orders can be verified, order is %s", ErrInvalidTransition, current.Status)
	}
	if current.ResultedBy == verifiedBy {
		return nil, ErrSelfVerify
	}

	o, err := s.repo.VerifyOrder(ctx, id, verifiedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to verify lab order: %w", err)
	}

	s.publishEvent(ctx, messaging.EventLabVerified, o)
	return o, nil
}

func (s *Service) publishEvent(ctx context.Context, routingKey string, o *LabOrderResponse) {
	event := messaging.LabOrderEvent{
		BaseEvent: messaging.NewBaseEvent(routingKey),
		Data: messaging.LabOrderData{
			OrderID:   o.ID,
			PatientID: o.PatientID,
			PanelCode: o.PanelCode,
			Priority:  o.Priority,
			Status:    o.Status,
			ChangedAt: time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event: %v", routingKey, err)
	}
}
