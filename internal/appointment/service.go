package appointment

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
	// ErrSlotTaken is returned when the provider already has an
	// overlapping appointment.
	ErrSlotTaken = errors.New("provider already booked for this slot")

	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

var validTypes = map[string]bool{
	"": true, TypeConsultation: true, TypeFollowUp: true, TypeProcedure: true, TypeLabDraw: true,
}

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface) *Service {
	return &Service{repo: repo, publisher: publisher}
}

var _ ServiceInterface = (*Service)(nil)

func validateSlot(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end time are required")
	}
	if !end.After(start) {
		return fmt.Errorf("end time must be after start time")
	}
	return nil
}

func (s *Service) BookAppointment(ctx context.Context, req BookAppointmentRequest) (*AppointmentResponse, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	if req.ProviderID == "" {
		return nil, fmt.Errorf("provider id is required")
	}
	if err := validateSlot(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if !validTypes[req.Type] {
		return nil, fmt.Errorf("unknown appointment type %q", req.Type)
	}

	conflict, err := s.repo.HasConflict(ctx, req.ProviderID, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check provider availability: %w", err)
	}
	if conflict {
		return nil, ErrSlotTaken
	}

	a, err := s.repo.CreateAppointment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	s.publishEvent(ctx, messaging.EventAppointmentBooked, a, "")
	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (*AppointmentResponse, error) {
	a, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

func (s *Service) ListAppointments(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedAppointmentListResponse, error) {
	params.Validate()

	appointments, total, err := s.repo.ListAppointments(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	return &PaginatedAppointmentListResponse{
		Success:      true,
		Appointments: appointments,
		Meta:         params.CalculateMeta(total),
	}, nil
}

func (s *Service) RescheduleAppointment(ctx context.Context, id string, req RescheduleRequest) (*AppointmentResponse, error) {
	if err := validateSlot(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	current, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if current.Status != StatusScheduled {
		return nil, fmt.Errorf("%w: only scheduled appointments can be rescheduled", ErrInvalidTransition)
	}

	conflict, err := s.repo.HasConflict(ctx, current.ProviderID, req.StartTime, req.EndTime, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check provider availability: %w", err)
	}
	if conflict {
		return nil, ErrSlotTaken
	}

	a, err := s.repo.Reschedule(ctx, id, req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}

	s.publishEvent(ctx, messaging.EventAppointmentStatusChanged, a, current.Status)
	return a, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*AppointmentResponse, error) {
	current, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if !CanTransition(current.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, req.Status)
	}
	if req.Status == StatusCancelled && req.Reason == "" {
		return nil, fmt.Errorf("cancellation reason is required")
	}

	a, err := s.repo.UpdateStatus(ctx, id, req.Status, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}

	routingKey := messaging.EventAppointmentStatusChanged
	if req.Status == StatusCancelled {
		routingKey = messaging.EventAppointmentCancelled
	}
	s.publishEvent(ctx, routingKey, a, current.Status)
	return a, nil
}

func (s *Service) publishEvent(ctx context.Context, routingKey string, a *AppointmentResponse, oldStatus string) {
	event := messaging.AppointmentEvent{
		BaseEvent: messaging.NewBaseEvent(routingKey),
		Data: messaging.AppointmentData{
			AppointmentID: a.ID,
			PatientID:     a.PatientID,
			ProviderID:    a.ProviderID,
			StartTime:     a.StartTime,
			OldStatus:     oldStatus,
			NewStatus:     a.Status,
			ChangedAt:     time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event: %v", routingKey, err)
	}
}
