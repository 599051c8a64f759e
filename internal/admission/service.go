package admission

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
	ErrInvalidTransition = errors.New("invalid admission status transition")

	// ErrAlreadyRecorded is returned when a MAR entry has already been
	// resolved.
	ErrAlreadyRecorded = errors.New("mar entry already recorded")
)

var marOutcomes = map[string]bool{
	MARGiven: true, MARHeld: true, MARRefused: true,
}

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface) *Service {
	return &Service{repo: repo, publisher: publisher}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) CreateAdmission(ctx context.Context, req CreateAdmissionRequest) (*AdmissionResponse, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	if req.AdmittingProviderID == "" {
		return nil, fmt.Errorf("admitting provider id is required")
	}
	if req.Ward == "" || req.Bed == "" {
		return nil, fmt.Errorf("ward and bed are required")
	}

	a, err := s.repo.CreateAdmission(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create admission: %w", err)
	}

	s.publishAdmissionEvent(ctx, messaging.EventAdmissionCreated, a)
	return a, nil
}

func (s *Service) GetAdmission(ctx context.Context, id string) (*AdmissionResponse, error) {
	a, err := s.repo.GetAdmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get admission: %w", err)
	}
	return a, nil
}

func (s *Service) ListAdmissions(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedAdmissionListResponse, error) {
	params.Validate()

	admissions, total, err := s.repo.ListAdmissions(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}

	return &PaginatedAdmissionListResponse{
		Success:    true,
		Admissions: admissions,
		Meta:       params.CalculateMeta(total),
	}, nil
}

func (s *Service) Discharge(ctx context.Context, id string, req DischargeRequest) (*AdmissionResponse, error) {
	if req.Summary == "" {
		return nil, fmt.Errorf("discharge summary is required")
	}

	current, err := s.repo.GetAdmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get admission: %w", err)
	}
	if current.Status != StatusAdmitted {
		return nil, fmt.Errorf("%w: only active admissions can be discharged, admission is %s", ErrInvalidTransition, current.Status)
	}

	a, err := s.repo.Discharge(ctx, id, req.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to discharge admission: %w", err)
	}

	s.publishAdmissionEvent(ctx, messaging.EventAdmissionDischarged, a)
	return a, nil
}

func (s *Service) ScheduleMAREntry(ctx context.Context, admissionID string, req ScheduleMAREntryRequest) (*MAREntryResponse, error) {
	if req.MedicationID == "" {
		return nil, fmt.Errorf("medication id is required")
	}
	if req.Dose == "" || req.Route == "" {
		return nil, fmt.Errorf("dose and route are required")
	}
	if req.ScheduledTime.IsZero() {
		return nil, fmt.Errorf("scheduled time is required")
	}

	current, err := s.repo.GetAdmission(ctx, admissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get admission: %w", err)
	}
	if current.Status != StatusAdmitted {
		return nil, fmt.Errorf("%w: medications can only be scheduled on active admissions", ErrInvalidTransition)
	}

	e, err := s.repo.CreateMAREntry(ctx, admissionID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule mar entry: %w", err)
	}
	return e, nil
}

func (s *Service) ListMAREntries(ctx context.Context, admissionID string) ([]MAREntryResponse, error) {
	entries, err := s.repo.ListMAREntries(ctx, admissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mar entries: %w", err)
	}
	return entries, nil
}

// RecordAdministration resolves a scheduled MAR entry as given, held
// or refused. Held and refused require a reason.
func (s *Service) RecordAdministration(ctx context.Context, entryID, recordedBy string, req RecordAdministrationRequest) (*MAREntryResponse, error) {
	if !marOutcomes[req.Status] {
		return nil, fmt.Errorf("unknown administration outcome %q", req.Status)
	}
	if (req.Status == MARHeld || req.Status == MARRefused) && req.Reason == "" {
		return nil, fmt.Errorf("a reason is required when a medication is %s", req.Status)
	}

	current, err := s.repo.GetMAREntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mar entry: %w", err)
	}
	if current.Status != MARScheduled {
		return nil, fmt.Errorf("%w: entry is already %s", ErrAlreadyRecorded, current.Status)
	}

	e, err := s.repo.RecordAdministration(ctx, entryID, req.Status, req.Reason, recordedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to record administration: %w", err)
	}

	s.publishMAREvent(ctx, e)
	return e, nil
}

func (s *Service) publishAdmissionEvent(ctx context.Context, routingKey string, a *AdmissionResponse) {
	event := messaging.AdmissionEvent{
		BaseEvent: messaging.NewBaseEvent(routingKey),
		Data: messaging.AdmissionData{
			AdmissionID: a.ID,
			PatientID:   a.PatientID,
			Ward:        a.Ward,
			Bed:         a.Bed,
			Status:      a.Status,
			ChangedAt:   time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event: %v", routingKey, err)
	}
}

func (s *Service) publishMAREvent(ctx context.Context, e *MAREntryResponse) {
	event := messaging.MAREvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventMARRecorded),
		Data: messaging.MARData{
			EntryID:      e.ID,
			AdmissionID:  e.AdmissionID,
			MedicationID: e.MedicationID,
			Status:       e.Status,
			RecordedBy:   e.RecordedBy,
			RecordedAt:   time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, messaging.EventMARRecorded, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event: %v", messaging.EventMARRecorded, err)
	}
}
