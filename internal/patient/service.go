package patient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

var validSexes = map[string]bool{
	"": true, "male": true, "female": true, "other": true, "unknown": true,
}

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

func (s *Service) RegisterPatient(ctx context.Context, req CreatePatientRequest) (*PatientResponse, error) {
	if req.FirstName == "" {
		return nil, fmt.Errorf("first name is required")
	}
	if req.LastName == "" {
		return nil, fmt.Errorf("last name is required")
	}
	if req.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", req.DateOfBirth); err != nil {
			return nil, fmt.Errorf("date of birth must be in YYYY-MM-DD format")
		}
	}
	if !validSexes[req.Sex] {
		return nil, fmt.Errorf("sex must be one of male, female, other, unknown")
	}

	p, err := s.repo.CreatePatient(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register patient: %w", err)
	}

	event := messaging.PatientRegisteredEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientRegistered),
		Data: messaging.PatientRegisteredData{
			PatientID: p.ID,
			MRN:       p.MRN,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			CreatedAt: p.CreatedAt,
		},
	}
	if err := s.publisher.Publish(ctx, messaging.EventPatientRegistered, event); err != nil {
		log.Printf("[ERROR] Failed to publish patient.registered event: %v", err)
	}

	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*PatientResponse, error) {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, params pagination.Params, search string, activeOnly bool) (*PaginatedPatientListResponse, error) {
	params.Validate()

	patients, total, err := s.repo.ListPatients(ctx, params.Limit, params.Offset(), search, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	return &PaginatedPatientListResponse{
		Success:  true,
		Patients: patients,
		Meta:     params.CalculateMeta(total),
	}, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id string, req UpdatePatientRequest) (*PatientResponse, error) {
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", *req.DateOfBirth); err != nil {
			return nil, fmt.Errorf("date of birth must be in YYYY-MM-DD format")
		}
	}
	if req.Sex != nil && !validSexes[*req.Sex] {
		return nil, fmt.Errorf("sex must be one of male, female, other, unknown")
	}

	p, err := s.repo.UpdatePatient(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	event := messaging.PatientStatusEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientUpdated),
		Data: messaging.PatientStatusData{
			PatientID: p.ID,
			MRN:       p.MRN,
			ChangedAt: time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, messaging.EventPatientUpdated, event); err != nil {
		log.Printf("[ERROR] Failed to publish patient.updated event: %v", err)
	}

	return p, nil
}

func (s *Service) DeactivatePatient(ctx context.Context, id string) error {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}

	if err := s.repo.DeactivatePatient(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate patient: %w", err)
	}

	event := messaging.PatientStatusEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientDeactivated),
		Data: messaging.PatientStatusData{
			PatientID: p.ID,
			MRN:       p.MRN,
			ChangedAt: time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, messaging.EventPatientDeactivated, event); err != nil {
		log.Printf("[ERROR] Failed to publish patient.deactivated event: %v", err)
	}

	return nil
}
