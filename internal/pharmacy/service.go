package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/telemetry"
)

// ErrInvalidTransition is returned for a disallowed status change.
var ErrInvalidTransition = errors.New("invalid prescription status transition")

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

// NewService creates a pharmacy service. metrics may be nil when
// telemetry is disabled.
func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{repo: repo, publisher: publisher, metrics: metrics}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) CreateMedication(ctx context.Context, req CreateMedicationRequest) (*MedicationResponse, error) {
	if req.Code == "" || req.Name == "" {
		return nil, fmt.Errorf("code and name are required")
	}
	if req.UnitPriceCents < 0 {
		return nil, fmt.Errorf("unit price cannot be negative")
	}
	if req.StockQuantity < 0 || req.ReorderThreshold < 0 {
		return nil, fmt.Errorf("stock quantity and reorder threshold cannot be negative")
	}

	m, err := s.repo.CreateMedication(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}
	return m, nil
}

func (s *Service) GetMedication(ctx context.Context, id string) (*MedicationResponse, error) {
	m, err := s.repo.GetMedication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return m, nil
}

func (s *Service) ListMedications(ctx context.Context, filter MedicationListFilter, params pagination.Params) (*PaginatedMedicationListResponse, error) {
	params.Validate()

	medications, total, err := s.repo.ListMedications(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}

	return &PaginatedMedicationListResponse{
		Success:     true,
		Medications: medications,
		Meta:        params.CalculateMeta(total),
	}, nil
}

func (s *Service) UpdateMedication(ctx context.Context, id string, req UpdateMedicationRequest) (*MedicationResponse, error) {
	if req.UnitPriceCents != nil && *req.UnitPriceCents < 0 {
		return nil, fmt.Errorf("unit price cannot be negative")
	}
	if req.ReorderThreshold != nil && *req.ReorderThreshold < 0 {
		return nil, fmt.Errorf("reorder threshold cannot be negative")
	}

	m, err := s.repo.UpdateMedication(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}
	return m, nil
}

func (s *Service) Restock(ctx context.Context, id string, req RestockRequest) (*MedicationResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("restock quantity must be positive")
	}

	m, err := s.repo.Restock(ctx, id, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to restock medication: %w", err)
	}
	return m, nil
}

func (s *Service) CreatePrescription(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	if req.MedicationID == "" {
		return nil, fmt.Errorf("medication id is required")
	}
	if req.Dosage == "" || req.Frequency == "" {
		return nil, fmt.Errorf("dosage and frequency are required")
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if req.Refills < 0 {
		return nil, fmt.Errorf("refills cannot be negative")
	}

	// The medication must exist and be active before a prescription
	// can reference it.
	m, err := s.repo.GetMedication(ctx, req.MedicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up medication: %w", err)
	}
	if !m.IsActive {
		return nil, fmt.Errorf("medication %s is not active", m.Code)
	}

	p, err := s.repo.CreatePrescription(ctx, prescriberID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}

	s.publishPrescriptionEvent(ctx, messaging.EventPrescriptionCreated, p)
	return p, nil
}

func (s *Service) GetPrescription(ctx context.Context, id string) (*PrescriptionResponse, error) {
	p, err := s.repo.GetPrescription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return p, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, filter PrescriptionListFilter, params pagination.Params) (*PaginatedPrescriptionListResponse, error) {
	params.Validate()

	prescriptions, total, err := s.repo.ListPrescriptions(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}

	return &PaginatedPrescriptionListResponse{
		Success:       true,
		Prescriptions: prescriptions,
		Meta:          params.CalculateMeta(total),
	}, nil
}

func (s *Service) UpdatePrescriptionStatus(ctx context.Context, id string, req UpdateStatusRequest) (*PrescriptionResponse, error) {
	current, err := s.repo.GetPrescription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}

	if !CanTransition(current.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, req.Status)
	}
	if req.Status == StatusCancelled && req.Reason == "" {
		return nil, fmt.Errorf("cancellation reason is required")
	}

	p, err := s.repo.UpdatePrescriptionStatus(ctx, id, req.Status, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("failed to update prescription status: %w", err)
	}
	return p, nil
}

// Dispense hands the medication to the patient. Stock is deducted in
// the same transaction that marks the prescription dispensed, and a
// stock_low event is published when the remaining quantity is at or
// below the reorder threshold.
func (s *Service) Dispense(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, error) {
	current, err := s.repo.GetPrescription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	if current.Status != StatusFilled {
		return nil, fmt.Errorf("%w: only filled prescriptions can be dispensed, prescription is %s", ErrInvalidTransition, current.Status)
	}

	p, m, err := s.repo.Dispense(ctx, id, dispensedBy)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			s.recordDispense(ctx, "insufficient_stock")
			return nil, err
		}
		s.recordDispense(ctx, "error")
		return nil, fmt.Errorf("failed to dispense prescription: %w", err)
	}
	s.recordDispense(ctx, "dispensed")

	s.publishPrescriptionEvent(ctx, messaging.EventPrescriptionDispensed, p)
	if m.StockQuantity <= m.ReorderThreshold {
		s.publishStockLowEvent(ctx, m)
	}
	return p, nil
}

func (s *Service) recordDispense(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordDispense(ctx, outcome)
	}
}

func (s *Service) publishPrescriptionEvent(ctx context.Context, routingKey string, p *PrescriptionResponse) {
	event := messaging.PrescriptionEvent{
		BaseEvent: messaging.NewBaseEvent(routingKey),
		Data: messaging.PrescriptionData{
			PrescriptionID: p.ID,
			PatientID:      p.PatientID,
			MedicationID:   p.MedicationID,
			Quantity:       p.Quantity,
			Status:         p.Status,
			ChangedAt:      time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event: %v", routingKey, err)
	}
}

func (s *Service) publishStockLowEvent(ctx context.Context, m *MedicationResponse) {
	event := messaging.StockLowEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventStockLow),
		Data: messaging.StockLowData{
			MedicationID:     m.ID,
			Code:             m.Code,
			Name:             m.Name,
			StockQuantity:    m.StockQuantity,
			ReorderThreshold: m.ReorderThreshold,
		},
	}
	if err := s.publisher.Publish(ctx, messaging.EventStockLow, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event: %v", messaging.EventStockLow, err)
	}
}
