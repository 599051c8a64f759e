package pharmacy

import (
	"context"
	"errors"
	"testing"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/testutil"
)

type mockRepository struct {
	createMedFunc    func(ctx context.Context, req CreateMedicationRequest) (*MedicationResponse, error)
	getMedFunc       func(ctx context.Context, id string) (*MedicationResponse, error)
	listMedsFunc     func(ctx context.Context, filter MedicationListFilter, limit, offset int) ([]MedicationResponse, int, error)
	updateMedFunc    func(ctx context.Context, id string, req UpdateMedicationRequest) (*MedicationResponse, error)
	restockFunc      func(ctx context.Context, id string, quantity int) (*MedicationResponse, error)
	createRxFunc     func(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error)
	getRxFunc        func(ctx context.Context, id string) (*PrescriptionResponse, error)
	listRxFunc       func(ctx context.Context, filter PrescriptionListFilter, limit, offset int) ([]PrescriptionResponse, int, error)
	updateStatusFunc func(ctx context.Context, id, status, cancelReason string) (*PrescriptionResponse, error)
	dispenseFunc     func(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, *MedicationResponse, error)
}

func (m *mockRepository) CreateMedication(ctx context.Context, req CreateMedicationRequest) (*MedicationResponse, error) {
	return m.createMedFunc(ctx, req)
}

func (m *mockRepository) GetMedication(ctx context.Context, id string) (*MedicationResponse, error) {
	return m.getMedFunc(ctx, id)
}

func (m *mockRepository) ListMedications(ctx context.Context, filter MedicationListFilter, limit, offset int) ([]MedicationResponse, int, error) {
	return m.listMedsFunc(ctx, filter, limit, offset)
}

func (m *mockRepository) UpdateMedication(ctx context.Context, id string, req UpdateMedicationRequest) (*MedicationResponse, error) {
	return m.updateMedFunc(ctx, id, req)
}

func (m *mockRepository) Restock(ctx context.Context, id string, quantity int) (*MedicationResponse, error) {
	return m.restockFunc(ctx, id, quantity)
}

func (m *mockRepository) CreatePrescription(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error) {
	return m.createRxFunc(ctx, prescriberID, req)
}

func (m *mockRepository) GetPrescription(ctx context.Context, id string) (*PrescriptionResponse, error) {
	return m.getRxFunc(ctx, id)
}

func (m *mockRepository) ListPrescriptions(ctx context.Context, filter PrescriptionListFilter, limit, offset int) ([]PrescriptionResponse, int, error) {
	return m.listRxFunc(ctx, filter, limit, offset)
}

func (m *mockRepository) UpdatePrescriptionStatus(ctx context.Context, id, status, cancelReason string) (*PrescriptionResponse, error) {
	return m.updateStatusFunc(ctx, id, status, cancelReason)
}

func (m *mockRepository) Dispense(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, *MedicationResponse, error) {
	return m.dispenseFunc(ctx, id, dispensedBy)
}

func activeMedication() *MedicationResponse {
	return &MedicationResponse{
		ID:               "med-1",
		Code:             "AMOX500",
		Name:             "Amoxicillin 500mg",
		StockQuantity:    120,
		ReorderThreshold: 20,
		IsActive:         true,
	}
}

// TestCreatePrescription_Success tests writing a prescription
func TestCreatePrescription_Success(t *testing.T) {
	mockRepo := &mockRepository{
		getMedFunc: func(ctx context.Context, id string) (*MedicationResponse, error) {
			return activeMedication(), nil
		},
		createRxFunc: func(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error) {
			return &PrescriptionResponse{
				ID:           "rx-1",
				PatientID:    req.PatientID,
				PrescriberID: prescriberID,
				MedicationID: req.MedicationID,
				Quantity:     req.Quantity,
				Status:       StatusPending,
			}, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher, nil)

	p, err := service.CreatePrescription(context.Background(), "doc-1", CreatePrescriptionRequest{
		PatientID:    "pat-1",
		MedicationID: "med-1",
		Dosage:       "500mg",
		Frequency:    "3x daily",
		Quantity:     21,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.Status != StatusPending {
		t.Errorf("Expected status 'pending', got '%s'", p.Status)
	}

	keys := publisher.RoutingKeys()
	if len(keys) != 1 || keys[0] != messaging.EventPrescriptionCreated {
		t.Errorf("Expected prescription.created event, got %v", keys)
	}
}

// TestCreatePrescription_InactiveMedication tests the active catalog check
func TestCreatePrescription_InactiveMedication(t *testing.T) {
	mockRepo := &mockRepository{
		getMedFunc: func(ctx context.Context, id string) (*MedicationResponse, error) {
			m := activeMedication()
			m.IsActive = false
			return m, nil
		},
	}
	service := NewService(mockRepo, testutil.NewMockPublisher(), nil)

	_, err := service.CreatePrescription(context.Background(), "doc-1", CreatePrescriptionRequest{
		PatientID:    "pat-1",
		MedicationID: "med-1",
		Dosage:       "500mg",
		Frequency:    "3x daily",
		Quantity:     21,
	})
	if err == nil {
		t.Error("Expected error for inactive medication, got nil")
	}
}

// TestDispense_Success tests the filled -> dispensed path with events
func TestDispense_Success(t *testing.T) {
	mockRepo := &mockRepository{
		getRxFunc: func(ctx context.Context, id string) (*PrescriptionResponse, error) {
			return &PrescriptionResponse{ID: id, PatientID: "pat-1", MedicationID: "med-1", Quantity: 21, Status: StatusFilled}, nil
		},
		dispenseFunc: func(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, *MedicationResponse, error) {
			m := activeMedication()
			m.StockQuantity = 99
			return &PrescriptionResponse{ID: id, PatientID: "pat-1", MedicationID: "med-1", Quantity: 21, Status: StatusDispensed, DispensedBy: dispensedBy}, m, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher, nil)

	p, err := service.Dispense(context.Background(), "rx-1", "pharm-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.Status != StatusDispensed {
		t.Errorf("Expected status 'dispensed', got '%s'", p.Status)
	}

	keys := publisher.RoutingKeys()
	if len(keys) != 1 || keys[0] != messaging.EventPrescriptionDispensed {
		t.Errorf("Expected only prescription.dispensed event, got %v", keys)
	}
}

// TestDispense_LowStockEvent tests the reorder threshold event
func TestDispense_LowStockEvent(t *testing.T) {
	mockRepo := &mockRepository{
		getRxFunc: func(ctx context.Context, id string) (*PrescriptionResponse, error) {
			return &PrescriptionResponse{ID: id, MedicationID: "med-1", Quantity: 21, Status: StatusFilled}, nil
		},
		dispenseFunc: func(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, *MedicationResponse, error) {
			m := activeMedication()
			m.StockQuantity = 15 // at or below threshold of 20
			return &PrescriptionResponse{ID: id, MedicationID: "med-1", Quantity: 21, Status: StatusDispensed}, m, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher, nil)

	if _, err := service.Dispense(context.Background(), "rx-1", "pharm-1"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	keys := publisher.RoutingKeys()
	if len(keys) != 2 || keys[0] != messaging.EventPrescriptionDispensed || keys[1] != messaging.EventStockLow {
		t.Errorf("Expected dispensed + stock_low events, got %v", keys)
	}
}

// TestDispense_InsufficientStock tests the stock guard rejection
func TestDispense_InsufficientStock(t *testing.T) {
	mockRepo := &mockRepository{
		getRxFunc: func(ctx context.Context, id string) (*PrescriptionResponse, error) {
			return &PrescriptionResponse{ID: id, MedicationID: "med-1", Quantity: 500, Status: StatusFilled}, nil
		},
		dispenseFunc: func(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, *MedicationResponse, error) {
			return nil, nil, ErrInsufficientStock
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher, nil)

	_, err := service.Dispense(context.Background(), "rx-1", "pharm-1")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("Expected ErrInsufficientStock, got %v", err)
	}
	if len(publisher.Events) != 0 {
		t.Error("No event should be published for a failed dispense")
	}
}

// TestDispense_NotFilled tests the state gate on dispense
func TestDispense_NotFilled(t *testing.T) {
	mockRepo := &mockRepository{
		getRxFunc: func(ctx context.Context, id string) (*PrescriptionResponse, error) {
			return &PrescriptionResponse{ID: id, Status: StatusPending}, nil
		},
	}
	service := NewService(mockRepo, testutil.NewMockPublisher(), nil)

	_, err := service.Dispense(context.Background(), "rx-1", "pharm-1")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

// TestUpdatePrescriptionStatus_DispensedIsFinal tests that dispensed is terminal
func TestUpdatePrescriptionStatus_DispensedIsFinal(t *testing.T) {
	mockRepo := &mockRepository{
		getRxFunc: func(ctx context.Context, id string) (*PrescriptionResponse, error) {
			return &PrescriptionResponse{ID: id, Status: StatusDispensed}, nil
		},
	}
	service := NewService(mockRepo, testutil.NewMockPublisher(), nil)

	_, err := service.UpdatePrescriptionStatus(context.Background(), "rx-1", UpdateStatusRequest{Status: StatusCancelled, Reason: "oops"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

// TestRestock_RejectsNonPositive tests restock validation
func TestRestock_RejectsNonPositive(t *testing.T) {
	service := NewService(&mockRepository{}, testutil.NewMockPublisher(), nil)

	if _, err := service.Restock(context.Background(), "med-1", RestockRequest{Quantity: 0}); err == nil {
		t.Error("Expected error for zero restock quantity, got nil")
	}
	if _, err := service.Restock(context.Background(), "med-1", RestockRequest{Quantity: -5}); err == nil {
		t.Error("Expected error for negative restock quantity, got nil")
	}
}

// TestCreateMedication_Validation tests catalog field validation
func TestCreateMedication_Validation(t *testing.T) {
	service := NewService(&mockRepository{}, testutil.NewMockPublisher(), nil)

	cases := []CreateMedicationRequest{
		{Name: "Amoxicillin 500mg"},                                    // missing code
		{Code: "AMOX500"},                                              // missing name
		{Code: "AMOX500", Name: "Amoxicillin", UnitPriceCents: -100},   // negative price
		{Code: "AMOX500", Name: "Amoxicillin", ReorderThreshold: -1},   // negative threshold
	}
	for i, req := range cases {
		if _, err := service.CreateMedication(context.Background(), req); err == nil {
			t.Errorf("Case %d: expected validation error, got nil", i)
		}
	}
}
