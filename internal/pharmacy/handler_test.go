package pharmacy

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/auth"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
	"github.com/gorilla/mux"
)

type mockService struct {
	createMedFunc    func(ctx context.Context, req CreateMedicationRequest) (*MedicationResponse, error)
	getMedFunc       func(ctx context.Context, id string) (*MedicationResponse, error)
	listMedsFunc     func(ctx context.Context, filter MedicationListFilter, params pagination.Params) (*PaginatedMedicationListResponse, error)
	updateMedFunc    func(ctx context.Context, id string, req UpdateMedicationRequest) (*MedicationResponse, error)
	restockFunc      func(ctx context.Context, id string, req RestockRequest) (*MedicationResponse, error)
	createRxFunc     func(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error)
	getRxFunc        func(ctx context.Context, id string) (*PrescriptionResponse, error)
	listRxFunc       func(ctx context.Context, filter PrescriptionListFilter, params pagination.Params) (*PaginatedPrescriptionListResponse, error)
	updateStatusFunc func(ctx context.Context, id string, req UpdateStatusRequest) (*PrescriptionResponse, error)
	dispenseFunc     func(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, error)
}

func (m *mockService) CreateMedication(ctx context.Context, req CreateMedicationRequest) (*MedicationResponse, error) {
	return m.createMedFunc(ctx, req)
}

func (m *mockService) GetMedication(ctx context.Context, id string) (*MedicationResponse, error) {
	return m.getMedFunc(ctx, id)
}

func (m *mockService) ListMedications(ctx context.Context, filter MedicationListFilter, params pagination.Params) (*PaginatedMedicationListResponse, error) {
	return m.listMedsFunc(ctx, filter, params)
}

func (m *mockService) UpdateMedication(ctx context.Context, id string, req UpdateMedicationRequest) (*MedicationResponse, error) {
	return m.updateMedFunc(ctx, id, req)
}

func (m *mockService) Restock(ctx context.Context, id string, req RestockRequest) (*MedicationResponse, error) {
	return m.restockFunc(ctx, id, req)
}

func (m *mockService) CreatePrescription(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error) {
	return m.createRxFunc(ctx, prescriberID, req)
}

func (m *mockService) GetPrescription(ctx context.Context, id string) (*PrescriptionResponse, error) {
	return m.getRxFunc(ctx, id)
}

func (m *mockService) ListPrescriptions(ctx context.Context, filter PrescriptionListFilter, params pagination.Params) (*PaginatedPrescriptionListResponse, error) {
	return m.listRxFunc(ctx, filter, params)
}

func (m *mockService) UpdatePrescriptionStatus(ctx context.Context, id string, req UpdateStatusRequest) (*PrescriptionResponse, error) {
	return m.updateStatusFunc(ctx, id, req)
}

func (m *mockService) Dispense(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, error) {
	return m.dispenseFunc(ctx, id, dispensedBy)
}

func authedRequest(method, target string, body []byte, userID, role string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	principal := &auth.Principal{UserID: userID, Roles: []string{role}}
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
}

// TestHandlerDispense_Success tests the dispense endpoint with the principal as dispenser
func TestHandlerDispense_Success(t *testing.T) {
	var gotDispensedBy string
	handler := NewHandler(&mockService{
		dispenseFunc: func(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, error) {
			gotDispensedBy = dispensedBy
			return &PrescriptionResponse{ID: id, Status: StatusDispensed, DispensedBy: dispensedBy}, nil
		},
	})

	req := authedRequest(http.MethodPost, "/prescriptions/rx-1/dispense", nil, "pharm-3", "PHARMACIST")
	req = mux.SetURLVars(req, map[string]string{"id": "rx-1"})
	rec := httptest.NewRecorder()

	handler.DispensePrescription(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotDispensedBy != "pharm-3" {
		t.Errorf("Expected dispensed_by 'pharm-3', got '%s'", gotDispensedBy)
	}
}

// TestHandlerDispense_InsufficientStock tests 409 mapping for the stock guard
func TestHandlerDispense_InsufficientStock(t *testing.T) {
	handler := NewHandler(&mockService{
		dispenseFunc: func(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, error) {
			return nil, ErrInsufficientStock
		},
	})

	req := authedRequest(http.MethodPost, "/prescriptions/rx-1/dispense", nil, "pharm-1", "PHARMACIST")
	req = mux.SetURLVars(req, map[string]string{"id": "rx-1"})
	rec := httptest.NewRecorder()

	handler.DispensePrescription(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rec.Code)
	}

	var response map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&response)
	if response["error"] != "insufficient_stock" {
		t.Errorf("Expected error 'insufficient_stock', got '%v'", response["error"])
	}
}

// TestHandlerCreatePrescription_UsesPrincipalAsPrescriber tests prescriber plumbing
func TestHandlerCreatePrescription_UsesPrincipalAsPrescriber(t *testing.T) {
	var gotPrescriber string
	handler := NewHandler(&mockService{
		createRxFunc: func(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error) {
			gotPrescriber = prescriberID
			return &PrescriptionResponse{ID: "rx-1", PatientID: req.PatientID, PrescriberID: prescriberID, Status: StatusPending}, nil
		},
	})

	body, _ := json.Marshal(CreatePrescriptionRequest{
		PatientID: "pat-1", MedicationID: "med-1", Dosage: "500mg", Frequency: "3x daily", Quantity: 21,
	})
	req := authedRequest(http.MethodPost, "/prescriptions", body, "doc-4", "DOCTOR")
	rec := httptest.NewRecorder()

	handler.CreatePrescription(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}
	if gotPrescriber != "doc-4" {
		t.Errorf("Expected prescriber 'doc-4', got '%s'", gotPrescriber)
	}
}

// TestHandlerListMedications_LowStockFilter tests low_stock query plumbing
func TestHandlerListMedications_LowStockFilter(t *testing.T) {
	var gotFilter MedicationListFilter
	handler := NewHandler(&mockService{
		listMedsFunc: func(ctx context.Context, filter MedicationListFilter, params pagination.Params) (*PaginatedMedicationListResponse, error) {
			gotFilter = filter
			return &PaginatedMedicationListResponse{Success: true, Meta: params.CalculateMeta(0)}, nil
		},
	})

	req := authedRequest(http.MethodGet, "/medications?low_stock=true&search=amox", nil, "pharm-1", "PHARMACIST")
	rec := httptest.NewRecorder()

	handler.ListMedications(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !gotFilter.LowStockOnly {
		t.Error("Expected LowStockOnly true")
	}
	if gotFilter.Search != "amox" {
		t.Errorf("Expected search 'amox', got '%s'", gotFilter.Search)
	}
}

// TestHandlerRestock_NotFound tests 404 mapping
func TestHandlerRestock_NotFound(t *testing.T) {
	handler := NewHandler(&mockService{
		restockFunc: func(ctx context.Context, id string, req RestockRequest) (*MedicationResponse, error) {
			return nil, ErrNotFound
		},
	})

	body, _ := json.Marshal(RestockRequest{Quantity: 50})
	req := authedRequest(http.MethodPost, "/medications/missing/restock", body, "pharm-1", "PHARMACIST")
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()

	handler.RestockMedication(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

// TestHandlerCreateMedication_Unauthenticated tests missing principal
func TestHandlerCreateMedication_Unauthenticated(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/medications", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()

	handler.CreateMedication(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
