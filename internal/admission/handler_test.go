package admission

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
	createFunc      func(ctx context.Context, req CreateAdmissionRequest) (*AdmissionResponse, error)
	getFunc         func(ctx context.Context, id string) (*AdmissionResponse, error)
	listFunc        func(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedAdmissionListResponse, error)
	dischargeFunc   func(ctx context.Context, id string, req DischargeRequest) (*AdmissionResponse, error)
	scheduleFunc    func(ctx context.Context, admissionID string, req ScheduleMAREntryRequest) (*MAREntryResponse, error)
	listEntriesFunc func(ctx context.Context, admissionID string) ([]MAREntryResponse, error)
	recordFunc      func(ctx context.Context, entryID, recordedBy string, req RecordAdministrationRequest) (*MAREntryResponse, error)
}

func (m *mockService) CreateAdmission(ctx context.Context, req CreateAdmissionRequest) (*AdmissionResponse, error) {
	return m.createFunc(ctx, req)
}

func (m *mockService) GetAdmission(ctx context.Context, id string) (*AdmissionResponse, error) {
	return m.getFunc(ctx, id)
}

func (m *mockService) ListAdmissions(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedAdmissionListResponse, error) {
	return m.listFunc(ctx, filter, params)
}

func (m *mockService) Discharge(ctx context.Context, id string, req DischargeRequest) (*AdmissionResponse, error) {
	return m.dischargeFunc(ctx, id, req)
}

func (m *mockService) ScheduleMAREntry(ctx context.Context, admissionID string, req ScheduleMAREntryRequest) (*MAREntryResponse, error) {
	return m.scheduleFunc(ctx, admissionID, req)
}

func (m *mockService) ListMAREntries(ctx context.Context, admissionID string) ([]MAREntryResponse, error) {
	return m.listEntriesFunc(ctx, admissionID)
}

func (m *mockService) RecordAdministration(ctx context.Context, entryID, recordedBy string, req RecordAdministrationRequest) (*MAREntryResponse, error) {
	return m.recordFunc(ctx, entryID, recordedBy, req)
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

// TestHandlerRecordAdministration_UsesPrincipal tests recorded_by plumbing
func TestHandlerRecordAdministration_UsesPrincipal(t *testing.T) {
	var gotRecordedBy string
	handler := NewHandler(&mockService{
		recordFunc: func(ctx context.Context, entryID, recordedBy string, req RecordAdministrationRequest) (*MAREntryResponse, error) {
			gotRecordedBy = recordedBy
			return &MAREntryResponse{ID: entryID, Status: req.Status, RecordedBy: recordedBy}, nil
		},
	})

	body, _ := json.Marshal(RecordAdministrationRequest{Status: MARGiven})
	req := authedRequest(http.MethodPost, "/admissions/adm-1/mar/mar-1/record", body, "nurse-7", "NURSE")
	req = mux.SetURLVars(req, map[string]string{"id": "adm-1", "entryId": "mar-1"})
	rec := httptest.NewRecorder()

	handler.RecordAdministration(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotRecordedBy != "nurse-7" {
		t.Errorf("Expected recorded_by 'nurse-7', got '%s'", gotRecordedBy)
	}
}

// TestHandlerRecordAdministration_AlreadyRecorded tests 409 mapping
func TestHandlerRecordAdministration_AlreadyRecorded(t *testing.T) {
	handler := NewHandler(&mockService{
		recordFunc: func(ctx context.Context, entryID, recordedBy string, req RecordAdministrationRequest) (*MAREntryResponse, error) {
			return nil, ErrAlreadyRecorded
		},
	})

	body, _ := json.Marshal(RecordAdministrationRequest{Status: MARGiven})
	req := authedRequest(http.MethodPost, "/admissions/adm-1/mar/mar-1/record", body, "nurse-1", "NURSE")
	req = mux.SetURLVars(req, map[string]string{"id": "adm-1", "entryId": "mar-1"})
	rec := httptest.NewRecorder()

	handler.RecordAdministration(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

// TestHandlerDischarge_InvalidTransition tests 409 mapping
func TestHandlerDischarge_InvalidTransition(t *testing.T) {
	handler := NewHandler(&mockService{
		dischargeFunc: func(ctx context.Context, id string, req DischargeRequest) (*AdmissionResponse, error) {
			return nil, ErrInvalidTransition
		},
	})

	body, _ := json.Marshal(DischargeRequest{Summary: "recovered"})
	req := authedRequest(http.MethodPost, "/admissions/adm-1/discharge", body, "doc-1", "DOCTOR")
	req = mux.SetURLVars(req, map[string]string{"id": "adm-1"})
	rec := httptest.NewRecorder()

	handler.Discharge(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

// TestHandlerCreateAdmission_Unauthenticated tests missing principal
func TestHandlerCreateAdmission_Unauthenticated(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/admissions", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()

	handler.CreateAdmission(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

// TestHandlerListMAREntries_Success tests the MAR listing endpoint
func TestHandlerListMAREntries_Success(t *testing.T) {
	handler := NewHandler(&mockService{
		listEntriesFunc: func(ctx context.Context, admissionID string) ([]MAREntryResponse, error) {
			return []MAREntryResponse{
				{ID: "mar-1", AdmissionID: admissionID, MedicationID: "med-1", Status: MARScheduled},
				{ID: "mar-2", AdmissionID: admissionID, MedicationID: "med-2", Status: MARGiven},
			}, nil
		},
	})

	req := authedRequest(http.MethodGet, "/admissions/adm-1/mar", nil, "nurse-1", "NURSE")
	req = mux.SetURLVars(req, map[string]string{"id": "adm-1"})
	rec := httptest.NewRecorder()

	handler.ListMAREntries(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response MAREntryListResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if len(response.Entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(response.Entries))
	}
}
