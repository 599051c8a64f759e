package laborder

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
	createFunc       func(ctx context.Context, orderedBy string, req CreateLabOrderRequest) (*LabOrderResponse, error)
	getFunc          func(ctx context.Context, id string) (*LabOrderResponse, error)
	listFunc         func(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedLabOrderListResponse, error)
	updateStatusFunc func(ctx context.Context, id string, req UpdateStatusRequest) (*LabOrderResponse, error)
	enterResultsFunc func(ctx context.Context, id, enteredBy string, req EnterResultsRequest) (*LabOrderResponse, error)
	verifyFunc       func(ctx context.Context, id, verifiedBy string) (*LabOrderResponse, error)
}

func (m *mockService) CreateOrder(ctx context.Context, orderedBy string, req CreateLabOrderRequest) (*LabOrderResponse, error) {
	return m.createFunc(ctx, orderedBy, req)
}

func (m *mockService) GetOrder(ctx context.Context, id string) (*LabOrderResponse, error) {
	return m.getFunc(ctx, id)
}

func (m *mockService) ListOrders(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedLabOrderListResponse, error) {
	return m.listFunc(ctx, filter, params)
}

func (m *mockService) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*LabOrderResponse, error) {
	return m.updateStatusFunc(ctx, id, req)
}

func (m *mockService) EnterResults(ctx context.Context, id, enteredBy string, req EnterResultsRequest) (*LabOrderResponse, error) {
	return m.enterResultsFunc(ctx, id, enteredBy, req)
}

func (m *mockService) VerifyOrder(ctx context.Context, id, verifiedBy string) (*LabOrderResponse, error) {
	return m.verifyFunc(ctx, id, verifiedBy)
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

// TestHandlerCreateOrder_UsesPrincipalAsOrderer tests ordered_by plumbing
func TestHandlerCreateOrder_UsesPrincipalAsOrderer(t *testing.T) {
	var gotOrderedBy string
	handler := NewHandler(&mockService{
		createFunc: func(ctx context.Context, orderedBy string, req CreateLabOrderRequest) (*LabOrderResponse, error) {
			gotOrderedBy = orderedBy
			return &LabOrderResponse{ID: "lab-1", PatientID: req.PatientID, Status: StatusOrdered, OrderedBy: orderedBy}, nil
		},
	})

	body, _ := json.Marshal(CreateLabOrderRequest{PatientID: "pat-1", PanelCode: "CBC", PanelName: "Complete Blood Count"})
	req := authedRequest(http.MethodPost, "/lab-orders", body, "doc-9", "DOCTOR")
	rec := httptest.NewRecorder()

	handler.CreateOrder(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}
	if gotOrderedBy != "doc-9" {
		t.Errorf("Expected ordered_by 'doc-9', got '%s'", gotOrderedBy)
	}
}

// TestHandlerCreateOrder_Unauthenticated tests missing principal
func TestHandlerCreateOrder_Unauthenticated(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/lab-orders", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()

	handler.CreateOrder(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

// TestHandlerVerifyOrder_SelfVerify tests 403 mapping for the two-person rule
func TestHandlerVerifyOrder_SelfVerify(t *testing.T) {
	handler := NewHandler(&mockService{
		verifyFunc: func(ctx context.Context, id, verifiedBy string) (*LabOrderResponse, error) {
			return nil, ErrSelfVerify
		},
	})

	req := authedRequest(http.MethodPost, "/lab-orders/lab-1/verify", nil, "tech-1", "LAB_TECH")
	req = mux.SetURLVars(req, map[string]string{"id": "lab-1"})
	rec := httptest.NewRecorder()

	handler.VerifyOrder(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

// TestHandlerEnterResults_InvalidTransition tests 409 mapping
func TestHandlerEnterResults_InvalidTransition(t *testing.T) {
	handler := NewHandler(&mockService{
		enterResultsFunc: func(ctx context.Context, id, enteredBy string, req EnterResultsRequest) (*LabOrderResponse, error) {
			return nil, ErrInvalidTransition
		},
	})

	body, _ := json.Marshal(EnterResultsRequest{
		Results: []TestResultEntry{{TestCode: "WBC", TestName: "White blood cells", Value: "6.2"}},
	})
	req := authedRequest(http.MethodPost, "/lab-orders/lab-1/results", body, "tech-1", "LAB_TECH")
	req = mux.SetURLVars(req, map[string]string{"id": "lab-1"})
	rec := httptest.NewRecorder()

	handler.EnterResults(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

// TestHandlerGetOrder_NotFound tests 404 mapping
func TestHandlerGetOrder_NotFound(t *testing.T) {
	handler := NewHandler(&mockService{
		getFunc: func(ctx context.Context, id string) (*LabOrderResponse, error) {
			return nil, ErrNotFound
		},
	})

	req := authedRequest(http.MethodGet, "/lab-orders/missing", nil, "doc-1", "DOCTOR")
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()

	handler.GetOrder(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

// TestHandlerListOrders_Filters tests filter query plumbing
func TestHandlerListOrders_Filters(t *testing.T) {
	var gotFilter ListFilter
	handler := NewHandler(&mockService{
		listFunc: func(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedLabOrderListResponse, error) {
			gotFilter = filter
			return &PaginatedLabOrderListResponse{Success: true, Meta: params.CalculateMeta(0)}, nil
		},
	})

	req := authedRequest(http.MethodGet, "/lab-orders?patient_id=pat-1&status=resulted&priority=stat", nil, "doc-1", "DOCTOR")
	rec := httptest.NewRecorder()

	handler.ListOrders(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotFilter.PatientID != "pat-1" || gotFilter.Status != StatusResulted || gotFilter.Priority != PriorityStat {
		t.Errorf("Unexpected filter: %+v", gotFilter)
	}
}
