package billing

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
	createFunc     func(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error)
	getFunc        func(ctx context.Context, id string) (*InvoiceResponse, error)
	listFunc       func(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedInvoiceListResponse, error)
	addItemFunc    func(ctx context.Context, invoiceID string, req AddLineItemRequest) (*InvoiceResponse, error)
	removeItemFunc func(ctx context.Context, invoiceID, itemID string) (*InvoiceResponse, error)
	issueFunc      func(ctx context.Context, id string) (*InvoiceResponse, error)
	paymentFunc    func(ctx context.Context, id string, req RecordPaymentRequest) (*InvoiceResponse, error)
	voidFunc       func(ctx context.Context, id string, req VoidInvoiceRequest) (*InvoiceResponse, error)
}

func (m *mockService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	return m.createFunc(ctx, req)
}

func (m *mockService) GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	return m.getFunc(ctx, id)
}

func (m *mockService) ListInvoices(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedInvoiceListResponse, error) {
	return m.listFunc(ctx, filter, params)
}

func (m *mockService) AddLineItem(ctx context.Context, invoiceID string, req AddLineItemRequest) (*InvoiceResponse, error) {
	return m.addItemFunc(ctx, invoiceID, req)
}

func (m *mockService) RemoveLineItem(ctx context.Context, invoiceID, itemID string) (*InvoiceResponse, error) {
	return m.removeItemFunc(ctx, invoiceID, itemID)
}

func (m *mockService) IssueInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	return m.issueFunc(ctx, id)
}

func (m *mockService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*InvoiceResponse, error) {
	return m.paymentFunc(ctx, id, req)
}

func (m *mockService) VoidInvoice(ctx context.Context, id string, req VoidInvoiceRequest) (*InvoiceResponse, error) {
	return m.voidFunc(ctx, id, req)
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	principal := &auth.Principal{UserID: "user-1", Roles: []string{"BILLING"}}
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
}

// TestHandlerCreateInvoice_Success tests opening a draft invoice
func TestHandlerCreateInvoice_Success(t *testing.T) {
	handler := NewHandler(&mockService{
		createFunc: func(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
			return &InvoiceResponse{ID: "inv-1", InvoiceNumber: "INV-A1B2C3D4", PatientID: req.PatientID, Status: StatusDraft, TaxBps: req.TaxBps}, nil
		},
	})

	body, _ := json.Marshal(CreateInvoiceRequest{PatientID: "pat-1", TaxBps: 900})
	req := authedRequest(http.MethodPost, "/invoices", body)
	rec := httptest.NewRecorder()

	handler.CreateInvoice(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response InvoiceSuccessResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if response.Invoice == nil || response.Invoice.Status != StatusDraft {
		t.Error("Expected draft invoice in response")
	}
}

// TestHandlerRecordPayment_Overpayment tests 409 mapping for overpayment
func TestHandlerRecordPayment_Overpayment(t *testing.T) {
	handler := NewHandler(&mockService{
		paymentFunc: func(ctx context.Context, id string, req RecordPaymentRequest) (*InvoiceResponse, error) {
			return nil, ErrOverpayment
		},
	})

	body, _ := json.Marshal(RecordPaymentRequest{AmountCents: 999999, Method: MethodCash})
	req := authedRequest(http.MethodPost, "/invoices/inv-1/payments", body)
	req = mux.SetURLVars(req, map[string]string{"id": "inv-1"})
	rec := httptest.NewRecorder()

	handler.RecordPayment(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rec.Code)
	}

	var response map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&response)
	if response["error"] != "overpayment" {
		t.Errorf("Expected error 'overpayment', got '%v'", response["error"])
	}
}

// TestHandlerAddLineItem_InvalidTransition tests 409 mapping on non-draft
func TestHandlerAddLineItem_InvalidTransition(t *testing.T) {
	handler := NewHandler(&mockService{
		addItemFunc: func(ctx context.Context, invoiceID string, req AddLineItemRequest) (*InvoiceResponse, error) {
			return nil, ErrInvalidTransition
		},
	})

	body, _ := json.Marshal(AddLineItemRequest{Description: "Consultation", Quantity: 1, UnitPriceCents: 7500})
	req := authedRequest(http.MethodPost, "/invoices/inv-1/items", body)
	req = mux.SetURLVars(req, map[string]string{"id": "inv-1"})
	rec := httptest.NewRecorder()

	handler.AddLineItem(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

// TestHandlerRemoveLineItem_PassesBothIDs tests URL var plumbing
func TestHandlerRemoveLineItem_PassesBothIDs(t *testing.T) {
	var gotInvoice, gotItem string
	handler := NewHandler(&mockService{
		removeItemFunc: func(ctx context.Context, invoiceID, itemID string) (*InvoiceResponse, error) {
			gotInvoice, gotItem = invoiceID, itemID
			return &InvoiceResponse{ID: invoiceID, Status: StatusDraft}, nil
		},
	})

	req := authedRequest(http.MethodDelete, "/invoices/inv-1/items/item-2", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "inv-1", "itemId": "item-2"})
	rec := httptest.NewRecorder()

	handler.RemoveLineItem(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotInvoice != "inv-1" || gotItem != "item-2" {
		t.Errorf("Expected inv-1/item-2, got %s/%s", gotInvoice, gotItem)
	}
}

// TestHandlerGetInvoice_NotFound tests 404 mapping
func TestHandlerGetInvoice_NotFound(t *testing.T) {
	handler := NewHandler(&mockService{
		getFunc: func(ctx context.Context, id string) (*InvoiceResponse, error) {
			return nil, ErrNotFound
		},
	})

	req := authedRequest(http.MethodGet, "/invoices/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()

	handler.GetInvoice(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

// TestHandlerListInvoices_Unauthenticated tests missing principal
func TestHandlerListInvoices_Unauthenticated(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	rec := httptest.NewRecorder()

	handler.ListInvoices(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
