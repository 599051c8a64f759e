package billing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/auth"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
	"github.com/gorilla/mux"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type InvoiceSuccessResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

type PaginatedInvoiceListResponse struct {
	Success  bool              `json:"success"`
	Invoices []InvoiceResponse `json:"invoices"`
	Meta     pagination.Meta   `json:"meta"`
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	i, err := h.service.CreateInvoice(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "create_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(InvoiceSuccessResponse{
		Success: true,
		Message: "Invoice created successfully",
		Invoice: i,
	})
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	i, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InvoiceSuccessResponse{
		Success: true,
		Message: "Invoice retrieved successfully",
		Invoice: i,
	})
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	filter := ListFilter{
		PatientID: r.URL.Query().Get("patient_id"),
		Status:    r.URL.Query().Get("status"),
	}

	params := pagination.ParseParams(r)
	response, err := h.service.ListInvoices(r.Context(), filter, params)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	var req AddLineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	i, err := h.service.AddLineItem(r.Context(), id, req)
	if err != nil {
		h.respondInvoiceError(w, err, "add_item_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InvoiceSuccessResponse{
		Success: true,
		Message: "Line item added successfully",
		Invoice: i,
	})
}

func (h *Handler) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	i, err := h.service.RemoveLineItem(r.Context(), vars["id"], vars["itemId"])
	if err != nil {
		h.respondInvoiceError(w, err, "remove_item_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InvoiceSuccessResponse{
		Success: true,
		Message: "Line item removed successfully",
		Invoice: i,
	})
}

func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	i, err := h.service.IssueInvoice(r.Context(), id)
	if err != nil {
		h.respondInvoiceError(w, err, "issue_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InvoiceSuccessResponse{
		Success: true,
		Message: "Invoice issued successfully",
		Invoice: i,
	})
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	i, err := h.service.RecordPayment(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrOverpayment) {
			respondError(w, http.StatusConflict, "overpayment", err.Error())
			return
		}
		h.respondInvoiceError(w, err, "payment_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InvoiceSuccessResponse{
		Success: true,
		Message: "Payment recorded successfully",
		Invoice: i,
	})
}

func (h *Handler) VoidInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	var req VoidInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	i, err := h.service.VoidInvoice(r.Context(), id, req)
	if err != nil {
		h.respondInvoiceError(w, err, "void_failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InvoiceSuccessResponse{
		Success: true,
		Message: "Invoice voided successfully",
		Invoice: i,
	})
}

func (h *Handler) respondInvoiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", err.Error())
	default:
		respondError(w, http.StatusBadRequest, fallback, err.Error())
	}
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
