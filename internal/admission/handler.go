package admission

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

type AdmissionSuccessResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Admission *AdmissionResponse `json:"admission,omitempty"`
}

type MAREntrySuccessResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Entry   *MAREntryResponse `json:"entry,omitempty"`
}

type MAREntryListResponse struct {
	Success bool               `json:"success"`
	Entries []MAREntryResponse `json:"entries"`
}

type PaginatedAdmissionListResponse struct {
	Success    bool                `json:"success"`
	Admissions []AdmissionResponse `json:"admissions"`
	Meta       pagination.Meta     `json:"meta"`
}

func (h *Handler) CreateAdmission(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateAdmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	a, err := h.service.CreateAdmission(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "create_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AdmissionSuccessResponse{
		Success:   true,
		Message:   "Admission created successfully",
		Admission: a,
	})
}

func (h *Handler) GetAdmission(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	a, err := h.service.GetAdmission(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AdmissionSuccessResponse{
		Success:   true,
		Message:   "Admission retrieved successfully",
		Admission: a,
	})
}

func (h *Handler) ListAdmissions(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	filter := ListFilter{
		PatientID: r.URL.Query().Get("patient_id"),
		Ward:      r.URL.Query().Get("ward"),
		Status:    r.URL.Query().Get("status"),
	}

	params := pagination.ParseParams(r)
	response, err := h.service.ListAdmissions(r.Context(), filter, params)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) Discharge(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	var req DischargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	a, err := h.service.Discharge(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respondError(w, http.StatusNotFound, "not_found", err.Error())
		case errors.Is(err, ErrInvalidTransition):
			respondError(w, http.StatusConflict, "invalid_transition", err.Error())
		default:
			respondError(w, http.StatusBadRequest, "discharge_failed", err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AdmissionSuccessResponse{
		Success:   true,
		Message:   "Patient discharged successfully",
		Admission: a,
	})
}

func (h *Handler) ScheduleMAREntry(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	var req ScheduleMAREntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	e, err := h.service.ScheduleMAREntry(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respondError(w, http.StatusNotFound, "not_found", err.Error())
		case errors.Is(err, ErrInvalidTransition):
			respondError(w, http.StatusConflict, "invalid_transition", err.Error())
		default:
			respondError(w, http.StatusBadRequest, "schedule_failed", err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(MAREntrySuccessResponse{
		Success: true,
		Message: "MAR entry scheduled successfully",
		Entry:   e,
	})
}

func (h *Handler) ListMAREntries(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	entries, err := h.service.ListMAREntries(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MAREntryListResponse{
		Success: true,
		Entries: entries,
	})
}

func (h *Handler) RecordAdministration(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	entryID := mux.Vars(r)["entryId"]
	var req RecordAdministrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	e, err := h.service.RecordAdministration(r.Context(), entryID, principal.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEntryNotFound):
			respondError(w, http.StatusNotFound, "not_found", err.Error())
		case errors.Is(err, ErrAlreadyRecorded):
			respondError(w, http.StatusConflict, "already_recorded", err.Error())
		default:
			respondError(w, http.StatusBadRequest, "record_failed", err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MAREntrySuccessResponse{
		Success: true,
		Message: "Administration recorded successfully",
		Entry:   e,
	})
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
