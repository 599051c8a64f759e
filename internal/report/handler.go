package report

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/auth"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func parseRange(r *http.Request) (DateRange, error) {
	var dr DateRange
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		return dr, errors.New("from and to query parameters are required (YYYY-MM-DD)")
	}

	from, err := time.Parse(dayFormat, fromStr)
	if err != nil {
		return dr, errors.New("invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.Parse(dayFormat, toStr)
	if err != nil {
		return dr, errors.New("invalid to date, expected YYYY-MM-DD")
	}

	dr.From = from
	dr.To = to
	return dr, nil
}

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	report, err := h.service.Revenue(r.Context(), dr)
	if err != nil {
		respondReportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *Handler) AppointmentVolume(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	report, err := h.service.AppointmentVolume(r.Context(), dr)
	if err != nil {
		respondReportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *Handler) LabTurnaround(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	report, err := h.service.LabTurnaround(r.Context(), dr)
	if err != nil {
		respondReportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *Handler) Dispenses(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	dr, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	report, err := h.service.Dispenses(r.Context(), dr)
	if err != nil {
		respondReportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	report, err := h.service.LowStock(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func respondReportError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidRange) {
		respondError(w, http.StatusBadRequest, "invalid_range", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
