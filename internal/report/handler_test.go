package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/auth"
)

type mockService struct {
	revenueFunc           func(ctx context.Context, r DateRange) (*RevenueReport, error)
	appointmentVolumeFunc func(ctx context.Context, r DateRange) (*AppointmentVolumeReport, error)
	labTurnaroundFunc     func(ctx context.Context, r DateRange) (*LabTurnaroundReport, error)
	dispensesFunc         func(ctx context.Context, r DateRange) (*DispenseReport, error)
	lowStockFunc          func(ctx context.Context) (*LowStockReport, error)
}

func (m *mockService) Revenue(ctx context.Context, r DateRange) (*RevenueReport, error) {
	return m.revenueFunc(ctx, r)
}

func (m *mockService) AppointmentVolume(ctx context.Context, r DateRange) (*AppointmentVolumeReport, error) {
	return m.appointmentVolumeFunc(ctx, r)
}

func (m *mockService) LabTurnaround(ctx context.Context, r DateRange) (*LabTurnaroundReport, error) {
	return m.labTurnaroundFunc(ctx, r)
}

func (m *mockService) Dispenses(ctx context.Context, r DateRange) (*DispenseReport, error) {
	return m.dispensesFunc(ctx, r)
}

func (m *mockService) LowStock(ctx context.Context) (*LowStockReport, error) {
	return m.lowStockFunc(ctx)
}

var _ ServiceInterface = (*mockService)(nil)

func authedRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	principal := &auth.Principal{UserID: "admin-1", Roles: []string{"ADMIN"}}
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
}

func TestRevenueHandler_ParsesRange(t *testing.T) {
	var gotRange DateRange
	service := &mockService{
		revenueFunc: func(ctx context.Context, r DateRange) (*RevenueReport, error) {
			gotRange = r
			return &RevenueReport{From: "2025-06-01", To: "2025-06-30"}, nil
		},
	}
	handler := NewHandler(service)

	req := authedRequest("/api/reports/revenue?from=2025-06-01&to=2025-06-30")
	rec := httptest.NewRecorder()
	handler.Revenue(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotRange.From.Format(dayFormat) != "2025-06-01" || gotRange.To.Format(dayFormat) != "2025-06-30" {
		t.Errorf("range not parsed: %+v", gotRange)
	}

	var report RevenueReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.From != "2025-06-01" {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestRevenueHandler_MissingRange(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := authedRequest("/api/reports/revenue")
	rec := httptest.NewRecorder()
	handler.Revenue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRevenueHandler_BadDate(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := authedRequest("/api/reports/revenue?from=June&to=2025-06-30")
	rec := httptest.NewRecorder()
	handler.Revenue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRevenueHandler_Unauthenticated(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/revenue?from=2025-06-01&to=2025-06-30", nil)
	rec := httptest.NewRecorder()
	handler.Revenue(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAppointmentVolumeHandler_InvalidRange(t *testing.T) {
	service := &mockService{
		appointmentVolumeFunc: func(ctx context.Context, r DateRange) (*AppointmentVolumeReport, error) {
			return nil, ErrInvalidRange
		},
	}
	handler := NewHandler(service)

	req := authedRequest("/api/reports/appointments?from=2025-06-30&to=2025-06-01")
	rec := httptest.NewRecorder()
	handler.AppointmentVolume(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "invalid_range" {
		t.Errorf("expected invalid_range error, got %v", body["error"])
	}
}

func TestLowStockHandler_NoRangeRequired(t *testing.T) {
	service := &mockService{
		lowStockFunc: func(ctx context.Context) (*LowStockReport, error) {
			return &LowStockReport{
				Medications: []LowStockMedication{{MedicationID: "med-1", Code: "AMOX500"}},
			}, nil
		},
	}
	handler := NewHandler(service)

	req := authedRequest("/api/reports/pharmacy/low-stock")
	rec := httptest.NewRecorder()
	handler.LowStock(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var report LowStockReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(report.Medications) != 1 {
		t.Errorf("unexpected report %+v", report)
	}
}
