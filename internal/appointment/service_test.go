package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/testutil"
)

type mockRepository struct {
	createFunc       func(ctx context.Context, req BookAppointmentRequest) (*AppointmentResponse, error)
	getFunc          func(ctx context.Context, id string) (*AppointmentResponse, error)
	hasConflictFunc  func(ctx context.Context, providerID string, start, end time.Time, excludeID string) (bool, error)
	listFunc         func(ctx context.Context, filter ListFilter, limit, offset int) ([]AppointmentResponse, int, error)
	rescheduleFunc   func(ctx context.Context, id string, start, end time.Time) (*AppointmentResponse, error)
	updateStatusFunc func(ctx context.Context, id, status, cancelReason string) (*AppointmentResponse, error)
}

func (m *mockRepository) CreateAppointment(ctx context.Context, req BookAppointmentRequest) (*AppointmentResponse, error) {
	return m.createFunc(ctx, req)
}

func (m *mockRepository) GetAppointment(ctx context.Context, id string) (*AppointmentResponse, error) {
	return m.getFunc(ctx, id)
}

func (m *mockRepository) HasConflict(ctx context.Context, providerID string, start, end time.Time, excludeID string) (bool, error) {
	if m.hasConflictFunc != nil {
		return m.hasConflictFunc(ctx, providerID, start, end, excludeID)
	}
	return false, nil
}

func (m *mockRepository) ListAppointments(ctx context.Context, filter ListFilter, limit, offset int) ([]AppointmentResponse, int, error) {
	return m.listFunc(ctx, filter, limit, offset)
}

func (m *mockRepository) Reschedule(ctx context.Context, id string, start, end time.Time) (*AppointmentResponse, error) {
	return m.rescheduleFunc(ctx, id, start, end)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id, status, cancelReason string) (*AppointmentResponse, error) {
	return m.updateStatusFunc(ctx, id, status, cancelReason)
}

func validBookRequest() BookAppointmentRequest {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	return BookAppointmentRequest{
		PatientID:  "pat-1",
		ProviderID: "doc-1",
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		Type:       TypeConsultation,
		Reason:     "annual checkup",
	}
}

// TestBookAppointment_Success tests booking a free slot
func TestBookAppointment_Success(t *testing.T) {
	mockRepo := &mockRepository{
		createFunc: func(ctx context.Context, req BookAppointmentRequest) (*AppointmentResponse, error) {
			return &AppointmentResponse{
				ID:         "appt-1",
				PatientID:  req.PatientID,
				ProviderID: req.ProviderID,
				StartTime:  req.StartTime,
				EndTime:    req.EndTime,
				Status:     StatusScheduled,
				CreatedAt:  time.Now(),
			}, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher)

	a, err := service.BookAppointment(context.Background(), validBookRequest())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("Expected status 'scheduled', got '%s'", a.Status)
	}

	keys := publisher.RoutingKeys()
	if len(keys) != 1 || keys[0] != messaging.EventAppointmentBooked {
		t.Errorf("Expected appointment.booked event, got %v", keys)
	}
}

// TestBookAppointment_SlotTaken tests provider double-booking rejection
func TestBookAppointment_SlotTaken(t *testing.T) {
	mockRepo := &mockRepository{
		hasConflictFunc: func(ctx context.Context, providerID string, start, end time.Time, excludeID string) (bool, error) {
			return true, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher)

	_, err := service.BookAppointment(context.Background(), validBookRequest())
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("Expected ErrSlotTaken, got %v", err)
	}
	if len(publisher.Events) != 0 {
		t.Error("No event should be published for a rejected booking")
	}
}

// TestConflictCheck_ExcludeID tests that booking checks against every
// appointment while rescheduling excludes the one being moved
func TestConflictCheck_ExcludeID(t *testing.T) {
	var gotExcludeIDs []string
	mockRepo := &mockRepository{
		hasConflictFunc: func(ctx context.Context, providerID string, start, end time.Time, excludeID string) (bool, error) {
			gotExcludeIDs = append(gotExcludeIDs, excludeID)
			return false, nil
		},
		createFunc: func(ctx context.Context, req BookAppointmentRequest) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: "appt-1", ProviderID: req.ProviderID, Status: StatusScheduled}, nil
		},
		getFunc: func(ctx context.Context, id string) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, ProviderID: "doc-1", Status: StatusScheduled}, nil
		},
		rescheduleFunc: func(ctx context.Context, id string, start, end time.Time) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, ProviderID: "doc-1", Status: StatusScheduled, StartTime: start, EndTime: end}, nil
		},
	}
	service := NewService(mockRepo, testutil.NewMockPublisher())

	if _, err := service.BookAppointment(context.Background(), validBookRequest()); err != nil {
		t.Fatalf("Expected no error booking, got: %v", err)
	}

	start := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)
	_, err := service.RescheduleAppointment(context.Background(), "appt-1", RescheduleRequest{
		StartTime: start, EndTime: start.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Expected no error rescheduling, got: %v", err)
	}

	if len(gotExcludeIDs) != 2 || gotExcludeIDs[0] != "" || gotExcludeIDs[1] != "appt-1" {
		t.Errorf("Expected exclude ids [\"\" appt-1], got %v", gotExcludeIDs)
	}
}

// TestBookAppointment_EndBeforeStart tests slot validation
func TestBookAppointment_EndBeforeStart(t *testing.T) {
	service := NewService(&mockRepository{}, testutil.NewMockPublisher())

	req := validBookRequest()
	req.EndTime = req.StartTime.Add(-time.Hour)

	if _, err := service.BookAppointment(context.Background(), req); err == nil {
		t.Error("Expected error for end before start, got nil")
	}
}

// TestBookAppointment_UnknownType tests appointment type validation
func TestBookAppointment_UnknownType(t *testing.T) {
	service := NewService(&mockRepository{}, testutil.NewMockPublisher())

	req := validBookRequest()
	req.Type = "surgery"

	if _, err := service.BookAppointment(context.Background(), req); err == nil {
		t.Error("Expected error for unknown appointment type, got nil")
	}
}

// TestUpdateStatus_ValidTransition tests scheduled -> checked_in
func TestUpdateStatus_ValidTransition(t *testing.T) {
	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, id string) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, PatientID: "pat-1", ProviderID: "doc-1", Status: StatusScheduled}, nil
		},
		updateStatusFunc: func(ctx context.Context, id, status, cancelReason string) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, PatientID: "pat-1", ProviderID: "doc-1", Status: status}, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher)

	a, err := service.UpdateStatus(context.Background(), "appt-1", UpdateStatusRequest{Status: StatusCheckedIn})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if a.Status != StatusCheckedIn {
		t.Errorf("Expected status 'checked_in', got '%s'", a.Status)
	}
}

// TestUpdateStatus_InvalidTransition tests completed -> scheduled rejection
func TestUpdateStatus_InvalidTransition(t *testing.T) {
	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, id string) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, Status: StatusCompleted}, nil
		},
	}
	service := NewService(mockRepo, testutil.NewMockPublisher())

	_, err := service.UpdateStatus(context.Background(), "appt-1", UpdateStatusRequest{Status: StatusScheduled})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

// TestUpdateStatus_CancelRequiresReason tests cancellation reason requirement
func TestUpdateStatus_CancelRequiresReason(t *testing.T) {
	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, id string) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, Status: StatusScheduled}, nil
		},
	}
	service := NewService(mockRepo, testutil.NewMockPublisher())

	if _, err := service.UpdateStatus(context.Background(), "appt-1", UpdateStatusRequest{Status: StatusCancelled}); err == nil {
		t.Error("Expected error for cancellation without reason, got nil")
	}
}

// TestUpdateStatus_CancelPublishesCancelledEvent tests routing key selection
func TestUpdateStatus_CancelPublishesCancelledEvent(t *testing.T) {
	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, id string) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, Status: StatusScheduled}, nil
		},
		updateStatusFunc: func(ctx context.Context, id, status, cancelReason string) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, Status: status, CancelReason: cancelReason}, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher)

	_, err := service.UpdateStatus(context.Background(), "appt-1", UpdateStatusRequest{
		Status: StatusCancelled,
		Reason: "patient request",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	keys := publisher.RoutingKeys()
	if len(keys) != 1 || keys[0] != messaging.EventAppointmentCancelled {
		t.Errorf("Expected appointment.cancelled event, got %v", keys)
	}
}

// TestRescheduleAppointment_OnlyScheduled tests reschedule state gate
func TestRescheduleAppointment_OnlyScheduled(t *testing.T) {
	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, id string) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, Status: StatusCompleted}, nil
		},
	}
	service := NewService(mockRepo, testutil.NewMockPublisher())

	start := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	_, err := service.RescheduleAppointment(context.Background(), "appt-1", RescheduleRequest{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

// TestRescheduleAppointment_ExcludesSelfFromConflict tests conflict exclusion
func TestRescheduleAppointment_ExcludesSelfFromConflict(t *testing.T) {
	var gotExclude string
	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, id string) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, ProviderID: "doc-1", Status: StatusScheduled}, nil
		},
		hasConflictFunc: func(ctx context.Context, providerID string, start, end time.Time, excludeID string) (bool, error) {
			gotExclude = excludeID
			return false, nil
		},
		rescheduleFunc: func(ctx context.Context, id string, start, end time.Time) (*AppointmentResponse, error) {
			return &AppointmentResponse{ID: id, ProviderID: "doc-1", Status: StatusScheduled, StartTime: start, EndTime: end}, nil
		},
	}
	service := NewService(mockRepo, testutil.NewMockPublisher())

	start := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	_, err := service.RescheduleAppointment(context.Background(), "appt-1", RescheduleRequest{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if gotExclude != "appt-1" {
		t.Errorf("Expected conflict check to exclude 'appt-1', got '%s'", gotExclude)
	}
}

// TestCanTransition covers the full lifecycle table
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusScheduled, StatusCheckedIn, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusCheckedIn, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusCompleted, StatusScheduled, false},
		{StatusCancelled, StatusCheckedIn, false},
		{StatusNoShow, StatusScheduled, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
