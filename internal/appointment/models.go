package appointment

import "time"

// Appointment statuses
const (
	StatusScheduled  = "scheduled"
	StatusCheckedIn  = "checked_in"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

// Appointment types
const (
	TypeConsultation = "consultation"
	TypeFollowUp     = "follow_up"
	TypeProcedure    = "procedure"
	TypeLabDraw      = "lab_draw"
)

// validTransitions defines the allowed status lifecycle.
var validTransitions = map[string][]string{
	StatusScheduled:  {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reports whether an appointment may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BookAppointmentRequest represents the request to book a new appointment
type BookAppointmentRequest struct {
	PatientID  string    `json:"patient_id" validate:"required"`
	ProviderID string    `json:"provider_id" validate:"required"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required"`
	Type       string    `json:"type"`
	Reason     string    `json:"reason"`
}

// RescheduleRequest moves an appointment to a new slot
type RescheduleRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// UpdateStatusRequest changes the appointment status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason,omitempty"` // required when cancelling
}

// AppointmentResponse represents appointment data returned to clients
type AppointmentResponse struct {
	ID           string     `json:"id"`
	PatientID    string     `json:"patient_id"`
	ProviderID   string     `json:"provider_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	Type         string     `json:"type"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// ListFilter narrows appointment listings.
type ListFilter struct {
	PatientID  string
	ProviderID string
	Status     string
	// Day restricts results to appointments starting within the given
	// calendar day (UTC) when non-zero.
	Day time.Time
}
