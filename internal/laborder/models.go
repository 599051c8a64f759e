package laborder

import "time"

// Lab order statuses
const (
	StatusOrdered           = "ordered"
	StatusSpecimenCollected = "specimen_collected"
	StatusInProgress        = "in_progress"
	StatusResulted          = "resulted"
	StatusVerified          = "verified"
	StatusCancelled         = "cancelled"
)

// Priorities
const (
	PriorityRoutine = "routine"
	PriorityUrgent  = "urgent"
	PriorityStat    = "stat"
)

// validTransitions defines the allowed status lifecycle. Entering
// results and verifying go through EnterResults/VerifyOrder, not
// UpdateStatus, so resulted and verified are not listed as manual
// targets here.
var validTransitions = map[string][]string{
	StatusOrdered:           {StatusSpecimenCollected, StatusCancelled},
	StatusSpecimenCollected: {StatusInProgress, StatusCancelled},
	StatusInProgress:        {StatusCancelled},
}

// CanTransition reports whether a manual status change is allowed.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateLabOrderRequest represents the request to place a new lab order
type CreateLabOrderRequest struct {
	PatientID     string `json:"patient_id" validate:"required"`
	AppointmentID string `json:"appointment_id,omitempty"`
	PanelCode     string `json:"panel_code" validate:"required"`
	PanelName     string `json:"panel_name" validate:"required"`
	Priority      string `json:"priority,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// TestResultEntry is a single analyte result within a panel.
type TestResultEntry struct {
	TestCode       string `json:"test_code" validate:"required"`
	TestName       string `json:"test_name" validate:"required"`
	Value          string `json:"value" validate:"required"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	Abnormal       bool   `json:"abnormal"`
}

// EnterResultsRequest carries the full result set for an order.
type EnterResultsRequest struct {
	Results []TestResultEntry `json:"results" validate:"required"`
}

// UpdateStatusRequest changes the order status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason,omitempty"` // required when cancelling
}

// TestResultResponse represents a stored analyte result
type TestResultResponse struct {
	ID             string `json:"id"`
	TestCode       string `json:"test_code"`
	TestName       string `json:"test_name"`
	Value          string `json:"value"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	Abnormal       bool   `json:"abnormal"`
}

// LabOrderResponse represents lab order data returned to clients
type LabOrderResponse struct {
	ID            string               `json:"id"`
	PatientID     string               `json:"patient_id"`
	AppointmentID string               `json:"appointment_id,omitempty"`
	PanelCode     string               `json:"panel_code"`
	PanelName     string               `json:"panel_name"`
	Priority      string               `json:"priority"`
	Status        string               `json:"status"`
	Notes         string               `json:"notes,omitempty"`
	OrderedBy     string               `json:"ordered_by"`
	CollectedAt   *time.Time           `json:"collected_at,omitempty"`
	ResultedBy    string               `json:"resulted_by,omitempty"`
	ResultedAt    *time.Time           `json:"resulted_at,omitempty"`
	VerifiedBy    string               `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time           `json:"verified_at,omitempty"`
	CancelReason  string               `json:"cancel_reason,omitempty"`
	Results       []TestResultResponse `json:"results,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     *time.Time           `json:"updated_at,omitempty"`
}

// ListFilter narrows lab order listings.
type ListFilter struct {
	PatientID string
	Status    string
	Priority  string
}
