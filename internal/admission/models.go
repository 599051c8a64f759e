package admission

import "time"

// Admission statuses
const (
	StatusAdmitted   = "admitted"
	StatusDischarged = "discharged"
)

// MAR entry statuses. An entry starts scheduled and is resolved
// exactly once.
const (
	MARScheduled = "scheduled"
	MARGiven     = "given"
	MARHeld      = "held"
	MARRefused   = "refused"
)

// CreateAdmissionRequest admits a patient to a ward
type CreateAdmissionRequest struct {
	PatientID           string `json:"patient_id" validate:"required"`
	AdmittingProviderID string `json:"admitting_provider_id" validate:"required"`
	Ward                string `json:"ward" validate:"required"`
	Bed                 string `json:"bed" validate:"required"`
	Reason              string `json:"reason,omitempty"`
}

// DischargeRequest closes an admission
type DischargeRequest struct {
	Summary string `json:"summary" validate:"required"`
}

// ScheduleMAREntryRequest plans a medication administration
type ScheduleMAREntryRequest struct {
	MedicationID  string    `json:"medication_id" validate:"required"`
	Dose          string    `json:"dose" validate:"required"`
	Route         string    `json:"route" validate:"required"`
	ScheduledTime time.Time `json:"scheduled_time" validate:"required"`
}

// RecordAdministrationRequest resolves a scheduled MAR entry. Reason
// is required when the outcome is held or refused.
type RecordAdministrationRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

// MAREntryResponse represents a medication administration record entry
type MAREntryResponse struct {
	ID            string     `json:"id"`
	AdmissionID   string     `json:"admission_id"`
	MedicationID  string     `json:"medication_id"`
	Dose          string     `json:"dose"`
	Route         string     `json:"route"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason,omitempty"`
	RecordedBy    string     `json:"recorded_by,omitempty"`
	RecordedAt    *time.Time `json:"recorded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AdmissionResponse represents admission data returned to clients
type AdmissionResponse struct {
	ID                  string             `json:"id"`
	PatientID           string             `json:"patient_id"`
	AdmittingProviderID string             `json:"admitting_provider_id"`
	Ward                string             `json:"ward"`
	Bed                 string             `json:"bed"`
	Reason              string             `json:"reason,omitempty"`
	Status              string             `json:"status"`
	DischargeSummary    string             `json:"discharge_summary,omitempty"`
	AdmittedAt          time.Time          `json:"admitted_at"`
	DischargedAt        *time.Time         `json:"discharged_at,omitempty"`
	MAREntries          []MAREntryResponse `json:"mar_entries,omitempty"`
	UpdatedAt           *time.Time         `json:"updated_at,omitempty"`
}

// ListFilter narrows admission listings.
type ListFilter struct {
	PatientID string
	Ward      string
	Status    string
}
