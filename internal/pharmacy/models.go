package pharmacy

import "time"

// Prescription statuses
const (
	StatusPending   = "pending"
	StatusFilled    = "filled"
	StatusDispensed = "dispensed"
	StatusCancelled = "cancelled"
)

// validTransitions defines the allowed prescription lifecycle. The
// filled -> dispensed step goes through Dispense so stock is deducted
// in the same transaction.
var validTransitions = map[string][]string{
	StatusPending: {StatusFilled, StatusCancelled},
	StatusFilled:  {StatusCancelled},
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

// CreateMedicationRequest adds a medication to the catalog
type CreateMedicationRequest struct {
	Code             string `json:"code" validate:"required"`
	Name             string `json:"name" validate:"required"`
	Form             string `json:"form,omitempty"`
	Strength         string `json:"strength,omitempty"`
	UnitPriceCents   int64  `json:"unit_price_cents"`
	StockQuantity    int    `json:"stock_quantity"`
	ReorderThreshold int    `json:"reorder_threshold"`
}

// UpdateMedicationRequest updates catalog fields. Stock changes go
// through Restock and Dispense, not here.
type UpdateMedicationRequest struct {
	Name             *string `json:"name,omitempty"`
	Form             *string `json:"form,omitempty"`
	Strength         *string `json:"strength,omitempty"`
	UnitPriceCents   *int64  `json:"unit_price_cents,omitempty"`
	ReorderThreshold *int    `json:"reorder_threshold,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

// RestockRequest adds received stock to a medication
type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// MedicationResponse represents medication data returned to clients
type MedicationResponse struct {
	ID               string     `json:"id"`
	Code             string     `json:"code"`
	Name             string     `json:"name"`
	Form             string     `json:"form,omitempty"`
	Strength         string     `json:"strength,omitempty"`
	UnitPriceCents   int64      `json:"unit_price_cents"`
	StockQuantity    int        `json:"stock_quantity"`
	ReorderThreshold int        `json:"reorder_threshold"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// CreatePrescriptionRequest represents the request to write a prescription
type CreatePrescriptionRequest struct {
	PatientID    string `json:"patient_id" validate:"required"`
	MedicationID string `json:"medication_id" validate:"required"`
	Dosage       string `json:"dosage" validate:"required"`
	Frequency    string `json:"frequency" validate:"required"`
	Duration     string `json:"duration,omitempty"`
	Quantity     int    `json:"quantity" validate:"required"`
	Refills      int    `json:"refills"`
	Notes        string `json:"notes,omitempty"`
}

// UpdateStatusRequest changes the prescription status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason,omitempty"` // required when cancelling
}

// PrescriptionResponse represents prescription data returned to clients
type PrescriptionResponse struct {
	ID           string     `json:"id"`
	PatientID    string     `json:"patient_id"`
	PrescriberID string     `json:"prescriber_id"`
	MedicationID string     `json:"medication_id"`
	Dosage       string     `json:"dosage"`
	Frequency    string     `json:"frequency"`
	Duration     string     `json:"duration,omitempty"`
	Quantity     int        `json:"quantity"`
	Refills      int        `json:"refills"`
	Notes        string     `json:"notes,omitempty"`
	Status       string     `json:"status"`
	DispensedBy  string     `json:"dispensed_by,omitempty"`
	DispensedAt  *time.Time `json:"dispensed_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// MedicationListFilter narrows medication listings.
type MedicationListFilter struct {
	Search string
	// LowStockOnly restricts to medications at or below their reorder
	// threshold.
	LowStockOnly bool
	ActiveOnly   bool
}

// PrescriptionListFilter narrows prescription listings.
type PrescriptionListFilter struct {
	PatientID    string
	MedicationID string
	Status       string
}
