package messaging

import (
	"fmt"
	"time"
)

// Event routing keys as constants
const (
	// Patient events
	EventPatientRegistered  = "patient.registered"
	EventPatientUpdated     = "patient.updated"
	EventPatientDeactivated = "patient.deactivated"

	// Appointment events
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentCancelled     = "appointment.cancelled"
	EventAppointmentStatusChanged = "appointment.status_changed"

	// Lab events
	EventLabOrdered  = "lab.ordered"
	EventLabResulted = "lab.resulted"
	EventLabVerified = "lab.verified"

	// Pharmacy events
	EventPrescriptionCreated   = "prescription.created"
	EventPrescriptionDispensed = "prescription.dispensed"
	EventStockLow              = "pharmacy.stock_low"

	// Billing events
	EventInvoiceIssued = "invoice.issued"
	EventInvoicePaid   = "invoice.paid"

	// Admission events
	EventAdmissionCreated    = "admission.created"
	EventAdmissionDischarged = "admission.discharged"
	EventMARRecorded         = "mar.recorded"

	// Staff events
	EventStaffCreated     = "staff.created"
	EventStaffDeactivated = "staff.deactivated"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// PatientRegisteredEvent is published when a new patient is registered.
type PatientRegisteredEvent struct {
	BaseEvent
	Data PatientRegisteredData `json:"data"`
}

type PatientRegisteredData struct {
	PatientID string    `json:"patient_id"`
	MRN       string    `json:"mrn"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// PatientStatusEvent covers patient.updated and patient.deactivated.
type PatientStatusEvent struct {
	BaseEvent
	Data PatientStatusData `json:"data"`
}

type PatientStatusData struct {
	PatientID string    `json:"patient_id"`
	MRN       string    `json:"mrn"`
	ChangedAt time.Time `json:"changed_at"`
}

// AppointmentEvent covers booking, cancellation and status changes.
type AppointmentEvent struct {
	BaseEvent
	Data AppointmentData `json:"data"`
}

type AppointmentData struct {
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	ProviderID    string    `json:"provider_id"`
	StartTime     time.Time `json:"start_time"`
	OldStatus     string    `json:"old_status,omitempty"`
	NewStatus     string    `json:"new_status"`
	ChangedAt     time.Time `json:"changed_at"`
}

// LabOrderEvent covers lab order lifecycle changes.
type LabOrderEvent struct {
	BaseEvent
	Data LabOrderData `json:"data"`
}

type LabOrderData struct {
	OrderID   string    `json:"order_id"`
	PatientID string    `json:"patient_id"`
	PanelCode string    `json:"panel_code"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

// PrescriptionEvent covers prescription creation and dispensing.
type PrescriptionEvent struct {
	BaseEvent
	Data PrescriptionData `json:"data"`
}

type PrescriptionData struct {
	PrescriptionID string    `json:"prescription_id"`
	PatientID      string    `json:"patient_id"`
	MedicationID   string    `json:"medication_id"`
	Quantity       int       `json:"quantity"`
	Status         string    `json:"status"`
	ChangedAt      time.Time `json:"changed_at"`
}

// StockLowEvent is published after a dispense drops a medication at or
// below its reorder threshold.
type StockLowEvent struct {
	BaseEvent
	Data StockLowData `json:"data"`
}

type StockLowData struct {
	MedicationID     string `json:"medication_id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	StockQuantity    int    `json:"stock_quantity"`
	ReorderThreshold int    `json:"reorder_threshold"`
}

// InvoiceEvent covers invoice.issued and invoice.paid.
type InvoiceEvent struct {
	BaseEvent
	Data InvoiceData `json:"data"`
}

type InvoiceData struct {
	InvoiceID  string    `json:"invoice_id"`
	PatientID  string    `json:"patient_id"`
	TotalCents int64     `json:"total_cents"`
	Status     string    `json:"status"`
	ChangedAt  time.Time `json:"changed_at"`
}

// AdmissionEvent covers admission.created and admission.discharged.
type AdmissionEvent struct {
	BaseEvent
	Data AdmissionData `json:"data"`
}

type AdmissionData struct {
	AdmissionID string    `json:"admission_id"`
	PatientID   string    `json:"patient_id"`
	Ward        string    `json:"ward"`
	Bed         string    `json:"bed"`
	Status      string    `json:"status"`
	ChangedAt   time.Time `json:"changed_at"`
}

// MAREvent is published when a medication administration is recorded.
type MAREvent struct {
	BaseEvent
	Data MARData `json:"data"`
}

type MARData struct {
	EntryID      string    `json:"entry_id"`
	AdmissionID  string    `json:"admission_id"`
	MedicationID string    `json:"medication_id"`
	Status       string    `json:"status"`
	RecordedBy   string    `json:"recorded_by"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// StaffEvent covers staff.created and staff.deactivated.
type StaffEvent struct {
	BaseEvent
	Data StaffData `json:"data"`
}

type StaffData struct {
	StaffID        string    `json:"staff_id"`
	KeycloakUserID string    `json:"keycloak_user_id"`
	Role           string    `json:"role"`
	ChangedAt      time.Time `json:"changed_at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     fmt.Sprintf("%d", time.Now().UnixNano()),
		Timestamp:   time.Now().UTC(),
		ServiceName: "front-office-service",
	}
}
