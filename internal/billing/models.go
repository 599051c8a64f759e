package billing

import "time"

// Invoice statuses
const (
	StatusDraft         = "draft"
	StatusIssued        = "issued"
	StatusPartiallyPaid = "partially_paid"
	StatusPaid          = "paid"
	StatusVoid          = "void"
)

// Payment methods
const (
	MethodCash      = "cash"
	MethodCard      = "card"
	MethodInsurance = "insurance"
	MethodTransfer  = "bank_transfer"
)

// CreateInvoiceRequest opens a draft invoice for a patient. TaxBps is
// the tax rate in basis points, e.g. 900 for 9%.
type CreateInvoiceRequest struct {
	PatientID string `json:"patient_id" validate:"required"`
	TaxBps    int    `json:"tax_bps"`
	Notes     string `json:"notes,omitempty"`
}

// AddLineItemRequest adds a charge to a draft invoice. ServiceCode is
// the billing code for the charge, e.g. a CPT code.
type AddLineItemRequest struct {
	Description    string `json:"description" validate:"required"`
	ServiceCode    string `json:"service_code,omitempty"`
	Quantity       int    `json:"quantity" validate:"required"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"required"`
}

// RecordPaymentRequest records a payment against an issued invoice
type RecordPaymentRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required"`
	Method      string `json:"method" validate:"required"`
	Reference   string `json:"reference,omitempty"`
}

// VoidInvoiceRequest voids an invoice with a reason
type VoidInvoiceRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// LineItemResponse represents a stored invoice line
type LineItemResponse struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	ServiceCode    string `json:"service_code,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	AmountCents    int64  `json:"amount_cents"`
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}

// InvoiceResponse represents invoice data returned to clients. All
// money amounts are integer cents, totals are computed server-side.
type InvoiceResponse struct {
	ID              string             `json:"id"`
	InvoiceNumber   string             `json:"invoice_number"`
	PatientID       string             `json:"patient_id"`
	Status          string             `json:"status"`
	TaxBps          int                `json:"tax_bps"`
	SubtotalCents   int64              `json:"subtotal_cents"`
	TaxCents        int64              `json:"tax_cents"`
	TotalCents      int64              `json:"total_cents"`
	AmountPaidCents int64              `json:"amount_paid_cents"`
	Notes           string             `json:"notes,omitempty"`
	VoidReason      string             `json:"void_reason,omitempty"`
	IssuedAt        *time.Time         `json:"issued_at,omitempty"`
	PaidAt          *time.Time         `json:"paid_at,omitempty"`
	LineItems       []LineItemResponse `json:"line_items,omitempty"`
	Payments        []PaymentResponse  `json:"payments,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       *time.Time         `json:"updated_at,omitempty"`
}

// BalanceCents is the outstanding amount on the invoice.
func (i *InvoiceResponse) BalanceCents() int64 {
	return i.TotalCents - i.AmountPaidCents
}

// ComputeTax returns the tax in cents for a subtotal at the given
// basis-point rate, truncating fractional cents.
func ComputeTax(subtotalCents int64, taxBps int) int64 {
	return subtotalCents * int64(taxBps) / 10000
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	PatientID string
	Status    string
}
