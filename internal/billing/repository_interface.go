package billing

import "context"

// RepositoryInterface defines the contract for billing data access
type RepositoryInterface interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter ListFilter, limit, offset int) ([]InvoiceResponse, int, error)
	AddLineItem(ctx context.Context, invoiceID string, req AddLineItemRequest) (*InvoiceResponse, error)
	RemoveLineItem(ctx context.Context, invoiceID, itemID string) (*InvoiceResponse, error)
	IssueInvoice(ctx context.Context, id string) (*InvoiceResponse, error)
	RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*InvoiceResponse, error)
	VoidInvoice(ctx context.Context, id, reason string) (*InvoiceResponse, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
