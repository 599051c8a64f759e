package billing

import (
	"context"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

// ServiceInterface defines the contract for billing business logic
type ServiceInterface interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedInvoiceListResponse, error)
	AddLineItem(ctx context.Context, invoiceID string, req AddLineItemRequest) (*InvoiceResponse, error)
	RemoveLineItem(ctx context.Context, invoiceID, itemID string) (*InvoiceResponse, error)
	IssueInvoice(ctx context.Context, id string) (*InvoiceResponse, error)
	RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*InvoiceResponse, error)
	VoidInvoice(ctx context.Context, id string, req VoidInvoiceRequest) (*InvoiceResponse, error)
}
