package laborder

import (
	"context"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

// ServiceInterface defines the contract for lab order business logic
type ServiceInterface interface {
	CreateOrder(ctx context.Context, orderedBy string, req CreateLabOrderRequest) (*LabOrderResponse, error)
	GetOrder(ctx context.Context, id string) (*LabOrderResponse, error)
	ListOrders(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedLabOrderListResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*LabOrderResponse, error)
	EnterResults(ctx context.Context, id, enteredBy string, req EnterResultsRequest) (*LabOrderResponse, error)
	VerifyOrder(ctx context.Context, id, verifiedBy string) (*LabOrderResponse, error)
}
