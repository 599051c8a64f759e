package laborder

import "context"

// RepositoryInterface defines the contract for lab order data access
type RepositoryInterface interface {
	CreateOrder(ctx context.Context, orderedBy string, req CreateLabOrderRequest) (*LabOrderResponse, error)
	GetOrder(ctx context.Context, id string) (*LabOrderResponse, error)
	ListOrders(ctx context.Context, filter ListFilter, limit, offset int) ([]LabOrderResponse, int, error)
	UpdateStatus(ctx context.Context, id, status, cancelReason string) (*LabOrderResponse, error)
	EnterResults(ctx context.Context, id, enteredBy string, results []TestResultEntry) (*LabOrderResponse, error)
	VerifyOrder(ctx context.Context, id, verifiedBy string) (*LabOrderResponse, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
