package staff

import (
	"context"
	"time"
)

// RepositoryInterface defines the contract for staff data access
type RepositoryInterface interface {
	CreateStaff(ctx context.Context, keycloakUserID string, req CreateStaffRequest) (*StaffResponse, error)
	GetStaff(ctx context.Context, id string) (*StaffResponse, error)
	ListStaff(ctx context.Context, filter ListFilter, limit, offset int) ([]StaffResponse, int, error)
	UpdateStaff(ctx context.Context, id string, req UpdateStaffRequest) (*StaffResponse, error)
	DeactivateStaff(ctx context.Context, id string) error

	HasShiftConflict(ctx context.Context, staffID string, start, end time.Time) (bool, error)
	CreateShift(ctx context.Context, req CreateShiftRequest) (*ShiftResponse, error)
	ListShifts(ctx context.Context, filter ShiftListFilter, limit, offset int) ([]ShiftResponse, int, error)
	DeleteShift(ctx context.Context, id string) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
