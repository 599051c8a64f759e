package staff

import (
	"context"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/auth"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

// ServiceInterface defines the contract for staff business logic
type ServiceInterface interface {
	CreateStaff(ctx context.Context, req CreateStaffRequest) (*StaffResponse, error)
	GetStaff(ctx context.Context, id string) (*StaffResponse, error)
	ListStaff(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedStaffListResponse, error)
	UpdateStaff(ctx context.Context, id string, req UpdateStaffRequest) (*StaffResponse, error)
	DeactivateStaff(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id string, req ResetPasswordRequest) error

	CreateShift(ctx context.Context, req CreateShiftRequest) (*ShiftResponse, error)
	ListShifts(ctx context.Context, filter ShiftListFilter, params pagination.Params) (*PaginatedShiftListResponse, error)
	DeleteShift(ctx context.Context, id string) error
}

// KeycloakClient is the subset of the Keycloak admin API the staff
// service uses for account provisioning.
type KeycloakClient interface {
	CreateUser(user auth.KeycloakUser) (string, error)
	SetPassword(userID string, password string, temporary bool) error
	GetRole(roleName string) (*auth.KeycloakRole, error)
	AssignRole(userID string, role auth.KeycloakRole) error
	SetEnabled(userID string, enabled bool) error
	DeleteUser(userID string) error
}
