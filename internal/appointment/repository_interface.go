package appointment

import (
	"context"
	"time"
)

// RepositoryInterface defines the contract for appointment data access
type RepositoryInterface interface {
	CreateAppointment(ctx context.Context, req BookAppointmentRequest) (*AppointmentResponse, error)
	GetAppointment(ctx context.Context, id string) (*AppointmentResponse, error)
	HasConflict(ctx context.Context, providerID string, start, end time.Time, excludeID string) (bool, error)
	ListAppointments(ctx context.Context, filter ListFilter, limit, offset int) ([]AppointmentResponse, int, error)
	Reschedule(ctx context.Context, id string, start, end time.Time) (*AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id, status, cancelReason string) (*AppointmentResponse, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
