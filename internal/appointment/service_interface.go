package appointment

import (
	"context"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

// ServiceInterface defines the contract for appointment business logic
type ServiceInterface interface {
	BookAppointment(ctx context.Context, req BookAppointmentRequest) (*AppointmentResponse, error)
	GetAppointment(ctx context.Context, id string) (*AppointmentResponse, error)
	ListAppointments(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedAppointmentListResponse, error)
	RescheduleAppointment(ctx context.Context, id string, req RescheduleRequest) (*AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*AppointmentResponse, error)
}
