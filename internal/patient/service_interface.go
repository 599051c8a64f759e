package patient

import (
	"context"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

// ServiceInterface defines the contract for patient business logic operations
type ServiceInterface interface {
	RegisterPatient(ctx context.Context, req CreatePatientRequest) (*PatientResponse, error)
	GetPatient(ctx context.Context, id string) (*PatientResponse, error)
	ListPatients(ctx context.Context, params pagination.Params, search string, activeOnly bool) (*PaginatedPatientListResponse, error)
	UpdatePatient(ctx context.Context, id string, req UpdatePatientRequest) (*PatientResponse, error)
	DeactivatePatient(ctx context.Context, id string) error
}
