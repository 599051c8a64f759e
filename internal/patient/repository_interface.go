package patient

import "context"

// RepositoryInterface defines the contract for patient data access
type RepositoryInterface interface {
	CreatePatient(ctx context.Context, req CreatePatientRequest) (*PatientResponse, error)
	GetPatient(ctx context.Context, id string) (*PatientResponse, error)
	ListPatients(ctx context.Context, limit, offset int, search string, activeOnly bool) ([]PatientResponse, int, error)
	UpdatePatient(ctx context.Context, id string, req UpdatePatientRequest) (*PatientResponse, error)
	DeactivatePatient(ctx context.Context, id string) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
