package admission

import "context"

// RepositoryInterface defines the contract for admission data access
type RepositoryInterface interface {
	CreateAdmission(ctx context.Context, req CreateAdmissionRequest) (*AdmissionResponse, error)
	GetAdmission(ctx context.Context, id string) (*AdmissionResponse, error)
	ListAdmissions(ctx context.Context, filter ListFilter, limit, offset int) ([]AdmissionResponse, int, error)
	Discharge(ctx context.Context, id, summary string) (*AdmissionResponse, error)

	CreateMAREntry(ctx context.Context, admissionID string, req ScheduleMAREntryRequest) (*MAREntryResponse, error)
	GetMAREntry(ctx context.Context, id string) (*MAREntryResponse, error)
	ListMAREntries(ctx context.Context, admissionID string) ([]MAREntryResponse, error)
	RecordAdministration(ctx context.Context, id, status, reason, recordedBy string) (*MAREntryResponse, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
