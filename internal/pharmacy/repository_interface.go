package pharmacy

import "context"

// RepositoryInterface defines the contract for pharmacy data access
type RepositoryInterface interface {
	CreateMedication(ctx context.Context, req CreateMedicationRequest) (*MedicationResponse, error)
	GetMedication(ctx context.Context, id string) (*MedicationResponse, error)
	ListMedications(ctx context.Context, filter MedicationListFilter, limit, offset int) ([]MedicationResponse, int, error)
	UpdateMedication(ctx context.Context, id string, req UpdateMedicationRequest) (*MedicationResponse, error)
	Restock(ctx context.Context, id string, quantity int) (*MedicationResponse, error)

	CreatePrescription(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error)
	GetPrescription(ctx context.Context, id string) (*PrescriptionResponse, error)
	ListPrescriptions(ctx context.Context, filter PrescriptionListFilter, limit, offset int) ([]PrescriptionResponse, int, error)
	UpdatePrescriptionStatus(ctx context.Context, id, status, cancelReason string) (*PrescriptionResponse, error)
	Dispense(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, *MedicationResponse, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
