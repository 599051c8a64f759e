package pharmacy

import (
	"context"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

// ServiceInterface defines the contract for pharmacy business logic
type ServiceInterface interface {
	CreateMedication(ctx context.Context, req CreateMedicationRequest) (*MedicationResponse, error)
	GetMedication(ctx context.Context, id string) (*MedicationResponse, error)
	ListMedications(ctx context.Context, filter MedicationListFilter, params pagination.Params) (*PaginatedMedicationListResponse, error)
	UpdateMedication(ctx context.Context, id string, req UpdateMedicationRequest) (*MedicationResponse, error)
	Restock(ctx context.Context, id string, req RestockRequest) (*MedicationResponse, error)

	CreatePrescription(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error)
	GetPrescription(ctx context.Context, id string) (*PrescriptionResponse, error)
	ListPrescriptions(ctx context.Context, filter PrescriptionListFilter, params pagination.Params) (*PaginatedPrescriptionListResponse, error)
	UpdatePrescriptionStatus(ctx context.Context, id string, req UpdateStatusRequest) (*PrescriptionResponse, error)
	Dispense(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, error)
}
