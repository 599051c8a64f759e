package admission

import (
	"context"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

// ServiceInterface defines the contract for admission business logic
type ServiceInterface interface {
	CreateAdmission(ctx context.Context, req CreateAdmissionRequest) (*AdmissionResponse, error)
	GetAdmission(ctx context.Context, id string) (*AdmissionResponse, error)
	ListAdmissions(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedAdmissionListResponse, error)
	Discharge(ctx context.Context, id string, req DischargeRequest) (*AdmissionResponse, error)

	ScheduleMAREntry(ctx context.Context, admissionID string, req ScheduleMAREntryRequest) (*MAREntryResponse, error)
	ListMAREntries(ctx context.Context, admissionID string) ([]MAREntryResponse, error)
	RecordAdministration(ctx context.Context, entryID, recordedBy string, req RecordAdministrationRequest) (*MAREntryResponse, error)
}
