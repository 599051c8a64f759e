package report

import "context"

// ServiceInterface defines the contract for report generation
type ServiceInterface interface {
	Revenue(ctx context.Context, r DateRange) (*RevenueReport, error)
	AppointmentVolume(ctx context.Context, r DateRange) (*AppointmentVolumeReport, error)
	LabTurnaround(ctx context.Context, r DateRange) (*LabTurnaroundReport, error)
	Dispenses(ctx context.Context, r DateRange) (*DispenseReport, error)
	LowStock(ctx context.Context) (*LowStockReport, error)
}
