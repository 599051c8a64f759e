package report

import (
	"context"
	"time"
)

// RepositoryInterface defines the contract for report aggregation queries
type RepositoryInterface interface {
	RevenueByDay(ctx context.Context, from, toExclusive time.Time) ([]RevenueDay, error)
	AppointmentCountsByStatus(ctx context.Context, from, toExclusive time.Time) ([]StatusCount, error)
	AppointmentCountsByProvider(ctx context.Context, from, toExclusive time.Time) ([]ProviderCount, error)
	LabTurnaround(ctx context.Context, from, toExclusive time.Time) (int, float64, error)
	DispenseCounts(ctx context.Context, from, toExclusive time.Time) ([]MedicationDispenseCount, error)
	LowStockMedications(ctx context.Context) ([]LowStockMedication, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
