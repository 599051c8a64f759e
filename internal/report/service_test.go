package report

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockRepository struct {
	revenueByDayFunc        func(ctx context.Context, from, toExclusive time.Time) ([]RevenueDay, error)
	countsByStatusFunc      func(ctx context.Context, from, toExclusive time.Time) ([]StatusCount, error)
	countsByProviderFunc    func(ctx context.Context, from, toExclusive time.Time) ([]ProviderCount, error)
	labTurnaroundFunc       func(ctx context.Context, from, toExclusive time.Time) (int, float64, error)
	dispenseCountsFunc      func(ctx context.Context, from, toExclusive time.Time) ([]MedicationDispenseCount, error)
	lowStockMedicationsFunc func(ctx context.Context) ([]LowStockMedication, error)
}

func (m *mockRepository) RevenueByDay(ctx context.Context, from, toExclusive time.Time) ([]RevenueDay, error) {
	return m.revenueByDayFunc(ctx, from, toExclusive)
}

func (m *mockRepository) AppointmentCountsByStatus(ctx context.Context, from, toExclusive time.Time) ([]StatusCount, error) {
	return m.countsByStatusFunc(ctx, from, toExclusive)
}

func (m *mockRepository) AppointmentCountsByProvider(ctx context.Context, from, toExclusive time.Time) ([]ProviderCount, error) {
	return m.countsByProviderFunc(ctx, from, toExclusive)
}

func (m *mockRepository) LabTurnaround(ctx context.Context, from, toExclusive time.Time) (int, float64, error) {
	return m.labTurnaroundFunc(ctx, from, toExclusive)
}

func (m *mockRepository) DispenseCounts(ctx context.Context, from, toExclusive time.Time) ([]MedicationDispenseCount, error) {
	return m.dispenseCountsFunc(ctx, from, toExclusive)
}

func (m *mockRepository) LowStockMedications(ctx context.Context) ([]LowStockMedication, error) {
	return m.lowStockMedicationsFunc(ctx)
}

func TestRevenue_SumsDays(t *testing.T) {
	var gotFrom, gotTo time.Time
	repo := &mockRepository{
		revenueByDayFunc: func(ctx context.Context, from, toExclusive time.Time) ([]RevenueDay, error) {
			gotFrom, gotTo = from, toExclusive
			return []RevenueDay{
				{Day: "2025-06-01", IssuedCents: 10000, CollectedCents: 5000},
				{Day: "2025-06-02", IssuedCents: 2500, CollectedCents: 7500},
			}, nil
		},
	}
	service := NewService(repo)

	report, err := service.Revenue(context.Background(), DateRange{
		From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalIssuedCents != 12500 {
		t.Errorf("expected total issued 12500, got %d", report.TotalIssuedCents)
	}
	if report.TotalCollectedCents != 12500 {
		t.Errorf("expected total collected 12500, got %d", report.TotalCollectedCents)
	}

	// The query window must cover the whole of the final day.
	wantTo := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	if !gotFrom.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) || !gotTo.Equal(wantTo) {
		t.Errorf("unexpected window [%v, %v)", gotFrom, gotTo)
	}
}

func TestRevenue_InvertedRange(t *testing.T) {
	service := NewService(&mockRepository{})

	_, err := service.Revenue(context.Background(), DateRange{
		From: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestRevenue_MissingRange(t *testing.T) {
	service := NewService(&mockRepository{})

	if _, err := service.Revenue(context.Background(), DateRange{}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestRevenue_RangeTooWide(t *testing.T) {
	service := NewService(&mockRepository{})

	_, err := service.Revenue(context.Background(), DateRange{
		From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestAppointmentVolume_TotalsStatuses(t *testing.T) {
	repo := &mockRepository{
		countsByStatusFunc: func(ctx context.Context, from, toExclusive time.Time) ([]StatusCount, error) {
			return []StatusCount{
				{Status: "completed", Count: 8},
				{Status: "no_show", Count: 2},
			}, nil
		},
		countsByProviderFunc: func(ctx context.Context, from, toExclusive time.Time) ([]ProviderCount, error) {
			return []ProviderCount{{ProviderID: "staff-1", Count: 10}}, nil
		},
	}
	service := NewService(repo)

	report, err := service.AppointmentVolume(context.Background(), DateRange{
		From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Total != 10 {
		t.Errorf("expected total 10, got %d", report.Total)
	}
	if len(report.ByProvider) != 1 || report.ByProvider[0].ProviderID != "staff-1" {
		t.Errorf("unexpected provider counts %+v", report.ByProvider)
	}
}

func TestLabTurnaround_ConvertsToMinutes(t *testing.T) {
	repo := &mockRepository{
		labTurnaroundFunc: func(ctx context.Context, from, toExclusive time.Time) (int, float64, error) {
			return 4, 5400, nil // 90 minutes in seconds
		},
	}
	service := NewService(repo)

	report, err := service.LabTurnaround(context.Background(), DateRange{
		From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.VerifiedCount != 4 {
		t.Errorf("expected 4 verified orders, got %d", report.VerifiedCount)
	}
	if report.AvgTurnaroundMinutes != 90 {
		t.Errorf("expected 90 minutes, got %v", report.AvgTurnaroundMinutes)
	}
}

func TestLowStock_PassesThrough(t *testing.T) {
	repo := &mockRepository{
		lowStockMedicationsFunc: func(ctx context.Context) ([]LowStockMedication, error) {
			return []LowStockMedication{
				{MedicationID: "med-1", Code: "AMOX500", StockQuantity: 3, ReorderThreshold: 10},
			}, nil
		},
	}
	service := NewService(repo)

	report, err := service.LowStock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Medications) != 1 || report.Medications[0].Code != "AMOX500" {
		t.Errorf("unexpected report %+v", report)
	}
}
