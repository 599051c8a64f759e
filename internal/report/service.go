package report

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a report range is missing or inverted.
var ErrInvalidRange = errors.New("invalid date range")

// MaxRangeDays caps report ranges so a single request cannot scan
// years of rows.
const MaxRangeDays = 366

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) validateRange(r DateRange) (time.Time, time.Time, error) {
	if r.From.IsZero() || r.To.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from and to are required", ErrInvalidRange)
	}
	if r.To.Before(r.From) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	from := r.From.UTC().Truncate(24 * time.Hour)
	toExclusive := r.To.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	if toExclusive.Sub(from) > MaxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range exceeds %d days", ErrInvalidRange, MaxRangeDays)
	}
	return from, toExclusive, nil
}

func (s *Service) Revenue(ctx context.Context, r DateRange) (*RevenueReport, error) {
	from, toExclusive, err := s.validateRange(r)
	if err != nil {
		return nil, err
	}

	days, err := s.repo.RevenueByDay(ctx, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to build revenue report: %w", err)
	}

	report := &RevenueReport{
		From: from.Format(dayFormat),
		To:   r.To.UTC().Format(dayFormat),
		Days: days,
	}
	for _, d := range days {
		report.TotalIssuedCents += d.IssuedCents
		report.TotalCollectedCents += d.CollectedCents
	}
	return report, nil
}

func (s *Service) AppointmentVolume(ctx context.Context, r DateRange) (*AppointmentVolumeReport, error) {
	from, toExclusive, err := s.validateRange(r)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.repo.AppointmentCountsByStatus(ctx, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to build appointment volume report: %w", err)
	}
	byProvider, err := s.repo.AppointmentCountsByProvider(ctx, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to build appointment volume report: %w", err)
	}

	report := &AppointmentVolumeReport{
		From:       from.Format(dayFormat),
		To:         r.To.UTC().Format(dayFormat),
		ByStatus:   byStatus,
		ByProvider: byProvider,
	}
	for _, c := range byStatus {
		report.Total += c.Count
	}
	return report, nil
}

func (s *Service) LabTurnaround(ctx context.Context, r DateRange) (*LabTurnaroundReport, error) {
	from, toExclusive, err := s.validateRange(r)
	if err != nil {
		return nil, err
	}

	count, avgSeconds, err := s.repo.LabTurnaround(ctx, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to build lab turnaround report: %w", err)
	}

	return &LabTurnaroundReport{
		From:                 from.Format(dayFormat),
		To:                   r.To.UTC().Format(dayFormat),
		VerifiedCount:        count,
		AvgTurnaroundMinutes: avgSeconds / 60,
	}, nil
}

func (s *Service) Dispenses(ctx context.Context, r DateRange) (*DispenseReport, error) {
	from, toExclusive, err := s.validateRange(r)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.DispenseCounts(ctx, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to build dispense report: %w", err)
	}

	return &DispenseReport{
		From:        from.Format(dayFormat),
		To:          r.To.UTC().Format(dayFormat),
		Medications: counts,
	}, nil
}

func (s *Service) LowStock(ctx context.Context) (*LowStockReport, error) {
	meds, err := s.repo.LowStockMedications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build low stock report: %w", err)
	}
	return &LowStockReport{Medications: meds}, nil
}
