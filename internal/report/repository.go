package report

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

const dayFormat = "2006-01-02"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// RevenueByDay aggregates issued invoice totals and received payments
// per calendar day over [from, toExclusive).
func (r *Repository) RevenueByDay(ctx context.Context, from, toExclusive time.Time) ([]RevenueDay, error) {
	days := map[string]*RevenueDay{}

	rows, err := r.db.QueryContext(ctx, `
		SELECT issued_at::date, SUM(total_cents)
		FROM invoices
		WHERE issued_at >= $1 AND issued_at < $2
		AND status <> 'void'
		GROUP BY issued_at::date
	`, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to query issued revenue: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day time.Time
		var cents int64
		if err := rows.Scan(&day, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan issued revenue: %w", err)
		}
		key := day.Format(dayFormat)
		days[key] = &RevenueDay{Day: key, IssuedCents: cents}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issued revenue: %w", err)
	}

	payRows, err := r.db.QueryContext(ctx, `
		SELECT received_at::date, SUM(amount_cents)
		FROM invoice_payments
		WHERE received_at >= $1 AND received_at < $2
		GROUP BY received_at::date
	`, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to query collected revenue: %w", err)
	}
	defer payRows.Close()
	for payRows.Next() {
		var day time.Time
		var cents int64
		if err := payRows.Scan(&day, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan collected revenue: %w", err)
		}
		key := day.Format(dayFormat)
		if d, ok := days[key]; ok {
			d.CollectedCents = cents
		} else {
			days[key] = &RevenueDay{Day: key, CollectedCents: cents}
		}
	}
	if err = payRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collected revenue: %w", err)
	}

	result := make([]RevenueDay, 0, len(days))
	for _, d := range days {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day < result[j].Day })
	return result, nil
}

func (r *Repository) AppointmentCountsByStatus(ctx context.Context, from, toExclusive time.Time) ([]StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		WHERE start_time >= $1 AND start_time < $2
		GROUP BY status
		ORDER BY status
	`, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointment status counts: %w", err)
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}
	return counts, nil
}

func (r *Repository) AppointmentCountsByProvider(ctx context.Context, from, toExclusive time.Time) ([]ProviderCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT provider_id, COUNT(*)
		FROM appointments
		WHERE start_time >= $1 AND start_time < $2
		GROUP BY provider_id
		ORDER BY COUNT(*) DESC
	`, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointment provider counts: %w", err)
	}
	defer rows.Close()

	var counts []ProviderCount
	for rows.Next() {
		var c ProviderCount
		if err := rows.Scan(&c.ProviderID, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan provider count: %w", err)
		}
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating provider counts: %w", err)
	}
	return counts, nil
}

// LabTurnaround returns the count of orders verified in the range and
// their average ordered-to-verified duration in seconds.
func (r *Repository) LabTurnaround(ctx context.Context, from, toExclusive time.Time) (int, float64, error) {
	var count int
	var avgSeconds float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(EXTRACT(EPOCH FROM (verified_at - created_at))), 0)
		FROM lab_orders
		WHERE status = 'verified' AND verified_at >= $1 AND verified_at < $2
	`, from, toExclusive).Scan(&count, &avgSeconds)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query lab turnaround: %w", err)
	}
	return count, avgSeconds, nil
}

func (r *Repository) DispenseCounts(ctx context.Context, from, toExclusive time.Time) ([]MedicationDispenseCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.code, m.name, COUNT(*), COALESCE(SUM(p.quantity), 0)
		FROM prescriptions p
		JOIN medications m ON m.id = p.medication_id
		WHERE p.status = 'dispensed' AND p.dispensed_at >= $1 AND p.dispensed_at < $2
		GROUP BY m.id, m.code, m.name
		ORDER BY COUNT(*) DESC
	`, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispense counts: %w", err)
	}
	defer rows.Close()

	var counts []MedicationDispenseCount
	for rows.Next() {
		var c MedicationDispenseCount
		if err := rows.Scan(&c.MedicationID, &c.Code, &c.Name, &c.DispenseCount, &c.QuantityDispensed); err != nil {
			return nil, fmt.Errorf("failed to scan dispense count: %w", err)
		}
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dispense counts: %w", err)
	}
	return counts, nil
}

func (r *Repository) LowStockMedications(ctx context.Context) ([]LowStockMedication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, stock_quantity, reorder_threshold
		FROM medications
		WHERE is_active = true AND stock_quantity <= reorder_threshold
		ORDER BY stock_quantity
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock medications: %w", err)
	}
	defer rows.Close()

	var meds []LowStockMedication
	for rows.Next() {
		var m LowStockMedication
		if err := rows.Scan(&m.MedicationID, &m.Code, &m.Name, &m.StockQuantity, &m.ReorderThreshold); err != nil {
			return nil, fmt.Errorf("failed to scan low stock medication: %w", err)
		}
		meds = append(meds, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating low stock medications: %w", err)
	}
	return meds, nil
}
