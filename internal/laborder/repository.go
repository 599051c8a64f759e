package laborder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no matching lab order row exists.
var ErrNotFound = errors.New("lab order not found")

const orderColumns = `id, patient_id, appointment_id, panel_code, panel_name, priority, status,
	notes, ordered_by, collected_at, resulted_by, resulted_at, verified_by, verified_at,
	cancel_reason, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*LabOrderResponse, error) {
	var o LabOrderResponse
	var appointmentID, notes, resultedBy, verifiedBy, cancelReason sql.NullString
	var collectedAt, resultedAt, verifiedAt, updatedAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.PatientID, &appointmentID, &o.PanelCode, &o.PanelName, &o.Priority, &o.Status,
		&notes, &o.OrderedBy, &collectedAt, &resultedBy, &resultedAt, &verifiedBy, &verifiedAt,
		&cancelReason, &o.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.AppointmentID = appointmentID.String
	o.Notes = notes.String
	o.ResultedBy = resultedBy.String
	o.VerifiedBy = verifiedBy.String
	o.CancelReason = cancelReason.String
	if collectedAt.Valid {
		o.CollectedAt = &collectedAt.Time
	}
	if resultedAt.Valid {
		o.ResultedAt = &resultedAt.Time
	}
	if verifiedAt.Valid {
		o.VerifiedAt = &verifiedAt.Time
	}
	if updatedAt.Valid {
		o.UpdatedAt = &updatedAt.Time
	}
	return &o, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *Repository) CreateOrder(ctx context.Context, orderedBy string, req CreateLabOrderRequest) (*LabOrderResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO lab_orders
		(id, patient_id, appointment_id, panel_code, panel_name, priority, status, notes, ordered_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s
	`, orderColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		req.PatientID,
		nullable(req.AppointmentID),
		req.PanelCode,
		req.PanelName,
		req.Priority,
		StatusOrdered,
		nullable(req.Notes),
		orderedBy,
		time.Now(),
	)

	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert lab order: %w", err)
	}
	return o, nil
}

// GetOrder returns the order with its result rows, if any.
func (r *Repository) GetOrder(ctx context.Context, id string) (*LabOrderResponse, error) {
	query := fmt.Sprintf(`SELECT %s FROM lab_orders WHERE id = $1`, orderColumns)

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lab order: %w", err)
	}

	results, err := r.getResults(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Results = results
	return o, nil
}

func (r *Repository) getResults(ctx context.Context, orderID string) ([]TestResultResponse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, test_code, test_name, value, unit, reference_range, abnormal
		FROM lab_results
		WHERE order_id = $1
		ORDER BY test_code
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lab results: %w", err)
	}
	defer rows.Close()

	var results []TestResultResponse
	for rows.Next() {
		var res TestResultResponse
		var unit, refRange sql.NullString
		if err := rows.Scan(&res.ID, &res.TestCode, &res.TestName, &res.Value, &unit, &refRange, &res.Abnormal); err != nil {
			return nil, fmt.Errorf("failed to scan lab result: %w", err)
		}
		res.Unit = unit.String
		res.ReferenceRange = refRange.String
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lab results: %w", err)
	}
	return results, nil
}

func (r *Repository) ListOrders(ctx context.Context, filter ListFilter, limit, offset int) ([]LabOrderResponse, int, error) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.PatientID != "" {
		where += fmt.Sprintf(" AND patient_id = $%d", argIndex)
		args = append(args, filter.PatientID)
		argIndex++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Priority != "" {
		where += fmt.Sprintf(" AND priority = $%d", argIndex)
		args = append(args, filter.Priority)
		argIndex++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM lab_orders WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count lab orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM lab_orders
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, orderColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query lab orders: %w", err)
	}
	defer rows.Close()

	var orders []LabOrderResponse
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan lab order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating lab orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus applies a manual lifecycle change. Collection timestamps
// and cancellation reasons are set alongside the status they belong to.
func (r *Repository) UpdateStatus(ctx context.Context, id, status, cancelReason string) (*LabOrderResponse, error) {
	now := time.Now()
	query := fmt.Sprintf(`
		UPDATE lab_orders
		SET status = $1,
		    collected_at = CASE WHEN $1 = '%s' THEN $2 ELSE collected_at END,
		    cancel_reason = CASE WHEN $1 = '%s' THEN $3 ELSE cancel_reason END,
		    updated_at = $2
		WHERE id = $4
		RETURNING %s
	`, StatusSpecimenCollected, StatusCancelled, orderColumns)

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, status, now, nullable(cancelReason), id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update lab order status: %w", err)
	}
	return o, nil
}

// EnterResults stores the result rows and marks the order resulted in
// one transaction, so a partial result set is never visible.
func (r *Repository) EnterResults(ctx context.Context, id, enteredBy string, results []TestResultEntry) (*LabOrderResponse, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, res := range results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO lab_results
			(id, order_id, test_code, test_name, value, unit, reference_range, abnormal, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, uuid.New(), id, res.TestCode, res.TestName, res.Value, nullable(res.Unit), nullable(res.ReferenceRange), res.Abnormal, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert lab result: %w", err)
		}
	}

	query := fmt.Sprintf(`
		UPDATE lab_orders
		SET status = $1, resulted_by = $2, resulted_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING %s
	`, orderColumns)

	o, err := scanOrder(tx.QueryRowContext(ctx, query, StatusResulted, enteredBy, now, id, StatusInProgress))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark lab order resulted: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lab results: %w", err)
	}
	return o, nil
}

func (r *Repository) VerifyOrder(ctx context.Context, id, verifiedBy string) (*LabOrderResponse, error) {
	query := fmt.Sprintf(`
		UPDATE lab_orders
		SET status = $1, verified_by = $2, verified_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING %s
	`, orderColumns)

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, StatusVerified, verifiedBy, time.Now(), id, StatusResulted))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to verify lab order: %w", err)
	}
	return o, nil
}
