package admission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no matching admission row exists.
	ErrNotFound = errors.New("admission not found")

	// ErrEntryNotFound is returned when no matching MAR entry exists.
	ErrEntryNotFound = errors.New("mar entry not found")
)

const admissionColumns = `id, patient_id, admitting_provider_id, ward, bed, reason, status,
	discharge_summary, admitted_at, discharged_at, updated_at`

const marColumns = `id, admission_id, medication_id, dose, route, scheduled_time, status,
	reason, recorded_by, recorded_at, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAdmission(row rowScanner) (*AdmissionResponse, error) {
	var a AdmissionResponse
	var reason, summary sql.NullString
	var dischargedAt, updatedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.PatientID, &a.AdmittingProviderID, &a.Ward, &a.Bed, &reason, &a.Status,
		&summary, &a.AdmittedAt, &dischargedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Reason = reason.String
	a.DischargeSummary = summary.String
	if dischargedAt.Valid {
		a.DischargedAt = &dischargedAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = &updatedAt.Time
	}
	return &a, nil
}

func scanMAREntry(row rowScanner) (*MAREntryResponse, error) {
	var e MAREntryResponse
	var reason, recordedBy sql.NullString
	var recordedAt sql.NullTime

	err := row.Scan(
		&e.ID, &e.AdmissionID, &e.MedicationID, &e.Dose, &e.Route, &e.ScheduledTime, &e.Status,
		&reason, &recordedBy, &recordedAt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Reason = reason.String
	e.RecordedBy = recordedBy.String
	if recordedAt.Valid {
		e.RecordedAt = &recordedAt.Time
	}
	return &e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *Repository) CreateAdmission(ctx context.Context, req CreateAdmissionRequest) (*AdmissionResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO admissions
		(id, patient_id, admitting_provider_id, ward, bed, reason, status, admitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, admissionColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		req.PatientID,
		req.AdmittingProviderID,
		req.Ward,
		req.Bed,
		nullable(req.Reason),
		StatusAdmitted,
		time.Now(),
	)

	a, err := scanAdmission(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert admission: %w", err)
	}
	return a, nil
}

// GetAdmission returns the admission with its MAR entries.
func (r *Repository) GetAdmission(ctx context.Context, id string) (*AdmissionResponse, error) {
	query := fmt.Sprintf(`SELECT %s FROM admissions WHERE id = $1`, admissionColumns)

	a, err := scanAdmission(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query admission: %w", err)
	}

	if a.MAREntries, err = r.ListMAREntries(ctx, id); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repository) ListAdmissions(ctx context.Context, filter ListFilter, limit, offset int) ([]AdmissionResponse, int, error) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.PatientID != "" {
		where += fmt.Sprintf(" AND patient_id = $%d", argIndex)
		args = append(args, filter.PatientID)
		argIndex++
	}
	if filter.Ward != "" {
		where += fmt.Sprintf(" AND ward = $%d", argIndex)
		args = append(args, filter.Ward)
		argIndex++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM admissions WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count admissions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM admissions
		WHERE %s
		ORDER BY admitted_at DESC
		LIMIT $%d OFFSET $%d
	`, admissionColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query admissions: %w", err)
	}
	defer rows.Close()

	var admissions []AdmissionResponse
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan admission: %w", err)
		}
		admissions = append(admissions, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating admissions: %w", err)
	}

	return admissions, total, nil
}

func (r *Repository) Discharge(ctx context.Context, id, summary string) (*AdmissionResponse, error) {
	query := fmt.Sprintf(`
		UPDATE admissions
		SET status = $1, discharge_summary = $2, discharged_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING %s
	`, admissionColumns)

	a, err := scanAdmission(r.db.QueryRowContext(ctx, query, StatusDischarged, summary, time.Now(), id, StatusAdmitted))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to discharge admission: %w", err)
	}
	return a, nil
}

func (r *Repository) CreateMAREntry(ctx context.Context, admissionID string, req ScheduleMAREntryRequest) (*MAREntryResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO mar_entries
		(id, admission_id, medication_id, dose, route, scheduled_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, marColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		admissionID,
		req.MedicationID,
		req.Dose,
		req.Route,
		req.ScheduledTime,
		MARScheduled,
		time.Now(),
	)

	e, err := scanMAREntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert mar entry: %w", err)
	}
	return e, nil
}

func (r *Repository) GetMAREntry(ctx context.Context, id string) (*MAREntryResponse, error) {
	query := fmt.Sprintf(`SELECT %s FROM mar_entries WHERE id = $1`, marColumns)

	e, err := scanMAREntry(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mar entry: %w", err)
	}
	return e, nil
}

func (r *Repository) ListMAREntries(ctx context.Context, admissionID string) ([]MAREntryResponse, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM mar_entries
		WHERE admission_id = $1
		ORDER BY scheduled_time
	`, marColumns)

	rows, err := r.db.QueryContext(ctx, query, admissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mar entries: %w", err)
	}
	defer rows.Close()

	var entries []MAREntryResponse
	for rows.Next() {
		e, err := scanMAREntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mar entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mar entries: %w", err)
	}
	return entries, nil
}

// RecordAdministration resolves a scheduled entry. The status guard in
// the WHERE clause keeps an entry from being recorded twice.
func (r *Repository) RecordAdministration(ctx context.Context, id, status, reason, recordedBy string) (*MAREntryResponse, error) {
	query := fmt.Sprintf(`
		UPDATE mar_entries
		SET status = $1, reason = $2, recorded_by = $3, recorded_at = $4
		WHERE id = $5 AND status = $6
		RETURNING %s
	`, marColumns)

	e, err := scanMAREntry(r.db.QueryRowContext(ctx, query, status, nullable(reason), recordedBy, time.Now(), id, MARScheduled))
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record administration: %w", err)
	}
	return e, nil
}
