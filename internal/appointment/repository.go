package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("appointment not found")

const appointmentColumns = `id, patient_id, provider_id, start_time, end_time, type, reason,
	status, cancel_reason, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*AppointmentResponse, error) {
	var a AppointmentResponse
	var typ, reason, cancelReason sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.PatientID, &a.ProviderID, &a.StartTime, &a.EndTime,
		&typ, &reason, &a.Status, &cancelReason, &a.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Type = typ.String
	a.Reason = reason.String
	a.CancelReason = cancelReason.String
	if updatedAt.Valid {
		a.UpdatedAt = &updatedAt.Time
	}
	return &a, nil
}

func (r *Repository) CreateAppointment(ctx context.Context, req BookAppointmentRequest) (*AppointmentResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO appointments
		(id, patient_id, provider_id, start_time, end_time, type, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`, appointmentColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		req.PatientID,
		req.ProviderID,
		req.StartTime,
		req.EndTime,
		sql.NullString{String: req.Type, Valid: req.Type != ""},
		sql.NullString{String: req.Reason, Valid: req.Reason != ""},
		StatusScheduled,
		time.Now(),
	)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert appointment: %w", err)
	}
	return a, nil
}

func (r *Repository) GetAppointment(ctx context.Context, id string) (*AppointmentResponse, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)

	a, err := scanAppointment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query appointment: %w", err)
	}
	return a, nil
}

// HasConflict reports whether the provider already has a non-cancelled
// appointment overlapping [start, end). excludeID skips the appointment
// being rescheduled; it is empty on the booking path, so the exclusion
// only applies when an id was given.
func (r *Repository) HasConflict(ctx context.Context, providerID string, start, end time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE provider_id = $1
			AND status NOT IN ($2, $3)
			AND start_time < $4
			AND end_time > $5
			AND ($6 = '' OR id::text <> $6)
		)
	`

	var conflict bool
	err := r.db.QueryRowContext(ctx, query,
		providerID, StatusCancelled, StatusNoShow, end, start, excludeID,
	).Scan(&conflict)
	if err != nil {
		return false, fmt.Errorf("failed to check appointment conflict: %w", err)
	}
	return conflict, nil
}

func (r *Repository) ListAppointments(ctx context.Context, filter ListFilter, limit, offset int) ([]AppointmentResponse, int, error) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.PatientID != "" {
		where += fmt.Sprintf(" AND patient_id = $%d", argIndex)
		args = append(args, filter.PatientID)
		argIndex++
	}
	if filter.ProviderID != "" {
		where += fmt.Sprintf(" AND provider_id = $%d", argIndex)
		args = append(args, filter.ProviderID)
		argIndex++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}
	if !filter.Day.IsZero() {
		dayStart := time.Date(filter.Day.Year(), filter.Day.Month(), filter.Day.Day(), 0, 0, 0, 0, time.UTC)
		where += fmt.Sprintf(" AND start_time >= $%d AND start_time < $%d", argIndex, argIndex+1)
		args = append(args, dayStart, dayStart.Add(24*time.Hour))
		argIndex += 2
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM appointments WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE %s
		ORDER BY start_time ASC
		LIMIT $%d OFFSET $%d
	`, appointmentColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var appointments []AppointmentResponse
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating appointments: %w", err)
	}

	return appointments, total, nil
}

func (r *Repository) Reschedule(ctx context.Context, id string, start, end time.Time) (*AppointmentResponse, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET start_time = $1, end_time = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING %s
	`, appointmentColumns)

	a, err := scanAppointment(r.db.QueryRowContext(ctx, query, start, end, time.Now(), id, StatusScheduled))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return a, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id, status, cancelReason string) (*AppointmentResponse, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4
		RETURNING %s
	`, appointmentColumns)

	a, err := scanAppointment(r.db.QueryRowContext(ctx, query,
		status,
		sql.NullString{String: cancelReason, Valid: cancelReason != ""},
		time.Now(),
		id,
	))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return a, nil
}
