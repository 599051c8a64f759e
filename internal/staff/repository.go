package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no matching staff row exists.
var ErrNotFound = errors.New("staff member not found")

const staffColumns = `id, keycloak_user_id, username, email, first_name, last_name, role,
	department, license_number, phone, is_active, created_at, updated_at`

const shiftColumns = `id, staff_id, ward, start_time, end_time, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStaff(row rowScanner) (*StaffResponse, error) {
	var s StaffResponse
	var department, licenseNumber, phone sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.KeycloakUserID, &s.Username, &s.Email, &s.FirstName, &s.LastName, &s.Role,
		&department, &licenseNumber, &phone, &s.IsActive, &s.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Department = department.String
	s.LicenseNumber = licenseNumber.String
	s.Phone = phone.String
	if updatedAt.Valid {
		s.UpdatedAt = &updatedAt.Time
	}
	return &s, nil
}

func scanShift(row rowScanner) (*ShiftResponse, error) {
	var sh ShiftResponse
	var ward sql.NullString

	err := row.Scan(&sh.ID, &sh.StaffID, &ward, &sh.StartTime, &sh.EndTime, &sh.CreatedAt)
	if err != nil {
		return nil, err
	}

	sh.Ward = ward.String
	return &sh, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *Repository) CreateStaff(ctx context.Context, keycloakUserID string, req CreateStaffRequest) (*StaffResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO staff
		(id, keycloak_user_id, username, email, first_name, last_name, role, department, license_number, phone, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11)
		RETURNING %s
	`, staffColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		keycloakUserID,
		req.Username,
		req.Email,
		req.FirstName,
		req.LastName,
		req.Role,
		nullable(req.Department),
		nullable(req.LicenseNumber),
		nullable(req.Phone),
		time.Now(),
	)

	s, err := scanStaff(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert staff member: %w", err)
	}
	return s, nil
}

func (r *Repository) GetStaff(ctx context.Context, id string) (*StaffResponse, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM staff
		WHERE id = $1 AND deleted_at IS NULL
	`, staffColumns)

	s, err := scanStaff(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query staff member: %w", err)
	}
	return s, nil
}

func (r *Repository) ListStaff(ctx context.Context, filter ListFilter, limit, offset int) ([]StaffResponse, int, error) {
	where := "deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	if filter.Role != "" {
		where += fmt.Sprintf(" AND role = $%d", argIndex)
		args = append(args, filter.Role)
		argIndex++
	}
	if filter.Department != "" {
		where += fmt.Sprintf(" AND department = $%d", argIndex)
		args = append(args, filter.Department)
		argIndex++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR username ILIKE $%d)", argIndex, argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}
	if filter.ActiveOnly {
		where += " AND is_active = true"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM staff WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count staff: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM staff
		WHERE %s
		ORDER BY last_name, first_name
		LIMIT $%d OFFSET $%d
	`, staffColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var members []StaffResponse
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan staff member: %w", err)
		}
		members = append(members, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating staff: %w", err)
	}

	return members, total, nil
}

func (r *Repository) UpdateStaff(ctx context.Context, id string, req UpdateStaffRequest) (*StaffResponse, error) {
	var updates []string
	var args []interface{}
	argIndex := 1

	set := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if req.FirstName != nil {
		set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		set("last_name", *req.LastName)
	}
	if req.Department != nil {
		set("department", nullable(*req.Department))
	}
	if req.LicenseNumber != nil {
		set("license_number", nullable(*req.LicenseNumber))
	}
	if req.Phone != nil {
		set("phone", nullable(*req.Phone))
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	set("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE staff
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(updates, ", "), argIndex, staffColumns)

	s, err := scanStaff(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return s, nil
}

// DeactivateStaff soft-deletes the staff member. The row is kept for
// the retention window and purged by the retention job.
func (r *Repository) DeactivateStaff(ctx context.Context, id string) error {
	query := `
		UPDATE staff
		SET deleted_at = $1, is_active = false
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate staff member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// HasShiftConflict reports whether the staff member already has a
// shift overlapping [start, end).
func (r *Repository) HasShiftConflict(ctx context.Context, staffID string, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM shifts
			WHERE staff_id = $1
			  AND start_time < $3
			  AND end_time > $2
		)
	`

	var conflict bool
	if err := r.db.QueryRowContext(ctx, query, staffID, start, end).Scan(&conflict); err != nil {
		return false, fmt.Errorf("failed to check shift conflict: %w", err)
	}
	return conflict, nil
}

func (r *Repository) CreateShift(ctx context.Context, req CreateShiftRequest) (*ShiftResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO shifts
		(id, staff_id, ward, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, shiftColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		req.StaffID,
		nullable(req.Ward),
		req.StartTime,
		req.EndTime,
		time.Now(),
	)

	sh, err := scanShift(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shift: %w", err)
	}
	return sh, nil
}

func (r *Repository) ListShifts(ctx context.Context, filter ShiftListFilter, limit, offset int) ([]ShiftResponse, int, error) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.StaffID != "" {
		where += fmt.Sprintf(" AND staff_id = $%d", argIndex)
		args = append(args, filter.StaffID)
		argIndex++
	}
	if filter.Ward != "" {
		where += fmt.Sprintf(" AND ward = $%d", argIndex)
		args = append(args, filter.Ward)
		argIndex++
	}
	if !filter.Day.IsZero() {
		dayStart := filter.Day.UTC().Truncate(24 * time.Hour)
		where += fmt.Sprintf(" AND start_time >= $%d AND start_time < $%d", argIndex, argIndex+1)
		args = append(args, dayStart, dayStart.Add(24*time.Hour))
		argIndex += 2
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM shifts WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shifts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM shifts
		WHERE %s
		ORDER BY start_time
		LIMIT $%d OFFSET $%d
	`, shiftColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []ShiftResponse
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, *sh)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, total, nil
}

func (r *Repository) DeleteShift(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
