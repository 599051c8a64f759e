package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no matching patient row exists.
var ErrNotFound = errors.New("patient not found")

const patientColumns = `id, mrn, first_name, last_name, date_of_birth, sex, email, phone_number,
	address, emergency_contact_name, emergency_contact_phone, allergies, blood_type,
	insurance_provider, insurance_member_number, is_active, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (*PatientResponse, error) {
	var p PatientResponse
	var dob, sex, email, phone, address, ecName, ecPhone, allergies, bloodType, insProvider, insMember sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&p.ID, &p.MRN, &p.FirstName, &p.LastName, &dob, &sex, &email, &phone,
		&address, &ecName, &ecPhone, &allergies, &bloodType,
		&insProvider, &insMember, &p.IsActive, &p.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dob.Valid {
		p.DateOfBirth = &dob.String
	}
	p.Sex = sex.String
	p.Email = email.String
	p.PhoneNumber = phone.String
	p.Address = address.String
	p.EmergencyContactName = ecName.String
	p.EmergencyContactPhone = ecPhone.String
	p.Allergies = allergies.String
	p.BloodType = bloodType.String
	p.InsuranceProvider = insProvider.String
	p.InsuranceMemberNumber = insMember.String
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}
	return &p, nil
}

// nullable converts an empty string to NULL so optional columns stay NULL
// instead of empty text.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// newMRN generates a medical record number of the form MRN-XXXXXXXX.
func newMRN() string {
	id := uuid.New().String()
	return "MRN-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}

func (r *Repository) CreatePatient(ctx context.Context, req CreatePatientRequest) (*PatientResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO patients
		(id, mrn, first_name, last_name, date_of_birth, sex, email, phone_number, address,
		 emergency_contact_name, emergency_contact_phone, allergies, blood_type,
		 insurance_provider, insurance_member_number, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, true, $16)
		RETURNING %s
	`, patientColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		newMRN(),
		req.FirstName,
		req.LastName,
		nullable(req.DateOfBirth),
		nullable(req.Sex),
		nullable(req.Email),
		nullable(req.PhoneNumber),
		nullable(req.Address),
		nullable(req.EmergencyContactName),
		nullable(req.EmergencyContactPhone),
		nullable(req.Allergies),
		nullable(req.BloodType),
		nullable(req.InsuranceProvider),
		nullable(req.InsuranceMemberNumber),
		time.Now(),
	)

	p, err := scanPatient(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert patient: %w", err)
	}
	return p, nil
}

func (r *Repository) GetPatient(ctx context.Context, id string) (*PatientResponse, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM patients
		WHERE id = $1 AND deleted_at IS NULL
	`, patientColumns)

	p, err := scanPatient(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}
	return p, nil
}

// ListPatients returns a page of patients plus the total count. search
// matches name or MRN, activeOnly restricts to non-deactivated records.
func (r *Repository) ListPatients(ctx context.Context, limit, offset int, search string, activeOnly bool) ([]PatientResponse, int, error) {
	where := "deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	if search != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR mrn ILIKE $%d)", argIndex, argIndex, argIndex)
		args = append(args, "%"+search+"%")
		argIndex++
	}
	if activeOnly {
		where += " AND is_active = true"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM patients WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM patients
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, patientColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var patients []PatientResponse
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating patients: %w", err)
	}

	return patients, total, nil
}

func (r *Repository) UpdatePatient(ctx context.Context, id string, req UpdatePatientRequest) (*PatientResponse, error) {
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
	if req.DateOfBirth != nil {
		set("date_of_birth", nullable(*req.DateOfBirth))
	}
	if req.Sex != nil {
		set("sex", nullable(*req.Sex))
	}
	if req.Email != nil {
		set("email", nullable(*req.Email))
	}
	if req.PhoneNumber != nil {
		set("phone_number", nullable(*req.PhoneNumber))
	}
	if req.Address != nil {
		set("address", nullable(*req.Address))
	}
	if req.EmergencyContactName != nil {
		set("emergency_contact_name", nullable(*req.EmergencyContactName))
	}
	if req.EmergencyContactPhone != nil {
		set("emergency_contact_phone", nullable(*req.EmergencyContactPhone))
	}
	if req.Allergies != nil {
		set("allergies", nullable(*req.Allergies))
	}
	if req.BloodType != nil {
		set("blood_type", nullable(*req.BloodType))
	}
	if req.InsuranceProvider != nil {
		set("insurance_provider", nullable(*req.InsuranceProvider))
	}
	if req.InsuranceMemberNumber != nil {
		set("insurance_member_number", nullable(*req.InsuranceMemberNumber))
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	set("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE patients
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(updates, ", "), argIndex, patientColumns)

	p, err := scanPatient(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return p, nil
}

// DeactivatePatient soft-deletes the patient. The row is kept for the
// retention window and purged by the retention job.
func (r *Repository) DeactivatePatient(ctx context.Context, id string) error {
	query := `
		UPDATE patients
		SET deleted_at = $1, is_active = false
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate patient: %w", err)
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
