package pharmacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no matching row exists.
	ErrNotFound = errors.New("pharmacy record not found")

	// ErrInsufficientStock is returned when a dispense would drive the
	// stock quantity negative. The dispense transaction is rolled back.
	ErrInsufficientStock = errors.New("insufficient stock to dispense")
)

const medicationColumns = `id, code, name, form, strength, unit_price_cents, stock_quantity,
	reorder_threshold, is_active, created_at, updated_at`

const prescriptionColumns = `id, patient_id, prescriber_id, medication_id, dosage, frequency,
	duration, quantity, refills, notes, status, dispensed_by, dispensed_at, cancel_reason,
	created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMedication(row rowScanner) (*MedicationResponse, error) {
	var m MedicationResponse
	var form, strength sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&m.ID, &m.Code, &m.Name, &form, &strength, &m.UnitPriceCents, &m.StockQuantity,
		&m.ReorderThreshold, &m.IsActive, &m.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Form = form.String
	m.Strength = strength.String
	if updatedAt.Valid {
		m.UpdatedAt = &updatedAt.Time
	}
	return &m, nil
}

func scanPrescription(row rowScanner) (*PrescriptionResponse, error) {
	var p PrescriptionResponse
	var duration, notes, dispensedBy, cancelReason sql.NullString
	var dispensedAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID, &p.PatientID, &p.PrescriberID, &p.MedicationID, &p.Dosage, &p.Frequency,
		&duration, &p.Quantity, &p.Refills, &notes, &p.Status, &dispensedBy, &dispensedAt,
		&cancelReason, &p.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Duration = duration.String
	p.Notes = notes.String
	p.DispensedBy = dispensedBy.String
	p.CancelReason = cancelReason.String
	if dispensedAt.Valid {
		p.DispensedAt = &dispensedAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}
	return &p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *Repository) CreateMedication(ctx context.Context, req CreateMedicationRequest) (*MedicationResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO medications
		(id, code, name, form, strength, unit_price_cents, stock_quantity, reorder_threshold, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, $9)
		RETURNING %s
	`, medicationColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		req.Code,
		req.Name,
		nullable(req.Form),
		nullable(req.Strength),
		req.UnitPriceCents,
		req.StockQuantity,
		req.ReorderThreshold,
		time.Now(),
	)

	m, err := scanMedication(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert medication: %w", err)
	}
	return m, nil
}

func (r *Repository) GetMedication(ctx context.Context, id string) (*MedicationResponse, error) {
	query := fmt.Sprintf(`SELECT %s FROM medications WHERE id = $1`, medicationColumns)

	m, err := scanMedication(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query medication: %w", err)
	}
	return m, nil
}

func (r *Repository) ListMedications(ctx context.Context, filter MedicationListFilter, limit, offset int) ([]MedicationResponse, int, error) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}
	if filter.LowStockOnly {
		where += " AND stock_quantity <= reorder_threshold"
	}
	if filter.ActiveOnly {
		where += " AND is_active = true"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM medications WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count medications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM medications
		WHERE %s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, medicationColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query medications: %w", err)
	}
	defer rows.Close()

	var medications []MedicationResponse
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan medication: %w", err)
		}
		medications = append(medications, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating medications: %w", err)
	}

	return medications, total, nil
}

func (r *Repository) UpdateMedication(ctx context.Context, id string, req UpdateMedicationRequest) (*MedicationResponse, error) {
	var updates []string
	var args []interface{}
	argIndex := 1

	set := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Form != nil {
		set("form", nullable(*req.Form))
	}
	if req.Strength != nil {
		set("strength", nullable(*req.Strength))
	}
	if req.UnitPriceCents != nil {
		set("unit_price_cents", *req.UnitPriceCents)
	}
	if req.ReorderThreshold != nil {
		set("reorder_threshold", *req.ReorderThreshold)
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
		UPDATE medications
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(updates, ", "), argIndex, medicationColumns)

	m, err := scanMedication(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}
	return m, nil
}

// Restock adds received stock to a medication.
func (r *Repository) Restock(ctx context.Context, id string, quantity int) (*MedicationResponse, error) {
	query := fmt.Sprintf(`
		UPDATE medications
		SET stock_quantity = stock_quantity + $1, updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, medicationColumns)

	m, err := scanMedication(r.db.QueryRowContext(ctx, query, quantity, time.Now(), id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to restock medication: %w", err)
	}
	return m, nil
}

func (r *Repository) CreatePrescription(ctx context.Context, prescriberID string, req CreatePrescriptionRequest) (*PrescriptionResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO prescriptions
		(id, patient_id, prescriber_id, medication_id, dosage, frequency, duration, quantity, refills, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s
	`, prescriptionColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		req.PatientID,
		prescriberID,
		req.MedicationID,
		req.Dosage,
		req.Frequency,
		nullable(req.Duration),
		req.Quantity,
		req.Refills,
		nullable(req.Notes),
		StatusPending,
		time.Now(),
	)

	p, err := scanPrescription(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert prescription: %w", err)
	}
	return p, nil
}

func (r *Repository) GetPrescription(ctx context.Context, id string) (*PrescriptionResponse, error) {
	query := fmt.Sprintf(`SELECT %s FROM prescriptions WHERE id = $1`, prescriptionColumns)

	p, err := scanPrescription(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query prescription: %w", err)
	}
	return p, nil
}

func (r *Repository) ListPrescriptions(ctx context.Context, filter PrescriptionListFilter, limit, offset int) ([]PrescriptionResponse, int, error) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.PatientID != "" {
		where += fmt.Sprintf(" AND patient_id = $%d", argIndex)
		args = append(args, filter.PatientID)
		argIndex++
	}
	if filter.MedicationID != "" {
		where += fmt.Sprintf(" AND medication_id = $%d", argIndex)
		args = append(args, filter.MedicationID)
		argIndex++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM prescriptions WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count prescriptions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM prescriptions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, prescriptionColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query prescriptions: %w", err)
	}
	defer rows.Close()

	var prescriptions []PrescriptionResponse
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan prescription: %w", err)
		}
		prescriptions = append(prescriptions, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating prescriptions: %w", err)
	}

	return prescriptions, total, nil
}

func (r *Repository) UpdatePrescriptionStatus(ctx context.Context, id, status, cancelReason string) (*PrescriptionResponse, error) {
	query := fmt.Sprintf(`
		UPDATE prescriptions
		SET status = $1, cancel_reason = COALESCE($2, cancel_reason), updated_at = $3
		WHERE id = $4
		RETURNING %s
	`, prescriptionColumns)

	var reason interface{}
	if cancelReason != "" {
		reason = cancelReason
	}

	p, err := scanPrescription(r.db.QueryRowContext(ctx, query, status, reason, time.Now(), id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update prescription status: %w", err)
	}
	return p, nil
}

// Dispense marks the prescription dispensed and deducts stock in one
// transaction. The stock guard runs inside the UPDATE so two
// concurrent dispenses can never drive the quantity negative.
func (r *Repository) Dispense(ctx context.Context, id, dispensedBy string) (*PrescriptionResponse, *MedicationResponse, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	query := fmt.Sprintf(`
		UPDATE prescriptions
		SET status = $1, dispensed_by = $2, dispensed_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING %s
	`, prescriptionColumns)

	p, err := scanPrescription(tx.QueryRowContext(ctx, query, StatusDispensed, dispensedBy, now, id, StatusFilled))
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to mark prescription dispensed: %w", err)
	}

	stockQuery := fmt.Sprintf(`
		UPDATE medications
		SET stock_quantity = stock_quantity - $1, updated_at = $2
		WHERE id = $3 AND stock_quantity >= $1
		RETURNING %s
	`, medicationColumns)

	m, err := scanMedication(tx.QueryRowContext(ctx, stockQuery, p.Quantity, now, p.MedicationID))
	if err == sql.ErrNoRows {
		return nil, nil, ErrInsufficientStock
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to deduct stock: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit dispense: %w", err)
	}
	return p, m, nil
}
