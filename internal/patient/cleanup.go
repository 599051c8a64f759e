package patient

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// RetentionPeriod defines how long deactivated patient records are
// retained before permanent deletion (7 years, per medical record
// retention policy).
const RetentionPeriod = 7 * 365 * 24 * time.Hour

// CleanupService handles permanent deletion of expired soft-deleted patients
type CleanupService struct {
	db *sql.DB
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db *sql.DB) *CleanupService {
	return &CleanupService{db: db}
}

// GetExpiredPatientsCount returns the count of patients eligible for cleanup
func (s *CleanupService) GetExpiredPatientsCount(ctx context.Context) (int, error) {
	cutoffDate := time.Now().Add(-RetentionPeriod)

	var count int
	query := `
		SELECT COUNT(*)
		FROM patients
		WHERE deleted_at IS NOT NULL
		AND deleted_at < $1
	`

	err := s.db.QueryRowContext(ctx, query, cutoffDate).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired patients: %w", err)
	}

	return count, nil
}

// CleanupExpiredPatients permanently deletes patients that have been
// soft-deleted for longer than the retention period, along with their
// dependent clinical rows.
func (s *CleanupService) CleanupExpiredPatients(ctx context.Context) (int, error) {
	cutoffDate := time.Now().Add(-RetentionPeriod)
	log.Printf("Starting cleanup of patients deleted before %s", cutoffDate.Format(time.RFC3339))

	query := `
		SELECT id
		FROM patients
		WHERE deleted_at IS NOT NULL
		AND deleted_at < $1
		ORDER BY deleted_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to query expired patients: %w", err)
	}
	defer rows.Close()

	var expired []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan patient: %w", err)
		}
		expired = append(expired, id)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating patients: %w", err)
	}

	if len(expired) == 0 {
		log.Println("No expired patients found for cleanup")
		return 0, nil
	}

	log.Printf("Found %d patients to permanently delete", len(expired))

	deletedCount := 0
	for _, id := range expired {
		if err := s.permanentlyDeletePatient(ctx, id); err != nil {
			log.Printf("Failed to delete patient %s: %v", id, err)
			continue
		}
		deletedCount++
	}

	log.Printf("Successfully cleaned up %d/%d expired patients", deletedCount, len(expired))
	return deletedCount, nil
}

// permanentlyDeletePatient hard-deletes a patient and its dependent rows
// in one transaction.
func (s *CleanupService) permanentlyDeletePatient(ctx context.Context, patientID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Dependent clinical rows first; MAR entries hang off admissions,
	// lab results off lab orders, payments and line items off invoices.
	dependents := []string{
		`DELETE FROM mar_entries WHERE admission_id IN (SELECT id FROM admissions WHERE patient_id = $1)`,
		`DELETE FROM admissions WHERE patient_id = $1`,
		`DELETE FROM lab_results WHERE order_id IN (SELECT id FROM lab_orders WHERE patient_id = $1)`,
		`DELETE FROM lab_orders WHERE patient_id = $1`,
		`DELETE FROM prescriptions WHERE patient_id = $1`,
		`DELETE FROM invoice_payments WHERE invoice_id IN (SELECT id FROM invoices WHERE patient_id = $1)`,
		`DELETE FROM invoice_line_items WHERE invoice_id IN (SELECT id FROM invoices WHERE patient_id = $1)`,
		`DELETE FROM invoices WHERE patient_id = $1`,
		`DELETE FROM appointments WHERE patient_id = $1`,
	}
	for _, q := range dependents {
		if _, err := tx.ExecContext(ctx, q, patientID); err != nil {
			return fmt.Errorf("failed to delete dependent rows: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM patients
		WHERE id = $1 AND deleted_at IS NOT NULL
	`, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete patient record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("patient not found or not soft-deleted")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Permanently deleted patient %s", patientID)
	return nil
}
