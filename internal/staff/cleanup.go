package staff

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// RetentionPeriod defines how long deactivated staff records are
// retained before permanent deletion (3 years).
const RetentionPeriod = 3 * 365 * 24 * time.Hour

// CleanupService handles permanent deletion of expired soft-deleted staff
type CleanupService struct {
	db *sql.DB
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db *sql.DB) *CleanupService {
	return &CleanupService{db: db}
}

// GetExpiredStaffCount returns the count of staff eligible for cleanup
func (s *CleanupService) GetExpiredStaffCount(ctx context.Context) (int, error) {
	cutoffDate := time.Now().Add(-RetentionPeriod)

	var count int
	query := `
		SELECT COUNT(*)
		FROM staff
		WHERE deleted_at IS NOT NULL
		AND deleted_at < $1
	`

	err := s.db.QueryRowContext(ctx, query, cutoffDate).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired staff: %w", err)
	}

	return count, nil
}

// CleanupExpiredStaff permanently deletes staff members that have been
// soft-deleted for longer than the retention period. Shifts go with
// them; clinical rows referencing the staff id (orders, appointments)
// are kept since those belong to patient records.
func (s *CleanupService) CleanupExpiredStaff(ctx context.Context) (int, error) {
	cutoffDate := time.Now().Add(-RetentionPeriod)
	log.Printf("Starting cleanup of staff deleted before %s", cutoffDate.Format(time.RFC3339))

	query := `
		SELECT id
		FROM staff
		WHERE deleted_at IS NOT NULL
		AND deleted_at < $1
		ORDER BY deleted_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to query expired staff: %w", err)
	}
	defer rows.Close()

	var expired []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan staff member: %w", err)
		}
		expired = append(expired, id)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating staff: %w", err)
	}

	if len(expired) == 0 {
		log.Println("No expired staff found for cleanup")
		return 0, nil
	}

	log.Printf("Found %d staff members to permanently delete", len(expired))

	deletedCount := 0
	for _, id := range expired {
		if err := s.permanentlyDeleteStaff(ctx, id); err != nil {
			log.Printf("Failed to delete staff member %s: %v", id, err)
			continue
		}
		deletedCount++
	}

	log.Printf("Successfully cleaned up %d/%d expired staff members", deletedCount, len(expired))
	return deletedCount, nil
}

func (s *CleanupService) permanentlyDeleteStaff(ctx context.Context, staffID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shifts WHERE staff_id = $1`, staffID); err != nil {
		return fmt.Errorf("failed to delete shifts: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM staff
		WHERE id = $1 AND deleted_at IS NOT NULL
	`, staffID)
	if err != nil {
		return fmt.Errorf("failed to delete staff record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("staff member not found or not soft-deleted")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Permanently deleted staff member %s", staffID)
	return nil
}
