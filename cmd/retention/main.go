package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/db"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/patient"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/staff"
)

func main() {
	log.Println("Retention Job - Starting")
	log.Println("Retention Policy: patients 7 years, staff 3 years")

	// Connect to database
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	patientCleanup := patient.NewCleanupService(database)
	staffCleanup := staff.NewCleanupService(database)

	patientCount, err := patientCleanup.GetExpiredPatientsCount(ctx)
	if err != nil {
		log.Fatalf("Failed to get expired patients count: %v", err)
	}
	staffCount, err := staffCleanup.GetExpiredStaffCount(ctx)
	if err != nil {
		log.Fatalf("Failed to get expired staff count: %v", err)
	}

	log.Printf("Found %d patients and %d staff members eligible for permanent deletion", patientCount, staffCount)

	if patientCount == 0 && staffCount == 0 {
		log.Println("No cleanup needed. Exiting.")
		os.Exit(0)
	}

	deletedPatients, err := patientCleanup.CleanupExpiredPatients(ctx)
	if err != nil {
		log.Fatalf("Patient cleanup failed: %v", err)
	}

	deletedStaff, err := staffCleanup.CleanupExpiredStaff(ctx)
	if err != nil {
		log.Fatalf("Staff cleanup failed: %v", err)
	}

	log.Printf("✓ Retention job completed: %d patients and %d staff members permanently deleted", deletedPatients, deletedStaff)
	log.Println("Retention Job - Finished")
}
