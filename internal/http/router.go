package http

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/admission"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/appointment"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/auth"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/billing"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/laborder"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/patient"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/pharmacy"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/report"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/staff"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// SetupRouter initializes all routes for the application
func SetupRouter(db *sql.DB, verifier *auth.Verifier, perms auth.Permissions, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *mux.Router {
	// Initialize patient components
	patientRepo := patient.NewRepository(db)
	patientService := patient.NewService(patientRepo, publisher)
	patientHandler := patient.NewHandler(patientService)

	// Initialize appointment components
	apptRepo := appointment.NewRepository(db)
	apptService := appointment.NewService(apptRepo, publisher)
	apptHandler := appointment.NewHandler(apptService)

	// Initialize lab order components
	labRepo := laborder.NewRepository(db)
	labService := laborder.NewService(labRepo, publisher)
	labHandler := laborder.NewHandler(labService)

	// Initialize pharmacy components
	pharmacyRepo := pharmacy.NewRepository(db)
	pharmacyService := pharmacy.NewService(pharmacyRepo, publisher, metrics)
	pharmacyHandler := pharmacy.NewHandler(pharmacyService)

	// Initialize billing components
	billingRepo := billing.NewRepository(db)
	billingService := billing.NewService(billingRepo, publisher, metrics)
	billingHandler := billing.NewHandler(billingService)

	// Initialize admission components
	admissionRepo := admission.NewRepository(db)
	admissionService := admission.NewService(admissionRepo, publisher)
	admissionHandler := admission.NewHandler(admissionService)

	// Initialize Keycloak admin client
	keycloakAdmin, err := auth.NewKeycloakAdminClient()
	if err != nil {
		log.Fatalf("failed to initialize Keycloak admin client: %v", err)
	}

	// Initialize staff components
	staffRepo := staff.NewRepository(db)
	staffService := staff.NewService(staffRepo, keycloakAdmin, publisher)
	staffHandler := staff.NewHandler(staffService)

	// Initialize report components
	reportRepo := report.NewRepository(db)
	reportService := report.NewService(reportRepo)
	reportHandler := report.NewHandler(reportService)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("front-office-service"))

	// A nil *telemetry.Metrics must not become a non-nil interface
	// inside the middleware, so the conversion is guarded.
	var authMetrics auth.MetricsRecorder
	var permMetrics auth.PermissionMetricsRecorder
	if metrics != nil {
		authMetrics = metrics
		permMetrics = metrics
	}

	// protect wraps a handler in token verification and a permission check.
	protect := func(perm string, h http.HandlerFunc) http.Handler {
		return auth.MiddlewareWithMetrics(verifier, authMetrics)(
			auth.RequirePermissionWithMetrics(perm, perms, permMetrics)(h),
		)
	}

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"front-office-service"}`))
	}).Methods("GET")

	// Patient routes
	r.Handle("/patients", protect("patient:create", patientHandler.RegisterPatient)).Methods("POST")
	r.Handle("/patients", protect("patient:view", patientHandler.ListPatients)).Methods("GET")
	r.Handle("/patients/{id}", protect("patient:view", patientHandler.GetPatient)).Methods("GET")
	r.Handle("/patients/{id}", protect("patient:update", patientHandler.UpdatePatient)).Methods("PATCH")
	r.Handle("/patients/{id}", protect("patient:delete", patientHandler.DeactivatePatient)).Methods("DELETE")

	// Appointment routes
	r.Handle("/appointments", protect("appointment:create", apptHandler.BookAppointment)).Methods("POST")
	r.Handle("/appointments", protect("appointment:view", apptHandler.ListAppointments)).Methods("GET")
	r.Handle("/appointments/{id}", protect("appointment:view", apptHandler.GetAppointment)).Methods("GET")
	r.Handle("/appointments/{id}/reschedule", protect("appointment:update", apptHandler.RescheduleAppointment)).Methods("PUT")
	r.Handle("/appointments/{id}/status", protect("appointment:update", apptHandler.UpdateStatus)).Methods("PATCH")

	// Lab order routes
	r.Handle("/lab-orders", protect("lab:create", labHandler.CreateOrder)).Methods("POST")
	r.Handle("/lab-orders", protect("lab:view", labHandler.ListOrders)).Methods("GET")
	r.Handle("/lab-orders/{id}", protect("lab:view", labHandler.GetOrder)).Methods("GET")
	r.Handle("/lab-orders/{id}/status", protect("lab:update", labHandler.UpdateStatus)).Methods("PATCH")
	r.Handle("/lab-orders/{id}/results", protect("lab:result", labHandler.EnterResults)).Methods("POST")
	r.Handle("/lab-orders/{id}/verify", protect("lab:verify", labHandler.VerifyOrder)).Methods("POST")

	// Medication catalog routes
	r.Handle("/medications", protect("medication:create", pharmacyHandler.CreateMedication)).Methods("POST")
	r.Handle("/medications", protect("medication:view", pharmacyHandler.ListMedications)).Methods("GET")
	r.Handle("/medications/{id}", protect("medication:view", pharmacyHandler.GetMedication)).Methods("GET")
	r.Handle("/medications/{id}", protect("medication:update", pharmacyHandler.UpdateMedication)).Methods("PATCH")
	r.Handle("/medications/{id}/restock", protect("medication:restock", pharmacyHandler.RestockMedication)).Methods("POST")

	// Prescription routes
	r.Handle("/prescriptions", protect("prescription:create", pharmacyHandler.CreatePrescription)).Methods("POST")
	r.Handle("/prescriptions", protect("prescription:view", pharmacyHandler.ListPrescriptions)).Methods("GET")
	r.Handle("/prescriptions/{id}", protect("prescription:view", pharmacyHandler.GetPrescription)).Methods("GET")
	r.Handle("/prescriptions/{id}/status", protect("prescription:update", pharmacyHandler.UpdatePrescriptionStatus)).Methods("PATCH")
	r.Handle("/prescriptions/{id}/dispense", protect("prescription:dispense", pharmacyHandler.DispensePrescription)).Methods("POST")

	// Invoice routes
	r.Handle("/invoices", protect("invoice:create", billingHandler.CreateInvoice)).Methods("POST")
	r.Handle("/invoices", protect("invoice:view", billingHandler.ListInvoices)).Methods("GET")
	r.Handle("/invoices/{id}", protect("invoice:view", billingHandler.GetInvoice)).Methods("GET")
	r.Handle("/invoices/{id}/items", protect("invoice:update", billingHandler.AddLineItem)).Methods("POST")
	r.Handle("/invoices/{id}/items/{itemId}", protect("invoice:update", billingHandler.RemoveLineItem)).Methods("DELETE")
	r.Handle("/invoices/{id}/issue", protect("invoice:issue", billingHandler.IssueInvoice)).Methods("POST")
	r.Handle("/invoices/{id}/payments", protect("invoice:payment", billingHandler.RecordPayment)).Methods("POST")
	r.Handle("/invoices/{id}/void", protect("invoice:void", billingHandler.VoidInvoice)).Methods("POST")

	// Admission and MAR routes
	r.Handle("/admissions", protect("admission:create", admissionHandler.CreateAdmission)).Methods("POST")
	r.Handle("/admissions", protect("admission:view", admissionHandler.ListAdmissions)).Methods("GET")
	r.Handle("/admissions/{id}", protect("admission:view", admissionHandler.GetAdmission)).Methods("GET")
	r.Handle("/admissions/{id}/discharge", protect("admission:discharge", admissionHandler.Discharge)).Methods("POST")
	r.Handle("/admissions/{id}/mar", protect("mar:schedule", admissionHandler.ScheduleMAREntry)).Methods("POST")
	r.Handle("/admissions/{id}/mar", protect("mar:view", admissionHandler.ListMAREntries)).Methods("GET")
	r.Handle("/admissions/{id}/mar/{entryId}/record", protect("mar:record", admissionHandler.RecordAdministration)).Methods("POST")

	// Staff and shift routes
	r.Handle("/staff", protect("staff:create", staffHandler.CreateStaff)).Methods("POST")
	r.Handle("/staff", protect("staff:view", staffHandler.ListStaff)).Methods("GET")
	r.Handle("/staff/{id}", protect("staff:view", staffHandler.GetStaff)).Methods("GET")
	r.Handle("/staff/{id}", protect("staff:update", staffHandler.UpdateStaff)).Methods("PATCH")
	r.Handle("/staff/{id}", protect("staff:delete", staffHandler.DeactivateStaff)).Methods("DELETE")
	r.Handle("/staff/{id}/reset-password", protect("staff:update", staffHandler.ResetPassword)).Methods("POST")
	r.Handle("/shifts", protect("shift:create", staffHandler.CreateShift)).Methods("POST")
	r.Handle("/shifts", protect("shift:view", staffHandler.ListShifts)).Methods("GET")
	r.Handle("/shifts/{id}", protect("shift:delete", staffHandler.DeleteShift)).Methods("DELETE")

	// Report routes
	r.Handle("/reports/revenue", protect("report:view", reportHandler.Revenue)).Methods("GET")
	r.Handle("/reports/appointments", protect("report:view", reportHandler.AppointmentVolume)).Methods("GET")
	r.Handle("/reports/lab-turnaround", protect("report:view", reportHandler.LabTurnaround)).Methods("GET")
	r.Handle("/reports/pharmacy/dispenses", protect("report:view", reportHandler.Dispenses)).Methods("GET")
	r.Handle("/reports/pharmacy/low-stock", protect("report:view", reportHandler.LowStock)).Methods("GET")

	return r
}
