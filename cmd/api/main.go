package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/auth"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/db"
	internalhttp "github.com/WailSalutem-Health-Care/front-office-service/internal/http"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/telemetry"
)

func main() {
	log.Println("front-office-service starting")

	ctx := context.Background()

	// Initialize OpenTelemetry
	otelProvider, err := telemetry.InitProvider(ctx, telemetry.LoadConfig())
	if err != nil {
		log.Printf("Warning: OpenTelemetry initialization failed: %v", err)
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Warning: failed to initialize metrics: %v", err)
		metrics = nil
	}

	// Connect to database
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Connect to RabbitMQ. The publisher is nil-safe so the API keeps
	// serving when the broker is down.
	publisher, err := messaging.NewPublisher()
	if err != nil {
		log.Printf("Warning: RabbitMQ connection failed: %v", err)
		log.Println("Service will continue without event publishing")
		publisher = nil
	}
	defer publisher.Close()

	// Load auth configuration
	authCfg := auth.LoadConfig()
	jwks, err := auth.NewJWKS(authCfg.JWKSURL, 0)
	if err != nil {
		log.Fatalf("Failed to load JWKS from %s: %v", authCfg.JWKSURL, err)
	}
	verifier := auth.NewVerifier(authCfg, jwks)
	log.Println("✓ JWKS loaded, token verification enabled")

	permissionsPath := os.Getenv("PERMISSIONS_FILE")
	if permissionsPath == "" {
		permissionsPath = "permissions.yml"
	}
	perms, err := auth.LoadPermissions(permissionsPath)
	if err != nil {
		log.Fatalf("Failed to load permissions from %s: %v", permissionsPath, err)
	}
	log.Printf("✓ Loaded permissions for %d roles", len(perms))

	router := internalhttp.SetupRouter(database, verifier, perms, publisher, metrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      internalhttp.CORSMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ front-office-service listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down front-office-service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
	if otelProvider != nil {
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during telemetry shutdown: %v", err)
		}
	}
	log.Println("front-office-service stopped")
}
