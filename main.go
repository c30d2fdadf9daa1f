package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shubham4653/aurahealth101-sub000/internal/config"
	"github.com/shubham4653/aurahealth101-sub000/internal/constants"
	"github.com/shubham4653/aurahealth101-sub000/internal/database"
	"github.com/shubham4653/aurahealth101-sub000/internal/handlers"
	"github.com/shubham4653/aurahealth101-sub000/internal/ledger"
	"github.com/shubham4653/aurahealth101-sub000/internal/repositories"
	"github.com/shubham4653/aurahealth101-sub000/internal/routes"
	"github.com/shubham4653/aurahealth101-sub000/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	pkgConfig "github.com/kerimovok/go-pkg-utils/config"
	pkgValidator "github.com/kerimovok/go-pkg-utils/validator"
)

func init() {
	// Load all configs
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("failed to load configs: %v", err)
	}

	// Validate environment variables
	if err := pkgValidator.ValidateConfig(constants.EnvValidationRules); err != nil {
		log.Fatalf("configuration validation failed: %v", err)
	}

	// Connect to database
	if err := database.ConnectDB(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
}

func setupApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 100 * 1024 * 1024, // 100MB limit for file uploads
	})

	// Middleware
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(compress.New())
	app.Use(healthcheck.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.New().String()
		},
	}))
	app.Use(logger.New())

	return app
}

// startSweep runs the pending-bind reconciliation on a ticker until ctx is
// cancelled. Stale pending rows get marked orphaned and logged.
func startSweep(ctx context.Context, recordService *services.RecordService, cfg config.SweepConfig) {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	timeout := time.Duration(cfg.PendingTimeoutMinutes) * time.Minute

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				marked, err := recordService.SweepPendingBinds(ctx, timeout)
				if err != nil {
					log.Printf("pending-bind sweep failed: %v", err)
					continue
				}
				if marked > 0 {
					log.Printf("pending-bind sweep marked %d record(s) orphaned", marked)
				}
			}
		}
	}()
}

func main() {
	cfg := config.GetConfig().Records

	// Connect to the ledger. The signing credential is loaded here, once;
	// without it no state-changing ledger call can ever succeed, so fail
	// before serving a single request.
	gateway, err := ledger.Connect(cfg.Ledger)
	if err != nil {
		log.Fatalf("failed to connect to ledger: %v", err)
	}
	defer gateway.Close()

	// Repositories
	patientRepo := repositories.NewPatientRepository(database.DB)
	providerRepo := repositories.NewProviderRepository(database.DB)
	recordRepo := repositories.NewRecordRepository(database.DB)
	grantRepo := repositories.NewGrantRepository(database.DB)

	// Services
	storeService := services.NewStoreService()
	recordService := services.NewRecordService(recordRepo, patientRepo, grantRepo, gateway)
	permissionService := services.NewPermissionService(grantRepo)
	accessService := services.NewAccessService(recordRepo, providerRepo, grantRepo, gateway)

	// Setup Fiber app
	app := setupApp()

	// Setup routes
	routes.SetupRoutes(app, routes.Handlers{
		Accounts:    handlers.NewAccountHandler(patientRepo, providerRepo),
		Records:     handlers.NewRecordHandler(recordService, storeService, accessService),
		Permissions: handlers.NewPermissionHandler(permissionService),
		Access:      handlers.NewAccessHandler(accessService),
	})

	// Start the pending-bind reconciliation sweep
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	if cfg.Sweep.Enabled {
		startSweep(sweepCtx, recordService, cfg.Sweep)
	}

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Gracefully shutting down...")

		cancelSweep()

		// Shutdown the server
		if err := app.Shutdown(); err != nil {
			log.Printf("error during server shutdown: %v", err)
		}

		log.Println("Server gracefully stopped")
		os.Exit(0)
	}()

	// Start server
	if err := app.Listen(":" + pkgConfig.GetEnv("PORT")); err != nil && err != http.ErrServerClosed {
		log.Fatalf("failed to start server: %v", err)
	}
}
