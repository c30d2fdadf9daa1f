package routes

import (
	"time"

	"github.com/shubham4653/aurahealth101-sub000/internal/handlers"
	"github.com/shubham4653/aurahealth101-sub000/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
)

// Handlers bundles the constructed handlers for route registration
type Handlers struct {
	Accounts    *handlers.AccountHandler
	Records     *handlers.RecordHandler
	Permissions *handlers.PermissionHandler
	Access      *handlers.AccessHandler
}

func SetupRoutes(app *fiber.App, h Handlers) {
	// API routes group
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Monitor route
	app.Get("/metrics", monitor.New())

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"service":   "records-api",
			"timestamp": time.Now().UTC(),
		})
	})

	// Registration routes
	v1.Post("/patients", h.Accounts.RegisterPatient)
	v1.Post("/providers", h.Accounts.RegisterProvider)

	// Record routes
	records := v1.Group("/records")
	records.Post("/", middleware.Protected(middleware.RoleProvider), h.Records.UploadRecord)
	records.Get("/patient", middleware.Protected(middleware.RolePatient), h.Records.ListPatientRecords)
	records.Get("/accessible", middleware.Protected(middleware.RoleProvider), h.Records.ListAccessibleRecords)
	records.Post("/:id/verify", middleware.Protected(""), h.Records.VerifyRecord)
	records.Get("/:id/download", middleware.Protected(""), h.Records.DownloadRecord)
	records.Patch("/:id/active", middleware.Protected(middleware.RolePatient), h.Records.SetRecordActive)

	// Ledger access routes
	access := v1.Group("/access", middleware.Protected(middleware.RolePatient))
	access.Post("/grant", h.Access.GrantAccess)
	access.Post("/revoke", h.Access.RevokeAccess)

	// Permission routes
	permissions := v1.Group("/permissions")
	permissions.Post("/", middleware.Protected(middleware.RolePatient), h.Permissions.UpsertPermission)
	permissions.Patch("/toggle", middleware.Protected(middleware.RolePatient), h.Permissions.TogglePermission)
	permissions.Get("/patient", middleware.Protected(middleware.RolePatient), h.Permissions.ListPatientPermissions)
	permissions.Get("/provider", middleware.Protected(middleware.RoleProvider), h.Permissions.ListProviderPermissions)
}
