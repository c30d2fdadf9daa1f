package handlers

import (
	"github.com/shubham4653/aurahealth101-sub000/internal/middleware"
	"github.com/shubham4653/aurahealth101-sub000/internal/requests"
	"github.com/shubham4653/aurahealth101-sub000/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/kerimovok/go-pkg-utils/httpx"
	"github.com/kerimovok/go-pkg-utils/validator"
)

// PermissionHandler handles permission grant HTTP requests
type PermissionHandler struct {
	permissionService *services.PermissionService
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(permissionService *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// UpsertPermission creates or updates the authenticated patient's grant for a
// provider. Idempotent on the (patient, provider) pair.
func (h *PermissionHandler) UpsertPermission(c *fiber.Ctx) error {
	var input requests.UpsertPermissionRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	grant, err := h.permissionService.Upsert(c.Context(), middleware.AccountID(c), input.ProviderID, input.DocumentType, input.Scope, isActive)
	if err != nil {
		return sendServiceError(c, err, "upsert permission")
	}

	response := httpx.OK("Permission saved successfully", grant)
	return httpx.SendResponse(c, response)
}

// TogglePermission flips the active flag on an existing grant; 404 when the
// pair has no grant yet
func (h *PermissionHandler) TogglePermission(c *fiber.Ctx) error {
	var input requests.TogglePermissionRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	grant, err := h.permissionService.Toggle(c.Context(), middleware.AccountID(c), input.ProviderID, *input.IsActive)
	if err != nil {
		return sendServiceError(c, err, "toggle permission")
	}

	response := httpx.OK("Permission updated successfully", grant)
	return httpx.SendResponse(c, response)
}

// ListPatientPermissions returns every grant issued by the authenticated
// patient, active or not
func (h *PermissionHandler) ListPatientPermissions(c *fiber.Ctx) error {
	grants, err := h.permissionService.ListForPatient(c.Context(), middleware.AccountID(c))
	if err != nil {
		return sendServiceError(c, err, "list permissions")
	}

	response := httpx.OK("Permissions retrieved successfully", grants)
	return httpx.SendResponse(c, response)
}

// ListProviderPermissions returns only active grants naming the authenticated
// provider
func (h *PermissionHandler) ListProviderPermissions(c *fiber.Ctx) error {
	grants, err := h.permissionService.ListActiveForProvider(c.Context(), middleware.AccountID(c))
	if err != nil {
		return sendServiceError(c, err, "list permissions")
	}

	response := httpx.OK("Permissions retrieved successfully", grants)
	return httpx.SendResponse(c, response)
}
