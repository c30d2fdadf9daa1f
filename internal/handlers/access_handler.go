package handlers

import (
	"github.com/shubham4653/aurahealth101-sub000/internal/middleware"
	"github.com/shubham4653/aurahealth101-sub000/internal/requests"
	"github.com/shubham4653/aurahealth101-sub000/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/kerimovok/go-pkg-utils/httpx"
	"github.com/kerimovok/go-pkg-utils/validator"
)

// AccessHandler handles patient-initiated grant and revoke requests
type AccessHandler struct {
	accessService *services.AccessService
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(accessService *services.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// GrantAccess authorizes a provider on one of the patient's records. The
// ledger write is synchronous; a slow response here is the commit wait.
func (h *AccessHandler) GrantAccess(c *fiber.Ctx) error {
	var input requests.AccessChangeRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	grant, err := h.accessService.GrantProviderAccess(c.Context(), middleware.AccountID(c), input.RecordID, input.ProviderAddress)
	if err != nil {
		return sendServiceError(c, err, "grant access")
	}

	response := httpx.OK("Access granted successfully", grant)
	return httpx.SendResponse(c, response)
}

// RevokeAccess removes a provider's authorization on one of the patient's
// records
func (h *AccessHandler) RevokeAccess(c *fiber.Ctx) error {
	var input requests.AccessChangeRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	grant, err := h.accessService.RevokeProviderAccess(c.Context(), middleware.AccountID(c), input.RecordID, input.ProviderAddress)
	if err != nil {
		return sendServiceError(c, err, "revoke access")
	}

	response := httpx.OK("Access revoked successfully", grant)
	return httpx.SendResponse(c, response)
}
