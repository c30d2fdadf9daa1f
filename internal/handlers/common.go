package handlers

import (
	"errors"

	"github.com/shubham4653/aurahealth101-sub000/internal/ledger"
	"github.com/shubham4653/aurahealth101-sub000/internal/repositories"
	"github.com/shubham4653/aurahealth101-sub000/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/kerimovok/go-pkg-utils/httpx"
)

// sendServiceError maps a service-layer error to its HTTP response once, at
// the request boundary. Ledger failures pass the underlying reason through;
// the signing credential is server-side only, so debuggability wins over
// masking.
func sendServiceError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response := httpx.NotFound("Resource not found")
		return httpx.SendResponse(c, response)
	case errors.Is(err, services.ErrMissingOwnerAddress):
		response := httpx.BadRequest("Patient has no registered owner address", err)
		return httpx.SendResponse(c, response)
	case errors.Is(err, services.ErrRecordNotBound):
		response := httpx.BadRequest("Record has no confirmed ledger binding", err)
		return httpx.SendResponse(c, response)
	case errors.Is(err, services.ErrRecordInactive):
		response := httpx.Forbidden("Record is inactive")
		return httpx.SendResponse(c, response)
	case ledger.IsLedgerError(err):
		response := httpx.InternalServerError("Ledger operation failed", err)
		return httpx.SendResponse(c, response)
	default:
		response := httpx.InternalServerError("Failed to "+action, err)
		return httpx.SendResponse(c, response)
	}
}
