package handlers

import (
	"github.com/shubham4653/aurahealth101-sub000/internal/middleware"
	"github.com/shubham4653/aurahealth101-sub000/internal/models"
	"github.com/shubham4653/aurahealth101-sub000/internal/repositories"
	"github.com/shubham4653/aurahealth101-sub000/internal/requests"

	"github.com/gofiber/fiber/v2"
	"github.com/kerimovok/go-pkg-utils/httpx"
	"github.com/kerimovok/go-pkg-utils/validator"
)

// AccountHandler handles patient and provider registration
type AccountHandler struct {
	patients  repositories.PatientRepositoryContract
	providers repositories.ProviderRepositoryContract
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(patients repositories.PatientRepositoryContract, providers repositories.ProviderRepositoryContract) *AccountHandler {
	return &AccountHandler{
		patients:  patients,
		providers: providers,
	}
}

// RegisterPatient creates a patient account and returns a session token
func (h *AccountHandler) RegisterPatient(c *fiber.Ctx) error {
	var input requests.RegisterPatientRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	patient := models.Patient{
		Name:         input.Name,
		Email:        input.Email,
		OwnerAddress: input.OwnerAddress,
	}
	if err := h.patients.Create(c.Context(), &patient); err != nil {
		response := httpx.InternalServerError("Failed to register patient", err)
		return httpx.SendResponse(c, response)
	}

	token, err := middleware.IssueToken(patient.ID, middleware.RolePatient, patient.OwnerAddress)
	if err != nil {
		response := httpx.InternalServerError("Failed to issue session token", err)
		return httpx.SendResponse(c, response)
	}

	response := httpx.Created("Patient registered successfully", fiber.Map{
		"patient": patient,
		"token":   token,
	})
	return httpx.SendResponse(c, response)
}

// RegisterProvider creates a provider account and returns a session token
func (h *AccountHandler) RegisterProvider(c *fiber.Ctx) error {
	var input requests.RegisterProviderRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	provider := models.Provider{
		Name:          input.Name,
		Email:         input.Email,
		Speciality:    input.Speciality,
		LedgerAddress: input.LedgerAddress,
	}
	if err := h.providers.Create(c.Context(), &provider); err != nil {
		response := httpx.InternalServerError("Failed to register provider", err)
		return httpx.SendResponse(c, response)
	}

	token, err := middleware.IssueToken(provider.ID, middleware.RoleProvider, provider.LedgerAddress)
	if err != nil {
		response := httpx.InternalServerError("Failed to issue session token", err)
		return httpx.SendResponse(c, response)
	}

	response := httpx.Created("Provider registered successfully", fiber.Map{
		"provider": provider,
		"token":    token,
	})
	return httpx.SendResponse(c, response)
}
