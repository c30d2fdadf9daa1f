package requests

// RegisterPatientRequest registers a patient account. The owner address is
// optional at registration but required before any upload for the patient.
type RegisterPatientRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	OwnerAddress string `json:"ownerAddress"`
}

// RegisterProviderRequest registers a provider account
type RegisterProviderRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Speciality    string `json:"speciality"`
	LedgerAddress string `json:"ledgerAddress" validate:"required"`
}
