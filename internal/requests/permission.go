package requests

import (
	"github.com/google/uuid"
)

// UpsertPermissionRequest creates or updates a grant for the authenticated
// patient and the named provider
type UpsertPermissionRequest struct {
	ProviderID   uuid.UUID `json:"providerId" validate:"required"`
	DocumentType string    `json:"documentType"`
	Scope        string    `json:"scope"`
	IsActive     *bool     `json:"isActive"`
}

// TogglePermissionRequest flips the active flag on an existing grant
type TogglePermissionRequest struct {
	ProviderID uuid.UUID `json:"providerId" validate:"required"`
	IsActive   *bool     `json:"isActive" validate:"required"`
}

// AccessChangeRequest grants or revokes a provider's access to one record on
// the ledger side
type AccessChangeRequest struct {
	RecordID        uuid.UUID `json:"recordId" validate:"required"`
	ProviderAddress string    `json:"providerAddress" validate:"required"`
}
