package services

import (
	"context"

	"github.com/shubham4653/aurahealth101-sub000/internal/models"
	"github.com/shubham4653/aurahealth101-sub000/internal/repositories"

	"github.com/google/uuid"
)

// Defaults applied when an upsert omits the scope tags.
const (
	DefaultDocumentType = "All"
	DefaultScope        = "Full Record"
)

// PermissionService is the permission store: CRUD over PermissionGrant keyed
// by the unique (patient, provider) pair.
type PermissionService struct {
	grants repositories.GrantRepositoryContract
}

// NewPermissionService creates a new permission store instance
func NewPermissionService(grants repositories.GrantRepositoryContract) *PermissionService {
	return &PermissionService{grants: grants}
}

// Upsert creates or updates the grant for (patientID, providerID). Idempotent:
// repeated calls leave exactly one grant for the pair, carrying the latest
// scope and active flag.
func (s *PermissionService) Upsert(ctx context.Context, patientID, providerID uuid.UUID, documentType, scope string, isActive bool) (*models.PermissionGrant, error) {
	if documentType == "" {
		documentType = DefaultDocumentType
	}
	if scope == "" {
		scope = DefaultScope
	}

	grant := &models.PermissionGrant{
		PatientID:    patientID,
		ProviderID:   providerID,
		DocumentType: documentType,
		Scope:        scope,
		IsActive:     isActive,
	}
	if err := s.grants.Upsert(ctx, grant); err != nil {
		return nil, err
	}

	// Re-read so the caller sees the persisted row, not the insert candidate.
	return s.grants.GetByPair(ctx, patientID, providerID)
}

// Toggle flips the active flag on an existing grant. Unlike Upsert it
// requires a pre-existing relationship and fails with not-found otherwise.
func (s *PermissionService) Toggle(ctx context.Context, patientID, providerID uuid.UUID, isActive bool) (*models.PermissionGrant, error) {
	grant, err := s.grants.GetByPair(ctx, patientID, providerID)
	if err != nil {
		return nil, err
	}

	grant.IsActive = isActive
	if err := s.grants.Save(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

// ListForPatient returns every grant the patient has issued, active or not
func (s *PermissionService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]models.PermissionGrant, error) {
	return s.grants.ListByPatient(ctx, patientID)
}

// ListActiveForProvider returns only the active grants naming the provider
func (s *PermissionService) ListActiveForProvider(ctx context.Context, providerID uuid.UUID) ([]models.PermissionGrant, error) {
	return s.grants.ListActiveByProvider(ctx, providerID)
}
