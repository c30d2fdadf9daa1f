package services

import (
	"context"
	"errors"

	"github.com/shubham4653/aurahealth101-sub000/internal/ledger"
	"github.com/shubham4653/aurahealth101-sub000/internal/models"
	"github.com/shubham4653/aurahealth101-sub000/internal/repositories"

	"github.com/google/uuid"
)

// ErrRecordInactive is returned when an access change targets a soft-deleted
// record.
var ErrRecordInactive = errors.New("record is inactive")

// AccessService is the authorization gate in front of the record registry and
// the ledger's grant/revoke methods. The ledger call and the application-side
// grant mirror are two separate steps with no distributed transaction; the
// ledger write happens first, so a failure leaves the application state
// untouched.
type AccessService struct {
	records   repositories.RecordRepositoryContract
	providers repositories.ProviderRepositoryContract
	grants    repositories.GrantRepositoryContract
	gateway   ledger.Gateway
}

// NewAccessService creates a new access enforcement instance
func NewAccessService(
	records repositories.RecordRepositoryContract,
	providers repositories.ProviderRepositoryContract,
	grants repositories.GrantRepositoryContract,
	gateway ledger.Gateway,
) *AccessService {
	return &AccessService{
		records:   records,
		providers: providers,
		grants:    grants,
		gateway:   gateway,
	}
}

// resolveAccessChange validates the record and resolves the provider for a
// grant or revoke. Records not owned by the caller read as not-found.
func (s *AccessService) resolveAccessChange(ctx context.Context, patientID, recordID uuid.UUID, providerAddress string) (*models.MedicalRecord, *models.Provider, error) {
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}
	if record.PatientID != patientID {
		return nil, nil, repositories.ErrNotFound
	}
	if !record.IsActive {
		return nil, nil, ErrRecordInactive
	}
	if record.BindStatus != models.BindStatusBound || record.LedgerContractAddress == "" {
		return nil, nil, ErrRecordNotBound
	}

	provider, err := s.providers.GetByLedgerAddress(ctx, providerAddress)
	if err != nil {
		return nil, nil, err
	}

	return record, provider, nil
}

// GrantProviderAccess authorizes a provider on the record's ledger contract,
// then mirrors the authorization as an active application-side grant.
func (s *AccessService) GrantProviderAccess(ctx context.Context, patientID, recordID uuid.UUID, providerAddress string) (*models.PermissionGrant, error) {
	record, provider, err := s.resolveAccessChange(ctx, patientID, recordID, providerAddress)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.InvokeAccess(ctx, record.LedgerContractAddress, ledger.OpGrantAccess, providerAddress); err != nil {
		return nil, err
	}

	grant := &models.PermissionGrant{
		PatientID:    patientID,
		ProviderID:   provider.ID,
		DocumentType: DefaultDocumentType,
		Scope:        DefaultScope,
		IsActive:     true,
	}
	if err := s.grants.Upsert(ctx, grant); err != nil {
		return nil, err
	}
	return s.grants.GetByPair(ctx, patientID, provider.ID)
}

// RevokeProviderAccess removes the provider from the record's ledger contract,
// then deactivates the mirrored application-side grant. A missing grant row is
// not an error; the ledger revoke already took effect.
func (s *AccessService) RevokeProviderAccess(ctx context.Context, patientID, recordID uuid.UUID, providerAddress string) (*models.PermissionGrant, error) {
	record, provider, err := s.resolveAccessChange(ctx, patientID, recordID, providerAddress)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.InvokeAccess(ctx, record.LedgerContractAddress, ledger.OpRevokeAccess, providerAddress); err != nil {
		return nil, err
	}

	grant, err := s.grants.GetByPair(ctx, patientID, provider.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	grant.IsActive = false
	if err := s.grants.Save(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

// CanProviderRead decides whether a provider may read a record. The uploader
// always may. Anyone else needs both an active application-side grant
// covering the record type and a live permission attestation on the ledger
// contract; the ledger read is the provable half of the check.
func (s *AccessService) CanProviderRead(ctx context.Context, record *models.MedicalRecord, providerID uuid.UUID, providerAddress string) (bool, error) {
	if !record.IsActive {
		return false, nil
	}
	if record.ProviderID == providerID {
		return true, nil
	}

	grant, err := s.grants.GetByPair(ctx, record.PatientID, providerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !grant.IsActive {
		return false, nil
	}
	if grant.DocumentType != "All" && grant.DocumentType != record.RecordType {
		return false, nil
	}

	if record.LedgerContractAddress == "" {
		return false, nil
	}
	return s.gateway.CheckPermission(ctx, record.LedgerContractAddress, providerAddress)
}
