package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/shubham4653/aurahealth101-sub000/internal/ledger"
	"github.com/shubham4653/aurahealth101-sub000/internal/models"
	"github.com/shubham4653/aurahealth101-sub000/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Sentinel errors surfaced by the record registry. Handlers map these to
// status codes at the request boundary; nothing below the boundary retries.
var (
	ErrMissingOwnerAddress = errors.New("patient has no registered owner address")
	ErrRecordNotBound      = errors.New("record has no confirmed ledger binding")
)

// UploadInput carries everything RegisterUpload needs after the blob has been
// written to storage and hashed.
type UploadInput struct {
	PatientID      uuid.UUID
	ProviderID     uuid.UUID
	RecordType     string
	Description    string
	FileName       string
	MimeType       string
	FileSizeBytes  int64
	StoragePointer string
	ContentHash    string
	Metadata       datatypes.JSON
}

// RecordService is the record registry: the only component that creates or
// mutates MedicalRecord rows. The upload write is two-phase: the row is
// persisted as pending before the ledger call and flipped to bound only after
// the contract commit confirms.
type RecordService struct {
	records  repositories.RecordRepositoryContract
	patients repositories.PatientRepositoryContract
	grants   repositories.GrantRepositoryContract
	gateway  ledger.Gateway
}

// NewRecordService creates a new record registry instance
func NewRecordService(
	records repositories.RecordRepositoryContract,
	patients repositories.PatientRepositoryContract,
	grants repositories.GrantRepositoryContract,
	gateway ledger.Gateway,
) *RecordService {
	return &RecordService{
		records:  records,
		patients: patients,
		grants:   grants,
		gateway:  gateway,
	}
}

// RegisterUpload derives the ledger record id, persists the pending row,
// deploys the per-record contract and marks the row bound. The ledger call
// blocks until commit; it is never retried here.
func (s *RecordService) RegisterUpload(ctx context.Context, input UploadInput) (*models.MedicalRecord, error) {
	patient, err := s.patients.GetByID(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	if patient.OwnerAddress == "" {
		return nil, ErrMissingOwnerAddress
	}

	now := time.Now().UTC()
	recordID := DeriveRecordID(input.PatientID.String(), input.ContentHash, now)

	record := &models.MedicalRecord{
		PatientID:      input.PatientID,
		ProviderID:     input.ProviderID,
		RecordType:     input.RecordType,
		Description:    input.Description,
		FileName:       input.FileName,
		MimeType:       input.MimeType,
		FileSizeBytes:  input.FileSizeBytes,
		StoragePointer: input.StoragePointer,
		ContentHash:    input.ContentHash,
		LedgerRecordID: recordID,
		BindStatus:     models.BindStatusPending,
		Metadata:       input.Metadata,
		IsActive:       true,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	contractAddress, err := s.gateway.DeployRecordContract(ctx, recordID, patient.OwnerAddress, input.StoragePointer)
	if err != nil {
		// The pending row stays behind; the sweep marks it orphaned if the
		// ambiguous case turns out to have committed on chain.
		return nil, err
	}

	record.LedgerContractAddress = contractAddress
	record.BindStatus = models.BindStatusBound
	if err := s.records.Update(ctx, record); err != nil {
		// Contract deployed but the binding never landed in the database.
		// There is no on-chain rollback; alert loudly so the divergence is
		// reconcilable by hand.
		log.Printf("ALERT: ledger contract %s deployed for record id %s but persistence failed: %v",
			contractAddress, recordID, err)
		return nil, err
	}

	return record, nil
}

// VerifyIntegrity compares the stored content hash against a caller-supplied
// hash of a candidate file. Equality only; the stored blob is not re-read, so
// the check is as strong as the caller's own hashing of the file.
func (s *RecordService) VerifyIntegrity(ctx context.Context, recordID uuid.UUID, candidateHash string) (bool, *models.MedicalRecord, error) {
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return false, nil, err
	}
	return strings.EqualFold(record.ContentHash, candidateHash), record, nil
}

// ListForPatient returns all records owned by the patient
func (s *RecordService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]models.MedicalRecord, error) {
	return s.records.ListByPatient(ctx, patientID)
}

// ListAccessibleToProvider returns the provider's own uploads plus records of
// patients with an active grant naming the provider, honoring the grant's
// document-type scope. Inactive records are never listed.
func (s *RecordService) ListAccessibleToProvider(ctx context.Context, providerID uuid.UUID) ([]models.MedicalRecord, error) {
	own, err := s.records.ListByUploader(ctx, providerID)
	if err != nil {
		return nil, err
	}

	grants, err := s.grants.ListActiveByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	grantByPatient := make(map[uuid.UUID]models.PermissionGrant, len(grants))
	patientIDs := make([]uuid.UUID, 0, len(grants))
	for _, grant := range grants {
		grantByPatient[grant.PatientID] = grant
		patientIDs = append(patientIDs, grant.PatientID)
	}

	granted, err := s.records.ListByPatients(ctx, patientIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	var accessible []models.MedicalRecord
	for _, record := range own {
		if !record.IsActive {
			continue
		}
		seen[record.ID] = true
		accessible = append(accessible, record)
	}
	for _, record := range granted {
		if !record.IsActive || seen[record.ID] {
			continue
		}
		grant := grantByPatient[record.PatientID]
		if grant.DocumentType != "All" && grant.DocumentType != record.RecordType {
			continue
		}
		seen[record.ID] = true
		accessible = append(accessible, record)
	}

	return accessible, nil
}

// GetOwnedRecord fetches a record and checks patient ownership. Ownership
// failures are reported as not-found so record existence stays secret.
func (s *RecordService) GetOwnedRecord(ctx context.Context, recordID, patientID uuid.UUID) (*models.MedicalRecord, error) {
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.PatientID != patientID {
		return nil, repositories.ErrNotFound
	}
	return record, nil
}

// GetRecord fetches a record by id
func (s *RecordService) GetRecord(ctx context.Context, recordID uuid.UUID) (*models.MedicalRecord, error) {
	return s.records.GetByID(ctx, recordID)
}

// SetActive toggles the soft-delete flag on a patient-owned record
func (s *RecordService) SetActive(ctx context.Context, recordID, patientID uuid.UUID, active bool) (*models.MedicalRecord, error) {
	record, err := s.GetOwnedRecord(ctx, recordID, patientID)
	if err != nil {
		return nil, err
	}
	record.IsActive = active
	if err := s.records.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// SweepPendingBinds marks pending rows older than the cutoff as orphaned and
// logs each one. These are uploads whose ledger bind never confirmed; there
// is no automatic on-chain rollback, only visibility.
func (s *RecordService) SweepPendingBinds(ctx context.Context, pendingTimeout time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-pendingTimeout)
	stale, err := s.records.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range stale {
		record := &stale[i]
		record.BindStatus = models.BindStatusOrphaned
		if err := s.records.Update(ctx, record); err != nil {
			log.Printf("failed to mark record %s orphaned: %v", record.ID, err)
			continue
		}
		log.Printf("ALERT: record %s (ledger id %s) pending since %s marked orphaned",
			record.ID, record.LedgerRecordID, record.CreatedAt.Format(time.RFC3339))
		marked++
	}
	return marked, nil
}
