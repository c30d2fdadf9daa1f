package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shubham4653/aurahealth101-sub000/internal/ledger"
	"github.com/shubham4653/aurahealth101-sub000/internal/models"
	"github.com/shubham4653/aurahealth101-sub000/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type recordServiceFixture struct {
	service   *RecordService
	records   *MockRecordRepository
	patients  *MockPatientRepository
	grants    *MockGrantRepository
	gateway   *MockLedgerGateway
	patientID uuid.UUID
}

func newRecordServiceFixture(t *testing.T) *recordServiceFixture {
	t.Helper()

	records := NewMockRecordRepository()
	patients := NewMockPatientRepository()
	grants := NewMockGrantRepository()
	gateway := NewMockLedgerGateway()

	patient := &models.Patient{
		Name:         "Ada",
		Email:        "ada@example.com",
		OwnerAddress: "0xABC0000000000000000000000000000000000001",
	}
	require.NoError(t, patients.Create(context.Background(), patient))

	return &recordServiceFixture{
		service:   NewRecordService(records, patients, grants, gateway),
		records:   records,
		patients:  patients,
		grants:    grants,
		gateway:   gateway,
		patientID: patient.ID,
	}
}

func (f *recordServiceFixture) uploadInput(content string) UploadInput {
	return UploadInput{
		PatientID:      f.patientID,
		ProviderID:     uuid.New(),
		RecordType:     "Lab Report",
		Description:    "routine bloodwork",
		FileName:       "labs.pdf",
		MimeType:       "application/pdf",
		FileSizeBytes:  int64(len(content)),
		StoragePointer: "uploads/labs.pdf",
		ContentHash:    ContentHashBytes([]byte(content)),
	}
}

func TestRegisterUpload_EndToEnd(t *testing.T) {
	f := newRecordServiceFixture(t)

	record, err := f.service.RegisterUpload(context.Background(), f.uploadInput("test-file-content"))
	require.NoError(t, err)

	assert.Equal(t,
		"82580297a88598bdb005e14af4bbf7de917b07698e8bfa1714e7d9d69923e54d",
		record.ContentHash)
	assert.Len(t, record.LedgerRecordID, RecordIDHexLen)
	assert.True(t, strings.HasPrefix(record.LedgerRecordID, "0x"))
	assert.NotEmpty(t, record.LedgerContractAddress)
	assert.Equal(t, models.BindStatusBound, record.BindStatus)
	assert.True(t, record.IsActive)

	// The deploy went through the gateway with the derived id
	require.NotEmpty(t, f.gateway.Calls)
	assert.Equal(t, "DeployRecord:"+record.LedgerRecordID, f.gateway.Calls[0])

	// Integrity round-trip
	ok, _, err := f.service.VerifyIntegrity(context.Background(), record.ID, ContentHashBytes([]byte("test-file-content")))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, stored, err := f.service.VerifyIntegrity(context.Background(), record.ID, ContentHashBytes([]byte("tampered")))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, record.ContentHash, stored.ContentHash)
}

func TestRegisterUpload_MetadataPersisted(t *testing.T) {
	f := newRecordServiceFixture(t)

	input := f.uploadInput("test-file-content")
	input.Metadata = datatypes.JSON(`{"department":"cardiology","urgent":true}`)

	record, err := f.service.RegisterUpload(context.Background(), input)
	require.NoError(t, err)
	assert.JSONEq(t, `{"department":"cardiology","urgent":true}`, string(record.Metadata))

	// The persisted row carries the metadata, not just the returned value
	stored, err := f.service.GetRecord(context.Background(), record.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"department":"cardiology","urgent":true}`, string(stored.Metadata))
}

func TestRegisterUpload_SingleByteTamperDetected(t *testing.T) {
	f := newRecordServiceFixture(t)

	original := []byte("test-file-content")
	record, err := f.service.RegisterUpload(context.Background(), f.uploadInput(string(original)))
	require.NoError(t, err)

	for i := range original {
		tampered := append([]byte(nil), original...)
		tampered[i] ^= 0x01

		ok, _, err := f.service.VerifyIntegrity(context.Background(), record.ID, ContentHashBytes(tampered))
		require.NoError(t, err)
		assert.False(t, ok, "mutation at byte %d not detected", i)
	}
}

func TestRegisterUpload_MissingOwnerAddress(t *testing.T) {
	f := newRecordServiceFixture(t)

	patient := &models.Patient{Name: "Noah", Email: "noah@example.com"}
	require.NoError(t, f.patients.Create(context.Background(), patient))

	input := f.uploadInput("content")
	input.PatientID = patient.ID

	_, err := f.service.RegisterUpload(context.Background(), input)
	assert.ErrorIs(t, err, ErrMissingOwnerAddress)
	assert.Empty(t, f.gateway.Calls, "ledger must not be called without an owner address")
}

func TestRegisterUpload_UnknownPatient(t *testing.T) {
	f := newRecordServiceFixture(t)

	input := f.uploadInput("content")
	input.PatientID = uuid.New()

	_, err := f.service.RegisterUpload(context.Background(), input)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRegisterUpload_LedgerFailureLeavesPendingRow(t *testing.T) {
	f := newRecordServiceFixture(t)
	f.gateway.DeployFunc = func(ctx context.Context, recordID, ownerAddress, storagePointer string) (string, error) {
		return "", &ledger.Error{Op: "deploy record contract", Err: errors.New("endorsement failed")}
	}

	_, err := f.service.RegisterUpload(context.Background(), f.uploadInput("content"))
	require.Error(t, err)
	assert.True(t, ledger.IsLedgerError(err))

	// The pending row stays behind for the sweep to reconcile
	pending, listErr := f.records.ListPendingOlderThan(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, listErr)
	require.Len(t, pending, 1)
	assert.Equal(t, models.BindStatusPending, pending[0].BindStatus)
}

func TestRegisterUpload_PersistFailureAfterDeploy(t *testing.T) {
	f := newRecordServiceFixture(t)
	f.records.UpdateFunc = func(ctx context.Context, record *models.MedicalRecord) error {
		return errors.New("connection reset")
	}

	_, err := f.service.RegisterUpload(context.Background(), f.uploadInput("content"))
	require.Error(t, err)
	assert.False(t, ledger.IsLedgerError(err))

	// The contract was deployed; the caller still sees a failed upload
	require.NotEmpty(t, f.gateway.Calls)
	assert.Contains(t, f.gateway.Calls[0], "DeployRecord:")
}

func TestListAccessibleToProvider_Gating(t *testing.T) {
	f := newRecordServiceFixture(t)
	ctx := context.Background()

	uploaderA := uuid.New()
	providerB := uuid.New()

	input := f.uploadInput("test-file-content")
	input.ProviderID = uploaderA
	record, err := f.service.RegisterUpload(ctx, input)
	require.NoError(t, err)

	// Uploader sees their own upload
	visible, err := f.service.ListAccessibleToProvider(ctx, uploaderA)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	// Provider B sees nothing before a grant
	visible, err = f.service.ListAccessibleToProvider(ctx, providerB)
	require.NoError(t, err)
	assert.Empty(t, visible)

	// Active grant makes the record visible
	require.NoError(t, f.grants.Upsert(ctx, &models.PermissionGrant{
		PatientID:    f.patientID,
		ProviderID:   providerB,
		DocumentType: "All",
		Scope:        "Full Record",
		IsActive:     true,
	}))
	visible, err = f.service.ListAccessibleToProvider(ctx, providerB)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, record.ID, visible[0].ID)

	// Deactivating the grant hides it again
	grant, err := f.grants.GetByPair(ctx, f.patientID, providerB)
	require.NoError(t, err)
	grant.IsActive = false
	require.NoError(t, f.grants.Save(ctx, grant))

	visible, err = f.service.ListAccessibleToProvider(ctx, providerB)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestListAccessibleToProvider_DocumentTypeScope(t *testing.T) {
	f := newRecordServiceFixture(t)
	ctx := context.Background()

	providerB := uuid.New()

	labInput := f.uploadInput("lab content")
	_, err := f.service.RegisterUpload(ctx, labInput)
	require.NoError(t, err)

	imagingInput := f.uploadInput("imaging content")
	imagingInput.RecordType = "Imaging Report"
	imaging, err := f.service.RegisterUpload(ctx, imagingInput)
	require.NoError(t, err)

	require.NoError(t, f.grants.Upsert(ctx, &models.PermissionGrant{
		PatientID:    f.patientID,
		ProviderID:   providerB,
		DocumentType: "Imaging Report",
		Scope:        "Full Record",
		IsActive:     true,
	}))

	visible, err := f.service.ListAccessibleToProvider(ctx, providerB)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, imaging.ID, visible[0].ID)
}

func TestSetActive_Ownership(t *testing.T) {
	f := newRecordServiceFixture(t)
	ctx := context.Background()

	record, err := f.service.RegisterUpload(ctx, f.uploadInput("content"))
	require.NoError(t, err)

	// A different patient cannot toggle it and learns nothing
	_, err = f.service.SetActive(ctx, record.ID, uuid.New(), false)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	updated, err := f.service.SetActive(ctx, record.ID, f.patientID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	// Inactive records drop out of the patient listing consumers via IsActive
	listed, err := f.service.ListForPatient(ctx, f.patientID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.False(t, listed[0].IsActive)
}

func TestSweepPendingBinds(t *testing.T) {
	f := newRecordServiceFixture(t)
	ctx := context.Background()

	stale := &models.MedicalRecord{
		PatientID:      f.patientID,
		ProviderID:     uuid.New(),
		RecordType:     "Lab Report",
		FileName:       "old.pdf",
		StoragePointer: "uploads/old.pdf",
		ContentHash:    ContentHashBytes([]byte("old")),
		LedgerRecordID: DeriveRecordID(f.patientID.String(), ContentHashBytes([]byte("old")), time.Now()),
		BindStatus:     models.BindStatusPending,
		IsActive:       true,
	}
	require.NoError(t, f.records.Create(ctx, stale))
	aged := f.records.records[stale.ID]
	aged.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	f.records.records[stale.ID] = aged

	fresh, err := f.service.RegisterUpload(ctx, f.uploadInput("fresh"))
	require.NoError(t, err)

	marked, err := f.service.SweepPendingBinds(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	swept, err := f.records.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BindStatusOrphaned, swept.BindStatus)

	untouched, err := f.records.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BindStatusBound, untouched.BindStatus)
}
