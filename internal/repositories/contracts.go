package repositories

import (
	"context"
	"time"

	"github.com/shubham4653/aurahealth101-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is the not-found error every repository returns for a missing
// row. Services also use it for ownership failures, keeping record existence
// secret from non-owners.
var ErrNotFound = gorm.ErrRecordNotFound

// PatientRepositoryContract defines patient persistence operations
type PatientRepositoryContract interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error)
}

// ProviderRepositoryContract defines provider persistence operations
type ProviderRepositoryContract interface {
	Create(ctx context.Context, provider *models.Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	GetByLedgerAddress(ctx context.Context, address string) (*models.Provider, error)
}

// RecordRepositoryContract defines medical record persistence operations.
// Records are never hard-deleted; Update is used only to flip bind status,
// contract address and the IsActive flag.
type RecordRepositoryContract interface {
	Create(ctx context.Context, record *models.MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MedicalRecord, error)
	Update(ctx context.Context, record *models.MedicalRecord) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.MedicalRecord, error)
	ListByUploader(ctx context.Context, providerID uuid.UUID) ([]models.MedicalRecord, error)
	ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]models.MedicalRecord, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.MedicalRecord, error)
}

// GrantRepositoryContract defines permission grant persistence operations.
// Grants are uniquely keyed by (patient, provider) and never deleted.
type GrantRepositoryContract interface {
	Upsert(ctx context.Context, grant *models.PermissionGrant) error
	GetByPair(ctx context.Context, patientID, providerID uuid.UUID) (*models.PermissionGrant, error)
	Save(ctx context.Context, grant *models.PermissionGrant) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.PermissionGrant, error)
	ListActiveByProvider(ctx context.Context, providerID uuid.UUID) ([]models.PermissionGrant, error)
}
