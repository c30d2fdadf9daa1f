package repositories

import (
	"context"
	"time"

	"github.com/shubham4653/aurahealth101-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Compile-time checks that the GORM repositories satisfy their contracts
var (
	_ PatientRepositoryContract  = (*PatientRepository)(nil)
	_ ProviderRepositoryContract = (*ProviderRepository)(nil)
	_ RecordRepositoryContract   = (*RecordRepository)(nil)
	_ GrantRepositoryContract    = (*GrantRepository)(nil)
)

// PatientRepository is the GORM implementation of PatientRepositoryContract
type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// ProviderRepository is the GORM implementation of ProviderRepositoryContract
type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Create(ctx context.Context, provider *models.Provider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}

func (r *ProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *ProviderRepository) GetByLedgerAddress(ctx context.Context, address string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "ledger_address = ?", address).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

// RecordRepository is the GORM implementation of RecordRepositoryContract
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(ctx context.Context, record *models.MedicalRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RecordRepository) Update(ctx context.Context, record *models.MedicalRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *RecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&records).Error
	return records, err
}

func (r *RecordRepository) ListByUploader(ctx context.Context, providerID uuid.UUID) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at desc").
		Find(&records).Error
	return records, err
}

func (r *RecordRepository) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]models.MedicalRecord, error) {
	if len(patientIDs) == 0 {
		return nil, nil
	}
	var records []models.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("patient_id IN ?", patientIDs).
		Order("created_at desc").
		Find(&records).Error
	return records, err
}

func (r *RecordRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("bind_status = ? AND created_at < ?", models.BindStatusPending, cutoff).
		Find(&records).Error
	return records, err
}

// GrantRepository is the GORM implementation of GrantRepositoryContract
type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// Upsert creates or updates the grant for its (patient, provider) pair. The
// unique index serializes concurrent writers to last-write-wins.
func (r *GrantRepository) Upsert(ctx context.Context, grant *models.PermissionGrant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "patient_id"}, {Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document_type", "scope", "is_active", "updated_at"}),
	}).Create(grant).Error
}

func (r *GrantRepository) GetByPair(ctx context.Context, patientID, providerID uuid.UUID) (*models.PermissionGrant, error) {
	var grant models.PermissionGrant
	err := r.db.WithContext(ctx).
		First(&grant, "patient_id = ? AND provider_id = ?", patientID, providerID).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *GrantRepository) Save(ctx context.Context, grant *models.PermissionGrant) error {
	return r.db.WithContext(ctx).Save(grant).Error
}

func (r *GrantRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.PermissionGrant, error) {
	var grants []models.PermissionGrant
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&grants).Error
	return grants, err
}

func (r *GrantRepository) ListActiveByProvider(ctx context.Context, providerID uuid.UUID) ([]models.PermissionGrant, error) {
	var grants []models.PermissionGrant
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND is_active = ?", providerID, true).
		Order("created_at desc").
		Find(&grants).Error
	return grants, err
}
