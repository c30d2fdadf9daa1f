package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shubham4653/aurahealth101-sub000/internal/ledger"
	"github.com/shubham4653/aurahealth101-sub000/internal/models"
	"github.com/shubham4653/aurahealth101-sub000/internal/repositories"

	"github.com/google/uuid"
)

// Compile-time checks that the mocks implement their contracts
var (
	_ repositories.PatientRepositoryContract  = (*MockPatientRepository)(nil)
	_ repositories.ProviderRepositoryContract = (*MockProviderRepository)(nil)
	_ repositories.RecordRepositoryContract   = (*MockRecordRepository)(nil)
	_ repositories.GrantRepositoryContract    = (*MockGrantRepository)(nil)
	_ ledger.Gateway                          = (*MockLedgerGateway)(nil)
)

// MockPatientRepository is an in-memory PatientRepositoryContract
type MockPatientRepository struct {
	patients map[uuid.UUID]models.Patient
}

func NewMockPatientRepository() *MockPatientRepository {
	return &MockPatientRepository{patients: make(map[uuid.UUID]models.Patient)}
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	m.patients[patient.ID] = *patient
	return nil
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	patient, ok := m.patients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &patient, nil
}

// MockProviderRepository is an in-memory ProviderRepositoryContract
type MockProviderRepository struct {
	providers map[uuid.UUID]models.Provider
}

func NewMockProviderRepository() *MockProviderRepository {
	return &MockProviderRepository{providers: make(map[uuid.UUID]models.Provider)}
}

func (m *MockProviderRepository) Create(ctx context.Context, provider *models.Provider) error {
	if provider.ID == uuid.Nil {
		provider.ID = uuid.New()
	}
	m.providers[provider.ID] = *provider
	return nil
}

func (m *MockProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	provider, ok := m.providers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &provider, nil
}

func (m *MockProviderRepository) GetByLedgerAddress(ctx context.Context, address string) (*models.Provider, error) {
	for _, provider := range m.providers {
		if provider.LedgerAddress == address {
			p := provider
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// MockRecordRepository is an in-memory RecordRepositoryContract. CreateFunc
// and UpdateFunc override the default behavior when set.
type MockRecordRepository struct {
	records map[uuid.UUID]models.MedicalRecord

	CreateFunc func(ctx context.Context, record *models.MedicalRecord) error
	UpdateFunc func(ctx context.Context, record *models.MedicalRecord) error
}

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{records: make(map[uuid.UUID]models.MedicalRecord)}
}

func (m *MockRecordRepository) Create(ctx context.Context, record *models.MedicalRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	m.records[record.ID] = *record
	return nil
}

func (m *MockRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MedicalRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &record, nil
}

func (m *MockRecordRepository) Update(ctx context.Context, record *models.MedicalRecord) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, record)
	}
	if _, ok := m.records[record.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.records[record.ID] = *record
	return nil
}

func (m *MockRecordRepository) list(match func(models.MedicalRecord) bool) []models.MedicalRecord {
	var out []models.MedicalRecord
	for _, record := range m.records {
		if match(record) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MockRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.MedicalRecord, error) {
	return m.list(func(r models.MedicalRecord) bool { return r.PatientID == patientID }), nil
}

func (m *MockRecordRepository) ListByUploader(ctx context.Context, providerID uuid.UUID) ([]models.MedicalRecord, error) {
	return m.list(func(r models.MedicalRecord) bool { return r.ProviderID == providerID }), nil
}

func (m *MockRecordRepository) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]models.MedicalRecord, error) {
	wanted := make(map[uuid.UUID]bool, len(patientIDs))
	for _, id := range patientIDs {
		wanted[id] = true
	}
	return m.list(func(r models.MedicalRecord) bool { return wanted[r.PatientID] }), nil
}

func (m *MockRecordRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.MedicalRecord, error) {
	return m.list(func(r models.MedicalRecord) bool {
		return r.BindStatus == models.BindStatusPending && r.CreatedAt.Before(cutoff)
	}), nil
}

// MockGrantRepository is an in-memory GrantRepositoryContract with upsert
// semantics matching the unique (patient, provider) index
type MockGrantRepository struct {
	grants map[string]models.PermissionGrant
}

func NewMockGrantRepository() *MockGrantRepository {
	return &MockGrantRepository{grants: make(map[string]models.PermissionGrant)}
}

func grantKey(patientID, providerID uuid.UUID) string {
	return patientID.String() + "|" + providerID.String()
}

func (m *MockGrantRepository) Upsert(ctx context.Context, grant *models.PermissionGrant) error {
	key := grantKey(grant.PatientID, grant.ProviderID)
	if existing, ok := m.grants[key]; ok {
		existing.DocumentType = grant.DocumentType
		existing.Scope = grant.Scope
		existing.IsActive = grant.IsActive
		m.grants[key] = existing
		return nil
	}
	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}
	m.grants[key] = *grant
	return nil
}

func (m *MockGrantRepository) GetByPair(ctx context.Context, patientID, providerID uuid.UUID) (*models.PermissionGrant, error) {
	grant, ok := m.grants[grantKey(patientID, providerID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &grant, nil
}

func (m *MockGrantRepository) Save(ctx context.Context, grant *models.PermissionGrant) error {
	m.grants[grantKey(grant.PatientID, grant.ProviderID)] = *grant
	return nil
}

func (m *MockGrantRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.PermissionGrant, error) {
	var out []models.PermissionGrant
	for _, grant := range m.grants {
		if grant.PatientID == patientID {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (m *MockGrantRepository) ListActiveByProvider(ctx context.Context, providerID uuid.UUID) ([]models.PermissionGrant, error) {
	var out []models.PermissionGrant
	for _, grant := range m.grants {
		if grant.ProviderID == providerID && grant.IsActive {
			out = append(out, grant)
		}
	}
	return out, nil
}

// MockLedgerGateway is an in-memory ledger.Gateway that records every call
// and tracks per-contract authorized addresses. The Func fields override
// default behavior when set.
type MockLedgerGateway struct {
	Calls       []string
	permissions map[string]map[string]bool
	deployed    int

	DeployFunc func(ctx context.Context, recordID, ownerAddress, storagePointer string) (string, error)
	InvokeFunc func(ctx context.Context, contractAddress string, op ledger.ContractOp, providerAddress string) error
	CheckFunc  func(ctx context.Context, contractAddress, accessorAddress string) (bool, error)
}

func NewMockLedgerGateway() *MockLedgerGateway {
	return &MockLedgerGateway{permissions: make(map[string]map[string]bool)}
}

func (m *MockLedgerGateway) DeployRecordContract(ctx context.Context, recordID, ownerAddress, storagePointer string) (string, error) {
	m.Calls = append(m.Calls, "DeployRecord:"+recordID)
	if m.DeployFunc != nil {
		return m.DeployFunc(ctx, recordID, ownerAddress, storagePointer)
	}
	m.deployed++
	address := fmt.Sprintf("0xC0N7RAC7%04d", m.deployed)
	m.permissions[address] = map[string]bool{ownerAddress: true}
	return address, nil
}

func (m *MockLedgerGateway) InvokeAccess(ctx context.Context, contractAddress string, op ledger.ContractOp, providerAddress string) error {
	m.Calls = append(m.Calls, op.String()+":"+providerAddress)
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, contractAddress, op, providerAddress)
	}
	if m.permissions[contractAddress] == nil {
		m.permissions[contractAddress] = make(map[string]bool)
	}
	m.permissions[contractAddress][providerAddress] = op == ledger.OpGrantAccess
	return nil
}

func (m *MockLedgerGateway) CheckPermission(ctx context.Context, contractAddress, accessorAddress string) (bool, error) {
	m.Calls = append(m.Calls, "CheckPermission:"+accessorAddress)
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, contractAddress, accessorAddress)
	}
	return m.permissions[contractAddress][accessorAddress], nil
}
