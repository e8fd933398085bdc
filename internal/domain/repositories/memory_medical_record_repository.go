package repositories

import (
	"context"
	"fmt"
	"sync"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"
)

// MemoryMedicalRecordRepository partitions records by patient; the slice
// position is the record index.
type MemoryMedicalRecordRepository struct {
	mu      sync.RWMutex
	records map[int64][]entities.MedicalRecord
}

func NewMemoryMedicalRecordRepository() *MemoryMedicalRecordRepository {
	return &MemoryMedicalRecordRepository{records: make(map[int64][]entities.MedicalRecord)}
}

func (r *MemoryMedicalRecordRepository) Append(ctx context.Context, record *entities.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.Index = len(r.records[record.PatientID])
	r.records[record.PatientID] = append(r.records[record.PatientID], *record)
	return nil
}

func (r *MemoryMedicalRecordRepository) GetByIndex(ctx context.Context, patientID int64, index int) (*entities.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.records[patientID]
	if index < 0 || index >= len(records) {
		return nil, nil
	}
	rec := records[index]
	return &rec, nil
}

func (r *MemoryMedicalRecordRepository) Update(ctx context.Context, record *entities.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.records[record.PatientID]
	if record.Index < 0 || record.Index >= len(records) {
		return fmt.Errorf("patient %d index %d: %w", record.PatientID, record.Index, domain.ErrNotFound)
	}
	records[record.Index] = *record
	return nil
}

func (r *MemoryMedicalRecordRepository) FindByPatientID(ctx context.Context, patientID int64) ([]entities.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.records[patientID]
	out := make([]entities.MedicalRecord, len(records))
	copy(out, records)
	return out, nil
}
