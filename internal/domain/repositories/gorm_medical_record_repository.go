package repositories

import (
	"context"
	"errors"
	"fmt"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"

	"gorm.io/gorm"
)

type GormMedicalRecordRepository struct {
	db *gorm.DB
}

func NewGormMedicalRecordRepository(db *gorm.DB) *GormMedicalRecordRepository {
	return &GormMedicalRecordRepository{db: db}
}

// appendAttempts bounds retries when another process takes the same index.
const appendAttempts = 3

// Append relies on the caller holding the patient's partition lock; the unique
// (patient_id, record_index) index rejects a concurrent writer from another
// process, in which case the index is recounted and the insert retried.
func (r *GormMedicalRecordRepository) Append(ctx context.Context, record *entities.MedicalRecord) error {
	var err error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&entities.MedicalRecord{}).Where("patient_id = ?", record.PatientID).Count(&count).Error; err != nil {
				return fmt.Errorf("count records of patient %d: %w", record.PatientID, err)
			}
			record.Index = int(count)
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("append record for patient %d: %w", record.PatientID, err)
			}
			return nil
		})
		if !isUniqueViolation(err) {
			return err
		}
	}
	return err
}

func (r *GormMedicalRecordRepository) GetByIndex(ctx context.Context, patientID int64, index int) (*entities.MedicalRecord, error) {
	var rec entities.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND record_index = ?", patientID, index).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %d of patient %d: %w", index, patientID, err)
	}
	return &rec, nil
}

func (r *GormMedicalRecordRepository) Update(ctx context.Context, record *entities.MedicalRecord) error {
	res := r.db.WithContext(ctx).Model(&entities.MedicalRecord{}).
		Where("patient_id = ? AND record_index = ?", record.PatientID, record.Index).
		Updates(map[string]interface{}{
			"data":       record.Data,
			"is_visible": record.IsVisible,
			"updated_at": record.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update record %d of patient %d: %w", record.Index, record.PatientID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("patient %d index %d: %w", record.PatientID, record.Index, domain.ErrNotFound)
	}
	return nil
}

func (r *GormMedicalRecordRepository) FindByPatientID(ctx context.Context, patientID int64) ([]entities.MedicalRecord, error) {
	var records []entities.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("record_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find records of patient %d: %w", patientID, err)
	}
	return records, nil
}
