package repositories

import (
	"context"

	"medical-consent-service/internal/domain/entities"
)

type MedicalRecordRepositoryContract interface {
	// Append assigns record.Index as the next position in the patient's
	// sequence and stores the record.
	Append(ctx context.Context, record *entities.MedicalRecord) error
	// GetByIndex returns (nil, nil) when the index is out of range.
	GetByIndex(ctx context.Context, patientID int64, index int) (*entities.MedicalRecord, error)
	Update(ctx context.Context, record *entities.MedicalRecord) error
	// FindByPatientID returns all of the patient's records in index order,
	// hidden ones included.
	FindByPatientID(ctx context.Context, patientID int64) ([]entities.MedicalRecord, error)
}
