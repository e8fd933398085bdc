package services

import (
	"context"

	"medical-consent-service/internal/domain/entities"
)

// MedicalRecordServiceContract defines the operations on a patient's record
// sequence. Every call re-reads consent; nothing is cached.
type MedicalRecordServiceContract interface {
	// AddRecord appends a visible record and returns its 0-based index.
	AddRecord(ctx context.Context, caller entities.Participant, patientID, doctorID int64, data string) (int, error)
	// UpdateRecord replaces the data of a record the caller authored.
	UpdateRecord(ctx context.Context, caller entities.Participant, patientID, doctorID int64, index int, data string) error
	// SetRecordVisibility hides or re-shows a record the caller authored.
	SetRecordVisibility(ctx context.Context, caller entities.Participant, patientID, doctorID int64, index int, visible bool) error
	// GetRecords returns the patient's visible records in creation order.
	GetRecords(ctx context.Context, caller entities.Participant, patientID, doctorID int64) ([]entities.MedicalRecord, error)
}
