package entities

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is one entry in a patient's record sequence. Index is the
// 0-based position in that sequence and is never reused; IsVisible=false hides
// the record from reads instead of deleting it.
type MedicalRecord struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primary_key"`
	PatientID int64     `json:"patient_id" db:"patient_id" gorm:"uniqueIndex:idx_record_patient_index;not null"`
	Index     int       `json:"index" db:"record_index" gorm:"column:record_index;uniqueIndex:idx_record_patient_index;not null"`
	AddedBy   int64     `json:"added_by" db:"added_by" gorm:"not null"`
	Data      string    `json:"data" db:"data" gorm:"type:text;not null"`
	IsVisible bool      `json:"is_visible" db:"is_visible" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}
