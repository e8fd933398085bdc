package entities

import (
	"time"

	"github.com/google/uuid"
)

// ConsentEdge is the patient-to-doctor permission. Revocation flips Granted;
// edges are never removed.
type ConsentEdge struct {
	PatientID int64     `json:"patient_id" db:"patient_id" gorm:"primaryKey;autoIncrement:false"`
	DoctorID  int64     `json:"doctor_id" db:"doctor_id" gorm:"primaryKey;autoIncrement:false"`
	Granted   bool      `json:"granted" db:"granted" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}

// ConsentTransition is one SetConsent call on an edge. Seq is assigned by the
// store on insert and orders the history; At may repeat.
type ConsentTransition struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primary_key"`
	Seq       int64     `json:"seq" db:"seq" gorm:"autoIncrement;not null;uniqueIndex"`
	PatientID int64     `json:"patient_id" db:"patient_id" gorm:"index:idx_consent_transition_pair;not null"`
	DoctorID  int64     `json:"doctor_id" db:"doctor_id" gorm:"index:idx_consent_transition_pair;not null"`
	Granted   bool      `json:"granted" db:"granted" gorm:"not null"`
	At        time.Time `json:"at" db:"at" gorm:"not null"`
}
