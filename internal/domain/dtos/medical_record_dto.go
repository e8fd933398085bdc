package dtos

import (
	"time"

	"medical-consent-service/internal/domain/entities"

	"github.com/samber/lo"
)

// CreateMedicalRecordRequest defines the payload for appending a record.
type CreateMedicalRecordRequest struct {
	Data string `json:"data" validate:"required"`
}

// UpdateMedicalRecordRequest replaces the data of an existing record.
type UpdateMedicalRecordRequest struct {
	Data string `json:"data" validate:"required"`
}

type SetRecordVisibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

type CreateMedicalRecordResponse struct {
	Index int `json:"index"`
}

// MedicalRecordDTO represents a record in API responses.
type MedicalRecordDTO struct {
	Index     int       `json:"index"`
	PatientID int64     `json:"patient_id"`
	AddedBy   int64     `json:"added_by"`
	Data      string    `json:"data"`
	IsVisible bool      `json:"is_visible"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewMedicalRecordDTOs(records []entities.MedicalRecord) []MedicalRecordDTO {
	return lo.Map(records, func(r entities.MedicalRecord, _ int) MedicalRecordDTO {
		return MedicalRecordDTO{
			Index:     r.Index,
			PatientID: r.PatientID,
			AddedBy:   r.AddedBy,
			Data:      r.Data,
			IsVisible: r.IsVisible,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
	})
}
