package dtos

import (
	"time"

	"medical-consent-service/internal/domain/entities"

	"github.com/samber/lo"
)

// SetConsentRequest grants (true) or revokes (false) a doctor's consent.
type SetConsentRequest struct {
	Granted *bool `json:"granted" validate:"required"`
}

type ConsentStatusDTO struct {
	PatientID int64 `json:"patient_id"`
	DoctorID  int64 `json:"doctor_id"`
	Granted   bool  `json:"granted"`
}

type ConsentTransitionDTO struct {
	Granted bool      `json:"granted"`
	At      time.Time `json:"at"`
}

func NewConsentHistoryDTO(history []entities.ConsentTransition) []ConsentTransitionDTO {
	return lo.Map(history, func(t entities.ConsentTransition, _ int) ConsentTransitionDTO {
		return ConsentTransitionDTO{Granted: t.Granted, At: t.At}
	})
}
