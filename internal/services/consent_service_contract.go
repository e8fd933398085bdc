package services

import (
	"context"

	"medical-consent-service/internal/domain/entities"
)

// ConsentServiceContract is the patient-owned consent ledger.
type ConsentServiceContract interface {
	SetConsent(ctx context.Context, caller entities.Participant, patientID, doctorID int64, granted bool) error
	// HasConsent is false when the pair has no edge.
	HasConsent(ctx context.Context, patientID, doctorID int64) (bool, error)
	// History lists every SetConsent call on the pair, oldest first. Only the
	// patient may read it.
	History(ctx context.Context, caller entities.Participant, patientID, doctorID int64) ([]entities.ConsentTransition, error)
}
