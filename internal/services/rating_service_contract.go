package services

import (
	"context"

	"medical-consent-service/internal/domain/entities"
)

// RatingServiceContract maintains doctor reputation as a running (count, sum).
type RatingServiceContract interface {
	// RateDoctor sets the patient's live rating of the doctor; a repeat rating
	// replaces the previous value in the aggregate.
	RateDoctor(ctx context.Context, caller entities.Participant, patientID, doctorID int64, value int) error
	// GetAverageRating is O(1) and never fails for doctors without ratings.
	GetAverageRating(ctx context.Context, doctorID int64) (entities.RatingAverage, error)
}
