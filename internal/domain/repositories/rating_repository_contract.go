package repositories

import (
	"context"

	"medical-consent-service/internal/domain/entities"
)

type RatingRepositoryContract interface {
	// GetEvent returns (nil, nil) when the patient has not rated the doctor.
	GetEvent(ctx context.Context, patientID, doctorID int64) (*entities.RatingEvent, error)
	// GetAggregate returns a zero aggregate for doctors without ratings.
	GetAggregate(ctx context.Context, doctorID int64) (entities.RatingAggregate, error)
	// Save replaces the live event and the doctor's aggregate atomically.
	Save(ctx context.Context, event *entities.RatingEvent, aggregate *entities.RatingAggregate) error
}
