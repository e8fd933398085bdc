package repositories

import (
	"context"

	"medical-consent-service/internal/domain/entities"
)

type ConsentRepositoryContract interface {
	// Get returns (nil, nil) when the pair has no edge yet.
	Get(ctx context.Context, patientID, doctorID int64) (*entities.ConsentEdge, error)
	// Save upserts the edge and appends the transition atomically.
	Save(ctx context.Context, edge *entities.ConsentEdge, transition *entities.ConsentTransition) error
	// ListTransitions returns the pair's history oldest first.
	ListTransitions(ctx context.Context, patientID, doctorID int64) ([]entities.ConsentTransition, error)
}
