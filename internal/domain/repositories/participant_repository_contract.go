package repositories

import (
	"context"

	"medical-consent-service/internal/domain/entities"
)

// ParticipantRepositoryContract stores registered identities. Lookups return
// (nil, nil) when nothing matches.
type ParticipantRepositoryContract interface {
	// Create persists a new participant. It fails with domain.ErrAlreadyRegistered
	// or domain.ErrIDTaken when a uniqueness constraint is violated.
	Create(ctx context.Context, participant *entities.Participant) error
	FindByAddress(ctx context.Context, address string) (*entities.Participant, error)
	FindByRoleID(ctx context.Context, role entities.Role, id int64) (*entities.Participant, error)
}
