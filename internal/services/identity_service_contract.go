package services

import (
	"context"

	"medical-consent-service/internal/domain/entities"
)

// IdentityServiceContract maps caller addresses to registered participants.
type IdentityServiceContract interface {
	// Register binds address to a new participant with the requested id.
	Register(ctx context.Context, address string, role entities.Role, requestedID int64) (*entities.Participant, error)
	// Resolve never reports absence as an error: unknown addresses resolve to
	// a participant with RoleUnregistered. Only storage faults are returned.
	Resolve(ctx context.Context, address string) (entities.Participant, error)
}
