package services

import (
	"context"
	"fmt"
	"strings"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"
	"medical-consent-service/internal/domain/repositories"
	"medical-consent-service/internal/partition"

	"github.com/rs/zerolog"
)

// IdentityServiceImpl implements IdentityServiceContract.
type IdentityServiceImpl struct {
	participants repositories.ParticipantRepositoryContract
	locks        *partition.Locker
	clock        Clock
	logger       zerolog.Logger
}

func NewIdentityService(store repositories.Store, locks *partition.Locker, clock Clock, logger zerolog.Logger) IdentityServiceContract {
	return &IdentityServiceImpl{
		participants: store.Participants,
		locks:        locks,
		clock:        clock,
		logger:       logger.With().Str("component", "identity").Logger(),
	}
}

func (s *IdentityServiceImpl) Register(ctx context.Context, address string, role entities.Role, requestedID int64) (*entities.Participant, error) {
	address = strings.TrimSpace(address)
	switch {
	case address == "":
		return nil, fmt.Errorf("register: empty address: %w", domain.ErrInvalidParticipant)
	case !role.Valid():
		return nil, fmt.Errorf("register: role %q: %w", role, domain.ErrInvalidParticipant)
	case requestedID <= 0:
		return nil, fmt.Errorf("register: id %d must be positive: %w", requestedID, domain.ErrInvalidParticipant)
	}

	unlock := s.locks.Lock(partition.AddressKey(address), partition.ParticipantKey(string(role), requestedID))
	defer unlock()

	existing, err := s.participants.FindByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("register %s: %w", address, domain.ErrAlreadyRegistered)
	}
	taken, err := s.participants.FindByRoleID(ctx, role, requestedID)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, fmt.Errorf("register %s %d: %w", role, requestedID, domain.ErrIDTaken)
	}

	participant := &entities.Participant{
		ID:        requestedID,
		Role:      role,
		Address:   address,
		CreatedAt: s.clock(),
	}
	if err := s.participants.Create(ctx, participant); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("address", address).Str("role", string(role)).Int64("id", requestedID).Msg("participant registered")
	return participant, nil
}

func (s *IdentityServiceImpl) Resolve(ctx context.Context, address string) (entities.Participant, error) {
	address = strings.TrimSpace(address)
	unregistered := entities.Participant{Address: address, Role: entities.RoleUnregistered}
	if address == "" {
		return unregistered, nil
	}
	p, err := s.participants.FindByAddress(ctx, address)
	if err != nil {
		return unregistered, fmt.Errorf("resolve %s: %w", address, err)
	}
	if p == nil {
		return unregistered, nil
	}
	return *p, nil
}
