package repositories

import (
	"context"
	"fmt"
	"sync"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"
)

type roleID struct {
	role entities.Role
	id   int64
}

// MemoryParticipantRepository keeps participants in maps indexed both by
// address and by (role, id).
type MemoryParticipantRepository struct {
	mu        sync.RWMutex
	byAddress map[string]entities.Participant
	byRoleID  map[roleID]string
}

func NewMemoryParticipantRepository() *MemoryParticipantRepository {
	return &MemoryParticipantRepository{
		byAddress: make(map[string]entities.Participant),
		byRoleID:  make(map[roleID]string),
	}
}

func (r *MemoryParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byAddress[participant.Address]; ok {
		return fmt.Errorf("address %s: %w", participant.Address, domain.ErrAlreadyRegistered)
	}
	key := roleID{role: participant.Role, id: participant.ID}
	if _, ok := r.byRoleID[key]; ok {
		return fmt.Errorf("%s %d: %w", participant.Role, participant.ID, domain.ErrIDTaken)
	}
	r.byAddress[participant.Address] = *participant
	r.byRoleID[key] = participant.Address
	return nil
}

func (r *MemoryParticipantRepository) FindByAddress(ctx context.Context, address string) (*entities.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byAddress[address]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryParticipantRepository) FindByRoleID(ctx context.Context, role entities.Role, id int64) (*entities.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	address, ok := r.byRoleID[roleID{role: role, id: id}]
	if !ok {
		return nil, nil
	}
	p := r.byAddress[address]
	return &p, nil
}
