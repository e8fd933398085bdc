package repositories

import (
	"context"
	"errors"
	"fmt"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"

	"gorm.io/gorm"
)

type GormParticipantRepository struct {
	db *gorm.DB
}

func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

func (r *GormParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	err := r.db.WithContext(ctx).Create(participant).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("create participant: %w", err)
	}
	// Either the address index or the (id, role) key collided.
	existing, lookupErr := r.FindByAddress(ctx, participant.Address)
	if lookupErr != nil {
		return lookupErr
	}
	if existing != nil {
		return fmt.Errorf("address %s: %w", participant.Address, domain.ErrAlreadyRegistered)
	}
	return fmt.Errorf("%s %d: %w", participant.Role, participant.ID, domain.ErrIDTaken)
}

func (r *GormParticipantRepository) FindByAddress(ctx context.Context, address string) (*entities.Participant, error) {
	var p entities.Participant
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find participant by address: %w", err)
	}
	return &p, nil
}

func (r *GormParticipantRepository) FindByRoleID(ctx context.Context, role entities.Role, id int64) (*entities.Participant, error) {
	var p entities.Participant
	err := r.db.WithContext(ctx).Where("role = ? AND id = ?", role, id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %d: %w", role, id, err)
	}
	return &p, nil
}
