package repositories

import (
	"context"
	"sync"

	"medical-consent-service/internal/domain/entities"
)

type MemoryRatingRepository struct {
	mu         sync.RWMutex
	events     map[consentPair]entities.RatingEvent
	aggregates map[int64]entities.RatingAggregate
}

func NewMemoryRatingRepository() *MemoryRatingRepository {
	return &MemoryRatingRepository{
		events:     make(map[consentPair]entities.RatingEvent),
		aggregates: make(map[int64]entities.RatingAggregate),
	}
}

func (r *MemoryRatingRepository) GetEvent(ctx context.Context, patientID, doctorID int64) (*entities.RatingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, ok := r.events[consentPair{patientID, doctorID}]
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func (r *MemoryRatingRepository) GetAggregate(ctx context.Context, doctorID int64) (entities.RatingAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agg, ok := r.aggregates[doctorID]
	if !ok {
		return entities.RatingAggregate{DoctorID: doctorID}, nil
	}
	return agg, nil
}

func (r *MemoryRatingRepository) Save(ctx context.Context, event *entities.RatingEvent, aggregate *entities.RatingAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[consentPair{event.PatientID, event.DoctorID}] = *event
	r.aggregates[aggregate.DoctorID] = *aggregate
	return nil
}
