package repositories

import (
	"context"
	"sync"

	"medical-consent-service/internal/domain/entities"
)

type consentPair struct {
	patientID int64
	doctorID  int64
}

type MemoryConsentRepository struct {
	mu          sync.RWMutex
	edges       map[consentPair]entities.ConsentEdge
	transitions map[consentPair][]entities.ConsentTransition
	seq         int64
}

func NewMemoryConsentRepository() *MemoryConsentRepository {
	return &MemoryConsentRepository{
		edges:       make(map[consentPair]entities.ConsentEdge),
		transitions: make(map[consentPair][]entities.ConsentTransition),
	}
}

func (r *MemoryConsentRepository) Get(ctx context.Context, patientID, doctorID int64) (*entities.ConsentEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	edge, ok := r.edges[consentPair{patientID, doctorID}]
	if !ok {
		return nil, nil
	}
	return &edge, nil
}

func (r *MemoryConsentRepository) Save(ctx context.Context, edge *entities.ConsentEdge, transition *entities.ConsentTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := consentPair{edge.PatientID, edge.DoctorID}
	r.edges[key] = *edge
	if transition != nil {
		r.seq++
		transition.Seq = r.seq
		r.transitions[key] = append(r.transitions[key], *transition)
	}
	return nil
}

func (r *MemoryConsentRepository) ListTransitions(ctx context.Context, patientID, doctorID int64) ([]entities.ConsentTransition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.transitions[consentPair{patientID, doctorID}]
	out := make([]entities.ConsentTransition, len(history))
	copy(out, history)
	return out, nil
}
