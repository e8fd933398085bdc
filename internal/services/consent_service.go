package services

import (
	"context"
	"fmt"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"
	"medical-consent-service/internal/domain/repositories"
	"medical-consent-service/internal/partition"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConsentServiceImpl implements ConsentServiceContract. Edges share the
// patient partition lock with the record store, so a revocation is ordered
// against every record write for that patient.
type ConsentServiceImpl struct {
	participants repositories.ParticipantRepositoryContract
	consents     repositories.ConsentRepositoryContract
	locks        *partition.Locker
	clock        Clock
	logger       zerolog.Logger
}

func NewConsentService(store repositories.Store, locks *partition.Locker, clock Clock, logger zerolog.Logger) ConsentServiceContract {
	return &ConsentServiceImpl{
		participants: store.Participants,
		consents:     store.Consents,
		locks:        locks,
		clock:        clock,
		logger:       logger.With().Str("component", "consent").Logger(),
	}
}

func (s *ConsentServiceImpl) SetConsent(ctx context.Context, caller entities.Participant, patientID, doctorID int64, granted bool) error {
	if !caller.IsPatient(patientID) {
		return fmt.Errorf("set consent for patient %d: %w", patientID, domain.ErrForbidden)
	}
	if err := s.requireParticipant(ctx, entities.RolePatient, patientID); err != nil {
		return err
	}
	if err := s.requireParticipant(ctx, entities.RoleDoctor, doctorID); err != nil {
		return err
	}

	unlock := s.locks.Lock(partition.PatientKey(patientID))
	defer unlock()

	now := s.clock()
	edge, err := s.consents.Get(ctx, patientID, doctorID)
	if err != nil {
		return err
	}
	if edge == nil {
		edge = &entities.ConsentEdge{PatientID: patientID, DoctorID: doctorID, CreatedAt: now}
	}
	edge.Granted = granted
	edge.UpdatedAt = now

	transition := &entities.ConsentTransition{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Granted:   granted,
		At:        now,
	}
	if err := s.consents.Save(ctx, edge, transition); err != nil {
		return err
	}

	s.logger.Debug().Int64("patient_id", patientID).Int64("doctor_id", doctorID).Bool("granted", granted).Msg("consent updated")
	return nil
}

func (s *ConsentServiceImpl) HasConsent(ctx context.Context, patientID, doctorID int64) (bool, error) {
	unlock := s.locks.RLock(partition.PatientKey(patientID))
	defer unlock()

	return hasConsent(ctx, s.consents, patientID, doctorID)
}

func (s *ConsentServiceImpl) History(ctx context.Context, caller entities.Participant, patientID, doctorID int64) ([]entities.ConsentTransition, error) {
	if !caller.IsPatient(patientID) {
		return nil, fmt.Errorf("consent history of patient %d: %w", patientID, domain.ErrForbidden)
	}

	unlock := s.locks.RLock(partition.PatientKey(patientID))
	defer unlock()

	return s.consents.ListTransitions(ctx, patientID, doctorID)
}

func (s *ConsentServiceImpl) requireParticipant(ctx context.Context, role entities.Role, id int64) error {
	p, err := s.participants.FindByRoleID(ctx, role, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%s %d is not registered: %w", role, id, domain.ErrInvalidParticipant)
	}
	return nil
}

// hasConsent reads the edge without locking; callers hold the patient lock.
func hasConsent(ctx context.Context, consents repositories.ConsentRepositoryContract, patientID, doctorID int64) (bool, error) {
	edge, err := consents.Get(ctx, patientID, doctorID)
	if err != nil {
		return false, err
	}
	return edge != nil && edge.Granted, nil
}
