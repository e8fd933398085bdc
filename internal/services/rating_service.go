package services

import (
	"context"
	"fmt"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"
	"medical-consent-service/internal/domain/repositories"
	"medical-consent-service/internal/partition"

	"github.com/rs/zerolog"
)

// RatingServiceImpl implements RatingServiceContract. All writes for a doctor
// hold the doctor's partition lock.
type RatingServiceImpl struct {
	ratings  repositories.RatingRepositoryContract
	consents repositories.ConsentRepositoryContract
	locks    *partition.Locker
	clock    Clock
	logger   zerolog.Logger
}

func NewRatingService(store repositories.Store, locks *partition.Locker, clock Clock, logger zerolog.Logger) RatingServiceContract {
	return &RatingServiceImpl{
		ratings:  store.Ratings,
		consents: store.Consents,
		locks:    locks,
		clock:    clock,
		logger:   logger.With().Str("component", "ratings").Logger(),
	}
}

func (s *RatingServiceImpl) RateDoctor(ctx context.Context, caller entities.Participant, patientID, doctorID int64, value int) error {
	if !caller.IsPatient(patientID) {
		return fmt.Errorf("rate doctor %d as patient %d: %w", doctorID, patientID, domain.ErrForbidden)
	}
	if value < entities.MinRating || value > entities.MaxRating {
		return fmt.Errorf("rating %d: %w", value, domain.ErrInvalidRating)
	}

	// Edges are never deleted, so existence needs no patient lock.
	edge, err := s.consents.Get(ctx, patientID, doctorID)
	if err != nil {
		return err
	}
	if edge == nil {
		return fmt.Errorf("patient %d never consented to doctor %d: %w", patientID, doctorID, domain.ErrForbidden)
	}

	unlock := s.locks.Lock(partition.DoctorKey(doctorID))
	defer unlock()

	aggregate, err := s.ratings.GetAggregate(ctx, doctorID)
	if err != nil {
		return err
	}
	previous, err := s.ratings.GetEvent(ctx, patientID, doctorID)
	if err != nil {
		return err
	}
	if previous != nil {
		aggregate.Sum += int64(value - previous.Value)
	} else {
		aggregate.Sum += int64(value)
		aggregate.Count++
	}
	aggregate.DoctorID = doctorID

	event := &entities.RatingEvent{
		PatientID: patientID,
		DoctorID:  doctorID,
		Value:     value,
		UpdatedAt: s.clock(),
	}
	if err := s.ratings.Save(ctx, event, &aggregate); err != nil {
		return err
	}

	s.logger.Debug().Int64("patient_id", patientID).Int64("doctor_id", doctorID).Int("value", value).Msg("doctor rated")
	return nil
}

func (s *RatingServiceImpl) GetAverageRating(ctx context.Context, doctorID int64) (entities.RatingAverage, error) {
	unlock := s.locks.RLock(partition.DoctorKey(doctorID))
	defer unlock()

	aggregate, err := s.ratings.GetAggregate(ctx, doctorID)
	if err != nil {
		return entities.RatingAverage{DoctorID: doctorID}, err
	}
	return aggregate.Average(), nil
}
