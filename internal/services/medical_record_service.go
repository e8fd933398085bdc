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
	"github.com/samber/lo"
)

// MedicalRecordServiceImpl implements MedicalRecordServiceContract.
type MedicalRecordServiceImpl struct {
	records  repositories.MedicalRecordRepositoryContract
	consents repositories.ConsentRepositoryContract
	locks    *partition.Locker
	clock    Clock
	logger   zerolog.Logger
}

func NewMedicalRecordService(store repositories.Store, locks *partition.Locker, clock Clock, logger zerolog.Logger) MedicalRecordServiceContract {
	return &MedicalRecordServiceImpl{
		records:  store.Records,
		consents: store.Consents,
		locks:    locks,
		clock:    clock,
		logger:   logger.With().Str("component", "records").Logger(),
	}
}

func (s *MedicalRecordServiceImpl) AddRecord(ctx context.Context, caller entities.Participant, patientID, doctorID int64, data string) (int, error) {
	if !caller.IsDoctor(doctorID) {
		return 0, fmt.Errorf("add record for patient %d as doctor %d: %w", patientID, doctorID, domain.ErrForbidden)
	}

	unlock := s.locks.Lock(partition.PatientKey(patientID))
	defer unlock()

	if err := s.requireConsent(ctx, patientID, doctorID); err != nil {
		return 0, err
	}

	now := s.clock()
	record := &entities.MedicalRecord{
		ID:        uuid.New(),
		PatientID: patientID,
		AddedBy:   doctorID,
		Data:      data,
		IsVisible: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.records.Append(ctx, record); err != nil {
		return 0, err
	}

	s.logger.Debug().Int64("patient_id", patientID).Int64("doctor_id", doctorID).Int("index", record.Index).Msg("record added")
	return record.Index, nil
}

func (s *MedicalRecordServiceImpl) UpdateRecord(ctx context.Context, caller entities.Participant, patientID, doctorID int64, index int, data string) error {
	return s.mutateAuthored(ctx, caller, patientID, doctorID, index, func(r *entities.MedicalRecord) {
		r.Data = data
	})
}

func (s *MedicalRecordServiceImpl) SetRecordVisibility(ctx context.Context, caller entities.Participant, patientID, doctorID int64, index int, visible bool) error {
	return s.mutateAuthored(ctx, caller, patientID, doctorID, index, func(r *entities.MedicalRecord) {
		r.IsVisible = visible
	})
}

// mutateAuthored runs the author-only checks shared by update and visibility
// changes, applies mutate and persists the record. CreatedAt never changes.
func (s *MedicalRecordServiceImpl) mutateAuthored(ctx context.Context, caller entities.Participant, patientID, doctorID int64, index int, mutate func(*entities.MedicalRecord)) error {
	if !caller.IsDoctor(doctorID) {
		return fmt.Errorf("modify record %d of patient %d as doctor %d: %w", index, patientID, doctorID, domain.ErrForbidden)
	}

	unlock := s.locks.Lock(partition.PatientKey(patientID))
	defer unlock()

	record, err := s.records.GetByIndex(ctx, patientID, index)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("record %d of patient %d: %w", index, patientID, domain.ErrNotFound)
	}
	if record.AddedBy != caller.ID {
		return fmt.Errorf("record %d of patient %d was added by doctor %d: %w", index, patientID, record.AddedBy, domain.ErrForbidden)
	}
	if err := s.requireConsent(ctx, patientID, doctorID); err != nil {
		return err
	}

	mutate(record)
	record.UpdatedAt = s.clock()
	if err := s.records.Update(ctx, record); err != nil {
		return err
	}

	s.logger.Debug().Int64("patient_id", patientID).Int64("doctor_id", doctorID).Int("index", index).Msg("record modified")
	return nil
}

func (s *MedicalRecordServiceImpl) GetRecords(ctx context.Context, caller entities.Participant, patientID, doctorID int64) ([]entities.MedicalRecord, error) {
	unlock := s.locks.RLock(partition.PatientKey(patientID))
	defer unlock()

	switch {
	case caller.IsPatient(patientID):
	case caller.IsDoctor(doctorID):
		ok, err := hasConsent(ctx, s.consents, patientID, doctorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("read records of patient %d as doctor %d without consent: %w", patientID, doctorID, domain.ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("read records of patient %d: %w", patientID, domain.ErrForbidden)
	}

	records, err := s.records.FindByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return lo.Filter(records, func(r entities.MedicalRecord, _ int) bool {
		return r.IsVisible
	}), nil
}

func (s *MedicalRecordServiceImpl) requireConsent(ctx context.Context, patientID, doctorID int64) error {
	ok, err := hasConsent(ctx, s.consents, patientID, doctorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("patient %d has not granted doctor %d: %w", patientID, doctorID, domain.ErrConsentRequired)
	}
	return nil
}
