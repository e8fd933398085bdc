package services

import (
	"context"
	"errors"
	"testing"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsentService_OnlyOwningPatientMaySet(t *testing.T) {
	f := newFixture(t)
	svc := f.consentService()
	ctx := context.Background()

	err := svc.SetConsent(ctx, doctor, patientID, doctorID, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	otherPatient := entities.Participant{ID: 2, Role: entities.RolePatient, Address: "0xp2"}
	err = svc.SetConsent(ctx, otherPatient, patientID, doctorID, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// a doctor whose numeric id equals the patient id is still not the patient
	sameNumber := entities.Participant{ID: patientID, Role: entities.RoleDoctor, Address: "0xd1"}
	err = svc.SetConsent(ctx, sameNumber, patientID, doctorID, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	ok, err := svc.HasConsent(ctx, patientID, doctorID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsentService_InvalidParticipant(t *testing.T) {
	f := newFixture(t)
	svc := f.consentService()
	ctx := context.Background()

	err := svc.SetConsent(ctx, patient, patientID, 99, true)
	assert.ErrorIs(t, err, domain.ErrInvalidParticipant)

	// patient ids are not doctor ids
	err = svc.SetConsent(ctx, patient, patientID, patientID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidParticipant)

	// caller claims a patient identity that was never registered
	ghost := entities.Participant{ID: 42, Role: entities.RolePatient, Address: "0xghost"}
	err = svc.SetConsent(ctx, ghost, 42, doctorID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidParticipant)
}

func TestConsentService_IdempotentAndHistory(t *testing.T) {
	f := newFixture(t)
	svc := f.consentService()
	ctx := context.Background()

	require.NoError(t, svc.SetConsent(ctx, patient, patientID, doctorID, true))
	first, err := f.store.Consents.Get(ctx, patientID, doctorID)
	require.NoError(t, err)

	require.NoError(t, svc.SetConsent(ctx, patient, patientID, doctorID, true))
	second, err := f.store.Consents.Get(ctx, patientID, doctorID)
	require.NoError(t, err)

	assert.True(t, second.Granted)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	require.NoError(t, svc.SetConsent(ctx, patient, patientID, doctorID, false))
	ok, err := svc.HasConsent(ctx, patientID, doctorID)
	require.NoError(t, err)
	assert.False(t, ok)

	history, err := svc.History(ctx, patient, patientID, doctorID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []bool{true, true, false}, []bool{history[0].Granted, history[1].Granted, history[2].Granted})

	_, err = svc.History(ctx, doctor, patientID, doctorID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestConsentService_SaveFailureLeavesNoEdge(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("disk full")
	repo := &MockConsentRepository{
		SaveFunc: func(ctx context.Context, edge *entities.ConsentEdge, transition *entities.ConsentTransition) error {
			return boom
		},
	}
	store := f.store
	store.Consents = repo
	svc := NewConsentService(store, f.locks, f.clock.Now, zerolog.Nop())

	err := svc.SetConsent(context.Background(), patient, patientID, doctorID, true)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), repo.SaveFuncCallCount)

	ok, err := svc.HasConsent(context.Background(), patientID, doctorID)
	require.NoError(t, err)
	assert.False(t, ok)
}
