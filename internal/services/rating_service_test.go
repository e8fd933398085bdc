package services

import (
	"context"
	"testing"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingService_NoRatingsSentinel(t *testing.T) {
	f := newFixture(t)
	avg, err := f.ratingService().GetAverageRating(context.Background(), doctorID)
	require.NoError(t, err)
	assert.False(t, avg.HasRatings())
	assert.Equal(t, int64(0), avg.Count)

	// unknown doctors answer the same way
	avg, err = f.ratingService().GetAverageRating(context.Background(), 12345)
	require.NoError(t, err)
	assert.False(t, avg.HasRatings())
}

func TestRatingService_LastValueWins(t *testing.T) {
	f := newFixture(t)
	svc := f.ratingService()
	ctx := context.Background()
	grant(t, f, true)

	require.NoError(t, svc.RateDoctor(ctx, patient, patientID, doctorID, 2))
	require.NoError(t, svc.RateDoctor(ctx, patient, patientID, doctorID, 5))

	avg, err := svc.GetAverageRating(ctx, doctorID)
	require.NoError(t, err)
	assert.True(t, avg.HasRatings())
	assert.Equal(t, int64(1), avg.Count)
	assert.Equal(t, int64(5), avg.Sum)
	assert.Equal(t, int64(5), avg.Average)
}

func TestRatingService_AverageAcrossPatientsTruncates(t *testing.T) {
	f := newFixture(t)
	svc := f.ratingService()
	ctx := context.Background()

	second := entities.Participant{ID: 2, Role: entities.RolePatient, Address: "0xp2"}
	_, err := f.engine.Register(ctx, second.Address, second.Role, second.ID)
	require.NoError(t, err)

	grant(t, f, true)
	require.NoError(t, f.consentService().SetConsent(ctx, second, 2, doctorID, true))

	require.NoError(t, svc.RateDoctor(ctx, patient, patientID, doctorID, 4))
	require.NoError(t, svc.RateDoctor(ctx, second, 2, doctorID, 5))

	avg, err := svc.GetAverageRating(ctx, doctorID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), avg.Count)
	assert.Equal(t, int64(9), avg.Sum)
	assert.Equal(t, int64(4), avg.Average, "9/2 truncates to 4")
	assert.Equal(t, int64(450), avg.AverageHundredths)

	// patient 1 lowers their rating; count stays at 2
	require.NoError(t, svc.RateDoctor(ctx, patient, patientID, doctorID, 1))
	avg, err = svc.GetAverageRating(ctx, doctorID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), avg.Count)
	assert.Equal(t, int64(6), avg.Sum)
	assert.Equal(t, int64(3), avg.Average)
}

func TestRatingService_Rejections(t *testing.T) {
	f := newFixture(t)
	svc := f.ratingService()
	ctx := context.Background()

	err := svc.RateDoctor(ctx, patient, patientID, doctorID, 3)
	assert.ErrorIs(t, err, domain.ErrForbidden, "no interaction with the doctor yet")

	grant(t, f, true)
	grant(t, f, false)
	assert.NoError(t, svc.RateDoctor(ctx, patient, patientID, doctorID, 3), "a revoked edge still counts as interaction")

	for _, v := range []int{0, 6, -1} {
		err := svc.RateDoctor(ctx, patient, patientID, doctorID, v)
		assert.ErrorIs(t, err, domain.ErrInvalidRating, "value %d", v)
	}

	err = svc.RateDoctor(ctx, doctor, patientID, doctorID, 5)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	avg, err := svc.GetAverageRating(ctx, doctorID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), avg.Count)
	assert.Equal(t, int64(3), avg.Sum)
}
