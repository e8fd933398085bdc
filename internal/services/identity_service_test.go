package services

import (
	"context"
	"errors"
	"testing"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"
	"medical-consent-service/internal/domain/repositories"
	"medical-consent-service/internal/partition"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentity() IdentityServiceContract {
	return NewIdentityService(repositories.NewMemoryStore(), partition.NewLocker(8), newStepClock().Now, zerolog.Nop())
}

func TestIdentityService_RegisterAndResolve(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity()

	p, err := svc.Register(ctx, "0xabc", entities.RolePatient, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	resolved, err := svc.Resolve(ctx, "0xabc")
	require.NoError(t, err)
	assert.True(t, resolved.Registered())
	assert.Equal(t, entities.RolePatient, resolved.Role)

	unknown, err := svc.Resolve(ctx, "0xnobody")
	require.NoError(t, err, "absence is not an error")
	assert.False(t, unknown.Registered())
	assert.Equal(t, entities.RoleUnregistered, unknown.Role)
}

func TestIdentityService_RegisterConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity()

	_, err := svc.Register(ctx, "0xabc", entities.RolePatient, 1)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "0xabc", entities.RoleDoctor, 9)
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	_, err = svc.Register(ctx, "0xdef", entities.RolePatient, 1)
	assert.ErrorIs(t, err, domain.ErrIDTaken)

	// ids are namespaced per role
	_, err = svc.Register(ctx, "0xdef", entities.RoleDoctor, 1)
	assert.NoError(t, err)
}

func TestIdentityService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity()

	cases := []struct {
		name    string
		address string
		role    entities.Role
		id      int64
	}{
		{"empty address", "  ", entities.RolePatient, 1},
		{"unknown role", "0x1", entities.Role("nurse"), 1},
		{"unregistered role", "0x1", entities.RoleUnregistered, 1},
		{"zero id", "0x1", entities.RoleDoctor, 0},
		{"negative id", "0x1", entities.RoleDoctor, -4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.address, tc.role, tc.id)
			assert.ErrorIs(t, err, domain.ErrInvalidParticipant)
		})
	}
}

func TestIdentityService_StorageFaultIsNotPolicyError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &MockParticipantRepository{
		FindByAddressFunc: func(ctx context.Context, address string) (*entities.Participant, error) {
			return nil, boom
		},
	}
	store := repositories.NewMemoryStore()
	store.Participants = repo
	svc := NewIdentityService(store, partition.NewLocker(8), newStepClock().Now, zerolog.Nop())

	_, err := svc.Register(context.Background(), "0xabc", entities.RolePatient, 1)
	assert.ErrorIs(t, err, boom)
	assert.False(t, domain.IsPolicyError(err))
	assert.Equal(t, int32(0), repo.CreateFuncCallCount)

	_, err = svc.Resolve(context.Background(), "0xabc")
	assert.ErrorIs(t, err, boom)
}
