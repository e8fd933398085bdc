package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medical-consent-service/internal/domain/entities"
	"medical-consent-service/internal/domain/repositories"
	"medical-consent-service/internal/partition"

	"github.com/rs/zerolog"
)

// --- MockConsentRepository ---
var _ repositories.ConsentRepositoryContract = (*MockConsentRepository)(nil)

// MockConsentRepository is a function-field mock of ConsentRepositoryContract.
type MockConsentRepository struct {
	GetFunc             func(ctx context.Context, patientID, doctorID int64) (*entities.ConsentEdge, error)
	SaveFunc            func(ctx context.Context, edge *entities.ConsentEdge, transition *entities.ConsentTransition) error
	ListTransitionsFunc func(ctx context.Context, patientID, doctorID int64) ([]entities.ConsentTransition, error)

	SaveFuncCallCount int32
}

func (m *MockConsentRepository) Get(ctx context.Context, patientID, doctorID int64) (*entities.ConsentEdge, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, patientID, doctorID)
	}
	return nil, nil
}

func (m *MockConsentRepository) Save(ctx context.Context, edge *entities.ConsentEdge, transition *entities.ConsentTransition) error {
	atomic.AddInt32(&m.SaveFuncCallCount, 1)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, edge, transition)
	}
	return nil
}

func (m *MockConsentRepository) ListTransitions(ctx context.Context, patientID, doctorID int64) ([]entities.ConsentTransition, error) {
	if m.ListTransitionsFunc != nil {
		return m.ListTransitionsFunc(ctx, patientID, doctorID)
	}
	return nil, errors.New("ListTransitionsFunc not implemented in mock")
}

// --- MockMedicalRecordRepository ---
var _ repositories.MedicalRecordRepositoryContract = (*MockMedicalRecordRepository)(nil)

type MockMedicalRecordRepository struct {
	AppendFunc          func(ctx context.Context, record *entities.MedicalRecord) error
	GetByIndexFunc      func(ctx context.Context, patientID int64, index int) (*entities.MedicalRecord, error)
	UpdateFunc          func(ctx context.Context, record *entities.MedicalRecord) error
	FindByPatientIDFunc func(ctx context.Context, patientID int64) ([]entities.MedicalRecord, error)

	AppendFuncCallCount int32
	UpdateFuncCallCount int32
}

func (m *MockMedicalRecordRepository) Append(ctx context.Context, record *entities.MedicalRecord) error {
	atomic.AddInt32(&m.AppendFuncCallCount, 1)
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, record)
	}
	return nil
}

func (m *MockMedicalRecordRepository) GetByIndex(ctx context.Context, patientID int64, index int) (*entities.MedicalRecord, error) {
	if m.GetByIndexFunc != nil {
		return m.GetByIndexFunc(ctx, patientID, index)
	}
	return nil, errors.New("GetByIndexFunc not implemented in mock")
}

func (m *MockMedicalRecordRepository) Update(ctx context.Context, record *entities.MedicalRecord) error {
	atomic.AddInt32(&m.UpdateFuncCallCount, 1)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, record)
	}
	return errors.New("UpdateFunc not implemented in mock")
}

func (m *MockMedicalRecordRepository) FindByPatientID(ctx context.Context, patientID int64) ([]entities.MedicalRecord, error) {
	if m.FindByPatientIDFunc != nil {
		return m.FindByPatientIDFunc(ctx, patientID)
	}
	return nil, errors.New("FindByPatientIDFunc not implemented in mock")
}

// --- MockParticipantRepository ---
var _ repositories.ParticipantRepositoryContract = (*MockParticipantRepository)(nil)

type MockParticipantRepository struct {
	CreateFunc        func(ctx context.Context, participant *entities.Participant) error
	FindByAddressFunc func(ctx context.Context, address string) (*entities.Participant, error)
	FindByRoleIDFunc  func(ctx context.Context, role entities.Role, id int64) (*entities.Participant, error)

	CreateFuncCallCount int32
}

func (m *MockParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	atomic.AddInt32(&m.CreateFuncCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, participant)
	}
	return nil
}

func (m *MockParticipantRepository) FindByAddress(ctx context.Context, address string) (*entities.Participant, error) {
	if m.FindByAddressFunc != nil {
		return m.FindByAddressFunc(ctx, address)
	}
	return nil, nil
}

func (m *MockParticipantRepository) FindByRoleID(ctx context.Context, role entities.Role, id int64) (*entities.Participant, error) {
	if m.FindByRoleIDFunc != nil {
		return m.FindByRoleIDFunc(ctx, role, id)
	}
	return nil, nil
}

// --- test clock and audit sink ---

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingSink struct {
	mu     sync.Mutex
	events []entities.AuditEvent
}

func (s *recordingSink) Record(_ context.Context, ev entities.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) Events() []entities.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.AuditEvent(nil), s.events...)
}

// --- fixtures ---

const (
	patientAddr  = "0xpatient1"
	doctorAddr   = "0xdoctor7"
	otherDocAddr = "0xdoctor8"
	patientID    = int64(1)
	doctorID     = int64(7)
	otherDocID   = int64(8)
)

var (
	patient  = entities.Participant{ID: patientID, Role: entities.RolePatient, Address: patientAddr}
	doctor   = entities.Participant{ID: doctorID, Role: entities.RoleDoctor, Address: doctorAddr}
	otherDoc = entities.Participant{ID: otherDocID, Role: entities.RoleDoctor, Address: otherDocAddr}
)

type fixture struct {
	store  repositories.Store
	locks  *partition.Locker
	clock  *stepClock
	sink   *recordingSink
	engine AccessControllerContract
}

// newFixture builds an engine over a memory store with patient 1 and doctors
// 7 and 8 registered.
func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		store: repositories.NewMemoryStore(),
		locks: partition.NewLocker(partition.DefaultStripes),
		clock: newStepClock(),
		sink:  &recordingSink{},
	}
	f.engine = NewEngine(f.store, f.locks, f.sink, f.clock.Now, zerolog.Nop())
	ctx := context.Background()
	for _, p := range []entities.Participant{patient, doctor, otherDoc} {
		if _, err := f.engine.Register(ctx, p.Address, p.Role, p.ID); err != nil {
			t.Fatalf("register %s: %v", p.Address, err)
		}
	}
	return f
}

func (f *fixture) consentService() ConsentServiceContract {
	return NewConsentService(f.store, f.locks, f.clock.Now, zerolog.Nop())
}

func (f *fixture) recordService() MedicalRecordServiceContract {
	return NewMedicalRecordService(f.store, f.locks, f.clock.Now, zerolog.Nop())
}

func (f *fixture) ratingService() RatingServiceContract {
	return NewRatingService(f.store, f.locks, f.clock.Now, zerolog.Nop())
}
