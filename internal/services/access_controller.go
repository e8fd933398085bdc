package services

import (
	"context"

	"medical-consent-service/internal/audit"
	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/entities"
	"medical-consent-service/internal/domain/repositories"
	"medical-consent-service/internal/partition"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Audit action names.
const (
	ActionRegister            = "register"
	ActionWhoami              = "whoami"
	ActionHasConsent          = "has_consent"
	ActionGetAverageRating    = "get_average_rating"
	ActionSetConsent          = "set_consent"
	ActionConsentHistory      = "consent_history"
	ActionAddRecord           = "add_record"
	ActionUpdateRecord        = "update_record"
	ActionSetRecordVisibility = "set_record_visibility"
	ActionGetRecords          = "get_records"
	ActionRateDoctor          = "rate_doctor"
)

// AccessControllerImpl implements AccessControllerContract on top of the four
// engine components.
type AccessControllerImpl struct {
	identity IdentityServiceContract
	consents ConsentServiceContract
	records  MedicalRecordServiceContract
	ratings  RatingServiceContract
	sink     audit.Sink
	clock    Clock
	logger   zerolog.Logger
}

func NewAccessController(
	identity IdentityServiceContract,
	consents ConsentServiceContract,
	records MedicalRecordServiceContract,
	ratings RatingServiceContract,
	sink audit.Sink,
	clock Clock,
	logger zerolog.Logger,
) AccessControllerContract {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &AccessControllerImpl{
		identity: identity,
		consents: consents,
		records:  records,
		ratings:  ratings,
		sink:     sink,
		clock:    clock,
		logger:   logger.With().Str("component", "access").Logger(),
	}
}

// NewEngine wires the components over one store and lock map.
func NewEngine(store repositories.Store, locks *partition.Locker, sink audit.Sink, clock Clock, logger zerolog.Logger) AccessControllerContract {
	if clock == nil {
		clock = SystemClock
	}
	return NewAccessController(
		NewIdentityService(store, locks, clock, logger),
		NewConsentService(store, locks, clock, logger),
		NewMedicalRecordService(store, locks, clock, logger),
		NewRatingService(store, locks, clock, logger),
		sink,
		clock,
		logger,
	)
}

// decision describes an audited call.
type decision struct {
	action    string
	address   string
	caller    entities.Participant
	patientID int64
	doctorID  int64
	index     *int
}

func (a *AccessControllerImpl) audit(ctx context.Context, d decision, err error) {
	event := entities.AuditEvent{
		ID:            uuid.New(),
		Action:        d.action,
		CallerAddress: d.address,
		CallerID:      d.caller.ID,
		CallerRole:    d.caller.Role,
		PatientID:     d.patientID,
		DoctorID:      d.doctorID,
		RecordIndex:   d.index,
		Decision:      entities.DecisionAllowed,
		Timestamp:     a.clock(),
	}
	if err != nil {
		event.Decision = entities.DecisionDenied
		event.Reason = err.Error()
		if domain.IsPolicyError(err) {
			a.logger.Info().Err(err).Str("action", d.action).Str("caller", d.address).Msg("request denied")
		} else {
			a.logger.Error().Err(err).Str("action", d.action).Str("caller", d.address).Msg("request failed")
		}
	}
	a.sink.Record(ctx, event)
}

func (a *AccessControllerImpl) resolve(ctx context.Context, d *decision) error {
	caller, err := a.identity.Resolve(ctx, d.address)
	d.caller = caller
	if err != nil {
		a.audit(ctx, *d, err)
	}
	return err
}

func (a *AccessControllerImpl) Register(ctx context.Context, callerAddress string, role entities.Role, id int64) (*entities.Participant, error) {
	p, err := a.identity.Register(ctx, callerAddress, role, id)
	d := decision{action: ActionRegister, address: callerAddress}
	if p != nil {
		d.caller = *p
	}
	a.audit(ctx, d, err)
	return p, err
}

func (a *AccessControllerImpl) Whoami(ctx context.Context, callerAddress string) (entities.Participant, error) {
	d := decision{action: ActionWhoami, address: callerAddress}
	if err := a.resolve(ctx, &d); err != nil {
		return d.caller, err
	}
	a.audit(ctx, d, nil)
	return d.caller, nil
}

func (a *AccessControllerImpl) SetConsent(ctx context.Context, callerAddress string, patientID, doctorID int64, granted bool) error {
	d := decision{action: ActionSetConsent, address: callerAddress, patientID: patientID, doctorID: doctorID}
	if err := a.resolve(ctx, &d); err != nil {
		return err
	}
	err := a.consents.SetConsent(ctx, d.caller, patientID, doctorID, granted)
	a.audit(ctx, d, err)
	return err
}

func (a *AccessControllerImpl) HasConsent(ctx context.Context, callerAddress string, patientID, doctorID int64) (bool, error) {
	d := decision{action: ActionHasConsent, address: callerAddress, patientID: patientID, doctorID: doctorID}
	if err := a.resolve(ctx, &d); err != nil {
		return false, err
	}
	granted, err := a.consents.HasConsent(ctx, patientID, doctorID)
	a.audit(ctx, d, err)
	return granted, err
}

func (a *AccessControllerImpl) ConsentHistory(ctx context.Context, callerAddress string, patientID, doctorID int64) ([]entities.ConsentTransition, error) {
	d := decision{action: ActionConsentHistory, address: callerAddress, patientID: patientID, doctorID: doctorID}
	if err := a.resolve(ctx, &d); err != nil {
		return nil, err
	}
	history, err := a.consents.History(ctx, d.caller, patientID, doctorID)
	a.audit(ctx, d, err)
	return history, err
}

func (a *AccessControllerImpl) AddRecord(ctx context.Context, callerAddress string, patientID, doctorID int64, data string) (int, error) {
	d := decision{action: ActionAddRecord, address: callerAddress, patientID: patientID, doctorID: doctorID}
	if err := a.resolve(ctx, &d); err != nil {
		return 0, err
	}
	index, err := a.records.AddRecord(ctx, d.caller, patientID, doctorID, data)
	if err == nil {
		d.index = &index
	}
	a.audit(ctx, d, err)
	return index, err
}

func (a *AccessControllerImpl) UpdateRecord(ctx context.Context, callerAddress string, patientID, doctorID int64, index int, data string) error {
	d := decision{action: ActionUpdateRecord, address: callerAddress, patientID: patientID, doctorID: doctorID, index: &index}
	if err := a.resolve(ctx, &d); err != nil {
		return err
	}
	err := a.records.UpdateRecord(ctx, d.caller, patientID, doctorID, index, data)
	a.audit(ctx, d, err)
	return err
}

func (a *AccessControllerImpl) SetRecordVisibility(ctx context.Context, callerAddress string, patientID, doctorID int64, index int, visible bool) error {
	d := decision{action: ActionSetRecordVisibility, address: callerAddress, patientID: patientID, doctorID: doctorID, index: &index}
	if err := a.resolve(ctx, &d); err != nil {
		return err
	}
	err := a.records.SetRecordVisibility(ctx, d.caller, patientID, doctorID, index, visible)
	a.audit(ctx, d, err)
	return err
}

func (a *AccessControllerImpl) GetRecords(ctx context.Context, callerAddress string, patientID, doctorID int64) ([]entities.MedicalRecord, error) {
	d := decision{action: ActionGetRecords, address: callerAddress, patientID: patientID, doctorID: doctorID}
	if err := a.resolve(ctx, &d); err != nil {
		return nil, err
	}
	records, err := a.records.GetRecords(ctx, d.caller, patientID, doctorID)
	a.audit(ctx, d, err)
	return records, err
}

func (a *AccessControllerImpl) RateDoctor(ctx context.Context, callerAddress string, patientID, doctorID int64, value int) error {
	d := decision{action: ActionRateDoctor, address: callerAddress, patientID: patientID, doctorID: doctorID}
	if err := a.resolve(ctx, &d); err != nil {
		return err
	}
	err := a.ratings.RateDoctor(ctx, d.caller, patientID, doctorID, value)
	a.audit(ctx, d, err)
	return err
}

func (a *AccessControllerImpl) GetAverageRating(ctx context.Context, callerAddress string, doctorID int64) (entities.RatingAverage, error) {
	d := decision{action: ActionGetAverageRating, address: callerAddress, doctorID: doctorID}
	if err := a.resolve(ctx, &d); err != nil {
		return entities.RatingAverage{DoctorID: doctorID}, err
	}
	avg, err := a.ratings.GetAverageRating(ctx, doctorID)
	a.audit(ctx, d, err)
	return avg, err
}
