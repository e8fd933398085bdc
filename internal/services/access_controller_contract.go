package services

import (
	"context"

	"medical-consent-service/internal/domain/entities"
)

// AccessControllerContract is the public surface of the engine. Every method
// takes the authenticated caller address and resolves it before any check;
// no method accepts a caller id from the outside.
type AccessControllerContract interface {
	Register(ctx context.Context, callerAddress string, role entities.Role, id int64) (*entities.Participant, error)
	Whoami(ctx context.Context, callerAddress string) (entities.Participant, error)

	SetConsent(ctx context.Context, callerAddress string, patientID, doctorID int64, granted bool) error
	HasConsent(ctx context.Context, callerAddress string, patientID, doctorID int64) (bool, error)
	ConsentHistory(ctx context.Context, callerAddress string, patientID, doctorID int64) ([]entities.ConsentTransition, error)

	AddRecord(ctx context.Context, callerAddress string, patientID, doctorID int64, data string) (int, error)
	UpdateRecord(ctx context.Context, callerAddress string, patientID, doctorID int64, index int, data string) error
	SetRecordVisibility(ctx context.Context, callerAddress string, patientID, doctorID int64, index int, visible bool) error
	GetRecords(ctx context.Context, callerAddress string, patientID, doctorID int64) ([]entities.MedicalRecord, error)

	RateDoctor(ctx context.Context, callerAddress string, patientID, doctorID int64, value int) error
	GetAverageRating(ctx context.Context, callerAddress string, doctorID int64) (entities.RatingAverage, error)
}
