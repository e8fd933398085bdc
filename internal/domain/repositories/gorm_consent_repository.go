package repositories

import (
	"context"
	"errors"
	"fmt"

	"medical-consent-service/internal/domain/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormConsentRepository struct {
	db *gorm.DB
}

func NewGormConsentRepository(db *gorm.DB) *GormConsentRepository {
	return &GormConsentRepository{db: db}
}

func (r *GormConsentRepository) Get(ctx context.Context, patientID, doctorID int64) (*entities.ConsentEdge, error) {
	var edge entities.ConsentEdge
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND doctor_id = ?", patientID, doctorID).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get consent %d/%d: %w", patientID, doctorID, err)
	}
	return &edge, nil
}

func (r *GormConsentRepository) Save(ctx context.Context, edge *entities.ConsentEdge, transition *entities.ConsentTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "patient_id"}, {Name: "doctor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"granted", "updated_at"}),
		}).Create(edge).Error
		if err != nil {
			return fmt.Errorf("upsert consent %d/%d: %w", edge.PatientID, edge.DoctorID, err)
		}
		if transition == nil {
			return nil
		}
		if err := tx.Create(transition).Error; err != nil {
			return fmt.Errorf("append consent transition: %w", err)
		}
		return nil
	})
}

func (r *GormConsentRepository) ListTransitions(ctx context.Context, patientID, doctorID int64) ([]entities.ConsentTransition, error) {
	var history []entities.ConsentTransition
	err := transitionsQuery(r.db.WithContext(ctx), patientID, doctorID).Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("list consent transitions %d/%d: %w", patientID, doctorID, err)
	}
	return history, nil
}

// transitionsQuery orders by the insert sequence; timestamps can collide.
func transitionsQuery(db *gorm.DB, patientID, doctorID int64) *gorm.DB {
	return db.Where("patient_id = ? AND doctor_id = ?", patientID, doctorID).Order("seq ASC")
}
