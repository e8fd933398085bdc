package repositories

import (
	"context"
	"errors"
	"fmt"

	"medical-consent-service/internal/domain/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRatingRepository struct {
	db *gorm.DB
}

func NewGormRatingRepository(db *gorm.DB) *GormRatingRepository {
	return &GormRatingRepository{db: db}
}

func (r *GormRatingRepository) GetEvent(ctx context.Context, patientID, doctorID int64) (*entities.RatingEvent, error) {
	var ev entities.RatingEvent
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND doctor_id = ?", patientID, doctorID).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rating %d/%d: %w", patientID, doctorID, err)
	}
	return &ev, nil
}

func (r *GormRatingRepository) GetAggregate(ctx context.Context, doctorID int64) (entities.RatingAggregate, error) {
	agg := entities.RatingAggregate{DoctorID: doctorID}
	err := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID).First(&agg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.RatingAggregate{DoctorID: doctorID}, nil
	}
	if err != nil {
		return agg, fmt.Errorf("get rating aggregate of doctor %d: %w", doctorID, err)
	}
	return agg, nil
}

func (r *GormRatingRepository) Save(ctx context.Context, event *entities.RatingEvent, aggregate *entities.RatingAggregate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(event).Error; err != nil {
			return fmt.Errorf("upsert rating %d/%d: %w", event.PatientID, event.DoctorID, err)
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(aggregate).Error; err != nil {
			return fmt.Errorf("upsert rating aggregate of doctor %d: %w", aggregate.DoctorID, err)
		}
		return nil
	})
}
