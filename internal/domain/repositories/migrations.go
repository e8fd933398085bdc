package repositories

import (
	"medical-consent-service/internal/domain/entities"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables behind NewGormStore.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.Participant{},
		&entities.ConsentEdge{},
		&entities.ConsentTransition{},
		&entities.MedicalRecord{},
		&entities.RatingEvent{},
		&entities.RatingAggregate{},
	)
}
