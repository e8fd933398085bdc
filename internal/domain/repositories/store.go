package repositories

import "gorm.io/gorm"

// Store owns the four entity tables of the engine. Services receive it by
// value at construction; there is no package-level state.
type Store struct {
	Participants ParticipantRepositoryContract
	Consents     ConsentRepositoryContract
	Records      MedicalRecordRepositoryContract
	Ratings      RatingRepositoryContract
}

// NewMemoryStore returns a Store backed by process memory.
func NewMemoryStore() Store {
	return Store{
		Participants: NewMemoryParticipantRepository(),
		Consents:     NewMemoryConsentRepository(),
		Records:      NewMemoryMedicalRecordRepository(),
		Ratings:      NewMemoryRatingRepository(),
	}
}

// NewGormStore returns a Store backed by a relational database.
func NewGormStore(db *gorm.DB) Store {
	return Store{
		Participants: NewGormParticipantRepository(db),
		Consents:     NewGormConsentRepository(db),
		Records:      NewGormMedicalRecordRepository(db),
		Ratings:      NewGormRatingRepository(db),
	}
}
