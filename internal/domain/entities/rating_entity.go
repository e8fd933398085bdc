package entities

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// RatingEvent is the live rating a patient gave a doctor. A newer rating
// replaces it.
type RatingEvent struct {
	PatientID int64     `json:"patient_id" db:"patient_id" gorm:"primaryKey;autoIncrement:false"`
	DoctorID  int64     `json:"doctor_id" db:"doctor_id" gorm:"primaryKey;autoIncrement:false"`
	Value     int       `json:"value" db:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}

// RatingAggregate is the running count and sum of live ratings for a doctor.
type RatingAggregate struct {
	DoctorID int64 `json:"doctor_id" db:"doctor_id" gorm:"primaryKey;autoIncrement:false"`
	Count    int64 `json:"count" db:"count" gorm:"not null"`
	Sum      int64 `json:"sum" db:"sum" gorm:"not null"`
}

// RatingAverage is the answer to an average query. Count == 0 is the
// "no ratings" state and leaves both averages at zero.
type RatingAverage struct {
	DoctorID          int64 `json:"doctor_id"`
	Count             int64 `json:"count"`
	Sum               int64 `json:"sum"`
	Average           int64 `json:"average"`
	AverageHundredths int64 `json:"average_hundredths"`
}

func (a RatingAverage) HasRatings() bool {
	return a.Count > 0
}

// Average derives the query result, truncating toward zero.
func (a RatingAggregate) Average() RatingAverage {
	avg := RatingAverage{DoctorID: a.DoctorID, Count: a.Count, Sum: a.Sum}
	if a.Count == 0 {
		return avg
	}
	avg.Average = a.Sum / a.Count
	avg.AverageHundredths = a.Sum * 100 / a.Count
	return avg
}
