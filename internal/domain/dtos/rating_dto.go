package dtos

import "medical-consent-service/internal/domain/entities"

type RateDoctorRequest struct {
	Value int `json:"value" validate:"required,min=1,max=5"`
}

// AverageRatingDTO reports a doctor's reputation. HasRatings=false is the
// "no ratings yet" answer, distinct from an average of zero.
type AverageRatingDTO struct {
	DoctorID   int64   `json:"doctor_id"`
	HasRatings bool    `json:"has_ratings"`
	Count      int64   `json:"count"`
	Average    int64   `json:"average"`
	Precise    float64 `json:"average_precise"`
}

func NewAverageRatingDTO(avg entities.RatingAverage) AverageRatingDTO {
	return AverageRatingDTO{
		DoctorID:   avg.DoctorID,
		HasRatings: avg.HasRatings(),
		Count:      avg.Count,
		Average:    avg.Average,
		Precise:    float64(avg.AverageHundredths) / 100,
	}
}
