package dtos

import (
	"time"

	"medical-consent-service/internal/domain/entities"
)

// ParticipantDTO is the resolved identity of an address. Registered is false
// (and Role empty) for unknown addresses.
type ParticipantDTO struct {
	Address    string     `json:"address"`
	Registered bool       `json:"registered"`
	Role       string     `json:"role,omitempty"`
	ID         int64      `json:"id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func NewParticipantDTO(p entities.Participant) ParticipantDTO {
	dto := ParticipantDTO{Address: p.Address, Registered: p.Registered()}
	if dto.Registered {
		created := p.CreatedAt
		dto.Role = string(p.Role)
		dto.ID = p.ID
		dto.CreatedAt = &created
	}
	return dto
}
