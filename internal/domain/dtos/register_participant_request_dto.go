package dtos

// RegisterParticipantRequest is the payload for registering the calling address.
type RegisterParticipantRequest struct {
	Role string `json:"role" validate:"required,oneof=doctor patient"`
	ID   int64  `json:"id" validate:"required,gt=0"`
}
