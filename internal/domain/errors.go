package domain

import "errors"

// Policy violations returned by the access-control engine. They are final:
// callers must not retry them. Match with errors.Is, services wrap them with
// call context.
var (
	ErrAlreadyRegistered  = errors.New("address already registered")
	ErrIDTaken            = errors.New("participant id already taken for role")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidParticipant = errors.New("invalid participant")
	ErrConsentRequired    = errors.New("patient consent required")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
)

// IsPolicyError reports whether err is one of the engine's policy violations
// rather than an infrastructure fault.
func IsPolicyError(err error) bool {
	for _, target := range []error{
		ErrAlreadyRegistered, ErrIDTaken, ErrForbidden, ErrInvalidParticipant,
		ErrConsentRequired, ErrNotFound, ErrInvalidRating,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
