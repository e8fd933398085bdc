package handlers

import (
	"errors"

	"medical-consent-service/internal/domain"
	"medical-consent-service/internal/domain/dtos"
	"medical-consent-service/internal/fhir/mappers"

	"github.com/gofiber/fiber/v2"
)

// errBadRequest marks malformed input caught by a handler before the engine runs.
var errBadRequest = errors.New("bad request")

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, mappers.ErrUnsupportedFHIRVersion):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrIDTaken):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrConsentRequired):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, domain.ErrInvalidParticipant), errors.Is(err, domain.ErrInvalidRating):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *AccessHandler) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		h.logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		msg = "internal error"
	}
	return c.Status(status).JSON(dtos.ErrorResponse{Error: msg})
}
