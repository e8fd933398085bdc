package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"medical-consent-service/internal/domain/dtos"
	"medical-consent-service/internal/domain/entities"
	"medical-consent-service/internal/fhir/mappers"
	"medical-consent-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// CallerHeader carries the authenticated address of the caller. It is set by
// the gateway in front of this service.
const CallerHeader = "X-Caller-Address"

const requestTimeout = 10 * time.Second

type AccessHandler struct {
	engine services.AccessControllerContract
	logger zerolog.Logger
}

func NewAccessHandler(engine services.AccessControllerContract, logger zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		engine: engine,
		logger: logger.With().Str("component", "http").Logger(),
	}
}

func caller(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(CallerHeader))
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, errBadRequest)
	}
	return id, nil
}

func pairParams(c *fiber.Ctx) (patientID, doctorID int64, err error) {
	if patientID, err = paramID(c, "patientId"); err != nil {
		return 0, 0, err
	}
	if doctorID, err = paramID(c, "doctorId"); err != nil {
		return 0, 0, err
	}
	return patientID, doctorID, nil
}

func indexParam(c *fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return 0, fmt.Errorf("index must be an integer: %w", errBadRequest)
	}
	return index, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("could not parse request body: %v: %w", err, errBadRequest)
	}
	return nil
}

// Register handles POST /participants.
func (h *AccessHandler) Register(c *fiber.Ctx) error {
	var req dtos.RegisterParticipantRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	role, err := entities.ParseRole(req.Role)
	if err != nil {
		return h.fail(c, fmt.Errorf("%v: %w", err, errBadRequest))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.engine.Register(ctx, caller(c), role, req.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dtos.NewParticipantDTO(*p))
}

// Whoami handles GET /participants/me.
func (h *AccessHandler) Whoami(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.engine.Whoami(ctx, caller(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dtos.NewParticipantDTO(p))
}

// SetConsent handles PUT /consents/:patientId/:doctorId.
func (h *AccessHandler) SetConsent(c *fiber.Ctx) error {
	patientID, doctorID, err := pairParams(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dtos.SetConsentRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	if req.Granted == nil {
		return h.fail(c, fmt.Errorf("granted is required: %w", errBadRequest))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.engine.SetConsent(ctx, caller(c), patientID, doctorID, *req.Granted); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dtos.ConsentStatusDTO{PatientID: patientID, DoctorID: doctorID, Granted: *req.Granted})
}

// HasConsent handles GET /consents/:patientId/:doctorId.
func (h *AccessHandler) HasConsent(c *fiber.Ctx) error {
	patientID, doctorID, err := pairParams(c)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	granted, err := h.engine.HasConsent(ctx, caller(c), patientID, doctorID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dtos.ConsentStatusDTO{PatientID: patientID, DoctorID: doctorID, Granted: granted})
}

// ConsentHistory handles GET /consents/:patientId/:doctorId/history.
func (h *AccessHandler) ConsentHistory(c *fiber.Ctx) error {
	patientID, doctorID, err := pairParams(c)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	history, err := h.engine.ConsentHistory(ctx, caller(c), patientID, doctorID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dtos.NewConsentHistoryDTO(history))
}

// AddRecord handles POST /records/:patientId/:doctorId.
func (h *AccessHandler) AddRecord(c *fiber.Ctx) error {
	patientID, doctorID, err := pairParams(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dtos.CreateMedicalRecordRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	index, err := h.engine.AddRecord(ctx, caller(c), patientID, doctorID, req.Data)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dtos.CreateMedicalRecordResponse{Index: index})
}

// GetRecords handles GET /records/:patientId/:doctorId.
func (h *AccessHandler) GetRecords(c *fiber.Ctx) error {
	patientID, doctorID, err := pairParams(c)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	records, err := h.engine.GetRecords(ctx, caller(c), patientID, doctorID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dtos.NewMedicalRecordDTOs(records))
}

// UpdateRecord handles PUT /records/:patientId/:doctorId/:index.
func (h *AccessHandler) UpdateRecord(c *fiber.Ctx) error {
	patientID, doctorID, err := pairParams(c)
	if err != nil {
		return h.fail(c, err)
	}
	index, err := indexParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dtos.UpdateMedicalRecordRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.engine.UpdateRecord(ctx, caller(c), patientID, doctorID, index, req.Data); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetRecordVisibility handles PATCH /records/:patientId/:doctorId/:index/visibility.
func (h *AccessHandler) SetRecordVisibility(c *fiber.Ctx) error {
	patientID, doctorID, err := pairParams(c)
	if err != nil {
		return h.fail(c, err)
	}
	index, err := indexParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dtos.SetRecordVisibilityRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	if req.Visible == nil {
		return h.fail(c, fmt.Errorf("visible is required: %w", errBadRequest))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.engine.SetRecordVisibility(ctx, caller(c), patientID, doctorID, index, *req.Visible); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportFHIR handles GET /records/:patientId/:doctorId/fhir. The bundle holds
// exactly what GetRecords would return to the same caller.
func (h *AccessHandler) ExportFHIR(c *fiber.Ctx) error {
	patientID, doctorID, err := pairParams(c)
	if err != nil {
		return h.fail(c, err)
	}
	version := c.Query("fhirVersion", mappers.FHIRVersionSTU3)

	ctx, cancel := requestContext(c)
	defer cancel()

	records, err := h.engine.GetRecords(ctx, caller(c), patientID, doctorID)
	if err != nil {
		return h.fail(c, err)
	}
	bundle, err := mappers.MapRecordsToFHIRBundle(records, version)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/fhir+json")
	return c.Send(bundle)
}

// RateDoctor handles POST /ratings/:patientId/:doctorId.
func (h *AccessHandler) RateDoctor(c *fiber.Ctx) error {
	patientID, doctorID, err := pairParams(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dtos.RateDoctorRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.engine.RateDoctor(ctx, caller(c), patientID, doctorID, req.Value); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetAverageRating handles GET /ratings/:doctorId.
func (h *AccessHandler) GetAverageRating(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "doctorId")
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	avg, err := h.engine.GetAverageRating(ctx, caller(c), doctorID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dtos.NewAverageRatingDTO(avg))
}

func RegisterAccessRoutes(app *fiber.App, h *AccessHandler) {
	participants := app.Group("/participants")
	participants.Post("/", h.Register)
	participants.Get("/me", h.Whoami)

	consents := app.Group("/consents")
	consents.Put("/:patientId/:doctorId", h.SetConsent)
	consents.Get("/:patientId/:doctorId", h.HasConsent)
	consents.Get("/:patientId/:doctorId/history", h.ConsentHistory)

	records := app.Group("/records")
	records.Post("/:patientId/:doctorId", h.AddRecord)
	records.Get("/:patientId/:doctorId", h.GetRecords)
	records.Get("/:patientId/:doctorId/fhir", h.ExportFHIR)
	records.Put("/:patientId/:doctorId/:index", h.UpdateRecord)
	records.Patch("/:patientId/:doctorId/:index/visibility", h.SetRecordVisibility)

	ratings := app.Group("/ratings")
	ratings.Post("/:patientId/:doctorId", h.RateDoctor)
	ratings.Get("/:doctorId", h.GetAverageRating)
}

// NewApp builds the fiber application serving the access-control API.
func NewApp(engine services.AccessControllerContract, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "medical-consent-service",
		DisableStartupMessage: true,
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	RegisterAccessRoutes(app, NewAccessHandler(engine, logger))
	return app
}
