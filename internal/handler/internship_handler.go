package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
)

// InternshipHandler serves the student internship record endpoints. Both
// routes sit behind the CAF approval gate.
type InternshipHandler struct {
	service service.InternshipService
	logger  zerolog.Logger
}

// NewInternshipHandler builds an internship handler instance.
func NewInternshipHandler(service service.InternshipService, logger zerolog.Logger) *InternshipHandler {
	return &InternshipHandler{
		service: service,
		logger:  logger.With().Str("component", "internship_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *InternshipHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
}

func (h *InternshipHandler) list(c *fiber.Ctx) error {
	records, err := h.service.List(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err, "list internships")
	}

	return utils.SendSuccess(c, "internships retrieved", records)
}

func (h *InternshipHandler) create(c *fiber.Ctx) error {
	var payload dto.InternshipCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.service.Add(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err, "record internship")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "internship recorded", record)
}

func (h *InternshipHandler) handleError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, service.ErrFeatureLocked):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case isValidationError(err):
		return utils.SendErrorDetails(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	default:
		requestLogger(h.logger, c).Error().Err(err).Msgf("failed to %s", action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
