package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
)

// AdminDriveHandler manages placement drives from the admin panel.
type AdminDriveHandler struct {
	service service.PlacementService
	logger  zerolog.Logger
}

// NewAdminDriveHandler constructs the handler.
func NewAdminDriveHandler(service service.PlacementService, logger zerolog.Logger) *AdminDriveHandler {
	return &AdminDriveHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_drive_handler").Logger(),
	}
}

// Register attaches drive management routes to the router group.
func (h *AdminDriveHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminDriveHandler) list(c *fiber.Ctx) error {
	drives, err := h.service.ListDrives(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list drives")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list drives")
	}

	return utils.SendSuccess(c, "drives retrieved", drives)
}

func (h *AdminDriveHandler) create(c *fiber.Ctx) error {
	var payload dto.PlacementDriveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	drive, err := h.service.CreateDrive(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err, "create drive")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "drive created", drive)
}

func (h *AdminDriveHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}

	var payload dto.PlacementDriveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	drive, err := h.service.UpdateDrive(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err, "update drive")
	}

	return utils.SendSuccess(c, "drive updated", drive)
}

func (h *AdminDriveHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}

	if err := h.service.DeleteDrive(c.Context(), id); err != nil {
		return h.handleError(c, err, "delete drive")
	}

	return utils.SendSuccess(c, "drive deleted", nil)
}

func (h *AdminDriveHandler) handleError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, service.ErrDriveNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "drive not found")
	case isValidationError(err):
		return utils.SendErrorDetails(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	default:
		requestLogger(h.logger, c).Error().Err(err).Msgf("failed to %s", action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
