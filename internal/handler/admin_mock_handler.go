package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
)

// AdminMockHandler ingests mock interview result spreadsheets.
type AdminMockHandler struct {
	service service.MockResultService
	logger  zerolog.Logger
}

// NewAdminMockHandler constructs the handler.
func NewAdminMockHandler(service service.MockResultService, logger zerolog.Logger) *AdminMockHandler {
	return &AdminMockHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_mock_handler").Logger(),
	}
}

// Register attaches mock result routes to the router group.
func (h *AdminMockHandler) Register(router fiber.Router) {
	router.Post("/upload", h.upload)
}

func (h *AdminMockHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrImportFileRequired.Error())
	}

	summary, err := h.service.Upload(c.Context(), file, userIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportFileTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrImportFileRequired), errors.Is(err, service.ErrImportFileType):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("mock result import failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "mock result import failed")
		}
	}

	return utils.SendSuccess(c, "mock results imported", summary)
}
