package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
)

// DocumentHandler accepts resume and academic document uploads.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler constructs a document handler.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register wires document upload routes.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
}

func (h *DocumentHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.Upload(c.Context(), file, userIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("document upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "document upload failed")
		}
	}

	return utils.SendSuccess(c, "document uploaded", result)
}
