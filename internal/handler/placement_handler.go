package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
)

// PlacementHandler serves the student-facing eligible-drive listing.
type PlacementHandler struct {
	service service.PlacementService
	logger  zerolog.Logger
}

// NewPlacementHandler builds a placement handler instance.
func NewPlacementHandler(service service.PlacementService, logger zerolog.Logger) *PlacementHandler {
	return &PlacementHandler{
		service: service,
		logger:  logger.With().Str("component", "placement_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *PlacementHandler) Register(router fiber.Router) {
	router.Get("/eligible", h.eligible)
}

func (h *PlacementHandler) eligible(c *fiber.Ctx) error {
	drives, err := h.service.EligibleDrives(c.Context(), userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrFeatureLocked) {
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list eligible drives")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list eligible drives")
	}

	return utils.SendSuccess(c, "eligible drives retrieved", drives)
}
