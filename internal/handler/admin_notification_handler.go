package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
)

// AdminNotificationHandler serves the pending-work queue of the admin panel:
// freshly submitted CAFs and post-approval edit requests.
type AdminNotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewAdminNotificationHandler builds an admin notification handler.
func NewAdminNotificationHandler(service service.NotificationService, logger zerolog.Logger) *AdminNotificationHandler {
	return &AdminNotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_notification_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminNotificationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/:id/resolve", h.resolve)
}

func (h *AdminNotificationHandler) list(c *fiber.Ctx) error {
	kind := strings.TrimSpace(c.Query("type"))
	switch kind {
	case "", dto.NotificationKindNewCaf, dto.NotificationKindEditRequest:
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "unknown notification type")
	}

	notifications, err := h.service.List(c.Context(), kind)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list notifications")
	}

	return utils.SendSuccess(c, "notifications retrieved", notifications)
}

func (h *AdminNotificationHandler) resolve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	var payload dto.CafDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	status, err := h.service.Resolve(c.Context(), id, payload)
	if err != nil {
		return sendWorkflowError(c, requestLogger(h.logger, c), err, "resolve notification")
	}

	return utils.SendSuccess(c, "notification resolved", status)
}
