package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/service"
)

// EventsHandler upgrades admin connections onto the live workflow event
// stream: submissions, approvals, rejections and edit requests as they land.
type EventsHandler struct {
	stream service.EventStreamService
	logger zerolog.Logger
}

// NewEventsHandler creates an events handler instance.
func NewEventsHandler(stream service.EventStreamService, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		stream: stream,
		logger: logger.With().Str("component", "events_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *EventsHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *EventsHandler) handleConnection(conn *websocket.Conn) {
	h.logger.Info().Msg("admin event stream connected")
	h.stream.ServeConnection(conn)
	h.logger.Info().Msg("admin event stream disconnected")
}
