package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
)

// CafHandler exposes the student-facing Campus Application Form endpoints.
type CafHandler struct {
	workflow service.CafWorkflowService
	logger   zerolog.Logger
}

// NewCafHandler builds a CAF handler instance.
func NewCafHandler(workflow service.CafWorkflowService, logger zerolog.Logger) *CafHandler {
	return &CafHandler{
		workflow: workflow,
		logger:   logger.With().Str("component", "caf_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *CafHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("", h.get)
	router.Get("/status", h.status)
	router.Post("/edit-request", h.requestEdit)
	router.Get("/gate", h.gate)
}

func (h *CafHandler) submit(c *fiber.Ctx) error {
	var payload dto.CafSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.workflow.Submit(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendWorkflowError(c, requestLogger(h.logger, c), err, "submit caf")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "caf submitted", result)
}

func (h *CafHandler) get(c *fiber.Ctx) error {
	caf, err := h.workflow.Get(c.Context(), userIDFromContext(c))
	if err != nil {
		return sendWorkflowError(c, requestLogger(h.logger, c), err, "fetch caf")
	}

	return utils.SendSuccess(c, "caf retrieved", caf)
}

func (h *CafHandler) status(c *fiber.Ctx) error {
	status, err := h.workflow.Status(c.Context(), userIDFromContext(c))
	if err != nil {
		return sendWorkflowError(c, requestLogger(h.logger, c), err, "fetch caf status")
	}

	return utils.SendSuccess(c, "caf status retrieved", status)
}

func (h *CafHandler) requestEdit(c *fiber.Ctx) error {
	var payload dto.CafEditRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	status, err := h.workflow.RequestEdit(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendWorkflowError(c, requestLogger(h.logger, c), err, "request caf edit")
	}

	return utils.SendSuccess(c, "edit request recorded", status)
}

func (h *CafHandler) gate(c *fiber.Ctx) error {
	gate, err := h.workflow.Gate(c.Context(), userIDFromContext(c))
	if err != nil {
		return sendWorkflowError(c, requestLogger(h.logger, c), err, "fetch access gate")
	}

	return utils.SendSuccess(c, "access gate computed", gate)
}
