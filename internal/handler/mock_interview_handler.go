package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/service"
	"github.com/rgpv-tpo/placement-api/internal/utils"
)

// MockInterviewHandler lets a student read their own mock interview results.
// The result sheet is keyed by enrollment number, so the handler resolves the
// caller's CAF first; that also enforces the approval gate.
type MockInterviewHandler struct {
	results  service.MockResultService
	workflow service.CafWorkflowService
	logger   zerolog.Logger
}

// NewMockInterviewHandler builds a mock interview handler instance.
func NewMockInterviewHandler(results service.MockResultService, workflow service.CafWorkflowService, logger zerolog.Logger) *MockInterviewHandler {
	return &MockInterviewHandler{
		results:  results,
		workflow: workflow,
		logger:   logger.With().Str("component", "mock_interview_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *MockInterviewHandler) Register(router fiber.Router) {
	router.Get("/results", h.list)
}

func (h *MockInterviewHandler) list(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)

	gate, err := h.workflow.Gate(c.Context(), studentID)
	if err != nil {
		return sendWorkflowError(c, requestLogger(h.logger, c), err, "fetch mock results")
	}
	if !gate.MockInterviews {
		return utils.SendError(c, fiber.StatusForbidden, service.ErrFeatureLocked.Error())
	}

	caf, err := h.workflow.Get(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrCafNotFound) {
			return utils.SendError(c, fiber.StatusForbidden, service.ErrFeatureLocked.Error())
		}
		return sendWorkflowError(c, requestLogger(h.logger, c), err, "fetch mock results")
	}

	results, err := h.results.ResultsFor(c.Context(), caf.EnrollmentNo)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch mock results")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch mock results")
	}

	return utils.SendSuccess(c, "mock results retrieved", results)
}
