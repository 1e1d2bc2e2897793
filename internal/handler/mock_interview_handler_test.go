package handler_test

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/handler"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/service"
)

type mockResultsService struct {
	results []dto.MockResultResponse
	summary dto.MockImportSummary
	err     error

	lastEnrollment string
}

func (m *mockResultsService) Upload(_ context.Context, _ *multipart.FileHeader, _ uint) (dto.MockImportSummary, error) {
	return m.summary, m.err
}

func (m *mockResultsService) ResultsFor(_ context.Context, enrollmentNo string) ([]dto.MockResultResponse, error) {
	m.lastEnrollment = enrollmentNo
	return m.results, m.err
}

func newMockInterviewApp(results service.MockResultService, workflow service.CafWorkflowService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/student/mock-interviews", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		return c.Next()
	})
	handler.NewMockInterviewHandler(results, workflow, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestMockInterviewHandler_ResultsForApprovedStudent(t *testing.T) {
	results := &mockResultsService{results: []dto.MockResultResponse{{AttemptNumber: 1, Selected: true}}}
	workflow := &mockWorkflowService{
		gateResult: dto.AccessGateResponse{MockInterviews: true},
		caf:        models.Caf{EnrollmentNo: "0101CS221001", Status: models.CafStatusApproved},
	}
	app := newMockInterviewApp(results, workflow)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/student/mock-interviews/results", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "0101CS221001", results.lastEnrollment)

	var response struct {
		Data []dto.MockResultResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data, 1)
	require.Equal(t, 1, response.Data[0].AttemptNumber)
}

func TestMockInterviewHandler_LockedBeforeApproval(t *testing.T) {
	workflow := &mockWorkflowService{gateResult: dto.AccessGateResponse{}}
	app := newMockInterviewApp(&mockResultsService{}, workflow)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/student/mock-interviews/results", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMockInterviewHandler_MissingCafTreatedAsLocked(t *testing.T) {
	workflow := &mockWorkflowService{
		gateResult: dto.AccessGateResponse{MockInterviews: true},
		getErr:     service.ErrCafNotFound,
	}
	app := newMockInterviewApp(&mockResultsService{}, workflow)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/student/mock-interviews/results", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
