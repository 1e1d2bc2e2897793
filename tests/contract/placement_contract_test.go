package contract_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/handler"
)

type stubPlacementService struct {
	drives []dto.PlacementDriveResponse
}

func (s stubPlacementService) EligibleDrives(context.Context, uint) ([]dto.PlacementDriveResponse, error) {
	return s.drives, nil
}

func (s stubPlacementService) ListDrives(context.Context) ([]dto.PlacementDriveResponse, error) {
	return s.drives, nil
}

func (s stubPlacementService) CreateDrive(context.Context, dto.PlacementDriveRequest) (dto.PlacementDriveResponse, error) {
	return dto.PlacementDriveResponse{}, nil
}

func (s stubPlacementService) UpdateDrive(context.Context, uint, dto.PlacementDriveRequest) (dto.PlacementDriveResponse, error) {
	return dto.PlacementDriveResponse{}, nil
}

func (s stubPlacementService) DeleteDrive(context.Context, uint) error {
	return nil
}

func TestEligibleDrivesContract(t *testing.T) {
	schema := compileSchema(t, "eligible_drives.schema.json")

	driveDate := time.Now().UTC().Add(14 * 24 * time.Hour)
	svc := stubPlacementService{drives: []dto.PlacementDriveResponse{
		{
			CompanyID:      5,
			CompanyName:    "Acme Systems",
			Location:       "Bhopal",
			JobDescription: "Graduate engineer trainee",
			EligibilityCriteria: dto.EligibilityCriteriaResponse{
				MinCGPA:         7.0,
				AllowedBranches: []string{"CSE", "IT"},
				MaxBacklogs:     0,
			},
			DriveDate: &driveDate,
		},
		{
			CompanyID:   6,
			CompanyName: "OpenDoors Labs",
			EligibilityCriteria: dto.EligibilityCriteriaResponse{
				MinCGPA:         6.0,
				AllowedBranches: []string{},
				MaxBacklogs:     2,
			},
		},
	}}

	app := fiber.New()
	group := app.Group("/api/student/placements", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "student")
		return c.Next()
	})
	handler.NewPlacementHandler(svc, zerolog.Nop()).Register(group)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/student/placements/eligible", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validateResponse(t, schema, resp)
}
