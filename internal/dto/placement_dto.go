package dto

import (
	"time"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

// EligibilityCriteriaResponse mirrors the criteria block shown to students.
type EligibilityCriteriaResponse struct {
	MinCGPA         float64  `json:"min_cgpa"`
	AllowedBranches []string `json:"allowed_branches"`
	MaxBacklogs     int      `json:"max_backlogs"`
}

// PlacementDriveRequest creates or updates a drive from the admin panel.
type PlacementDriveRequest struct {
	CompanyName     string     `json:"company_name" validate:"required,max=255"`
	Location        string     `json:"location" validate:"max=255"`
	JobDescription  string     `json:"job_description" validate:"max=5000"`
	MinCGPA         float64    `json:"min_cgpa" validate:"gte=0,lte=10"`
	AllowedBranches []string   `json:"allowed_branches" validate:"dive,required"`
	MaxBacklogs     int        `json:"max_backlogs" validate:"gte=0"`
	DriveDate       *time.Time `json:"drive_date"`
}

// PlacementDriveResponse is one drive as presented to students and admins.
type PlacementDriveResponse struct {
	CompanyID           uint                        `json:"company_id"`
	CompanyName         string                      `json:"company_name"`
	Location            string                      `json:"location"`
	JobDescription      string                      `json:"job_description"`
	EligibilityCriteria EligibilityCriteriaResponse `json:"eligibility_criteria"`
	DriveDate           *time.Time                  `json:"drive_date,omitempty"`
}

// NewPlacementDriveResponse maps a drive row to its response shape.
func NewPlacementDriveResponse(drive models.PlacementDrive) PlacementDriveResponse {
	branches := drive.AllowedBranches()
	if branches == nil {
		branches = []string{}
	}
	return PlacementDriveResponse{
		CompanyID:      drive.ID,
		CompanyName:    drive.CompanyName,
		Location:       drive.Location,
		JobDescription: drive.JobDescription,
		EligibilityCriteria: EligibilityCriteriaResponse{
			MinCGPA:         drive.MinCGPA,
			AllowedBranches: branches,
			MaxBacklogs:     drive.MaxBacklogs,
		},
		DriveDate: drive.DriveDate,
	}
}
