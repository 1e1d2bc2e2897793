package models

import (
	"strings"
	"time"
)

// PlacementDrive is a company visit with its eligibility criteria. Read-only
// from the student side; maintained by the placement cell.
type PlacementDrive struct {
	ID             uint       `gorm:"primaryKey" json:"company_id"`
	CompanyName    string     `gorm:"size:255;not null" json:"company_name"`
	Location       string     `gorm:"size:255" json:"location"`
	JobDescription string     `gorm:"type:text" json:"job_description"`
	MinCGPA        float64    `json:"min_cgpa"`
	AllowedBranch  string     `gorm:"column:allowed_branches;size:255" json:"allowed_branches"`
	MaxBacklogs    int        `json:"max_backlogs"`
	DriveDate      *time.Time `json:"drive_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AllowedBranches returns the branch set as a slice. An empty set means every
// branch is eligible.
func (d PlacementDrive) AllowedBranches() []string {
	if strings.TrimSpace(d.AllowedBranch) == "" {
		return nil
	}
	parts := strings.Split(d.AllowedBranch, ",")
	branches := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			branches = append(branches, trimmed)
		}
	}
	return branches
}

// SetAllowedBranches stores the branch set in its persisted form.
func (d *PlacementDrive) SetAllowedBranches(branches []string) {
	cleaned := make([]string, 0, len(branches))
	for _, branch := range branches {
		if trimmed := strings.TrimSpace(branch); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	d.AllowedBranch = strings.Join(cleaned, ",")
}
