package models

import (
	"time"

	"gorm.io/datatypes"
)

// MockInterviewResult is one attempt outcome ingested from the placement
// cell's spreadsheet. Rows are keyed by enrollment number and attempt, so a
// re-upload of the same sheet upserts rather than duplicates.
type MockInterviewResult struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	EnrollmentNo  string            `gorm:"size:32;not null;uniqueIndex:idx_mock_attempt" json:"enrollment_no"`
	AttemptNumber int               `gorm:"not null;uniqueIndex:idx_mock_attempt" json:"attempt_number"`
	Selected      bool              `json:"selected"`
	RejectedAt    string            `gorm:"size:64" json:"rejected_at,omitempty"`
	Rounds        datatypes.JSONMap `json:"rounds"`
	ImportedBy    uint              `json:"-"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
