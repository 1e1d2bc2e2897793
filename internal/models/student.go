package models

import "time"

// Student is the registry snapshot of one student: immutable identity plus the
// academic figures the placement cell filters on. CGPA and backlog counts are
// only updated when an approved CAF edit merges new values.
type Student struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EnrollmentNo    string    `gorm:"size:32;uniqueIndex;not null" json:"enrollment_no"`
	FullName        string    `gorm:"size:255;not null" json:"full_name"`
	Branch          string    `gorm:"size:64;not null" json:"branch"`
	CurrentCGPA     float64   `json:"current_cgpa"`
	TenthPercent    float64   `json:"tenth_percent"`
	TwelfthPercent  float64   `json:"twelfth_percent"`
	BacklogsActive  int       `json:"backlogs_active"`
	BacklogsHistory int       `json:"backlogs_history"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
