package models

import "time"

// InternshipRecord is one append-only internship a student reports after
// their CAF has been approved. Entries are never updated or deleted.
type InternshipRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentID      uint      `gorm:"index;not null" json:"student_id"`
	CompanyName    string    `gorm:"size:255;not null" json:"company_name"`
	InternshipType string    `gorm:"size:64" json:"internship_type"`
	Duration       string    `gorm:"size:64" json:"duration"`
	Stipend        string    `gorm:"size:64" json:"stipend"`
	HasPPO         bool      `gorm:"column:has_ppo" json:"has_ppo"`
	CertificateURL string    `gorm:"size:512" json:"certificate_url"`
	CreatedAt      time.Time `json:"created_at"`
}
