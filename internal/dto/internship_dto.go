package dto

import (
	"time"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

// InternshipCreateRequest records one internship a student completed.
type InternshipCreateRequest struct {
	CompanyName    string `json:"company_name" validate:"required,max=255"`
	InternshipType string `json:"internship_type" validate:"required,max=64"`
	Duration       string `json:"duration" validate:"required,max=64"`
	Stipend        string `json:"stipend" validate:"max=64"`
	HasPPO         bool   `json:"has_ppo"`
	CertificateURL string `json:"certificate_url" validate:"omitempty,url"`
}

// InternshipResponse is one reported internship.
type InternshipResponse struct {
	ID             uint      `json:"id"`
	CompanyName    string    `json:"company_name"`
	InternshipType string    `json:"internship_type"`
	Duration       string    `json:"duration"`
	Stipend        string    `json:"stipend"`
	HasPPO         bool      `json:"has_ppo"`
	CertificateURL string    `json:"certificate_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewInternshipResponse maps an internship record to its response shape.
func NewInternshipResponse(record models.InternshipRecord) InternshipResponse {
	return InternshipResponse{
		ID:             record.ID,
		CompanyName:    record.CompanyName,
		InternshipType: record.InternshipType,
		Duration:       record.Duration,
		Stipend:        record.Stipend,
		HasPPO:         record.HasPPO,
		CertificateURL: record.CertificateURL,
		CreatedAt:      record.CreatedAt,
	}
}
