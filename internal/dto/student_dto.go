package dto

import "github.com/rgpv-tpo/placement-api/internal/models"

// PaginationMeta describes the page window of a list response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// AdminStudentFilterRequest carries the optional, AND-combined filters an
// admin applies over the student population.
type AdminStudentFilterRequest struct {
	EnrollmentNo      string   `json:"enrollment_no"`
	Department        string   `json:"department"`
	Name              string   `json:"name"`
	MinCGPA           *float64 `json:"min_cgpa" validate:"omitempty,gte=0,lte=10"`
	MinTenthPercent   *float64 `json:"min_tenth_percent" validate:"omitempty,gte=0,lte=100"`
	MinTwelfthPercent *float64 `json:"min_twelfth_percent" validate:"omitempty,gte=0,lte=100"`
	Page              int      `json:"page"`
	PageSize          int      `json:"page_size"`
	Sort              string   `json:"sort"`
}

// AdminStudentResponse is the Student+CAF projection shown in the admin panel.
type AdminStudentResponse struct {
	ID              uint             `json:"id"`
	EnrollmentNo    string           `json:"enrollment_no"`
	FullName        string           `json:"full_name"`
	Branch          string           `json:"branch"`
	CurrentCGPA     float64          `json:"current_cgpa"`
	TenthPercent    float64          `json:"tenth_percent"`
	TwelfthPercent  float64          `json:"twelfth_percent"`
	BacklogsActive  int              `json:"backlogs_active"`
	BacklogsHistory int              `json:"backlogs_history"`
	CafStatus       models.CafStatus `json:"caf_status"`
}

// AdminStudentListResponse wraps a filtered student page.
type AdminStudentListResponse struct {
	Items      []AdminStudentResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
}

// NewAdminStudentResponse maps a student row and its CAF status to the
// projection DTO.
func NewAdminStudentResponse(student models.Student, status models.CafStatus) AdminStudentResponse {
	if !status.Valid() {
		status = models.CafStatusNotSubmitted
	}
	return AdminStudentResponse{
		ID:              student.ID,
		EnrollmentNo:    student.EnrollmentNo,
		FullName:        student.FullName,
		Branch:          student.Branch,
		CurrentCGPA:     student.CurrentCGPA,
		TenthPercent:    student.TenthPercent,
		TwelfthPercent:  student.TwelfthPercent,
		BacklogsActive:  student.BacklogsActive,
		BacklogsHistory: student.BacklogsHistory,
		CafStatus:       status,
	}
}
