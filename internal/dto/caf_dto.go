package dto

import (
	"time"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

// CafCertificationInput is one certification entry in a submission payload.
type CafCertificationInput struct {
	Title          string `json:"title" validate:"required,max=255"`
	Issuer         string `json:"issuer" validate:"max=255"`
	IssuedOn       string `json:"issued_on" validate:"omitempty,datetime=2006-01-02"`
	CertificateURL string `json:"certificate_url" validate:"omitempty,url"`
}

// CafInternshipInput is one internship summary entry in a submission payload.
type CafInternshipInput struct {
	CompanyName    string `json:"company_name" validate:"required,max=255"`
	InternshipType string `json:"internship_type" validate:"max=64"`
	Duration       string `json:"duration" validate:"max=64"`
	Stipend        string `json:"stipend" validate:"max=64"`
}

// CafSubmitRequest carries the full Campus Application Form. The validate
// tags enforce the submission rules: identity fields present, percentages in
// [0,100], CGPA in [0,10], plausible years of passing and an accepted
// declaration.
type CafSubmitRequest struct {
	FullName        string `json:"full_name" validate:"required,max=255"`
	RGPVEnrollment  string `json:"rgpv_enrollment_no" validate:"required,max=32"`
	EnrollmentNo    string `json:"enrollment_no" validate:"required,max=32"`
	Gender          string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth     string `json:"dob" validate:"required,datetime=2006-01-02"`
	Mobile          string `json:"mobile" validate:"required,min=10,max=15"`
	AlternateMobile string `json:"alternate_mobile" validate:"omitempty,min=10,max=15"`
	EmailPersonal   string `json:"email_personal" validate:"required,email"`
	MedicalNote     string `json:"medical_note" validate:"max=2000"`

	CurrentAddress     string `json:"current_address" validate:"required"`
	PermanentAddress   string `json:"permanent_address" validate:"required"`
	City               string `json:"city" validate:"required,max=128"`
	State              string `json:"state" validate:"required,max=128"`
	OpenToRelocation   bool   `json:"open_to_relocation"`
	PreferredLocations string `json:"preferred_locations" validate:"max=255"`

	Course               string   `json:"course" validate:"required,max=64"`
	Branch               string   `json:"branch" validate:"required,max=64"`
	Section              string   `json:"section" validate:"max=8"`
	BatchYear            int      `json:"batch_year" validate:"required,gte=2000"`
	CurrentSemester      int      `json:"current_semester" validate:"required,gte=1,lte=10"`
	TenthBoard           string   `json:"tenth_board" validate:"max=64"`
	TenthPercentage      float64  `json:"tenth_percentage" validate:"required,gte=0,lte=100"`
	TenthYearOfPassing   int      `json:"tenth_year_of_passing" validate:"required,gte=2000"`
	TwelfthBoard         string   `json:"twelfth_board" validate:"max=64"`
	TwelfthPercentage    float64  `json:"twelfth_percentage" validate:"required,gte=0,lte=100"`
	TwelfthYearOfPassing int      `json:"twelfth_year_of_passing" validate:"required,gte=2000"`
	DiplomaBranch        string   `json:"diploma_branch" validate:"max=64"`
	DiplomaPercentage    *float64 `json:"diploma_percentage" validate:"omitempty,gte=0,lte=100"`
	DiplomaYearOfPassing *int     `json:"diploma_year_of_passing" validate:"omitempty,gte=2000"`
	CurrentCGPA          float64  `json:"current_cgpa" validate:"required,gte=0,lte=10"`
	BacklogsActive       int      `json:"backlogs_active" validate:"gte=0"`
	BacklogsHistory      int      `json:"backlogs_history" validate:"gte=0"`
	StudyGapYears        int      `json:"study_gap" validate:"gte=0"`

	CareerPreference        string `json:"career_preference" validate:"max=64"`
	DomainInterestPrimary   string `json:"domain_interest_primary" validate:"max=128"`
	DomainInterestSecondary string `json:"domain_interest_secondary" validate:"max=128"`
	TechnicalSkills         string `json:"technical_skills" validate:"max=2000"`
	ResumeFileURL           string `json:"resume_file_url" validate:"omitempty,url"`
	AcademicDocumentsURL    string `json:"academic_documents_url" validate:"omitempty,url"`

	Certifications []CafCertificationInput `json:"certifications" validate:"dive"`
	Internships    []CafInternshipInput    `json:"internships" validate:"dive"`

	Declaration bool  `json:"declaration" validate:"required"`
	EvaluatorID *uint `json:"evaluator_id"`
}

// CafEditRequest asks for a post-approval change to a restricted field set.
type CafEditRequest struct {
	Fields map[string]interface{} `json:"fields" validate:"required,min=1"`
}

// CafDecisionRequest resolves a pending CAF or edit request.
type CafDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason" validate:"max=512"`
}

// CafSubmissionResponse is returned after a successful submission.
type CafSubmissionResponse struct {
	CafID       uint             `json:"caf_id"`
	Status      models.CafStatus `json:"status"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// CafStatusResponse reports the current workflow state of a CAF.
type CafStatusResponse struct {
	CafID           uint             `json:"caf_id"`
	Status          models.CafStatus `json:"status"`
	EditPending     bool             `json:"edit_pending"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
}

// AccessGateResponse reports which feature areas are unlocked for a student.
type AccessGateResponse struct {
	Internships    bool `json:"internships"`
	Placements     bool `json:"placements"`
	MockInterviews bool `json:"mock_interviews"`
}

// NewCafStatusResponse builds the status projection for a CAF record.
func NewCafStatusResponse(caf models.Caf) CafStatusResponse {
	return CafStatusResponse{
		CafID:           caf.ID,
		Status:          caf.Status,
		EditPending:     caf.EditPending,
		RejectionReason: caf.RejectionReason,
	}
}
