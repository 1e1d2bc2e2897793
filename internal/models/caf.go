package models

import (
	"time"

	"gorm.io/datatypes"
)

// CafStatus enumerates the lifecycle states of a Campus Application Form.
type CafStatus string

const (
	CafStatusNotSubmitted CafStatus = "not_submitted"
	CafStatusPending      CafStatus = "pending"
	CafStatusApproved     CafStatus = "approved"
	CafStatusRejected     CafStatus = "rejected"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s CafStatus) Valid() bool {
	switch s {
	case CafStatusNotSubmitted, CafStatusPending, CafStatusApproved, CafStatusRejected:
		return true
	}
	return false
}

// Caf holds one student's Campus Application Form. Status transitions are
// owned exclusively by the workflow service; EditPending is only ever true
// while Status is approved, and EditPatch holds the pending field patch until
// an admin resolves it. Version backs the optimistic concurrency check on
// every transition.
type Caf struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	StudentID uint    `gorm:"uniqueIndex;not null" json:"student_id"`
	Student   Student `json:"-"`

	// Personal details
	FullName        string    `gorm:"size:255;not null" json:"full_name"`
	RGPVEnrollment  string    `gorm:"column:rgpv_enrollment_no;size:32;not null" json:"rgpv_enrollment_no"`
	EnrollmentNo    string    `gorm:"size:32;uniqueIndex;not null" json:"enrollment_no"`
	Gender          string    `gorm:"size:16" json:"gender"`
	DateOfBirth     time.Time `json:"dob"`
	Mobile          string    `gorm:"size:16;not null" json:"mobile"`
	AlternateMobile string    `gorm:"size:16" json:"alternate_mobile"`
	EmailPersonal   string    `gorm:"size:255;not null" json:"email_personal"`
	MedicalNote     string    `gorm:"type:text" json:"medical_note"`

	// Address
	CurrentAddress     string `gorm:"type:text;not null" json:"current_address"`
	PermanentAddress   string `gorm:"type:text;not null" json:"permanent_address"`
	City               string `gorm:"size:128;not null" json:"city"`
	State              string `gorm:"size:128;not null" json:"state"`
	OpenToRelocation   bool   `json:"open_to_relocation"`
	PreferredLocations string `gorm:"size:255" json:"preferred_locations"`

	// Academic record
	Course               string   `gorm:"size:64;not null" json:"course"`
	Branch               string   `gorm:"size:64;not null" json:"branch"`
	Section              string   `gorm:"size:8" json:"section"`
	BatchYear            int      `json:"batch_year"`
	CurrentSemester      int      `json:"current_semester"`
	TenthBoard           string   `gorm:"size:64" json:"tenth_board"`
	TenthPercentage      float64  `json:"tenth_percentage"`
	TenthYearOfPassing   int      `json:"tenth_year_of_passing"`
	TwelfthBoard         string   `gorm:"size:64" json:"twelfth_board"`
	TwelfthPercentage    float64  `json:"twelfth_percentage"`
	TwelfthYearOfPassing int      `json:"twelfth_year_of_passing"`
	DiplomaBranch        string   `gorm:"size:64" json:"diploma_branch"`
	DiplomaPercentage    *float64 `json:"diploma_percentage"`
	DiplomaYearOfPassing *int     `json:"diploma_year_of_passing"`
	CurrentCGPA          float64  `json:"current_cgpa"`
	BacklogsActive       int      `json:"backlogs_active"`
	BacklogsHistory      int      `json:"backlogs_history"`
	StudyGapYears        int      `json:"study_gap"`

	// Career preference
	CareerPreference        string `gorm:"size:64" json:"career_preference"`
	DomainInterestPrimary   string `gorm:"size:128" json:"domain_interest_primary"`
	DomainInterestSecondary string `gorm:"size:128" json:"domain_interest_secondary"`
	TechnicalSkills         string `gorm:"type:text" json:"technical_skills"`
	ResumeFileURL           string `gorm:"size:512" json:"resume_file_url"`
	AcademicDocumentsURL    string `gorm:"size:512" json:"academic_documents_url"`

	Declaration bool  `gorm:"not null" json:"declaration"`
	EvaluatorID *uint `json:"evaluator_id"`

	Certifications []CafCertification `gorm:"constraint:OnDelete:CASCADE" json:"certifications"`
	Internships    []CafInternship    `gorm:"constraint:OnDelete:CASCADE" json:"internships"`

	// Workflow state
	Status          CafStatus         `gorm:"size:16;not null;default:not_submitted" json:"status"`
	EditPending     bool              `gorm:"not null;default:false" json:"edit_pending"`
	EditPatch       datatypes.JSONMap `json:"edit_patch,omitempty"`
	EditRequestedAt *time.Time        `json:"edit_requested_at,omitempty"`
	RejectionReason *string           `gorm:"size:512" json:"rejection_reason,omitempty"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
	Version         uint              `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CafCertification is one ordered certification entry inside a CAF.
type CafCertification struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CafID          uint      `gorm:"index;not null" json:"-"`
	Position       int       `gorm:"not null" json:"position"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Issuer         string    `gorm:"size:255" json:"issuer"`
	IssuedOn       string    `gorm:"size:32" json:"issued_on"`
	CertificateURL string    `gorm:"size:512" json:"certificate_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// CafInternship is one ordered internship summary entry inside a CAF. It is
// part of the form itself, distinct from the standalone internship records a
// student accumulates after approval.
type CafInternship struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CafID          uint      `gorm:"index;not null" json:"-"`
	Position       int       `gorm:"not null" json:"position"`
	CompanyName    string    `gorm:"size:255;not null" json:"company_name"`
	InternshipType string    `gorm:"size:64" json:"internship_type"`
	Duration       string    `gorm:"size:64" json:"duration"`
	Stipend        string    `gorm:"size:64" json:"stipend"`
	CreatedAt      time.Time `json:"created_at"`
}
