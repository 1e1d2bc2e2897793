package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/observability"
	"github.com/rgpv-tpo/placement-api/internal/repository"
)

// DefaultEditableFields is the post-approval edit allowlist. It can be
// overridden through configuration but is never widened by inference.
var DefaultEditableFields = []string{
	"current_cgpa",
	"domain_interest_primary",
	"domain_interest_secondary",
	"resume_file_url",
}

// EditValueError reports a malformed value inside an edit-request patch.
type EditValueError struct {
	Field  string
	Reason string
}

func (e *EditValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}

// CafWorkflowService owns every status transition of CAF records. No other
// component mutates status.
type CafWorkflowService interface {
	Submit(ctx context.Context, studentID uint, payload dto.CafSubmitRequest) (dto.CafSubmissionResponse, error)
	Get(ctx context.Context, studentID uint) (models.Caf, error)
	Status(ctx context.Context, studentID uint) (dto.CafStatusResponse, error)
	RequestEdit(ctx context.Context, studentID uint, payload dto.CafEditRequest) (dto.CafStatusResponse, error)
	Resolve(ctx context.Context, cafID uint, payload dto.CafDecisionRequest) (dto.CafStatusResponse, error)
	Gate(ctx context.Context, studentID uint) (dto.AccessGateResponse, error)
}

type cafWorkflowService struct {
	cafs      repository.CafRepository
	students  repository.StudentRepository
	validator *validator.Validate
	events    WorkflowEventPublisher
	sanitizer *bluemonday.Policy
	allowlist map[string]struct{}
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewCafWorkflowService constructs the workflow service. An empty allowlist
// falls back to DefaultEditableFields; a nil publisher disables events.
func NewCafWorkflowService(cafs repository.CafRepository, students repository.StudentRepository, validate *validator.Validate, events WorkflowEventPublisher, allowlist []string, logger zerolog.Logger) CafWorkflowService {
	if len(allowlist) == 0 {
		allowlist = DefaultEditableFields
	}
	allowed := make(map[string]struct{}, len(allowlist))
	for _, field := range allowlist {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}

	return &cafWorkflowService{
		cafs:      cafs,
		students:  students,
		validator: validate,
		events:    events,
		sanitizer: bluemonday.StrictPolicy(),
		allowlist: allowed,
		logger:    logger.With().Str("component", "caf_workflow_service").Logger(),
		tracer:    otel.Tracer("github.com/rgpv-tpo/placement-api/internal/service/caf"),
		now:       time.Now,
	}
}

func (s *cafWorkflowService) Submit(ctx context.Context, studentID uint, payload dto.CafSubmitRequest) (dto.CafSubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "caf.submit", trace.WithAttributes(
		attribute.Int64("caf.student_id", int64(studentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		observability.CafTransitions().WithLabelValues("submit", "validation_failed").Inc()
		return dto.CafSubmissionResponse{}, err
	}

	dob, err := time.Parse("2006-01-02", payload.DateOfBirth)
	if err != nil {
		observability.CafTransitions().WithLabelValues("submit", "validation_failed").Inc()
		return dto.CafSubmissionResponse{}, &EditValueError{Field: "dob", Reason: "must be an ISO date"}
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CafSubmissionResponse{}, ErrStudentNotFound
		}
		return dto.CafSubmissionResponse{}, err
	}
	if student.EnrollmentNo != strings.TrimSpace(payload.EnrollmentNo) {
		observability.CafTransitions().WithLabelValues("submit", "validation_failed").Inc()
		return dto.CafSubmissionResponse{}, ErrEnrollmentMismatch
	}

	submittedAt := s.now().UTC()

	existing, err := s.cafs.GetByStudentID(ctx, studentID)
	switch {
	case err == nil:
		// Re-submission is only defined for not_submitted drafts and
		// rejected records.
		if existing.Status != models.CafStatusNotSubmitted && existing.Status != models.CafStatusRejected {
			observability.CafTransitions().WithLabelValues("submit", "invalid_transition").Inc()
			return dto.CafSubmissionResponse{}, &InvalidTransitionError{Event: "submit", Status: existing.Status, EditPending: existing.EditPending}
		}

		updates := s.submissionColumns(payload, dob)
		updates["status"] = models.CafStatusPending
		updates["submitted_at"] = submittedAt
		updates["rejection_reason"] = nil
		updates["resolved_at"] = nil

		err = s.cafs.Resubmit(ctx, existing.ID, existing.Version, updates, certificationRows(payload.Certifications), internshipRows(payload.Internships))
		if err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				observability.CafTransitions().WithLabelValues("submit", "conflict").Inc()
				return dto.CafSubmissionResponse{}, ErrCafConflict
			}
			return dto.CafSubmissionResponse{}, err
		}

		s.logger.Info().Uint("caf_id", existing.ID).Uint("student_id", studentID).Msg("caf resubmitted")
		s.publish(ctx, EventCafSubmitted, existing.ID, student, map[string]string{"resubmission": "true"})
		observability.CafTransitions().WithLabelValues("submit", "ok").Inc()

		return dto.CafSubmissionResponse{CafID: existing.ID, Status: models.CafStatusPending, SubmittedAt: submittedAt}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		caf := s.buildCaf(studentID, payload, dob)
		caf.Status = models.CafStatusPending
		caf.SubmittedAt = &submittedAt

		if err := s.cafs.Create(ctx, &caf); err != nil {
			return dto.CafSubmissionResponse{}, err
		}

		s.logger.Info().Uint("caf_id", caf.ID).Uint("student_id", studentID).Msg("caf submitted")
		s.publish(ctx, EventCafSubmitted, caf.ID, student, nil)
		observability.CafTransitions().WithLabelValues("submit", "ok").Inc()

		return dto.CafSubmissionResponse{CafID: caf.ID, Status: models.CafStatusPending, SubmittedAt: submittedAt}, nil

	default:
		return dto.CafSubmissionResponse{}, err
	}
}

func (s *cafWorkflowService) Get(ctx context.Context, studentID uint) (models.Caf, error) {
	caf, err := s.cafs.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Caf{}, ErrCafNotFound
		}
		return models.Caf{}, err
	}
	return caf, nil
}

func (s *cafWorkflowService) Status(ctx context.Context, studentID uint) (dto.CafStatusResponse, error) {
	caf, err := s.cafs.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No record yet means the form was never submitted.
			return dto.CafStatusResponse{Status: models.CafStatusNotSubmitted}, nil
		}
		return dto.CafStatusResponse{}, err
	}
	return dto.NewCafStatusResponse(caf), nil
}

func (s *cafWorkflowService) RequestEdit(ctx context.Context, studentID uint, payload dto.CafEditRequest) (dto.CafStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "caf.request_edit", trace.WithAttributes(
		attribute.Int64("caf.student_id", int64(studentID)),
		attribute.Int("caf.patch_size", len(payload.Fields)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		observability.CafTransitions().WithLabelValues("request_edit", "validation_failed").Inc()
		return dto.CafStatusResponse{}, err
	}

	caf, err := s.cafs.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CafStatusResponse{}, ErrCafNotFound
		}
		return dto.CafStatusResponse{}, err
	}

	if caf.Status != models.CafStatusApproved || caf.EditPending {
		observability.CafTransitions().WithLabelValues("request_edit", "invalid_transition").Inc()
		return dto.CafStatusResponse{}, &InvalidTransitionError{Event: "request_edit", Status: caf.Status, EditPending: caf.EditPending}
	}

	var outside []string
	for field := range payload.Fields {
		if _, ok := s.allowlist[field]; !ok {
			outside = append(outside, field)
		}
	}
	if len(outside) > 0 {
		observability.CafTransitions().WithLabelValues("request_edit", "not_editable").Inc()
		return dto.CafStatusResponse{}, &FieldNotEditableError{Fields: outside}
	}

	patch, err := s.validatePatch(payload.Fields)
	if err != nil {
		observability.CafTransitions().WithLabelValues("request_edit", "validation_failed").Inc()
		return dto.CafStatusResponse{}, err
	}

	requestedAt := s.now().UTC()
	updates := map[string]interface{}{
		"edit_pending":      true,
		"edit_patch":        patch,
		"edit_requested_at": requestedAt,
	}
	if err := s.cafs.ApplyTransition(ctx, caf.ID, caf.Version, updates); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			observability.CafTransitions().WithLabelValues("request_edit", "conflict").Inc()
			return dto.CafStatusResponse{}, ErrCafConflict
		}
		return dto.CafStatusResponse{}, err
	}

	s.logger.Info().Uint("caf_id", caf.ID).Strs("fields", patchKeys(patch)).Msg("caf edit requested")
	s.publish(ctx, EventEditRequested, caf.ID, caf.Student, map[string]string{"fields": strings.Join(patchKeys(patch), ",")})
	observability.CafTransitions().WithLabelValues("request_edit", "ok").Inc()

	return dto.CafStatusResponse{CafID: caf.ID, Status: models.CafStatusApproved, EditPending: true}, nil
}

func (s *cafWorkflowService) Resolve(ctx context.Context, cafID uint, payload dto.CafDecisionRequest) (dto.CafStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "caf.resolve", trace.WithAttributes(
		attribute.Int64("caf.id", int64(cafID)),
		attribute.String("caf.decision", payload.Decision),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		observability.CafTransitions().WithLabelValues("resolve", "validation_failed").Inc()
		return dto.CafStatusResponse{}, err
	}

	caf, err := s.cafs.GetByID(ctx, cafID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CafStatusResponse{}, ErrCafNotFound
		}
		return dto.CafStatusResponse{}, err
	}

	approve := payload.Decision == "approve"

	switch {
	case caf.Status == models.CafStatusApproved && caf.EditPending:
		return s.resolveEdit(ctx, caf, approve)
	case caf.Status == models.CafStatusPending:
		return s.resolveSubmission(ctx, caf, approve, payload.Reason)
	default:
		observability.CafTransitions().WithLabelValues("resolve", "invalid_transition").Inc()
		return dto.CafStatusResponse{}, &InvalidTransitionError{Event: "resolve", Status: caf.Status, EditPending: caf.EditPending}
	}
}

func (s *cafWorkflowService) Gate(ctx context.Context, studentID uint) (dto.AccessGateResponse, error) {
	status, err := s.Status(ctx, studentID)
	if err != nil {
		return dto.AccessGateResponse{}, err
	}
	return GateForStatus(status.Status), nil
}

func (s *cafWorkflowService) resolveSubmission(ctx context.Context, caf models.Caf, approve bool, reason string) (dto.CafStatusResponse, error) {
	resolvedAt := s.now().UTC()
	updates := map[string]interface{}{
		"resolved_at": resolvedAt,
	}

	event := EventCafApproved
	status := models.CafStatusApproved
	var storedReason *string
	if !approve {
		event = EventCafRejected
		status = models.CafStatusRejected
		clean := strings.TrimSpace(s.sanitizer.Sanitize(reason))
		if clean != "" {
			storedReason = &clean
		}
		updates["rejection_reason"] = storedReason
	}
	updates["status"] = status

	if err := s.cafs.ApplyTransition(ctx, caf.ID, caf.Version, updates); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			observability.CafTransitions().WithLabelValues("resolve", "conflict").Inc()
			return dto.CafStatusResponse{}, ErrCafConflict
		}
		return dto.CafStatusResponse{}, err
	}

	s.logger.Info().Uint("caf_id", caf.ID).Str("status", string(status)).Msg("caf resolved")
	s.publish(ctx, event, caf.ID, caf.Student, nil)
	observability.CafTransitions().WithLabelValues("resolve", "ok").Inc()

	return dto.CafStatusResponse{CafID: caf.ID, Status: status, RejectionReason: storedReason}, nil
}

func (s *cafWorkflowService) resolveEdit(ctx context.Context, caf models.Caf, approve bool) (dto.CafStatusResponse, error) {
	clear := map[string]interface{}{
		"edit_pending":      false,
		"edit_patch":        nil,
		"edit_requested_at": nil,
	}

	if !approve {
		if err := s.cafs.ApplyTransition(ctx, caf.ID, caf.Version, clear); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				observability.CafTransitions().WithLabelValues("resolve_edit", "conflict").Inc()
				return dto.CafStatusResponse{}, ErrCafConflict
			}
			return dto.CafStatusResponse{}, err
		}

		s.logger.Info().Uint("caf_id", caf.ID).Msg("caf edit rejected, patch discarded")
		s.publish(ctx, EventEditRejected, caf.ID, caf.Student, nil)
		observability.CafTransitions().WithLabelValues("resolve_edit", "ok").Inc()
		return dto.CafStatusResponse{CafID: caf.ID, Status: models.CafStatusApproved}, nil
	}

	studentUpdates := map[string]interface{}{}
	for field, value := range caf.EditPatch {
		clear[field] = value
		// The registry snapshot follows approved CGPA edits.
		if field == "current_cgpa" {
			studentUpdates["current_cgpa"] = value
		}
	}

	if err := s.cafs.ApproveEdit(ctx, caf.ID, caf.Version, clear, caf.StudentID, studentUpdates); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			observability.CafTransitions().WithLabelValues("resolve_edit", "conflict").Inc()
			return dto.CafStatusResponse{}, ErrCafConflict
		}
		return dto.CafStatusResponse{}, err
	}

	s.logger.Info().Uint("caf_id", caf.ID).Strs("fields", patchKeys(caf.EditPatch)).Msg("caf edit approved, fields merged")
	s.publish(ctx, EventEditApproved, caf.ID, caf.Student, map[string]string{"fields": strings.Join(patchKeys(caf.EditPatch), ",")})
	observability.CafTransitions().WithLabelValues("resolve_edit", "ok").Inc()

	return dto.CafStatusResponse{CafID: caf.ID, Status: models.CafStatusApproved}, nil
}

func (s *cafWorkflowService) validatePatch(fields map[string]interface{}) (datatypes.JSONMap, error) {
	patch := datatypes.JSONMap{}
	for field, value := range fields {
		switch field {
		case "current_cgpa":
			cgpa, ok := value.(float64)
			if !ok {
				return nil, &EditValueError{Field: field, Reason: "must be a number"}
			}
			if cgpa < 0 || cgpa > 10 {
				return nil, &EditValueError{Field: field, Reason: "must be between 0 and 10"}
			}
			patch[field] = cgpa
		default:
			text, ok := value.(string)
			if !ok {
				return nil, &EditValueError{Field: field, Reason: "must be a string"}
			}
			clean := strings.TrimSpace(s.sanitizer.Sanitize(text))
			if clean == "" {
				return nil, &EditValueError{Field: field, Reason: "must not be empty"}
			}
			patch[field] = clean
		}
	}
	return patch, nil
}

func (s *cafWorkflowService) publish(ctx context.Context, kind string, cafID uint, student models.Student, details map[string]string) {
	if s.events == nil {
		return
	}
	s.events.PublishWorkflowEvent(ctx, WorkflowEvent{
		Kind:         kind,
		CafID:        cafID,
		StudentID:    student.ID,
		StudentName:  student.FullName,
		EnrollmentNo: student.EnrollmentNo,
		OccurredAt:   s.now().UTC(),
		Details:      details,
	})
}

func (s *cafWorkflowService) buildCaf(studentID uint, payload dto.CafSubmitRequest, dob time.Time) models.Caf {
	return models.Caf{
		StudentID:               studentID,
		FullName:                strings.TrimSpace(payload.FullName),
		RGPVEnrollment:          strings.TrimSpace(payload.RGPVEnrollment),
		EnrollmentNo:            strings.TrimSpace(payload.EnrollmentNo),
		Gender:                  payload.Gender,
		DateOfBirth:             dob,
		Mobile:                  strings.TrimSpace(payload.Mobile),
		AlternateMobile:         strings.TrimSpace(payload.AlternateMobile),
		EmailPersonal:           strings.TrimSpace(payload.EmailPersonal),
		MedicalNote:             strings.TrimSpace(s.sanitizer.Sanitize(payload.MedicalNote)),
		CurrentAddress:          strings.TrimSpace(payload.CurrentAddress),
		PermanentAddress:        strings.TrimSpace(payload.PermanentAddress),
		City:                    strings.TrimSpace(payload.City),
		State:                   strings.TrimSpace(payload.State),
		OpenToRelocation:        payload.OpenToRelocation,
		PreferredLocations:      strings.TrimSpace(payload.PreferredLocations),
		Course:                  strings.TrimSpace(payload.Course),
		Branch:                  strings.TrimSpace(payload.Branch),
		Section:                 strings.TrimSpace(payload.Section),
		BatchYear:               payload.BatchYear,
		CurrentSemester:         payload.CurrentSemester,
		TenthBoard:              strings.TrimSpace(payload.TenthBoard),
		TenthPercentage:         payload.TenthPercentage,
		TenthYearOfPassing:      payload.TenthYearOfPassing,
		TwelfthBoard:            strings.TrimSpace(payload.TwelfthBoard),
		TwelfthPercentage:       payload.TwelfthPercentage,
		TwelfthYearOfPassing:    payload.TwelfthYearOfPassing,
		DiplomaBranch:           strings.TrimSpace(payload.DiplomaBranch),
		DiplomaPercentage:       payload.DiplomaPercentage,
		DiplomaYearOfPassing:    payload.DiplomaYearOfPassing,
		CurrentCGPA:             payload.CurrentCGPA,
		BacklogsActive:          payload.BacklogsActive,
		BacklogsHistory:         payload.BacklogsHistory,
		StudyGapYears:           payload.StudyGapYears,
		CareerPreference:        strings.TrimSpace(payload.CareerPreference),
		DomainInterestPrimary:   strings.TrimSpace(payload.DomainInterestPrimary),
		DomainInterestSecondary: strings.TrimSpace(payload.DomainInterestSecondary),
		TechnicalSkills:         strings.TrimSpace(s.sanitizer.Sanitize(payload.TechnicalSkills)),
		ResumeFileURL:           strings.TrimSpace(payload.ResumeFileURL),
		AcademicDocumentsURL:    strings.TrimSpace(payload.AcademicDocumentsURL),
		Declaration:             payload.Declaration,
		EvaluatorID:             payload.EvaluatorID,
		Certifications:          certificationRows(payload.Certifications),
		Internships:             internshipRows(payload.Internships),
	}
}

func (s *cafWorkflowService) submissionColumns(payload dto.CafSubmitRequest, dob time.Time) map[string]interface{} {
	return map[string]interface{}{
		"full_name":                 strings.TrimSpace(payload.FullName),
		"rgpv_enrollment_no":        strings.TrimSpace(payload.RGPVEnrollment),
		"enrollment_no":             strings.TrimSpace(payload.EnrollmentNo),
		"gender":                    payload.Gender,
		"date_of_birth":             dob,
		"mobile":                    strings.TrimSpace(payload.Mobile),
		"alternate_mobile":          strings.TrimSpace(payload.AlternateMobile),
		"email_personal":            strings.TrimSpace(payload.EmailPersonal),
		"medical_note":              strings.TrimSpace(s.sanitizer.Sanitize(payload.MedicalNote)),
		"current_address":           strings.TrimSpace(payload.CurrentAddress),
		"permanent_address":         strings.TrimSpace(payload.PermanentAddress),
		"city":                      strings.TrimSpace(payload.City),
		"state":                     strings.TrimSpace(payload.State),
		"open_to_relocation":        payload.OpenToRelocation,
		"preferred_locations":       strings.TrimSpace(payload.PreferredLocations),
		"course":                    strings.TrimSpace(payload.Course),
		"branch":                    strings.TrimSpace(payload.Branch),
		"section":                   strings.TrimSpace(payload.Section),
		"batch_year":                payload.BatchYear,
		"current_semester":          payload.CurrentSemester,
		"tenth_board":               strings.TrimSpace(payload.TenthBoard),
		"tenth_percentage":          payload.TenthPercentage,
		"tenth_year_of_passing":     payload.TenthYearOfPassing,
		"twelfth_board":             strings.TrimSpace(payload.TwelfthBoard),
		"twelfth_percentage":        payload.TwelfthPercentage,
		"twelfth_year_of_passing":   payload.TwelfthYearOfPassing,
		"diploma_branch":            strings.TrimSpace(payload.DiplomaBranch),
		"diploma_percentage":        payload.DiplomaPercentage,
		"diploma_year_of_passing":   payload.DiplomaYearOfPassing,
		"current_cgpa":              payload.CurrentCGPA,
		"backlogs_active":           payload.BacklogsActive,
		"backlogs_history":          payload.BacklogsHistory,
		"study_gap_years":           payload.StudyGapYears,
		"career_preference":         strings.TrimSpace(payload.CareerPreference),
		"domain_interest_primary":   strings.TrimSpace(payload.DomainInterestPrimary),
		"domain_interest_secondary": strings.TrimSpace(payload.DomainInterestSecondary),
		"technical_skills":          strings.TrimSpace(s.sanitizer.Sanitize(payload.TechnicalSkills)),
		"resume_file_url":           strings.TrimSpace(payload.ResumeFileURL),
		"academic_documents_url":    strings.TrimSpace(payload.AcademicDocumentsURL),
		"declaration":               payload.Declaration,
		"evaluator_id":              payload.EvaluatorID,
	}
}

func certificationRows(inputs []dto.CafCertificationInput) []models.CafCertification {
	rows := make([]models.CafCertification, 0, len(inputs))
	for i, input := range inputs {
		rows = append(rows, models.CafCertification{
			Position:       i + 1,
			Title:          strings.TrimSpace(input.Title),
			Issuer:         strings.TrimSpace(input.Issuer),
			IssuedOn:       input.IssuedOn,
			CertificateURL: strings.TrimSpace(input.CertificateURL),
		})
	}
	return rows
}

func internshipRows(inputs []dto.CafInternshipInput) []models.CafInternship {
	rows := make([]models.CafInternship, 0, len(inputs))
	for i, input := range inputs {
		rows = append(rows, models.CafInternship{
			Position:       i + 1,
			CompanyName:    strings.TrimSpace(input.CompanyName),
			InternshipType: strings.TrimSpace(input.InternshipType),
			Duration:       strings.TrimSpace(input.Duration),
			Stipend:        strings.TrimSpace(input.Stipend),
		})
	}
	return rows
}

func patchKeys(patch datatypes.JSONMap) []string {
	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	return keys
}
