package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeCafRepo struct {
	caf            *models.Caf
	createCalls    int
	resubmitCalls  int
	transitionErr  error
	lastUpdates    map[string]interface{}
	studentUpdates map[string]interface{}
}

func (f *fakeCafRepo) GetByID(ctx context.Context, id uint) (models.Caf, error) {
	if f.caf == nil || f.caf.ID != id {
		return models.Caf{}, gorm.ErrRecordNotFound
	}
	return *f.caf, nil
}

func (f *fakeCafRepo) GetByStudentID(ctx context.Context, studentID uint) (models.Caf, error) {
	if f.caf == nil || f.caf.StudentID != studentID {
		return models.Caf{}, gorm.ErrRecordNotFound
	}
	return *f.caf, nil
}

func (f *fakeCafRepo) Create(ctx context.Context, caf *models.Caf) error {
	f.createCalls++
	caf.ID = 1
	stored := *caf
	f.caf = &stored
	return nil
}

func (f *fakeCafRepo) Resubmit(ctx context.Context, id, expectedVersion uint, updates map[string]interface{}, certifications []models.CafCertification, internships []models.CafInternship) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	f.resubmitCalls++
	f.lastUpdates = updates
	f.applyUpdates(updates)
	return nil
}

func (f *fakeCafRepo) ApplyTransition(ctx context.Context, id, expectedVersion uint, updates map[string]interface{}) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	f.lastUpdates = updates
	f.applyUpdates(updates)
	return nil
}

func (f *fakeCafRepo) ApproveEdit(ctx context.Context, id, expectedVersion uint, cafUpdates map[string]interface{}, studentID uint, studentUpdates map[string]interface{}) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	f.lastUpdates = cafUpdates
	f.studentUpdates = studentUpdates
	f.applyUpdates(cafUpdates)
	return nil
}

func (f *fakeCafRepo) ListPending(ctx context.Context) ([]models.Caf, error) {
	if f.caf == nil {
		return nil, nil
	}
	if f.caf.Status == models.CafStatusPending || (f.caf.Status == models.CafStatusApproved && f.caf.EditPending) {
		return []models.Caf{*f.caf}, nil
	}
	return nil, nil
}

func (f *fakeCafRepo) applyUpdates(updates map[string]interface{}) {
	if f.caf == nil {
		return
	}
	if status, ok := updates["status"].(models.CafStatus); ok {
		f.caf.Status = status
	}
	if pending, ok := updates["edit_pending"].(bool); ok {
		f.caf.EditPending = pending
	}
	if patch, ok := updates["edit_patch"].(datatypes.JSONMap); ok {
		f.caf.EditPatch = patch
	}
	if patch, ok := updates["edit_patch"]; ok && patch == nil {
		f.caf.EditPatch = nil
	}
	f.caf.Version++
}

type fakeStudentRepo struct {
	student models.Student
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	if f.student.ID != id {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return f.student, nil
}

func (f *fakeStudentRepo) GetByEnrollment(ctx context.Context, enrollmentNo string) (models.Student, error) {
	if f.student.EnrollmentNo != enrollmentNo {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return f.student, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	f.student = *student
	return nil
}

type recordingPublisher struct {
	events []WorkflowEvent
}

func (r *recordingPublisher) PublishWorkflowEvent(ctx context.Context, event WorkflowEvent) {
	r.events = append(r.events, event)
}

func validSubmitRequest() dto.CafSubmitRequest {
	return dto.CafSubmitRequest{
		FullName:             "Asha Verma",
		RGPVEnrollment:       "0101CS221001",
		EnrollmentNo:         "0101CS221001",
		DateOfBirth:          "2003-07-14",
		Mobile:               "9876543210",
		EmailPersonal:        "asha@example.com",
		CurrentAddress:       "12 MG Road",
		PermanentAddress:     "12 MG Road",
		City:                 "Bhopal",
		State:                "Madhya Pradesh",
		Course:               "B.Tech",
		Branch:               "CSE",
		BatchYear:            2022,
		CurrentSemester:      6,
		TenthPercentage:      88.4,
		TenthYearOfPassing:   2018,
		TwelfthPercentage:    84.2,
		TwelfthYearOfPassing: 2020,
		CurrentCGPA:          8.1,
		Declaration:          true,
	}
}

func workflowFixture(t *testing.T, caf *models.Caf) (*cafWorkflowService, *fakeCafRepo, *recordingPublisher) {
	t.Helper()
	cafs := &fakeCafRepo{caf: caf}
	students := &fakeStudentRepo{student: models.Student{
		ID:           7,
		EnrollmentNo: "0101CS221001",
		FullName:     "Asha Verma",
		Branch:       "CSE",
	}}
	publisher := &recordingPublisher{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewCafWorkflowService(cafs, students, validate, publisher, nil, testLogger()).(*cafWorkflowService)
	return svc, cafs, publisher
}

func TestSubmitCreatesPendingCaf(t *testing.T) {
	svc, cafs, publisher := workflowFixture(t, nil)

	result, err := svc.Submit(context.Background(), 7, validSubmitRequest())
	require.NoError(t, err)
	require.Equal(t, models.CafStatusPending, result.Status)
	require.Equal(t, 1, cafs.createCalls)
	require.NotNil(t, cafs.caf.SubmittedAt)

	require.Len(t, publisher.events, 1)
	require.Equal(t, EventCafSubmitted, publisher.events[0].Kind)
	require.Equal(t, "0101CS221001", publisher.events[0].EnrollmentNo)
}

func TestSubmitRejectsUnacceptedDeclaration(t *testing.T) {
	svc, cafs, _ := workflowFixture(t, nil)

	payload := validSubmitRequest()
	payload.Declaration = false

	_, err := svc.Submit(context.Background(), 7, payload)
	require.Error(t, err)
	require.True(t, isValidatorError(err))
	require.Equal(t, 0, cafs.createCalls)
}

func TestSubmitRejectsEnrollmentMismatch(t *testing.T) {
	svc, cafs, _ := workflowFixture(t, nil)

	payload := validSubmitRequest()
	payload.EnrollmentNo = "0101CS221999"

	_, err := svc.Submit(context.Background(), 7, payload)
	require.ErrorIs(t, err, ErrEnrollmentMismatch)
	require.Equal(t, 0, cafs.createCalls)
}

func TestSubmitWhilePendingIsInvalid(t *testing.T) {
	svc, cafs, _ := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusPending})

	_, err := svc.Submit(context.Background(), 7, validSubmitRequest())

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "submit", invalid.Event)
	require.Equal(t, 0, cafs.resubmitCalls)
}

func TestSubmitAfterRejectionClearsReason(t *testing.T) {
	reason := "incomplete academics"
	svc, cafs, _ := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusRejected, RejectionReason: &reason})

	result, err := svc.Submit(context.Background(), 7, validSubmitRequest())
	require.NoError(t, err)
	require.Equal(t, models.CafStatusPending, result.Status)
	require.Equal(t, 1, cafs.resubmitCalls)
	require.Nil(t, cafs.lastUpdates["rejection_reason"])
}

func TestStatusForMissingRecordIsNotSubmitted(t *testing.T) {
	svc, _, _ := workflowFixture(t, nil)

	status, err := svc.Status(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, models.CafStatusNotSubmitted, status.Status)
}

func TestGateLockedUntilApproval(t *testing.T) {
	for _, caf := range []*models.Caf{
		nil,
		{ID: 1, StudentID: 7, Status: models.CafStatusPending},
		{ID: 1, StudentID: 7, Status: models.CafStatusRejected},
	} {
		svc, _, _ := workflowFixture(t, caf)
		gate, err := svc.Gate(context.Background(), 7)
		require.NoError(t, err)
		require.False(t, gate.Internships)
		require.False(t, gate.Placements)
		require.False(t, gate.MockInterviews)
	}

	svc, _, _ := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusApproved})
	gate, err := svc.Gate(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, gate.Internships)
	require.True(t, gate.Placements)
	require.True(t, gate.MockInterviews)
}

func TestRequestEditOutsideAllowlist(t *testing.T) {
	svc, _, _ := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusApproved})

	_, err := svc.RequestEdit(context.Background(), 7, dto.CafEditRequest{Fields: map[string]interface{}{
		"current_cgpa": 8.5,
		"branch":       "IT",
	}})

	var notEditable *FieldNotEditableError
	require.ErrorAs(t, err, &notEditable)
	require.Equal(t, []string{"branch"}, notEditable.Fields)
}

func TestRequestEditValidatesValues(t *testing.T) {
	svc, _, _ := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusApproved})

	_, err := svc.RequestEdit(context.Background(), 7, dto.CafEditRequest{Fields: map[string]interface{}{
		"current_cgpa": 11.2,
	}})

	var badValue *EditValueError
	require.ErrorAs(t, err, &badValue)
	require.Equal(t, "current_cgpa", badValue.Field)
}

func TestRequestEditMarksPending(t *testing.T) {
	svc, cafs, publisher := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusApproved})

	status, err := svc.RequestEdit(context.Background(), 7, dto.CafEditRequest{Fields: map[string]interface{}{
		"current_cgpa":            8.6,
		"domain_interest_primary": "Machine Learning",
	}})
	require.NoError(t, err)
	require.True(t, status.EditPending)
	require.Equal(t, models.CafStatusApproved, status.Status)
	require.True(t, cafs.caf.EditPending)
	require.Len(t, publisher.events, 1)
	require.Equal(t, EventEditRequested, publisher.events[0].Kind)
}

func TestRequestEditWhileEditPendingIsInvalid(t *testing.T) {
	svc, _, _ := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusApproved, EditPending: true})

	_, err := svc.RequestEdit(context.Background(), 7, dto.CafEditRequest{Fields: map[string]interface{}{
		"current_cgpa": 8.6,
	}})

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestRequestEditBeforeApprovalIsInvalid(t *testing.T) {
	svc, _, _ := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusPending})

	_, err := svc.RequestEdit(context.Background(), 7, dto.CafEditRequest{Fields: map[string]interface{}{
		"current_cgpa": 8.6,
	}})

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestResolveApprovesPendingCaf(t *testing.T) {
	svc, cafs, publisher := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusPending})

	status, err := svc.Resolve(context.Background(), 1, dto.CafDecisionRequest{Decision: "approve"})
	require.NoError(t, err)
	require.Equal(t, models.CafStatusApproved, status.Status)
	require.Equal(t, models.CafStatusApproved, cafs.caf.Status)
	require.Len(t, publisher.events, 1)
	require.Equal(t, EventCafApproved, publisher.events[0].Kind)
}

func TestResolveRejectsWithSanitizedReason(t *testing.T) {
	svc, _, publisher := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusPending})

	status, err := svc.Resolve(context.Background(), 1, dto.CafDecisionRequest{
		Decision: "reject",
		Reason:   "<script>alert(1)</script>marksheet missing",
	})
	require.NoError(t, err)
	require.Equal(t, models.CafStatusRejected, status.Status)
	require.NotNil(t, status.RejectionReason)
	require.Equal(t, "marksheet missing", *status.RejectionReason)
	require.Equal(t, EventCafRejected, publisher.events[0].Kind)
}

func TestResolveApprovedWithoutEditIsInvalid(t *testing.T) {
	svc, _, _ := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusApproved})

	_, err := svc.Resolve(context.Background(), 1, dto.CafDecisionRequest{Decision: "approve"})

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestResolveEditApproveMergesPatch(t *testing.T) {
	svc, cafs, publisher := workflowFixture(t, &models.Caf{
		ID:        1,
		StudentID: 7,
		Status:    models.CafStatusApproved,
		EditPending: true,
		EditPatch: datatypes.JSONMap{
			"current_cgpa":            8.9,
			"domain_interest_primary": "Data Engineering",
		},
	})

	status, err := svc.Resolve(context.Background(), 1, dto.CafDecisionRequest{Decision: "approve"})
	require.NoError(t, err)
	require.Equal(t, models.CafStatusApproved, status.Status)
	require.False(t, status.EditPending)

	require.Equal(t, 8.9, cafs.lastUpdates["current_cgpa"])
	require.Equal(t, "Data Engineering", cafs.lastUpdates["domain_interest_primary"])
	require.Equal(t, false, cafs.lastUpdates["edit_pending"])
	require.Equal(t, 8.9, cafs.studentUpdates["current_cgpa"])
	require.Equal(t, EventEditApproved, publisher.events[0].Kind)
}

func TestResolveEditRejectDiscardsPatch(t *testing.T) {
	svc, cafs, publisher := workflowFixture(t, &models.Caf{
		ID:          1,
		StudentID:   7,
		Status:      models.CafStatusApproved,
		EditPending: true,
		EditPatch:   datatypes.JSONMap{"current_cgpa": 9.9},
	})

	status, err := svc.Resolve(context.Background(), 1, dto.CafDecisionRequest{Decision: "reject"})
	require.NoError(t, err)
	require.Equal(t, models.CafStatusApproved, status.Status)
	require.False(t, cafs.caf.EditPending)
	require.Nil(t, cafs.caf.EditPatch)

	// Rejecting the edit must not touch the approved form fields.
	require.NotContains(t, cafs.lastUpdates, "current_cgpa")
	require.Equal(t, EventEditRejected, publisher.events[0].Kind)
}

func TestTransitionConflictSurfacesAsCafConflict(t *testing.T) {
	svc, cafs, _ := workflowFixture(t, &models.Caf{ID: 1, StudentID: 7, Status: models.CafStatusPending})
	cafs.transitionErr = repository.ErrVersionConflict

	_, err := svc.Resolve(context.Background(), 1, dto.CafDecisionRequest{Decision: "approve"})
	require.ErrorIs(t, err, ErrCafConflict)
}

func isValidatorError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
