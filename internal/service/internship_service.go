package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/repository"
)

// ErrFeatureLocked indicates the student's CAF is not approved yet, so the
// requested feature area is still locked.
var ErrFeatureLocked = errors.New("feature locked until caf approval")

// InternshipService manages the append-only internship records of approved
// students.
type InternshipService interface {
	Add(ctx context.Context, studentID uint, payload dto.InternshipCreateRequest) (dto.InternshipResponse, error)
	List(ctx context.Context, studentID uint) ([]dto.InternshipResponse, error)
}

type internshipService struct {
	repo      repository.InternshipRepository
	workflow  CafWorkflowService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewInternshipService constructs the internship service.
func NewInternshipService(repo repository.InternshipRepository, workflow CafWorkflowService, validate *validator.Validate, logger zerolog.Logger) InternshipService {
	return &internshipService{
		repo:      repo,
		workflow:  workflow,
		validator: validate,
		logger:    logger.With().Str("component", "internship_service").Logger(),
	}
}

func (s *internshipService) Add(ctx context.Context, studentID uint, payload dto.InternshipCreateRequest) (dto.InternshipResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InternshipResponse{}, err
	}

	if err := s.requireUnlocked(ctx, studentID); err != nil {
		return dto.InternshipResponse{}, err
	}

	record := models.InternshipRecord{
		StudentID:      studentID,
		CompanyName:    strings.TrimSpace(payload.CompanyName),
		InternshipType: strings.TrimSpace(payload.InternshipType),
		Duration:       strings.TrimSpace(payload.Duration),
		Stipend:        strings.TrimSpace(payload.Stipend),
		HasPPO:         payload.HasPPO,
		CertificateURL: strings.TrimSpace(payload.CertificateURL),
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return dto.InternshipResponse{}, err
	}

	s.logger.Info().Uint("student_id", studentID).Str("company", record.CompanyName).Msg("internship recorded")
	return dto.NewInternshipResponse(record), nil
}

func (s *internshipService) List(ctx context.Context, studentID uint) ([]dto.InternshipResponse, error) {
	if err := s.requireUnlocked(ctx, studentID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.InternshipResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewInternshipResponse(record))
	}
	return responses, nil
}

func (s *internshipService) requireUnlocked(ctx context.Context, studentID uint) error {
	gate, err := s.workflow.Gate(ctx, studentID)
	if err != nil {
		return err
	}
	if !gate.Internships {
		return ErrFeatureLocked
	}
	return nil
}
