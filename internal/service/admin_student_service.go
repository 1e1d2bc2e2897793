package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/repository"
	"github.com/rgpv-tpo/placement-api/pkg/spreadsheet"
)

// AdminStudentService answers filtered queries over the student population
// and produces the spreadsheet export of the same projection.
type AdminStudentService interface {
	Filter(ctx context.Context, req dto.AdminStudentFilterRequest) (dto.AdminStudentListResponse, error)
	Export(ctx context.Context, req dto.AdminStudentFilterRequest) ([]byte, string, error)
}

type adminStudentService struct {
	repo      repository.AdminStudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAdminStudentService constructs the admin student service.
func NewAdminStudentService(repo repository.AdminStudentRepository, validate *validator.Validate, logger zerolog.Logger) AdminStudentService {
	return &adminStudentService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "admin_student_service").Logger(),
		tracer:    otel.Tracer("github.com/rgpv-tpo/placement-api/internal/service/adminstudent"),
		now:       time.Now,
	}
}

func (s *adminStudentService) Filter(ctx context.Context, req dto.AdminStudentFilterRequest) (dto.AdminStudentListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdminStudentListResponse{}, err
	}

	rows, total, err := s.repo.List(ctx, repoFilter(req))
	if err != nil {
		return dto.AdminStudentListResponse{}, err
	}

	items := make([]dto.AdminStudentResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.NewAdminStudentResponse(row.Student, statusOrDefault(row.CafStatus)))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.AdminStudentListResponse{Items: items, Pagination: pagination}, nil
}

func (s *adminStudentService) Export(ctx context.Context, req dto.AdminStudentFilterRequest) ([]byte, string, error) {
	ctx, span := s.tracer.Start(ctx, "students.export")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, "", err
	}

	// Exports always cover the whole filtered population.
	filter := repoFilter(req)
	filter.Page = 0
	filter.PageSize = 0

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	span.SetAttributes(attribute.Int64("export.rows", total))

	header := []string{
		"Enrollment No", "Full Name", "Branch", "Current CGPA",
		"10th %", "12th %", "Active Backlogs", "Backlog History", "CAF Status",
	}
	data := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		data = append(data, []interface{}{
			row.EnrollmentNo,
			row.FullName,
			row.Branch,
			row.CurrentCGPA,
			row.TenthPercent,
			row.TwelfthPercent,
			row.BacklogsActive,
			row.BacklogsHistory,
			string(statusOrDefault(row.CafStatus)),
		})
	}

	blob, err := spreadsheet.Encode("Students", header, data)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("students-%s.xlsx", s.now().UTC().Format("20060102-150405"))
	s.logger.Info().Int("rows", len(data)).Str("filename", filename).Msg("student export generated")

	return blob, filename, nil
}

func repoFilter(req dto.AdminStudentFilterRequest) repository.AdminStudentFilter {
	return repository.AdminStudentFilter{
		EnrollmentNo:      strings.TrimSpace(req.EnrollmentNo),
		Department:        strings.TrimSpace(req.Department),
		Name:              strings.TrimSpace(req.Name),
		MinCGPA:           req.MinCGPA,
		MinTenthPercent:   req.MinTenthPercent,
		MinTwelfthPercent: req.MinTwelfthPercent,
		Sort:              req.Sort,
		Page:              req.Page,
		PageSize:          req.PageSize,
	}
}

func statusOrDefault(raw *string) models.CafStatus {
	if raw == nil {
		return models.CafStatusNotSubmitted
	}
	status := models.CafStatus(*raw)
	if !status.Valid() {
		return models.CafStatusNotSubmitted
	}
	return status
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
