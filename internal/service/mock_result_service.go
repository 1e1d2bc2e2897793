package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/observability"
	"github.com/rgpv-tpo/placement-api/internal/repository"
	"github.com/rgpv-tpo/placement-api/pkg/spreadsheet"
)

var (
	// ErrImportFileRequired indicates no spreadsheet was attached.
	ErrImportFileRequired = errors.New("spreadsheet file is required")
	// ErrImportFileTooLarge indicates the upload exceeded the configured limit.
	ErrImportFileTooLarge = errors.New("spreadsheet exceeds maximum allowed size")
	// ErrImportFileType indicates the upload is not an XLSX workbook.
	ErrImportFileType = errors.New("file must be an XLSX workbook")
)

// Round columns recognised in the uploaded sheet.
var mockRoundColumns = []string{"gd", "hr", "technical"}

// MockResultService ingests mock interview results from uploaded workbooks
// and serves them back to students. Malformed rows are reported per row and
// never abort the batch.
type MockResultService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, importedBy uint) (dto.MockImportSummary, error)
	ResultsFor(ctx context.Context, enrollmentNo string) ([]dto.MockResultResponse, error)
}

type mockResultService struct {
	repo    repository.MockResultRepository
	logger  zerolog.Logger
	tracer  trace.Tracer
	maxSize int64
}

// NewMockResultService constructs the mock result service.
func NewMockResultService(repo repository.MockResultRepository, maxSizeMB int, logger zerolog.Logger) MockResultService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &mockResultService{
		repo:    repo,
		logger:  logger.With().Str("component", "mock_result_service").Logger(),
		tracer:  otel.Tracer("github.com/rgpv-tpo/placement-api/internal/service/mockresult"),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
	}
}

func (s *mockResultService) Upload(ctx context.Context, file *multipart.FileHeader, importedBy uint) (dto.MockImportSummary, error) {
	ctx, span := s.tracer.Start(ctx, "mockresults.import")
	defer span.End()

	if file == nil {
		return dto.MockImportSummary{}, ErrImportFileRequired
	}
	if file.Size > s.maxSize {
		return dto.MockImportSummary{}, ErrImportFileTooLarge
	}

	source, err := file.Open()
	if err != nil {
		return dto.MockImportSummary{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer source.Close()

	data, err := io.ReadAll(io.LimitReader(source, s.maxSize+1))
	if err != nil {
		return dto.MockImportSummary{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return dto.MockImportSummary{}, ErrImportFileTooLarge
	}

	detected := mimetype.Detect(data)
	if !detected.Is(spreadsheet.ContentType) && !strings.EqualFold(strings.TrimSpace(detected.Extension()), ".xlsx") {
		return dto.MockImportSummary{}, ErrImportFileType
	}

	header, rows, err := spreadsheet.Decode(bytes.NewReader(data))
	if err != nil {
		return dto.MockImportSummary{}, ErrImportFileType
	}

	columns := columnIndex(header)
	if _, ok := columns["enrollment_no"]; !ok {
		return dto.MockImportSummary{}, fmt.Errorf("%w: missing enrollment_no column", ErrImportFileType)
	}

	span.SetAttributes(attribute.Int("import.rows", len(rows)))

	summary := dto.MockImportSummary{Errors: []dto.MockImportRowError{}}
	for i, row := range rows {
		// Header occupies row 1 of the sheet.
		rowNumber := i + 2

		result, parseErr := parseMockRow(row, columns)
		if parseErr != nil {
			observability.MockImportRows().WithLabelValues("invalid").Inc()
			summary.Errors = append(summary.Errors, dto.MockImportRowError{Row: rowNumber, Message: parseErr.Error()})
			continue
		}
		result.ImportedBy = importedBy

		if err := s.repo.Upsert(ctx, &result); err != nil {
			observability.MockImportRows().WithLabelValues("failed").Inc()
			summary.Errors = append(summary.Errors, dto.MockImportRowError{Row: rowNumber, Message: "failed to store row"})
			s.logger.Warn().Err(err).Int("row", rowNumber).Msg("mock result upsert failed")
			continue
		}

		observability.MockImportRows().WithLabelValues("ok").Inc()
		summary.Imported++
	}

	s.logger.Info().Int("imported", summary.Imported).Int("errors", len(summary.Errors)).Msg("mock results imported")
	return summary, nil
}

func (s *mockResultService) ResultsFor(ctx context.Context, enrollmentNo string) ([]dto.MockResultResponse, error) {
	results, err := s.repo.ListByEnrollment(ctx, strings.TrimSpace(enrollmentNo))
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MockResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, dto.NewMockResultResponse(result))
	}
	return responses, nil
}

func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		normalized = strings.ReplaceAll(normalized, " ", "_")
		if normalized != "" {
			columns[normalized] = i
		}
	}
	// Accept both "enrollment" and "enrollment_no" headers.
	if _, ok := columns["enrollment_no"]; !ok {
		if i, ok := columns["enrollment"]; ok {
			columns["enrollment_no"] = i
		}
	}
	if _, ok := columns["attempt_number"]; !ok {
		if i, ok := columns["attempt"]; ok {
			columns["attempt_number"] = i
		}
	}
	return columns
}

func parseMockRow(row []string, columns map[string]int) (models.MockInterviewResult, error) {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	enrollment := cell("enrollment_no")
	if enrollment == "" {
		return models.MockInterviewResult{}, errors.New("enrollment number is empty")
	}

	attempt := 1
	if raw := cell("attempt_number"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return models.MockInterviewResult{}, fmt.Errorf("invalid attempt number %q", raw)
		}
		attempt = parsed
	}

	selected, err := parseSheetBool(cell("selected"))
	if err != nil {
		return models.MockInterviewResult{}, fmt.Errorf("invalid selected value %q", cell("selected"))
	}

	rounds := datatypes.JSONMap{}
	for _, round := range mockRoundColumns {
		raw := cell(round)
		if raw == "" {
			continue
		}
		passed, err := parseSheetBool(raw)
		if err != nil {
			return models.MockInterviewResult{}, fmt.Errorf("invalid %s value %q", round, raw)
		}
		rounds[round] = passed
	}

	return models.MockInterviewResult{
		EnrollmentNo:  enrollment,
		AttemptNumber: attempt,
		Selected:      selected,
		RejectedAt:    cell("rejected_at"),
		Rounds:        rounds,
	}, nil
}

func parseSheetBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "no", "0", "fail":
		return false, nil
	case "true", "yes", "1", "pass":
		return true, nil
	}
	return false, errors.New("not a boolean")
}
