package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/observability"
)

var (
	// ErrUploadTooLarge indicates the document exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

var allowedDocumentTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
}

// FileStorage abstracts document storage destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// DocumentService validates and stores resumes and academic documents. The
// returned URL is what a student places into their CAF (or an edit request
// for resume_file_url).
type DocumentService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, studentID uint) (dto.UploadResponse, error)
}

type documentService struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewDocumentService constructs a document upload service.
func NewDocumentService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) DocumentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &documentService{
		storage: storage,
		logger:  logger.With().Str("component", "document_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/rgpv-tpo/placement-api/internal/service/document"),
	}
}

func (s *documentService) Upload(ctx context.Context, file *multipart.FileHeader, studentID uint) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "document.store", trace.WithAttributes(
		attribute.Int64("upload.max_bytes", s.maxSize),
		attribute.Int64("upload.student_id", int64(studentID)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResponse{}, err
	}

	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	source, err := file.Open()
	if err != nil {
		return dto.UploadResponse{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer source.Close()

	data, err := io.ReadAll(io.LimitReader(source, s.maxSize+1))
	if err != nil {
		return dto.UploadResponse{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(data)
	if !documentTypeAllowed(detected) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.UploadResponse{}, ErrUploadTypeNotAllowed
	}

	name := fmt.Sprintf("student-%d-%s", studentID, sanitizeFileName(file.Filename))
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.UploadResponse{}, fmt.Errorf("failed to store document: %w", err)
	}

	s.logger.Info().Uint("student_id", studentID).Str("url", url).Msg("document stored")

	return dto.UploadResponse{
		URL:         url,
		FileName:    file.Filename,
		SizeBytes:   int64(len(data)),
		ContentType: detected.String(),
	}, nil
}

func documentTypeAllowed(detected *mimetype.MIME) bool {
	for _, allowed := range allowedDocumentTypes {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "document"
	}
	return base
}
