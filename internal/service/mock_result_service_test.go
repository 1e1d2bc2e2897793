package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/pkg/spreadsheet"
)

type mockResultRepoStub struct {
	stored []models.MockInterviewResult
	failOn string
}

func (m *mockResultRepoStub) Upsert(ctx context.Context, result *models.MockInterviewResult) error {
	if m.failOn != "" && result.EnrollmentNo == m.failOn {
		return context.DeadlineExceeded
	}
	for i, existing := range m.stored {
		if existing.EnrollmentNo == result.EnrollmentNo && existing.AttemptNumber == result.AttemptNumber {
			m.stored[i] = *result
			return nil
		}
	}
	m.stored = append(m.stored, *result)
	return nil
}

func (m *mockResultRepoStub) ListByEnrollment(ctx context.Context, enrollmentNo string) ([]models.MockInterviewResult, error) {
	var results []models.MockInterviewResult
	for _, result := range m.stored {
		if result.EnrollmentNo == enrollmentNo {
			results = append(results, result)
		}
	}
	return results, nil
}

func encodeWorkbook(t *testing.T, header []string, rows [][]interface{}) []byte {
	t.Helper()
	content, err := spreadsheet.Encode("Results", header, rows)
	require.NoError(t, err)
	return content
}

func TestMockResultUploadImportsRows(t *testing.T) {
	repo := &mockResultRepoStub{}
	svc := NewMockResultService(repo, 5, testLogger())

	content := encodeWorkbook(t,
		[]string{"Enrollment No", "Attempt", "GD", "HR", "Technical", "Selected"},
		[][]interface{}{
			{"0101CS221001", 1, "pass", "pass", "fail", "no"},
			{"0101CS221002", 1, "yes", "yes", "yes", "yes"},
		},
	)

	summary, err := svc.Upload(context.Background(), buildFileHeader(t, "results.xlsx", content), 99)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Imported)
	require.Empty(t, summary.Errors)

	require.Len(t, repo.stored, 2)
	first := repo.stored[0]
	require.Equal(t, "0101CS221001", first.EnrollmentNo)
	require.Equal(t, 1, first.AttemptNumber)
	require.False(t, first.Selected)
	require.Equal(t, true, first.Rounds["gd"])
	require.Equal(t, false, first.Rounds["technical"])
	require.Equal(t, uint(99), first.ImportedBy)
}

func TestMockResultUploadCollectsRowErrors(t *testing.T) {
	repo := &mockResultRepoStub{}
	svc := NewMockResultService(repo, 5, testLogger())

	content := encodeWorkbook(t,
		[]string{"enrollment_no", "attempt_number", "selected"},
		[][]interface{}{
			{"", 1, "yes"},
			{"0101CS221003", "zero", "yes"},
			{"0101CS221004", 2, "maybe"},
			{"0101CS221005", 1, "yes"},
		},
	)

	summary, err := svc.Upload(context.Background(), buildFileHeader(t, "results.xlsx", content), 99)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)
	require.Len(t, summary.Errors, 3)

	// Row numbers refer to sheet rows, after the header.
	require.Equal(t, 2, summary.Errors[0].Row)
	require.Equal(t, 3, summary.Errors[1].Row)
	require.Equal(t, 4, summary.Errors[2].Row)
}

func TestMockResultUploadReimportOverwritesAttempt(t *testing.T) {
	repo := &mockResultRepoStub{}
	svc := NewMockResultService(repo, 5, testLogger())

	first := encodeWorkbook(t,
		[]string{"enrollment_no", "attempt_number", "selected"},
		[][]interface{}{{"0101CS221001", 1, "no"}},
	)
	_, err := svc.Upload(context.Background(), buildFileHeader(t, "results.xlsx", first), 99)
	require.NoError(t, err)

	second := encodeWorkbook(t,
		[]string{"enrollment_no", "attempt_number", "selected"},
		[][]interface{}{{"0101CS221001", 1, "yes"}},
	)
	_, err = svc.Upload(context.Background(), buildFileHeader(t, "results.xlsx", second), 99)
	require.NoError(t, err)

	require.Len(t, repo.stored, 1)
	require.True(t, repo.stored[0].Selected)
}

func TestMockResultUploadRejectsNonWorkbook(t *testing.T) {
	repo := &mockResultRepoStub{}
	svc := NewMockResultService(repo, 5, testLogger())

	_, err := svc.Upload(context.Background(), buildFileHeader(t, "results.csv", []byte("enrollment_no,selected\nx,yes")), 99)
	require.ErrorIs(t, err, ErrImportFileType)
}

func TestMockResultUploadRejectsMissingEnrollmentColumn(t *testing.T) {
	repo := &mockResultRepoStub{}
	svc := NewMockResultService(repo, 5, testLogger())

	content := encodeWorkbook(t, []string{"name", "selected"}, [][]interface{}{{"x", "yes"}})

	_, err := svc.Upload(context.Background(), buildFileHeader(t, "results.xlsx", content), 99)
	require.ErrorIs(t, err, ErrImportFileType)
}

func TestMockResultUploadRejectsOversizedFile(t *testing.T) {
	repo := &mockResultRepoStub{}
	svc := NewMockResultService(repo, 1, testLogger())

	file := buildFileHeader(t, "results.xlsx", bytes.Repeat([]byte("a"), 2*1024*1024))

	_, err := svc.Upload(context.Background(), file, 99)
	require.ErrorIs(t, err, ErrImportFileTooLarge)
}

func TestMockResultResultsFor(t *testing.T) {
	repo := &mockResultRepoStub{stored: []models.MockInterviewResult{
		{EnrollmentNo: "0101CS221001", AttemptNumber: 1, Selected: false},
		{EnrollmentNo: "0101CS221001", AttemptNumber: 2, Selected: true},
		{EnrollmentNo: "0101CS221002", AttemptNumber: 1, Selected: true},
	}}
	svc := NewMockResultService(repo, 5, testLogger())

	results, err := svc.ResultsFor(context.Background(), " 0101CS221001 ")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 2, results[1].AttemptNumber)
	require.True(t, results[1].Selected)
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
