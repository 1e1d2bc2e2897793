package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/repository"
	"github.com/rgpv-tpo/placement-api/pkg/spreadsheet"
)

type adminStudentRepoStub struct {
	rows       []repository.StudentWithCafStatus
	total      int64
	lastFilter repository.AdminStudentFilter
}

func (a *adminStudentRepoStub) List(ctx context.Context, filter repository.AdminStudentFilter) ([]repository.StudentWithCafStatus, int64, error) {
	a.lastFilter = filter
	return a.rows, a.total, nil
}

func statusPtr(status models.CafStatus) *string {
	raw := string(status)
	return &raw
}

func TestAdminStudentFilterProjectsCafStatus(t *testing.T) {
	repo := &adminStudentRepoStub{
		rows: []repository.StudentWithCafStatus{
			{Student: models.Student{ID: 1, EnrollmentNo: "0101CS221001", FullName: "Asha Verma", Branch: "CSE", CurrentCGPA: 8.1}, CafStatus: statusPtr(models.CafStatusApproved)},
			{Student: models.Student{ID: 2, EnrollmentNo: "0101CS221002", FullName: "Ravi Nair", Branch: "CSE", CurrentCGPA: 7.2}},
		},
		total: 12,
	}
	svc := NewAdminStudentService(repo, validator.New(), testLogger())

	result, err := svc.Filter(context.Background(), dto.AdminStudentFilterRequest{Page: 2, PageSize: 5, Department: "CSE"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.Equal(t, models.CafStatusApproved, result.Items[0].CafStatus)
	// A student without a CAF row reads as not_submitted.
	require.Equal(t, models.CafStatusNotSubmitted, result.Items[1].CafStatus)

	require.Equal(t, 2, result.Pagination.Page)
	require.Equal(t, int64(12), result.Pagination.TotalItems)
	require.Equal(t, 3, result.Pagination.TotalPages)
	require.Equal(t, "CSE", repo.lastFilter.Department)
}

func TestAdminStudentFilterValidatesBounds(t *testing.T) {
	svc := NewAdminStudentService(&adminStudentRepoStub{}, validator.New(), testLogger())

	bad := 10.5
	_, err := svc.Filter(context.Background(), dto.AdminStudentFilterRequest{MinCGPA: &bad})
	require.Error(t, err)
	require.True(t, isValidatorError(err))
}

func TestAdminStudentExportCoversWholePopulation(t *testing.T) {
	repo := &adminStudentRepoStub{
		rows: []repository.StudentWithCafStatus{
			{Student: models.Student{ID: 1, EnrollmentNo: "0101CS221001", FullName: "Asha Verma", Branch: "CSE", CurrentCGPA: 8.1, TenthPercent: 88.4, TwelfthPercent: 84.2}, CafStatus: statusPtr(models.CafStatusApproved)},
		},
		total: 1,
	}
	svc := NewAdminStudentService(repo, validator.New(), testLogger())

	blob, filename, err := svc.Export(context.Background(), dto.AdminStudentFilterRequest{Page: 3, PageSize: 5})
	require.NoError(t, err)
	require.Regexp(t, `^students-\d{8}-\d{6}\.xlsx$`, filename)

	// Pagination never applies to exports.
	require.Zero(t, repo.lastFilter.Page)
	require.Zero(t, repo.lastFilter.PageSize)

	header, rows, err := spreadsheet.Decode(bytes.NewReader(blob))
	require.NoError(t, err)
	require.Equal(t, "Enrollment No", header[0])
	require.Equal(t, "CAF Status", header[8])
	require.Len(t, rows, 1)
	require.Equal(t, "0101CS221001", rows[0][0])
	require.Equal(t, string(models.CafStatusApproved), rows[0][8])
}
