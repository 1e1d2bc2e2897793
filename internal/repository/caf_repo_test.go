package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Caf{},
		&models.CafCertification{},
		&models.CafInternship{},
		&models.MockInterviewResult{},
	))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, enrollment string) models.Student {
	t.Helper()
	student := models.Student{
		EnrollmentNo: enrollment,
		FullName:     "Asha Verma",
		Branch:       "CSE",
		CurrentCGPA:  8.1,
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func seedCaf(t *testing.T, db *gorm.DB, student models.Student, status models.CafStatus) models.Caf {
	t.Helper()
	now := time.Now().UTC()
	caf := models.Caf{
		StudentID:    student.ID,
		FullName:     student.FullName,
		EnrollmentNo: student.EnrollmentNo,
		Branch:       student.Branch,
		CurrentCGPA:  student.CurrentCGPA,
		Status:       status,
		SubmittedAt:  &now,
	}
	require.NoError(t, db.Create(&caf).Error)
	return caf
}

func TestCafRepositoryVersionedTransition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCafRepository(db)
	student := seedStudent(t, db, "0101CS221001")
	caf := seedCaf(t, db, student, models.CafStatusPending)

	err := repo.ApplyTransition(context.Background(), caf.ID, caf.Version, map[string]interface{}{
		"status": models.CafStatusApproved,
	})
	require.NoError(t, err)

	updated, err := repo.GetByID(context.Background(), caf.ID)
	require.NoError(t, err)
	require.Equal(t, models.CafStatusApproved, updated.Status)
	require.Equal(t, caf.Version+1, updated.Version)

	// A second transition with the stale version must not apply.
	err = repo.ApplyTransition(context.Background(), caf.ID, caf.Version, map[string]interface{}{
		"status": models.CafStatusRejected,
	})
	require.ErrorIs(t, err, ErrVersionConflict)

	unchanged, err := repo.GetByID(context.Background(), caf.ID)
	require.NoError(t, err)
	require.Equal(t, models.CafStatusApproved, unchanged.Status)
}

func TestCafRepositoryResubmitReplacesChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCafRepository(db)
	student := seedStudent(t, db, "0101CS221001")
	caf := seedCaf(t, db, student, models.CafStatusRejected)

	require.NoError(t, db.Create(&models.CafCertification{CafID: caf.ID, Position: 1, Title: "Old Cert"}).Error)

	err := repo.Resubmit(context.Background(), caf.ID, caf.Version,
		map[string]interface{}{
			"status":           models.CafStatusPending,
			"rejection_reason": nil,
		},
		[]models.CafCertification{
			{Position: 1, Title: "AWS Cloud Practitioner"},
			{Position: 2, Title: "CCNA"},
		},
		[]models.CafInternship{
			{Position: 1, CompanyName: "Acme"},
		},
	)
	require.NoError(t, err)

	reloaded, err := repo.GetByID(context.Background(), caf.ID)
	require.NoError(t, err)
	require.Equal(t, models.CafStatusPending, reloaded.Status)
	require.Len(t, reloaded.Certifications, 2)
	require.Equal(t, "AWS Cloud Practitioner", reloaded.Certifications[0].Title)
	require.Len(t, reloaded.Internships, 1)
}

func TestCafRepositoryApproveEditUpdatesStudentSnapshot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCafRepository(db)
	student := seedStudent(t, db, "0101CS221001")
	caf := seedCaf(t, db, student, models.CafStatusApproved)

	require.NoError(t, db.Model(&models.Caf{}).Where("id = ?", caf.ID).Updates(map[string]interface{}{
		"edit_pending": true,
		"edit_patch":   datatypes.JSONMap{"current_cgpa": 8.9},
	}).Error)

	reloaded, err := repo.GetByID(context.Background(), caf.ID)
	require.NoError(t, err)

	err = repo.ApproveEdit(context.Background(), caf.ID, reloaded.Version,
		map[string]interface{}{
			"edit_pending": false,
			"edit_patch":   nil,
			"current_cgpa": 8.9,
		},
		student.ID,
		map[string]interface{}{"current_cgpa": 8.9},
	)
	require.NoError(t, err)

	final, err := repo.GetByID(context.Background(), caf.ID)
	require.NoError(t, err)
	require.False(t, final.EditPending)
	require.Equal(t, 8.9, final.CurrentCGPA)

	var snapshot models.Student
	require.NoError(t, db.First(&snapshot, student.ID).Error)
	require.Equal(t, 8.9, snapshot.CurrentCGPA)
}

func TestCafRepositoryApproveEditConflictRollsBackStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCafRepository(db)
	student := seedStudent(t, db, "0101CS221001")
	caf := seedCaf(t, db, student, models.CafStatusApproved)

	err := repo.ApproveEdit(context.Background(), caf.ID, caf.Version+5,
		map[string]interface{}{"edit_pending": false},
		student.ID,
		map[string]interface{}{"current_cgpa": 9.9},
	)
	require.ErrorIs(t, err, ErrVersionConflict)

	var snapshot models.Student
	require.NoError(t, db.First(&snapshot, student.ID).Error)
	require.Equal(t, 8.1, snapshot.CurrentCGPA)
}

func TestCafRepositoryListPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCafRepository(db)

	pendingStudent := seedStudent(t, db, "0101CS221001")
	seedCaf(t, db, pendingStudent, models.CafStatusPending)

	approvedStudent := seedStudent(t, db, "0101CS221002")
	approved := seedCaf(t, db, approvedStudent, models.CafStatusApproved)

	editStudent := seedStudent(t, db, "0101CS221003")
	editCaf := seedCaf(t, db, editStudent, models.CafStatusApproved)
	require.NoError(t, db.Model(&models.Caf{}).Where("id = ?", editCaf.ID).Updates(map[string]interface{}{
		"edit_pending": true,
	}).Error)

	rejectedStudent := seedStudent(t, db, "0101CS221004")
	seedCaf(t, db, rejectedStudent, models.CafStatusRejected)

	cafs, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, cafs, 2)
	for _, caf := range cafs {
		require.NotEqual(t, approved.ID, caf.ID)
		require.NotEmpty(t, caf.Student.EnrollmentNo)
	}
}
