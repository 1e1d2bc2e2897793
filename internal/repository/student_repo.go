package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

// StudentRepository exposes lookups over the student registry.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByEnrollment(ctx context.Context, enrollmentNo string) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) GetByEnrollment(ctx context.Context, enrollmentNo string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("enrollment_no = ?", enrollmentNo).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}
