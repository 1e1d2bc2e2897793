package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

// InternshipRepository persists the append-only internship records.
type InternshipRepository interface {
	Create(ctx context.Context, record *models.InternshipRecord) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.InternshipRecord, error)
}

type internshipRepository struct {
	db *gorm.DB
}

// NewInternshipRepository constructs the internship repository.
func NewInternshipRepository(db *gorm.DB) InternshipRepository {
	return &internshipRepository{db: db}
}

func (r *internshipRepository) Create(ctx context.Context, record *models.InternshipRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *internshipRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.InternshipRecord, error) {
	var records []models.InternshipRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
