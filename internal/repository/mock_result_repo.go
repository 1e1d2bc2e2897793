package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

// MockResultRepository persists mock interview results. Upsert is keyed by
// (enrollment_no, attempt_number) so repeated uploads of the same sheet are
// idempotent.
type MockResultRepository interface {
	Upsert(ctx context.Context, result *models.MockInterviewResult) error
	ListByEnrollment(ctx context.Context, enrollmentNo string) ([]models.MockInterviewResult, error)
}

type mockResultRepository struct {
	db *gorm.DB
}

// NewMockResultRepository constructs the mock result repository.
func NewMockResultRepository(db *gorm.DB) MockResultRepository {
	return &mockResultRepository{db: db}
}

func (r *mockResultRepository) Upsert(ctx context.Context, result *models.MockInterviewResult) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_no"}, {Name: "attempt_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected", "rejected_at", "rounds", "imported_by", "updated_at"}),
	}).Create(result).Error
}

func (r *mockResultRepository) ListByEnrollment(ctx context.Context, enrollmentNo string) ([]models.MockInterviewResult, error) {
	var results []models.MockInterviewResult
	err := r.db.WithContext(ctx).
		Where("enrollment_no = ?", enrollmentNo).
		Order("attempt_number ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
