package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

// ErrVersionConflict indicates a transition raced with a concurrent mutation
// of the same CAF record.
var ErrVersionConflict = errors.New("caf version conflict")

// CafRepository persists CAF records. Every mutating method takes the version
// the caller read; the update is applied only if the row still carries that
// version, so concurrent transitions on one record cannot interleave.
type CafRepository interface {
	GetByID(ctx context.Context, id uint) (models.Caf, error)
	GetByStudentID(ctx context.Context, studentID uint) (models.Caf, error)
	Create(ctx context.Context, caf *models.Caf) error
	Resubmit(ctx context.Context, id, expectedVersion uint, updates map[string]interface{}, certifications []models.CafCertification, internships []models.CafInternship) error
	ApplyTransition(ctx context.Context, id, expectedVersion uint, updates map[string]interface{}) error
	ApproveEdit(ctx context.Context, id, expectedVersion uint, cafUpdates map[string]interface{}, studentID uint, studentUpdates map[string]interface{}) error
	ListPending(ctx context.Context) ([]models.Caf, error)
}

type cafRepository struct {
	db *gorm.DB
}

// NewCafRepository constructs the CAF repository.
func NewCafRepository(db *gorm.DB) CafRepository {
	return &cafRepository{db: db}
}

func (r *cafRepository) GetByID(ctx context.Context, id uint) (models.Caf, error) {
	var caf models.Caf
	err := r.db.WithContext(ctx).
		Preload("Certifications", orderByPosition).
		Preload("Internships", orderByPosition).
		Preload("Student").
		First(&caf, id).Error
	if err != nil {
		return models.Caf{}, err
	}
	return caf, nil
}

func (r *cafRepository) GetByStudentID(ctx context.Context, studentID uint) (models.Caf, error) {
	var caf models.Caf
	err := r.db.WithContext(ctx).
		Preload("Certifications", orderByPosition).
		Preload("Internships", orderByPosition).
		Preload("Student").
		Where("student_id = ?", studentID).
		First(&caf).Error
	if err != nil {
		return models.Caf{}, err
	}
	return caf, nil
}

func (r *cafRepository) Create(ctx context.Context, caf *models.Caf) error {
	return r.db.WithContext(ctx).Create(caf).Error
}

func (r *cafRepository) Resubmit(ctx context.Context, id, expectedVersion uint, updates map[string]interface{}, certifications []models.CafCertification, internships []models.CafInternship) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyVersioned(tx, id, expectedVersion, updates); err != nil {
			return err
		}

		if err := tx.Where("caf_id = ?", id).Delete(&models.CafCertification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("caf_id = ?", id).Delete(&models.CafInternship{}).Error; err != nil {
			return err
		}

		for i := range certifications {
			certifications[i].CafID = id
		}
		for i := range internships {
			internships[i].CafID = id
		}
		if len(certifications) > 0 {
			if err := tx.Create(&certifications).Error; err != nil {
				return err
			}
		}
		if len(internships) > 0 {
			if err := tx.Create(&internships).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *cafRepository) ApplyTransition(ctx context.Context, id, expectedVersion uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyVersioned(tx, id, expectedVersion, updates)
	})
}

func (r *cafRepository) ApproveEdit(ctx context.Context, id, expectedVersion uint, cafUpdates map[string]interface{}, studentID uint, studentUpdates map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyVersioned(tx, id, expectedVersion, cafUpdates); err != nil {
			return err
		}

		if len(studentUpdates) > 0 {
			if err := tx.Model(&models.Student{}).Where("id = ?", studentID).Updates(studentUpdates).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *cafRepository) ListPending(ctx context.Context) ([]models.Caf, error) {
	var cafs []models.Caf
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("status = ?", models.CafStatusPending).
		Or("status = ? AND edit_pending = ?", models.CafStatusApproved, true).
		Find(&cafs).Error
	if err != nil {
		return nil, err
	}
	return cafs, nil
}

func applyVersioned(tx *gorm.DB, id, expectedVersion uint, updates map[string]interface{}) error {
	updates["version"] = gorm.Expr("version + 1")
	result := tx.Model(&models.Caf{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
