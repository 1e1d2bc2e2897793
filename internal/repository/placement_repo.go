package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

// PlacementDriveRepository persists the placement drive catalog.
type PlacementDriveRepository interface {
	List(ctx context.Context) ([]models.PlacementDrive, error)
	GetByID(ctx context.Context, id uint) (models.PlacementDrive, error)
	Create(ctx context.Context, drive *models.PlacementDrive) error
	Update(ctx context.Context, drive *models.PlacementDrive) error
	Delete(ctx context.Context, id uint) error
}

type placementDriveRepository struct {
	db *gorm.DB
}

// NewPlacementDriveRepository constructs the drive repository.
func NewPlacementDriveRepository(db *gorm.DB) PlacementDriveRepository {
	return &placementDriveRepository{db: db}
}

func (r *placementDriveRepository) List(ctx context.Context) ([]models.PlacementDrive, error) {
	var drives []models.PlacementDrive
	if err := r.db.WithContext(ctx).Order("drive_date ASC, company_name ASC").Find(&drives).Error; err != nil {
		return nil, err
	}
	return drives, nil
}

func (r *placementDriveRepository) GetByID(ctx context.Context, id uint) (models.PlacementDrive, error) {
	var drive models.PlacementDrive
	if err := r.db.WithContext(ctx).First(&drive, id).Error; err != nil {
		return models.PlacementDrive{}, err
	}
	return drive, nil
}

func (r *placementDriveRepository) Create(ctx context.Context, drive *models.PlacementDrive) error {
	return r.db.WithContext(ctx).Create(drive).Error
}

func (r *placementDriveRepository) Update(ctx context.Context, drive *models.PlacementDrive) error {
	result := r.db.WithContext(ctx).Model(&models.PlacementDrive{}).
		Where("id = ?", drive.ID).
		Select("company_name", "location", "job_description", "min_cgpa", "allowed_branches", "max_backlogs", "drive_date").
		Updates(drive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *placementDriveRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.PlacementDrive{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
