package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/repository"
)

const driveCatalogCacheKey = "placement:drives:catalog"

// ErrDriveNotFound indicates the placement drive does not exist.
var ErrDriveNotFound = errors.New("placement drive not found")

// PlacementService maintains the drive catalog and filters it per student
// through the eligibility criteria. The catalog is cached; eligibility is
// always evaluated fresh against the student's CAF.
type PlacementService interface {
	EligibleDrives(ctx context.Context, studentID uint) ([]dto.PlacementDriveResponse, error)
	ListDrives(ctx context.Context) ([]dto.PlacementDriveResponse, error)
	CreateDrive(ctx context.Context, payload dto.PlacementDriveRequest) (dto.PlacementDriveResponse, error)
	UpdateDrive(ctx context.Context, id uint, payload dto.PlacementDriveRequest) (dto.PlacementDriveResponse, error)
	DeleteDrive(ctx context.Context, id uint) error
}

type placementService struct {
	drives    repository.PlacementDriveRepository
	workflow  CafWorkflowService
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPlacementService constructs the placement service. A nil cache client
// disables catalog caching.
func NewPlacementService(drives repository.PlacementDriveRepository, workflow CafWorkflowService, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) PlacementService {
	return &placementService{
		drives:    drives,
		workflow:  workflow,
		cache:     cache,
		cacheTTL:  ttl,
		validator: validate,
		logger:    logger.With().Str("component", "placement_service").Logger(),
	}
}

func (s *placementService) EligibleDrives(ctx context.Context, studentID uint) ([]dto.PlacementDriveResponse, error) {
	caf, err := s.workflow.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrCafNotFound) {
			return nil, ErrFeatureLocked
		}
		return nil, err
	}
	if !GateForStatus(caf.Status).Placements {
		return nil, ErrFeatureLocked
	}

	snapshot := EligibilitySnapshot{
		CGPA:           caf.CurrentCGPA,
		Branch:         caf.Branch,
		ActiveBacklogs: caf.BacklogsActive,
	}

	drives, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]dto.PlacementDriveResponse, 0, len(drives))
	for _, drive := range drives {
		criteria := EligibilityCriteria{
			MinCGPA:         drive.MinCGPA,
			AllowedBranches: drive.AllowedBranches(),
			MaxBacklogs:     drive.MaxBacklogs,
		}
		if IsEligible(snapshot, criteria) {
			eligible = append(eligible, dto.NewPlacementDriveResponse(drive))
		}
	}

	return eligible, nil
}

func (s *placementService) ListDrives(ctx context.Context) ([]dto.PlacementDriveResponse, error) {
	drives, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PlacementDriveResponse, 0, len(drives))
	for _, drive := range drives {
		responses = append(responses, dto.NewPlacementDriveResponse(drive))
	}
	return responses, nil
}

func (s *placementService) CreateDrive(ctx context.Context, payload dto.PlacementDriveRequest) (dto.PlacementDriveResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PlacementDriveResponse{}, err
	}

	drive := driveFromRequest(payload)
	if err := s.drives.Create(ctx, &drive); err != nil {
		return dto.PlacementDriveResponse{}, err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info().Uint("drive_id", drive.ID).Str("company", drive.CompanyName).Msg("placement drive created")
	return dto.NewPlacementDriveResponse(drive), nil
}

func (s *placementService) UpdateDrive(ctx context.Context, id uint, payload dto.PlacementDriveRequest) (dto.PlacementDriveResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PlacementDriveResponse{}, err
	}

	drive := driveFromRequest(payload)
	drive.ID = id
	if err := s.drives.Update(ctx, &drive); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlacementDriveResponse{}, ErrDriveNotFound
		}
		return dto.PlacementDriveResponse{}, err
	}

	s.invalidateCatalog(ctx)
	return dto.NewPlacementDriveResponse(drive), nil
}

func (s *placementService) DeleteDrive(ctx context.Context, id uint) error {
	if err := s.drives.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDriveNotFound
		}
		return err
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *placementService) catalog(ctx context.Context) ([]models.PlacementDrive, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, driveCatalogCacheKey).Result(); err == nil {
			var drives []models.PlacementDrive
			if unmarshalErr := json.Unmarshal([]byte(cached), &drives); unmarshalErr == nil {
				return drives, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read drive catalog cache")
		}
	}

	drives, err := s.drives.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(drives); err == nil {
			if err := s.cache.Set(ctx, driveCatalogCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store drive catalog cache")
			}
		}
	}

	return drives, nil
}

func (s *placementService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, driveCatalogCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate drive catalog cache")
	}
}

func driveFromRequest(payload dto.PlacementDriveRequest) models.PlacementDrive {
	drive := models.PlacementDrive{
		CompanyName:    strings.TrimSpace(payload.CompanyName),
		Location:       strings.TrimSpace(payload.Location),
		JobDescription: strings.TrimSpace(payload.JobDescription),
		MinCGPA:        payload.MinCGPA,
		MaxBacklogs:    payload.MaxBacklogs,
		DriveDate:      payload.DriveDate,
	}
	drive.SetAllowedBranches(payload.AllowedBranches)
	return drive
}
