package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/repository"
)

// NotificationService projects pending workflow items for the admin panel.
// There is no notification table: the list is computed from live CAF state,
// so it can never diverge from it, and resolving a notification is exactly a
// workflow resolution.
type NotificationService interface {
	List(ctx context.Context, kindFilter string) ([]dto.NotificationResponse, error)
	Resolve(ctx context.Context, cafID uint, decision dto.CafDecisionRequest) (dto.CafStatusResponse, error)
}

type notificationService struct {
	cafs     repository.CafRepository
	workflow CafWorkflowService
	logger   zerolog.Logger
}

// NewNotificationService constructs the notification projection.
func NewNotificationService(cafs repository.CafRepository, workflow CafWorkflowService, logger zerolog.Logger) NotificationService {
	return &notificationService{
		cafs:     cafs,
		workflow: workflow,
		logger:   logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) List(ctx context.Context, kindFilter string) ([]dto.NotificationResponse, error) {
	cafs, err := s.cafs.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	notifications := make([]dto.NotificationResponse, 0, len(cafs))
	for _, caf := range cafs {
		notification := projectNotification(caf)
		if kindFilter != "" && notification.Kind != kindFilter {
			continue
		}
		notifications = append(notifications, notification)
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].Timestamp.After(notifications[j].Timestamp)
	})

	return notifications, nil
}

func (s *notificationService) Resolve(ctx context.Context, cafID uint, decision dto.CafDecisionRequest) (dto.CafStatusResponse, error) {
	status, err := s.workflow.Resolve(ctx, cafID, decision)
	if err != nil {
		return dto.CafStatusResponse{}, err
	}

	s.logger.Info().Uint("caf_id", cafID).Str("decision", decision.Decision).Msg("notification resolved")
	return status, nil
}

func projectNotification(caf models.Caf) dto.NotificationResponse {
	notification := dto.NotificationResponse{
		ID:           caf.ID,
		StudentID:    caf.StudentID,
		StudentName:  caf.Student.FullName,
		EnrollmentNo: caf.EnrollmentNo,
	}

	if caf.EditPending {
		notification.Kind = dto.NotificationKindEditRequest
		if caf.EditRequestedAt != nil {
			notification.Timestamp = *caf.EditRequestedAt
		}
		notification.Details = map[string]interface{}{
			"fields": patchKeys(caf.EditPatch),
		}
		return notification
	}

	notification.Kind = dto.NotificationKindNewCaf
	if caf.SubmittedAt != nil {
		notification.Timestamp = *caf.SubmittedAt
	} else {
		notification.Timestamp = time.Time{}
	}
	notification.Details = map[string]interface{}{
		"enrollment_no": caf.EnrollmentNo,
		"branch":        caf.Branch,
		"current_cgpa":  caf.CurrentCGPA,
	}
	return notification
}
