package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/auth"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/mapper"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ActivityService struct {
	activityRepo *repository.ActivityRepository
	leadRepo     *repository.LeadRepository
	logger       *zap.Logger
}

func NewActivityService(activityRepo *repository.ActivityRepository, leadRepo *repository.LeadRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		leadRepo:     leadRepo,
		logger:       logger,
	}
}

func (s *ActivityService) Create(ctx context.Context, leadID uuid.UUID, req *domain.CreateActivityRequest) (*domain.ActivityDTO, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrInvalidInput, req.Type)
	}

	if _, err := s.leadRepo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	activity := &domain.Activity{
		LeadID:      leadID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
		ActorName:   auth.ActorName(ctx),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

func (s *ActivityService) ListByLead(ctx context.Context, leadID uuid.UUID, page, pageSize int, activityType *domain.ActivityType) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	activities, total, err := s.activityRepo.ListByLead(ctx, leadID, page, pageSize, activityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// TogglePin pins or unpins an activity on the lead timeline.
//
// Only notes and email records are pinnable, and a lead holds at most
// MaxPinnedPerLead pins. The count check and the write are separate
// statements, so two concurrent pins can race past the limit; the
// panel is a small internal tool and the overshoot is tolerated.
func (s *ActivityService) TogglePin(ctx context.Context, id uuid.UUID, pinned bool) (*domain.ActivityDTO, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	if pinned && !activity.Type.IsPinnable() {
		return nil, fmt.Errorf("%w: %s activities cannot be pinned", ErrUnpinnable, activity.Type)
	}

	if activity.Pinned == pinned {
		dto := mapper.ToActivityDTO(activity)
		return &dto, nil
	}

	if pinned {
		count, err := s.activityRepo.CountPinned(ctx, activity.LeadID)
		if err != nil {
			return nil, fmt.Errorf("failed to count pinned activities: %w", err)
		}
		if count >= domain.MaxPinnedPerLead {
			return nil, fmt.Errorf("%w: lead already has %d pinned activities", ErrPinLimitExceeded, domain.MaxPinnedPerLead)
		}
	}

	if err := s.activityRepo.SetPinned(ctx, id, pinned, auth.ActorName(ctx)); err != nil {
		return nil, fmt.Errorf("failed to update pin: %w", err)
	}

	updated, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload activity: %w", err)
	}

	dto := mapper.ToActivityDTO(updated)
	return &dto, nil
}

// ListRecent feeds the dashboard activity feed
func (s *ActivityService) ListRecent(ctx context.Context, limit int) ([]domain.ActivityDTO, error) {
	if limit < 1 || limit > 100 {
		limit = 25
	}
	activities, err := s.activityRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent activities: %w", err)
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}
