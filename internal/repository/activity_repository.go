package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/gorm"
)

// ActivityRepository handles database operations for the lead activity
// log. Log entries are append-only; the only mutable fields are the
// pin fields.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	var activity domain.Activity
	err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListByLead returns the activity log for a lead, pinned entries
// first, newest first within each group.
func (r *ActivityRepository) ListByLead(ctx context.Context, leadID uuid.UUID, page, pageSize int, activityType *domain.ActivityType) ([]domain.Activity, int64, error) {
	var activities []domain.Activity
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Activity{}).Where("lead_id = ?", leadID)
	if activityType != nil {
		query = query.Where("type = ?", *activityType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("pinned DESC, created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&activities).Error

	return activities, total, err
}

// ListPinned returns the pinned activities for a lead, newest pin first
func (r *ActivityRepository) ListPinned(ctx context.Context, leadID uuid.UUID) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := r.db.WithContext(ctx).
		Where("lead_id = ? AND pinned = ?", leadID, true).
		Order("pinned_at DESC").
		Find(&activities).Error
	return activities, err
}

// CountPinned counts currently pinned activities for a lead
func (r *ActivityRepository) CountPinned(ctx context.Context, leadID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Activity{}).
		Where("lead_id = ? AND pinned = ?", leadID, true).
		Count(&count).Error
	return count, err
}

// SetPinned updates only the pin fields of an activity
func (r *ActivityRepository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool, pinnedBy string) error {
	updates := map[string]interface{}{
		"pinned":     pinned,
		"updated_at": time.Now(),
	}
	if pinned {
		updates["pinned_at"] = time.Now()
		updates["pinned_by"] = pinnedBy
	} else {
		updates["pinned_at"] = nil
		updates["pinned_by"] = ""
	}
	return r.db.WithContext(ctx).Model(&domain.Activity{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListRecent returns the most recent activities across all leads
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
