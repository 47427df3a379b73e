package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/gorm"
)

// HealthCheckRepository stores immutable probe results. There is no
// Update method on purpose; status history is reconstructed from the
// insert log.
type HealthCheckRepository struct {
	db *gorm.DB
}

func NewHealthCheckRepository(db *gorm.DB) *HealthCheckRepository {
	return &HealthCheckRepository{db: db}
}

func (r *HealthCheckRepository) Create(ctx context.Context, check *domain.HealthCheck) error {
	return r.db.WithContext(ctx).Create(check).Error
}

// GetLatest returns the most recent check for a site, or nil if the
// site has never been checked.
func (r *HealthCheckRepository) GetLatest(ctx context.Context, siteID uuid.UUID) (*domain.HealthCheck, error) {
	var check domain.HealthCheck
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("checked_at DESC").
		First(&check).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// UptimePercent computes the share of stored checks that were healthy,
// as a percentage. Returns nil when the site has no checks yet.
func (r *HealthCheckRepository) UptimePercent(ctx context.Context, siteID uuid.UUID) (*float64, error) {
	var total, healthy int64
	if err := r.db.WithContext(ctx).Model(&domain.HealthCheck{}).
		Where("site_id = ?", siteID).
		Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Model(&domain.HealthCheck{}).
		Where("site_id = ? AND status = ?", siteID, domain.StatusHealthy).
		Count(&healthy).Error; err != nil {
		return nil, err
	}
	percent := float64(healthy) / float64(total) * 100
	return &percent, nil
}

// GetPrevious returns the check immediately before the newest one.
// Used for transition detection after the current check is stored.
func (r *HealthCheckRepository) GetPrevious(ctx context.Context, siteID uuid.UUID) (*domain.HealthCheck, error) {
	var checks []domain.HealthCheck
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("checked_at DESC").
		Limit(2).
		Find(&checks).Error
	if err != nil {
		return nil, err
	}
	if len(checks) < 2 {
		return nil, nil
	}
	return &checks[1], nil
}

// ListBySite returns the check history for a site, newest first
func (r *HealthCheckRepository) ListBySite(ctx context.Context, siteID uuid.UUID, page, pageSize int) ([]domain.HealthCheck, int64, error) {
	var checks []domain.HealthCheck
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.HealthCheck{}).Where("site_id = ?", siteID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("checked_at DESC").Offset(offset).Limit(pageSize).Find(&checks).Error

	return checks, total, err
}

// CountSitesDown counts sites whose latest check classified as down
func (r *HealthCheckRepository) CountSitesDown(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM devops_health_checks h
		WHERE h.status = ?
		AND h.checked_at = (
			SELECT MAX(checked_at) FROM devops_health_checks
			WHERE site_id = h.site_id
		)`, domain.StatusDown).
		Scan(&count).Error
	return count, err
}
