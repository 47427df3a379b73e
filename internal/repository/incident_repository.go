package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IncidentFilters contains all filter options for listing incidents
type IncidentFilters struct {
	SiteID   *uuid.UUID
	Status   *domain.IncidentStatus
	Severity *domain.IncidentSeverity
	Type     *domain.IncidentType
}

type IncidentRepository struct {
	db *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(incident).Error
}

func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	var incident domain.Incident
	err := r.db.WithContext(ctx).
		Preload("Site").
		First(&incident, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

func (r *IncidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(incident).Error
}

// GetOpenByType finds a non-resolved incident of the given type for a
// site. This is the dedup check: at most one can exist.
func (r *IncidentRepository) GetOpenByType(ctx context.Context, siteID uuid.UUID, incidentType domain.IncidentType) (*domain.Incident, error) {
	var incident domain.Incident
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND type = ? AND status != ?", siteID, incidentType, domain.IncidentResolved).
		Order("created_at DESC").
		First(&incident).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

// ResolveAllForSite bulk-resolves every open incident for a site and
// returns how many rows changed.
func (r *IncidentRepository) ResolveAllForSite(ctx context.Context, siteID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Incident{}).
		Where("site_id = ? AND status != ?", siteID, domain.IncidentResolved).
		Updates(map[string]interface{}{
			"status":      domain.IncidentResolved,
			"resolved_at": at,
			"updated_at":  at,
		})
	return result.RowsAffected, result.Error
}

func (r *IncidentRepository) List(ctx context.Context, page, pageSize int, filters *IncidentFilters) ([]domain.Incident, int64, error) {
	var incidents []domain.Incident
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Incident{}).Preload("Site")
	if filters != nil {
		if filters.SiteID != nil {
			query = query.Where("site_id = ?", *filters.SiteID)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.Severity != nil {
			query = query.Where("severity = ?", *filters.Severity)
		}
		if filters.Type != nil {
			query = query.Where("type = ?", *filters.Type)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&incidents).Error

	return incidents, total, err
}

// CountOpen counts non-resolved incidents for the dashboard
func (r *IncidentRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Incident{}).
		Where("status != ?", domain.IncidentResolved).
		Count(&count).Error
	return count, err
}

// CountOpenForSite counts non-resolved incidents for one site
func (r *IncidentRepository) CountOpenForSite(ctx context.Context, siteID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Incident{}).
		Where("site_id = ? AND status != ?", siteID, domain.IncidentResolved).
		Count(&count).Error
	return count, err
}
