package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

func (r *SiteRepository) Create(ctx context.Context, site *domain.Site) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(site).Error
}

func (r *SiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	var site domain.Site
	err := r.db.WithContext(ctx).
		Preload("Business").
		First(&site, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *SiteRepository) Update(ctx context.Context, site *domain.Site) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(site).Error
}

func (r *SiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Site{}, "id = ?", id).Error
}

func (r *SiteRepository) List(ctx context.Context, page, pageSize int, activeOnly bool) ([]domain.Site, int64, error) {
	var sites []domain.Site
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Site{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&sites).Error

	return sites, total, err
}

// ListActive returns every active site, used by the sweep job
func (r *SiteRepository) ListActive(ctx context.Context) ([]domain.Site, error) {
	var sites []domain.Site
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&sites).Error
	return sites, err
}
