package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SEOReportRepository struct {
	db *gorm.DB
}

func NewSEOReportRepository(db *gorm.DB) *SEOReportRepository {
	return &SEOReportRepository{db: db}
}

func (r *SEOReportRepository) Create(ctx context.Context, report *domain.SEOReport) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

func (r *SEOReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SEOReport, error) {
	var report domain.SEOReport
	err := r.db.WithContext(ctx).
		Preload("Site").
		First(&report, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *SEOReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.SEOReport{}, "id = ?", id).Error
}

func (r *SEOReportRepository) ListBySite(ctx context.Context, siteID uuid.UUID, page, pageSize int) ([]domain.SEOReport, int64, error) {
	var reports []domain.SEOReport
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.SEOReport{}).Where("site_id = ?", siteID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&reports).Error

	return reports, total, err
}
