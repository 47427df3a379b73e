package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Create(ctx context.Context, business *domain.Business) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(business).Error
}

func (r *BusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	var business domain.Business
	err := r.db.WithContext(ctx).
		Preload("Leads").
		Preload("Sites").
		First(&business, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *BusinessRepository) Update(ctx context.Context, business *domain.Business) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(business).Error
}

func (r *BusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Business{}, "id = ?", id).Error
}

func (r *BusinessRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Business, int64, error) {
	var businesses []domain.Business
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Business{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(industry) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&businesses).Error

	return businesses, total, err
}

// CountRelations returns lead and site counts for a business
func (r *BusinessRepository) CountRelations(ctx context.Context, id uuid.UUID) (leadCount, siteCount int64, err error) {
	if err = r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("business_id = ?", id).Count(&leadCount).Error; err != nil {
		return
	}
	err = r.db.WithContext(ctx).Model(&domain.Site{}).
		Where("business_id = ?", id).Count(&siteCount).Error
	return
}
