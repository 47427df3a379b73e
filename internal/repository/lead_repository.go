package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadFilters contains all filter options for listing leads
type LeadFilters struct {
	Stage         *domain.LeadStage
	Source        *domain.LeadSource
	IsClient      *bool
	BusinessID    *uuid.UUID
	MinScore      *int
	MaxScore      *int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SearchQuery   *string
}

// LeadSortOption represents available sort options
type LeadSortOption string

const (
	LeadSortByCreatedDesc LeadSortOption = "created_desc"
	LeadSortByCreatedAsc  LeadSortOption = "created_asc"
	LeadSortByScoreDesc   LeadSortOption = "score_desc"
	LeadSortByScoreAsc    LeadSortOption = "score_asc"
	LeadSortByUpdatedDesc LeadSortOption = "updated_desc"
	LeadSortByNameAsc     LeadSortOption = "name_asc"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	// Omit associations to avoid GORM trying to validate related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		Preload("Business").
		First(&lead, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetByEmail looks a lead up by its deduplication key. Emails are
// stored lowercased, so the lookup lowercases too.
func (r *LeadRepository) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		First(&lead, "LOWER(email) = ?", strings.ToLower(email)).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(lead).Error
}

func (r *LeadRepository) List(ctx context.Context, page, pageSize int, filters *LeadFilters, sortBy LeadSortOption) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lead{}).Preload("Business")
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&leads).Error

	return leads, total, err
}

// GetPipelineOverview returns open leads grouped by stage
func (r *LeadRepository) GetPipelineOverview(ctx context.Context) (map[domain.LeadStage][]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("stage NOT IN ?", []domain.LeadStage{domain.StageWon, domain.StageLost}).
		Order("stage, score DESC NULLS LAST").
		Find(&leads).Error
	if err != nil {
		return nil, err
	}

	pipeline := make(map[domain.LeadStage][]domain.Lead)
	for _, lead := range leads {
		pipeline[lead.Stage] = append(pipeline[lead.Stage], lead)
	}
	return pipeline, nil
}

// CountByStage returns lead counts per stage for the dashboard
func (r *LeadRepository) CountByStage(ctx context.Context) (map[domain.LeadStage]int64, error) {
	type stageCount struct {
		Stage domain.LeadStage
		Count int64
	}
	var results []stageCount
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Select("stage, COUNT(*) as count").
		Group("stage").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.LeadStage]int64, len(results))
	for _, res := range results {
		counts[res.Stage] = res.Count
	}
	return counts, nil
}

// CountClients returns the number of converted clients
func (r *LeadRepository) CountClients(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("is_client = ?", true).
		Count(&count).Error
	return count, err
}

// UpdateStage updates only the stage field
func (r *LeadRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.LeadStage) error {
	updates := map[string]interface{}{
		"stage":      stage,
		"updated_at": time.Now(),
	}
	return r.db.WithContext(ctx).Model(&domain.Lead{}).Where("id = ?", id).Updates(updates).Error
}

// ConvertToClient flips a lead into a client in a single UPDATE,
// clearing the lead-only scoring fields at the same time. There is no
// reverse operation.
func (r *LeadRepository) ConvertToClient(ctx context.Context, id uuid.UUID, since time.Time) error {
	updates := map[string]interface{}{
		"stage":           domain.StageWon,
		"is_client":       true,
		"client_since":    since,
		"score":           nil,
		"score_breakdown": nil,
		"source":          nil,
		"updated_at":      time.Now(),
	}
	return r.db.WithContext(ctx).Model(&domain.Lead{}).Where("id = ?", id).Updates(updates).Error
}

// GetStaleForHubSpotSync returns leads not synced within the window,
// never-synced first. Clients are included; they sync with a customer
// lifecycle stage.
func (r *LeadRepository) GetStaleForHubSpotSync(ctx context.Context, olderThan time.Time, limit int) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("hubspot_synced_at IS NULL OR hubspot_synced_at < ?", olderThan).
		Order("hubspot_synced_at ASC NULLS FIRST").
		Limit(limit).
		Find(&leads).Error
	return leads, err
}

// MarkHubSpotSynced stamps the sync freshness marker
func (r *LeadRepository) MarkHubSpotSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("id = ?", id).
		Update("hubspot_synced_at", at).Error
}

// Search performs a case-insensitive search across identity fields
func (r *LeadRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Lead, error) {
	var leads []domain.Lead
	pattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR LOWER(company) LIKE ?",
			pattern, pattern, pattern).
		Limit(limit).Order("created_at DESC").
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) applyFilters(query *gorm.DB, filters *LeadFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}
	if filters.IsClient != nil {
		query = query.Where("is_client = ?", *filters.IsClient)
	}
	if filters.BusinessID != nil {
		query = query.Where("business_id = ?", *filters.BusinessID)
	}
	if filters.MinScore != nil {
		query = query.Where("score >= ?", *filters.MinScore)
	}
	if filters.MaxScore != nil {
		query = query.Where("score <= ?", *filters.MaxScore)
	}
	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}
	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}
	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		pattern := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR LOWER(company) LIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

func (r *LeadRepository) applySorting(query *gorm.DB, sortBy LeadSortOption) *gorm.DB {
	switch sortBy {
	case LeadSortByCreatedAsc:
		return query.Order("created_at ASC")
	case LeadSortByScoreDesc:
		return query.Order("score DESC NULLS LAST")
	case LeadSortByScoreAsc:
		return query.Order("score ASC NULLS LAST")
	case LeadSortByUpdatedDesc:
		return query.Order("updated_at DESC")
	case LeadSortByNameAsc:
		return query.Order("name ASC")
	default:
		return query.Order("created_at DESC")
	}
}
