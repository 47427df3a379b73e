package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProposalFilters contains all filter options for listing proposals
type ProposalFilters struct {
	Status *domain.ProposalStatus
	LeadID *uuid.UUID
}

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(proposal).Error
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).
		Preload("Lead").
		First(&proposal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetByToken looks a proposal up by its public viewing token
func (r *ProposalRepository) GetByToken(ctx context.Context, token string) (*domain.Proposal, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).
		First(&proposal, "public_token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *ProposalRepository) Update(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(proposal).Error
}

func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Proposal{}, "id = ?", id).Error
}

func (r *ProposalRepository) List(ctx context.Context, page, pageSize int, filters *ProposalFilters) ([]domain.Proposal, int64, error) {
	var proposals []domain.Proposal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Proposal{}).Preload("Lead")
	if filters != nil {
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.LeadID != nil {
			query = query.Where("lead_id = ?", *filters.LeadID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&proposals).Error

	return proposals, total, err
}

// ListByLead returns all proposals for a lead
func (r *ProposalRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Proposal, error) {
	var proposals []domain.Proposal
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&proposals).Error
	return proposals, err
}

// CountPending counts sent and viewed proposals awaiting a decision
func (r *ProposalRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Proposal{}).
		Where("status IN ?", []domain.ProposalStatus{domain.ProposalSent, domain.ProposalViewed}).
		Count(&count).Error
	return count, err
}

// ExpireOverdue bulk-expires sent/viewed proposals past their expiry
// date and returns how many rows changed.
func (r *ProposalRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Proposal{}).
		Where("status IN ?", []domain.ProposalStatus{domain.ProposalSent, domain.ProposalViewed}).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Updates(map[string]interface{}{
			"status":     domain.ProposalExpired,
			"decided_at": now,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}
