package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/mapper"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BusinessService struct {
	businessRepo *repository.BusinessRepository
	logger       *zap.Logger
}

func NewBusinessService(businessRepo *repository.BusinessRepository, logger *zap.Logger) *BusinessService {
	return &BusinessService{
		businessRepo: businessRepo,
		logger:       logger,
	}
}

func (s *BusinessService) Create(ctx context.Context, req *domain.CreateBusinessRequest) (*domain.BusinessDTO, error) {
	business := &domain.Business{
		Name:     req.Name,
		Website:  req.Website,
		Industry: req.Industry,
		Phone:    req.Phone,
		Notes:    req.Notes,
	}
	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}

	dto := mapper.ToBusinessDTO(business, 0, 0)
	return &dto, nil
}

func (s *BusinessService) GetByID(ctx context.Context, id uuid.UUID) (*domain.BusinessDTO, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	leadCount, siteCount := s.counts(ctx, id)
	dto := mapper.ToBusinessDTO(business, leadCount, siteCount)
	return &dto, nil
}

func (s *BusinessService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateBusinessRequest) (*domain.BusinessDTO, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	business.Name = req.Name
	business.Website = req.Website
	business.Industry = req.Industry
	business.Phone = req.Phone
	business.Notes = req.Notes

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}

	leadCount, siteCount := s.counts(ctx, id)
	dto := mapper.ToBusinessDTO(business, leadCount, siteCount)
	return &dto, nil
}

// Delete removes a business. Leads and sites keep their rows; their
// business reference is cleared by the database.
func (s *BusinessService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.businessRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get business: %w", err)
	}
	if err := s.businessRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete business: %w", err)
	}
	return nil
}

func (s *BusinessService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	businesses, total, err := s.businessRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}

	dtos := make([]domain.BusinessDTO, len(businesses))
	for i := range businesses {
		leadCount, siteCount := s.counts(ctx, businesses[i].ID)
		dtos[i] = mapper.ToBusinessDTO(&businesses[i], leadCount, siteCount)
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

func (s *BusinessService) counts(ctx context.Context, id uuid.UUID) (int64, int64) {
	leadCount, siteCount, err := s.businessRepo.CountRelations(ctx, id)
	if err != nil {
		s.logger.Warn("failed to count business relations", zap.String("business_id", id.String()), zap.Error(err))
	}
	return leadCount, siteCount
}
