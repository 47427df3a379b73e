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

type SiteService struct {
	siteRepo        *repository.SiteRepository
	healthCheckRepo *repository.HealthCheckRepository
	incidentRepo    *repository.IncidentRepository
	logger          *zap.Logger
}

func NewSiteService(
	siteRepo *repository.SiteRepository,
	healthCheckRepo *repository.HealthCheckRepository,
	incidentRepo *repository.IncidentRepository,
	logger *zap.Logger,
) *SiteService {
	return &SiteService{
		siteRepo:        siteRepo,
		healthCheckRepo: healthCheckRepo,
		incidentRepo:    incidentRepo,
		logger:          logger,
	}
}

func (s *SiteService) Create(ctx context.Context, req *domain.CreateSiteRequest) (*domain.SiteDTO, error) {
	site := &domain.Site{
		Name:       req.Name,
		URL:        req.URL,
		HealthURL:  req.HealthURL,
		IsActive:   true,
		BusinessID: req.BusinessID,
	}
	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to create site: %w", err)
	}

	dto := mapper.ToSiteDTO(site, nil, 0, nil)
	return &dto, nil
}

func (s *SiteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SiteDTO, error) {
	site, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	dto := s.decorate(ctx, site)
	return &dto, nil
}

func (s *SiteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateSiteRequest) (*domain.SiteDTO, error) {
	site, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	site.Name = req.Name
	site.URL = req.URL
	site.HealthURL = req.HealthURL
	if req.IsActive != nil {
		site.IsActive = *req.IsActive
	}
	site.BusinessID = req.BusinessID

	if err := s.siteRepo.Update(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to update site: %w", err)
	}

	dto := s.decorate(ctx, site)
	return &dto, nil
}

func (s *SiteService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.siteRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get site: %w", err)
	}
	if err := s.siteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	return nil
}

func (s *SiteService) List(ctx context.Context, page, pageSize int, activeOnly bool) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	sites, total, err := s.siteRepo.List(ctx, page, pageSize, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}

	dtos := make([]domain.SiteDTO, len(sites))
	for i := range sites {
		dtos[i] = s.decorate(ctx, &sites[i])
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

// HealthHistory pages through stored checks, newest first
func (s *SiteService) HealthHistory(ctx context.Context, siteID uuid.UUID, page, pageSize int) (*domain.PaginatedResponse, error) {
	if _, err := s.siteRepo.GetByID(ctx, siteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	page, pageSize = repository.NormalizePage(page, pageSize)
	checks, total, err := s.healthCheckRepo.ListBySite(ctx, siteID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list health checks: %w", err)
	}

	dtos := make([]domain.HealthCheckDTO, len(checks))
	for i := range checks {
		dtos[i] = mapper.ToHealthCheckDTO(&checks[i])
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

// decorate overlays the latest check status, open incident count and
// uptime over the stored check history
func (s *SiteService) decorate(ctx context.Context, site *domain.Site) domain.SiteDTO {
	latest, err := s.healthCheckRepo.GetLatest(ctx, site.ID)
	if err != nil {
		s.logger.Warn("failed to load latest health check", zap.String("site_id", site.ID.String()), zap.Error(err))
	}
	openIncidents, err := s.incidentRepo.CountOpenForSite(ctx, site.ID)
	if err != nil {
		s.logger.Warn("failed to count open incidents", zap.String("site_id", site.ID.String()), zap.Error(err))
	}
	uptime, err := s.healthCheckRepo.UptimePercent(ctx, site.ID)
	if err != nil {
		s.logger.Warn("failed to compute uptime", zap.String("site_id", site.ID.String()), zap.Error(err))
	}
	return mapper.ToSiteDTO(site, latest, int(openIncidents), uptime)
}
