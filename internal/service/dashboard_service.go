package service

import (
	"context"

	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService aggregates counters for the panel landing page
type DashboardService struct {
	leadRepo         *repository.LeadRepository
	projectRepo      *repository.ProjectRepository
	proposalRepo     *repository.ProposalRepository
	incidentRepo     *repository.IncidentRepository
	healthCheckRepo  *repository.HealthCheckRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewDashboardService(
	leadRepo *repository.LeadRepository,
	projectRepo *repository.ProjectRepository,
	proposalRepo *repository.ProposalRepository,
	incidentRepo *repository.IncidentRepository,
	healthCheckRepo *repository.HealthCheckRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		leadRepo:         leadRepo,
		projectRepo:      projectRepo,
		proposalRepo:     proposalRepo,
		incidentRepo:     incidentRepo,
		healthCheckRepo:  healthCheckRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// GetOverview collects the dashboard counters. Each counter degrades
// to zero on failure so one broken query cannot blank the whole page.
func (s *DashboardService) GetOverview(ctx context.Context) (*domain.DashboardDTO, error) {
	dto := &domain.DashboardDTO{
		LeadsByStage: map[domain.LeadStage]int64{},
	}

	if byStage, err := s.leadRepo.CountByStage(ctx); err == nil {
		dto.LeadsByStage = byStage
		for _, count := range byStage {
			dto.TotalLeads += count
		}
	} else {
		s.logger.Warn("dashboard: failed to count leads by stage", zap.Error(err))
	}

	if clients, err := s.leadRepo.CountClients(ctx); err == nil {
		dto.TotalClients = clients
	} else {
		s.logger.Warn("dashboard: failed to count clients", zap.Error(err))
	}

	if open, err := s.incidentRepo.CountOpen(ctx); err == nil {
		dto.OpenIncidents = open
	} else {
		s.logger.Warn("dashboard: failed to count incidents", zap.Error(err))
	}

	if down, err := s.healthCheckRepo.CountSitesDown(ctx); err == nil {
		dto.SitesDown = down
	} else {
		s.logger.Warn("dashboard: failed to count down sites", zap.Error(err))
	}

	if active, err := s.projectRepo.CountActive(ctx); err == nil {
		dto.ActiveProjects = active
	} else {
		s.logger.Warn("dashboard: failed to count projects", zap.Error(err))
	}

	if pending, err := s.proposalRepo.CountPending(ctx); err == nil {
		dto.PendingProposals = pending
	} else {
		s.logger.Warn("dashboard: failed to count proposals", zap.Error(err))
	}

	if unread, err := s.notificationRepo.CountUnread(ctx); err == nil {
		dto.UnreadNotifications = unread
	} else {
		s.logger.Warn("dashboard: failed to count notifications", zap.Error(err))
	}

	return dto, nil
}
