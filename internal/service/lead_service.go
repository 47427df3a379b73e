package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/auth"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/mapper"
	"github.com/visionary-advance/agency-api/internal/notify"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LeadService struct {
	leadRepo         *repository.LeadRepository
	activityRepo     *repository.ActivityRepository
	projectRepo      *repository.ProjectRepository
	proposalRepo     *repository.ProposalRepository
	notificationRepo *repository.NotificationRepository
	notifier         *notify.Notifier
	logger           *zap.Logger
}

func NewLeadService(
	leadRepo *repository.LeadRepository,
	activityRepo *repository.ActivityRepository,
	projectRepo *repository.ProjectRepository,
	proposalRepo *repository.ProposalRepository,
	notificationRepo *repository.NotificationRepository,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:         leadRepo,
		activityRepo:     activityRepo,
		projectRepo:      projectRepo,
		proposalRepo:     proposalRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
		logger:           logger,
	}
}

// Intake processes a public form or audit submission. Leads are
// deduplicated by case-insensitive email: a new submission for a known
// email merges into the existing row instead of creating a second one.
func (s *LeadService) Intake(ctx context.Context, req *domain.LeadIntakeRequest) (*domain.LeadDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	source := req.Source
	if source == "" {
		source = domain.SourceManual
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	incoming := &domain.Lead{
		Email:          email,
		Name:           req.Name,
		Company:        req.Company,
		Phone:          req.Phone,
		Website:        req.Website,
		Source:         &source,
		UTMSource:      req.UTMSource,
		UTMMedium:      req.UTMMedium,
		UTMCampaign:    req.UTMCampaign,
		ConversionPage: req.ConversionPage,
		BusinessType:   req.BusinessType,
		BudgetRange:    req.BudgetRange,
		Timeline:       req.Timeline,
		Services:       domain.StringList(req.Services),
		AuditScores:    req.AuditScores,
	}

	existing, err := s.leadRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}

	var lead *domain.Lead
	isNew := existing == nil || errors.Is(err, gorm.ErrRecordNotFound)
	if isNew {
		lead = incoming
		lead.Stage = domain.StageContact
		score, breakdown := domain.CalculateLeadScore(lead)
		lead.Score = &score
		lead.ScoreBreakdown = &breakdown
		if err := s.leadRepo.Create(ctx, lead); err != nil {
			return nil, fmt.Errorf("failed to create lead: %w", err)
		}
	} else {
		lead = domain.MergeLead(existing, incoming)
		if err := s.leadRepo.Update(ctx, lead); err != nil {
			return nil, fmt.Errorf("failed to update lead: %w", err)
		}
	}

	// Log the submission; a crash between the lead write and this
	// insert leaves the lead without a log entry, which is accepted
	s.recordActivity(ctx, lead.ID, domain.ActivityFormSubmission, "Form submission",
		fmt.Sprintf("Submission via %s", source), domain.Metadata{
			"source":  string(source),
			"new":     isNew,
			"message": req.Message,
		})

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadWithDetailsDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	details := &domain.LeadWithDetailsDTO{LeadDTO: mapper.ToLeadDTO(lead)}

	if pinned, err := s.activityRepo.ListPinned(ctx, id); err == nil {
		for i := range pinned {
			details.PinnedActivities = append(details.PinnedActivities, mapper.ToActivityDTO(&pinned[i]))
		}
	} else {
		s.logger.Warn("failed to load pinned activities", zap.String("lead_id", id.String()), zap.Error(err))
	}

	if recent, _, err := s.activityRepo.ListByLead(ctx, id, 1, 10, nil); err == nil {
		for i := range recent {
			details.RecentActivities = append(details.RecentActivities, mapper.ToActivityDTO(&recent[i]))
		}
	} else {
		s.logger.Warn("failed to load recent activities", zap.String("lead_id", id.String()), zap.Error(err))
	}

	if projects, err := s.projectRepo.ListByLead(ctx, id); err == nil {
		for i := range projects {
			details.Projects = append(details.Projects, mapper.ToProjectDTO(&projects[i]))
		}
	}
	if proposals, err := s.proposalRepo.ListByLead(ctx, id); err == nil {
		for i := range proposals {
			details.Proposals = append(details.Proposals, mapper.ToProposalDTO(&proposals[i]))
		}
	}

	return details, nil
}

func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if req.Name != "" {
		lead.Name = req.Name
	}
	if req.Company != "" {
		lead.Company = req.Company
	}
	if req.Phone != "" {
		lead.Phone = req.Phone
	}
	if req.Website != "" {
		lead.Website = req.Website
	}
	if req.BusinessType != "" {
		lead.BusinessType = req.BusinessType
	}
	if req.BudgetRange != "" {
		lead.BudgetRange = req.BudgetRange
	}
	if req.Timeline != "" {
		lead.Timeline = req.Timeline
	}
	if req.BusinessID != nil {
		lead.BusinessID = req.BusinessID
	}
	if req.Notes != "" {
		lead.Notes = req.Notes
	}

	// Clients are never re-scored; leads are
	if !lead.IsClient {
		score, breakdown := domain.CalculateLeadScore(lead)
		lead.Score = &score
		lead.ScoreBreakdown = &breakdown
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) List(ctx context.Context, page, pageSize int, filters *repository.LeadFilters, sortBy repository.LeadSortOption) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	leads, total, err := s.leadRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
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

// GetPipeline returns open leads grouped by stage for the board view
func (s *LeadService) GetPipeline(ctx context.Context) (map[domain.LeadStage][]domain.LeadDTO, error) {
	pipeline, err := s.leadRepo.GetPipelineOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}

	result := make(map[domain.LeadStage][]domain.LeadDTO, len(pipeline))
	for stage, leads := range pipeline {
		dtos := make([]domain.LeadDTO, len(leads))
		for i := range leads {
			dtos[i] = mapper.ToLeadDTO(&leads[i])
		}
		result[stage] = dtos
	}
	return result, nil
}

// UpdateStage moves a lead to a new pipeline stage.
//
// Any known stage is reachable from any other, including jumping
// straight to won or lost and moving backward; only the enum itself is
// validated. That is deliberate: stages are corrected by hand all the
// time. A same-stage update is an idempotent no-op.
func (s *LeadService) UpdateStage(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadStageRequest) (*domain.LeadDTO, error) {
	if !req.Stage.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, req.Stage)
	}

	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if lead.Stage == req.Stage {
		dto := mapper.ToLeadDTO(lead)
		return &dto, nil
	}

	previousStage := lead.Stage
	actor := auth.ActorName(ctx)

	if req.Stage == domain.StageWon && !lead.IsClient {
		// One-way conversion: client flag, timestamp, and cleared
		// scoring fields all land in a single UPDATE
		now := time.Now()
		if err := s.leadRepo.ConvertToClient(ctx, id, now); err != nil {
			return nil, fmt.Errorf("failed to convert lead to client: %w", err)
		}
		lead.Stage = domain.StageWon
		lead.IsClient = true
		lead.ClientSince = &now
		lead.Score = nil
		lead.ScoreBreakdown = nil
		lead.Source = nil
	} else {
		if err := s.leadRepo.UpdateStage(ctx, id, req.Stage); err != nil {
			return nil, fmt.Errorf("failed to update lead stage: %w", err)
		}
		lead.Stage = req.Stage
	}

	s.recordActivity(ctx, lead.ID, domain.ActivityStageChange, "Stage changed",
		fmt.Sprintf("%s -> %s", previousStage, req.Stage), domain.Metadata{
			"previous_stage": string(previousStage),
			"new_stage":      string(req.Stage),
			"notes":          req.Notes,
		})

	// Outbound notification is best-effort; a webhook failure never
	// rolls back the stage change
	s.notifyStageChange(ctx, lead, previousStage, actor)

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// Search performs a free-text search across lead identity fields
func (s *LeadService) Search(ctx context.Context, query string, limit int) ([]domain.LeadDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	leads, err := s.leadRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search leads: %w", err)
	}

	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
	}
	return dtos, nil
}

func (s *LeadService) recordActivity(ctx context.Context, leadID uuid.UUID, activityType domain.ActivityType, title, description string, metadata domain.Metadata) {
	activity := &domain.Activity{
		LeadID:      leadID,
		Type:        activityType,
		Title:       title,
		Description: description,
		Metadata:    metadata,
		ActorName:   auth.ActorName(ctx),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("lead_id", leadID.String()),
			zap.String("type", string(activityType)),
			zap.Error(err),
		)
	}
}

func (s *LeadService) notifyStageChange(ctx context.Context, lead *domain.Lead, previousStage domain.LeadStage, actor string) {
	name := lead.Name
	if name == "" {
		name = lead.Email
	}

	if lead.Stage == domain.StageWon {
		notification := &domain.Notification{
			Type:       string(domain.NotificationLeadWon),
			Title:      "Lead won",
			Message:    fmt.Sprintf("%s is now a client", name),
			EntityID:   &lead.ID,
			EntityType: "lead",
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			s.logger.Warn("failed to create won notification", zap.Error(err))
		}
		s.notifier.Dispatch(ctx, notify.Event{
			Title:   "Lead won",
			Message: fmt.Sprintf("%s is now a client (moved by %s)", name, actor),
			Level:   "info",
		})
		return
	}

	s.notifier.Dispatch(ctx, notify.Event{
		Title:   "Lead stage changed",
		Message: fmt.Sprintf("%s: %s -> %s (by %s)", name, previousStage, lead.Stage, actor),
		Level:   "info",
	})
}
