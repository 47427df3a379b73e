package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/auth"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/integration/mail"
	"github.com/visionary-advance/agency-api/internal/mapper"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProposalService struct {
	proposalRepo *repository.ProposalRepository
	leadRepo     *repository.LeadRepository
	activityRepo *repository.ActivityRepository
	mailClient   *mail.Client
	publicURL    string
	logger       *zap.Logger
}

func NewProposalService(
	proposalRepo *repository.ProposalRepository,
	leadRepo *repository.LeadRepository,
	activityRepo *repository.ActivityRepository,
	mailClient *mail.Client,
	publicURL string,
	logger *zap.Logger,
) *ProposalService {
	return &ProposalService{
		proposalRepo: proposalRepo,
		leadRepo:     leadRepo,
		activityRepo: activityRepo,
		mailClient:   mailClient,
		publicURL:    publicURL,
		logger:       logger,
	}
}

func (s *ProposalService) Create(ctx context.Context, req *domain.CreateProposalRequest) (*domain.ProposalDTO, error) {
	if _, err := s.leadRepo.GetByID(ctx, req.LeadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, req.LeadID)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	token, err := generatePublicToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public token: %w", err)
	}

	proposal := &domain.Proposal{
		Title:       req.Title,
		LeadID:      req.LeadID,
		ProjectID:   req.ProjectID,
		Status:      domain.ProposalDraft,
		Amount:      req.Amount,
		Content:     req.Content,
		PublicToken: token,
		ExpiresAt:   req.ExpiresAt,
	}
	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

func (s *ProposalService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProposalDTO, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

// Update edits a draft. A proposal that has been sent is immutable so
// that what the recipient saw stays on record.
func (s *ProposalService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProposalRequest) (*domain.ProposalDTO, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	if proposal.Status != domain.ProposalDraft {
		return nil, fmt.Errorf("%w: proposal is %s", ErrProposalLocked, proposal.Status)
	}

	proposal.Title = req.Title
	proposal.Amount = req.Amount
	proposal.Content = req.Content
	proposal.ExpiresAt = req.ExpiresAt

	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

func (s *ProposalService) Delete(ctx context.Context, id uuid.UUID) error {
	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get proposal: %w", err)
	}

	// Accepted proposals are part of the commercial record
	if proposal.Status == domain.ProposalAccepted {
		return fmt.Errorf("%w: accepted proposals cannot be deleted", ErrProposalDecided)
	}

	if err := s.proposalRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}
	return nil
}

func (s *ProposalService) List(ctx context.Context, page, pageSize int, filters *repository.ProposalFilters) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	proposals, total, err := s.proposalRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	dtos := make([]domain.ProposalDTO, len(proposals))
	for i := range proposals {
		dtos[i] = mapper.ToProposalDTO(&proposals[i])
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

// Send marks a draft as sent and emails the public link to the lead.
// The email is best-effort: delivery failure does not undo the status
// change, the link can always be copied from the panel.
func (s *ProposalService) Send(ctx context.Context, id uuid.UUID) (*domain.ProposalDTO, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	if proposal.Status != domain.ProposalDraft {
		return nil, fmt.Errorf("%w: proposal is %s", ErrProposalLocked, proposal.Status)
	}

	now := time.Now()
	proposal.Status = domain.ProposalSent
	proposal.SentAt = &now
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to mark proposal sent: %w", err)
	}

	lead, err := s.leadRepo.GetByID(ctx, proposal.LeadID)
	if err != nil {
		s.logger.Warn("failed to load lead for proposal email", zap.String("proposal_id", id.String()), zap.Error(err))
	} else if s.mailClient != nil {
		viewURL := fmt.Sprintf("%s/p/%s", s.publicURL, proposal.PublicToken)
		if err := s.mailClient.SendProposal(ctx, lead.Email, lead.Name, proposal.Title, viewURL); err != nil {
			s.logger.Warn("failed to send proposal email",
				zap.String("proposal_id", id.String()),
				zap.String("to", lead.Email),
				zap.Error(err),
			)
		}
	}

	s.recordActivity(ctx, proposal.LeadID, "Proposal sent", proposal.Title, domain.Metadata{
		"proposal_id": proposal.ID.String(),
	})

	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}

// ViewByToken serves the public proposal page. The first view of a
// sent proposal flips it to viewed; later views leave the record alone.
func (s *ProposalService) ViewByToken(ctx context.Context, token string) (*domain.PublicProposalDTO, error) {
	proposal, err := s.proposalRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	// Drafts are not public yet
	if proposal.Status == domain.ProposalDraft {
		return nil, ErrNotFound
	}

	if proposal.Status == domain.ProposalSent {
		now := time.Now()
		proposal.Status = domain.ProposalViewed
		proposal.ViewedAt = &now
		if err := s.proposalRepo.Update(ctx, proposal); err != nil {
			s.logger.Warn("failed to mark proposal viewed", zap.String("proposal_id", proposal.ID.String()), zap.Error(err))
		}
	}

	dto := mapper.ToPublicProposalDTO(proposal)
	return &dto, nil
}

// DecideByToken records the recipient's accept or reject. A decided or
// expired proposal cannot be decided again.
func (s *ProposalService) DecideByToken(ctx context.Context, token string, req *domain.DecideProposalRequest) (*domain.PublicProposalDTO, error) {
	if req.Status != domain.ProposalAccepted && req.Status != domain.ProposalRejected {
		return nil, fmt.Errorf("%w: decision must be accepted or rejected", ErrInvalidInput)
	}

	proposal, err := s.proposalRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	if proposal.Status == domain.ProposalDraft {
		return nil, ErrNotFound
	}
	if proposal.Status.IsDecided() || proposal.Status == domain.ProposalExpired {
		return nil, fmt.Errorf("%w: proposal is %s", ErrProposalDecided, proposal.Status)
	}

	now := time.Now()
	proposal.Status = req.Status
	proposal.DecidedAt = &now
	if proposal.ViewedAt == nil {
		proposal.ViewedAt = &now
	}
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to record proposal decision: %w", err)
	}

	title := "Proposal rejected"
	if req.Status == domain.ProposalAccepted {
		title = "Proposal accepted"
	}
	s.recordActivity(ctx, proposal.LeadID, title, proposal.Title, domain.Metadata{
		"proposal_id": proposal.ID.String(),
		"decision":    string(req.Status),
		"notes":       req.Notes,
	})

	dto := mapper.ToPublicProposalDTO(proposal)
	return &dto, nil
}

// ExpireOverdue flips past-due sent and viewed proposals to expired
func (s *ProposalService) ExpireOverdue(ctx context.Context) (int64, error) {
	expired, err := s.proposalRepo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire proposals: %w", err)
	}
	return expired, nil
}

func (s *ProposalService) recordActivity(ctx context.Context, leadID uuid.UUID, title, description string, metadata domain.Metadata) {
	activity := &domain.Activity{
		LeadID:      leadID,
		Type:        domain.ActivitySystem,
		Title:       title,
		Description: description,
		Metadata:    metadata,
		ActorName:   auth.ActorName(ctx),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record proposal activity", zap.String("lead_id", leadID.String()), zap.Error(err))
	}
}

// generatePublicToken returns 32 bytes of randomness hex-encoded,
// which is what goes in the shareable URL
func generatePublicToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
