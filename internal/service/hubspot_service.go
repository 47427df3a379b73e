package service

import (
	"context"
	"fmt"
	"time"

	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/integration/hubspot"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
)

// syncBatchSize caps how many leads one sync run pushes to HubSpot
const syncBatchSize = 50

// HubSpotService pushes lead data to HubSpot contacts. Sync is one
// directional: the panel is the source of truth and HubSpot mirrors it.
type HubSpotService struct {
	leadRepo      *repository.LeadRepository
	activityRepo  *repository.ActivityRepository
	hubspotClient *hubspot.Client
	freshness     time.Duration
	logger        *zap.Logger
}

func NewHubSpotService(
	leadRepo *repository.LeadRepository,
	activityRepo *repository.ActivityRepository,
	hubspotClient *hubspot.Client,
	freshness time.Duration,
	logger *zap.Logger,
) *HubSpotService {
	return &HubSpotService{
		leadRepo:      leadRepo,
		activityRepo:  activityRepo,
		hubspotClient: hubspotClient,
		freshness:     freshness,
		logger:        logger,
	}
}

// SyncStaleLeads upserts every lead whose last sync is older than the
// freshness window. Returns how many leads were pushed.
func (s *HubSpotService) SyncStaleLeads(ctx context.Context) (int, error) {
	if s.hubspotClient == nil {
		return 0, nil
	}

	cutoff := time.Now().Add(-s.freshness)
	leads, err := s.leadRepo.GetStaleForHubSpotSync(ctx, cutoff, syncBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale leads: %w", err)
	}

	synced := 0
	for i := range leads {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := s.syncLead(ctx, &leads[i]); err != nil {
			s.logger.Warn("hubspot sync failed for lead",
				zap.String("lead_id", leads[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		synced++
	}
	return synced, nil
}

// SyncLead pushes a single lead immediately
func (s *HubSpotService) SyncLead(ctx context.Context, lead *domain.Lead) error {
	if s.hubspotClient == nil {
		return nil
	}
	return s.syncLead(ctx, lead)
}

func (s *HubSpotService) syncLead(ctx context.Context, lead *domain.Lead) error {
	properties := map[string]string{
		"email":          lead.Email,
		"firstname":      lead.Name,
		"company":        lead.Company,
		"phone":          lead.Phone,
		"website":        lead.Website,
		"lifecyclestage": hubspotLifecycleStage(lead),
	}

	contactID, err := s.hubspotClient.UpsertContact(ctx, lead.Email, properties)
	if err != nil {
		return fmt.Errorf("failed to upsert hubspot contact: %w", err)
	}

	now := time.Now()
	if err := s.leadRepo.MarkHubSpotSynced(ctx, lead.ID, now); err != nil {
		return fmt.Errorf("failed to mark lead synced: %w", err)
	}

	activity := &domain.Activity{
		LeadID:    lead.ID,
		Type:      domain.ActivityHubSpotSync,
		Title:     "Synced to HubSpot",
		Metadata:  domain.Metadata{"contact_id": contactID},
		ActorName: "system",
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record hubspot sync activity", zap.String("lead_id", lead.ID.String()), zap.Error(err))
	}

	return nil
}

func hubspotLifecycleStage(lead *domain.Lead) string {
	if lead.IsClient {
		return "customer"
	}
	return "lead"
}
