package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HubSpotSyncJobName is the name of the HubSpot contact sync job
const HubSpotSyncJobName = "hubspot_sync"

// LeadSyncService defines the interface for pushing stale leads to HubSpot.
type LeadSyncService interface {
	// SyncStaleLeads pushes leads that have never been synced or whose last
	// sync is older than the configured freshness window. Returns the number
	// of leads synced.
	SyncStaleLeads(ctx context.Context) (int, error)
}

// HubSpotSyncJob mirrors lead data into HubSpot on a schedule.
type HubSpotSyncJob struct {
	hubspotService LeadSyncService
	logger         *zap.Logger
	timeout        time.Duration
}

// NewHubSpotSyncJob creates a new HubSpot contact sync job.
func NewHubSpotSyncJob(hubspotService LeadSyncService, logger *zap.Logger, timeout time.Duration) *HubSpotSyncJob {
	return &HubSpotSyncJob{
		hubspotService: hubspotService,
		logger:         logger,
		timeout:        timeout,
	}
}

// Run executes the HubSpot sync job.
// This is called by the scheduler according to the cron expression.
func (j *HubSpotSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting hubspot sync job")

	synced, err := j.hubspotService.SyncStaleLeads(ctx)
	if err != nil {
		j.logger.Error("hubspot sync job failed",
			zap.Error(err),
			zap.Int("leads_synced", synced),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("hubspot sync job completed",
		zap.Int("leads_synced", synced),
		zap.Duration("duration", time.Since(start)))
}

// RegisterHubSpotSyncJob registers the HubSpot sync job with the scheduler.
// The cronExpr should be a valid cron expression (e.g., "0 15 * * * *" for 15 minutes past every hour).
func RegisterHubSpotSyncJob(scheduler *Scheduler, hubspotService LeadSyncService, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewHubSpotSyncJob(hubspotService, logger, timeout)
	return scheduler.AddJob(HubSpotSyncJobName, cronExpr, job.Run)
}
