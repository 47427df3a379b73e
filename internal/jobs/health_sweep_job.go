package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HealthSweepJobName is the name of the site health sweep job
const HealthSweepJobName = "health_sweep"

// SiteSweepService defines the interface for sweeping active sites.
// This interface allows the job to call the service without importing the service package directly.
type SiteSweepService interface {
	// SweepActiveSites runs a health check against every active site,
	// logging per-site failures without aborting the sweep.
	SweepActiveSites(ctx context.Context)
}

// HealthSweepJob polls every active site and records the results.
type HealthSweepJob struct {
	monitorService SiteSweepService
	logger         *zap.Logger
	timeout        time.Duration
}

// NewHealthSweepJob creates a new site health sweep job.
// The timeout bounds how long a full sweep is allowed to run.
func NewHealthSweepJob(monitorService SiteSweepService, logger *zap.Logger, timeout time.Duration) *HealthSweepJob {
	return &HealthSweepJob{
		monitorService: monitorService,
		logger:         logger,
		timeout:        timeout,
	}
}

// Run executes the site health sweep.
// This is called by the scheduler according to the cron expression.
func (j *HealthSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting site health sweep")

	j.monitorService.SweepActiveSites(ctx)

	j.logger.Info("site health sweep completed",
		zap.Duration("duration", time.Since(start)))
}

// RegisterHealthSweepJob registers the site health sweep with the scheduler.
// The cronExpr should be a valid cron expression (e.g., "0 */5 * * * *" for every 5 minutes).
func RegisterHealthSweepJob(scheduler *Scheduler, monitorService SiteSweepService, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewHealthSweepJob(monitorService, logger, timeout)
	return scheduler.AddJob(HealthSweepJobName, cronExpr, job.Run)
}
