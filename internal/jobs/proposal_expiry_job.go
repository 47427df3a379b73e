package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ProposalExpiryJobName is the name of the proposal expiry job
const ProposalExpiryJobName = "proposal_expiry"

// ProposalExpiryService defines the interface for expiring overdue proposals.
type ProposalExpiryService interface {
	// ExpireOverdue marks sent and viewed proposals whose valid_until date has
	// passed as expired. Returns the number of proposals expired.
	ExpireOverdue(ctx context.Context) (int64, error)
}

// ProposalExpiryJob closes out proposals that were never answered.
type ProposalExpiryJob struct {
	proposalService ProposalExpiryService
	logger          *zap.Logger
	timeout         time.Duration
}

// NewProposalExpiryJob creates a new proposal expiry job.
func NewProposalExpiryJob(proposalService ProposalExpiryService, logger *zap.Logger, timeout time.Duration) *ProposalExpiryJob {
	return &ProposalExpiryJob{
		proposalService: proposalService,
		logger:          logger,
		timeout:         timeout,
	}
}

// Run executes the proposal expiry job.
// This is called by the scheduler according to the cron expression.
func (j *ProposalExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting proposal expiry job")

	expired, err := j.proposalService.ExpireOverdue(ctx)
	if err != nil {
		j.logger.Error("proposal expiry job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("proposal expiry job completed",
		zap.Int64("proposals_expired", expired),
		zap.Duration("duration", time.Since(start)))
}

// RegisterProposalExpiryJob registers the proposal expiry job with the scheduler.
// The cronExpr should be a valid cron expression (e.g., "0 0 6 * * *" for 06:00 daily).
func RegisterProposalExpiryJob(scheduler *Scheduler, proposalService ProposalExpiryService, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewProposalExpiryJob(proposalService, logger, timeout)
	return scheduler.AddJob(ProposalExpiryJobName, cronExpr, job.Run)
}
