package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/config"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/mapper"
	"github.com/visionary-advance/agency-api/internal/notify"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxHealthBodyBytes caps how much of a health endpoint response is read
const maxHealthBodyBytes = 64 * 1024

type MonitorService struct {
	siteRepo         *repository.SiteRepository
	healthCheckRepo  *repository.HealthCheckRepository
	incidentRepo     *repository.IncidentRepository
	notificationRepo *repository.NotificationRepository
	notifier         *notify.Notifier
	httpClient       *http.Client
	cfg              config.MonitorConfig
	logger           *zap.Logger
}

func NewMonitorService(
	siteRepo *repository.SiteRepository,
	healthCheckRepo *repository.HealthCheckRepository,
	incidentRepo *repository.IncidentRepository,
	notificationRepo *repository.NotificationRepository,
	notifier *notify.Notifier,
	cfg config.MonitorConfig,
	logger *zap.Logger,
) *MonitorService {
	return &MonitorService{
		siteRepo:         siteRepo,
		healthCheckRepo:  healthCheckRepo,
		incidentRepo:     incidentRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
		httpClient: &http.Client{
			Timeout: cfg.CheckTimeoutDuration(),
		},
		cfg:    cfg,
		logger: logger,
	}
}

// healthPayload is what well-behaved sites return from their health
// endpoint. Both fields are optional.
type healthPayload struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// probeResult is the raw outcome of one HTTP probe, before persistence
type probeResult struct {
	status         domain.SiteStatus
	httpStatus     int
	responseTimeMS int64
	sslExpiresAt   *time.Time
	detail         string
}

// PerformHealthCheck probes one site, stores the immutable check row,
// and drives incident state from the status transition. Inactive sites
// are skipped without a row being written.
func (s *MonitorService) PerformHealthCheck(ctx context.Context, siteID uuid.UUID) (*domain.CheckResultDTO, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	if !site.IsActive {
		return &domain.CheckResultDTO{Skipped: true}, nil
	}

	probe := s.probe(ctx, site.CheckURL())

	check := &domain.HealthCheck{
		SiteID:         site.ID,
		Status:         probe.status,
		HTTPStatus:     probe.httpStatus,
		ResponseTimeMS: probe.responseTimeMS,
		SSLExpiresAt:   probe.sslExpiresAt,
		Detail:         probe.detail,
		CheckedAt:      time.Now(),
	}
	if err := s.healthCheckRepo.Create(ctx, check); err != nil {
		return nil, fmt.Errorf("failed to persist health check: %w", err)
	}

	previous, err := s.healthCheckRepo.GetPrevious(ctx, site.ID)
	if err != nil {
		s.logger.Warn("failed to load previous health check", zap.String("site_id", site.ID.String()), zap.Error(err))
	}

	result := &domain.CheckResultDTO{
		Status: probe.status,
	}
	checkDTO := mapper.ToHealthCheckDTO(check)
	result.HealthCheck = &checkDTO

	if previous != nil && previous.Status != probe.status {
		result.StatusChanged = true
		result.PreviousStatus = previous.Status
		s.handleStatusChange(ctx, site, previous.Status, probe.status, probe.detail)
	}

	// Certificate expiry runs regardless of what the status did
	if probe.sslExpiresAt != nil {
		s.checkSSLExpiry(ctx, site, *probe.sslExpiresAt)
	}

	return result, nil
}

// SweepActiveSites checks every active site in sequence. Used by the
// cron job; individual failures are logged and do not stop the sweep.
func (s *MonitorService) SweepActiveSites(ctx context.Context) {
	sites, err := s.siteRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("health sweep failed to list sites", zap.Error(err))
		return
	}

	for i := range sites {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.PerformHealthCheck(ctx, sites[i].ID); err != nil {
			s.logger.Warn("health check failed",
				zap.String("site_id", sites[i].ID.String()),
				zap.String("site", sites[i].Name),
				zap.Error(err),
			)
		}
	}
}

// probe runs the HTTP GET and classifies the outcome
func (s *MonitorService) probe(ctx context.Context, url string) probeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return probeResult{status: domain.StatusDown, detail: fmt.Sprintf("invalid health URL: %v", err)}
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		// Timeouts and connection errors are indistinguishable from
		// the caller's perspective: the site is unreachable
		return probeResult{
			status:         domain.StatusDown,
			responseTimeMS: elapsed,
			detail:         trimDetail(err.Error()),
		}
	}
	defer resp.Body.Close()

	result := probeResult{
		httpStatus:     resp.StatusCode,
		responseTimeMS: elapsed,
	}
	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		notAfter := resp.TLS.PeerCertificates[0].NotAfter
		result.sslExpiresAt = &notAfter
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxHealthBodyBytes))

	switch {
	case resp.StatusCode >= 500:
		result.status = domain.StatusDown
		result.detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return result
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		result.status = domain.StatusDegraded
		result.detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return result
	}

	result.status, result.detail = classifyPayload(body)

	// Latency override beats whatever the payload claims
	if result.status != domain.StatusDown && elapsed > s.cfg.DegradedThresholdMS {
		result.status = domain.StatusDegraded
		result.detail = fmt.Sprintf("slow response: %dms", elapsed)
	}

	return result
}

// classifyPayload maps a 2xx health response body onto the status enum.
// A body that is not JSON, or has no status field, counts as healthy:
// the endpoint answered.
func classifyPayload(body []byte) (domain.SiteStatus, string) {
	var payload healthPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Status == "" {
		return domain.StatusHealthy, ""
	}

	status := domain.StatusUnknown
	switch strings.ToLower(payload.Status) {
	case "healthy", "ok":
		status = domain.StatusHealthy
	case "degraded", "warning":
		status = domain.StatusDegraded
	case "down":
		status = domain.StatusDown
	}

	detail := ""
	if status == domain.StatusUnknown {
		detail = fmt.Sprintf("unrecognized status %q", payload.Status)
	}

	// A broken database dependency degrades an otherwise healthy site
	if payload.Database != "" && status != domain.StatusDown {
		switch strings.ToLower(payload.Database) {
		case "connected", "ok":
		default:
			status = domain.StatusDegraded
			detail = fmt.Sprintf("database: %s", payload.Database)
		}
	}

	return status, detail
}

// handleStatusChange opens, suppresses or resolves incidents based on
// where the site moved from and to
func (s *MonitorService) handleStatusChange(ctx context.Context, site *domain.Site, from, to domain.SiteStatus, detail string) {
	switch to {
	case domain.StatusDown:
		if from != domain.StatusHealthy && from != domain.StatusDegraded {
			return
		}
		created := s.openIncident(ctx, site, domain.IncidentDowntime, domain.SeverityCritical,
			fmt.Sprintf("%s is down", site.Name), detail)
		if created {
			s.notifier.Dispatch(ctx, notify.Event{
				Title:   "Site down",
				Message: fmt.Sprintf("%s (%s) is unreachable", site.Name, site.URL),
				Level:   "critical",
			})
			s.createIncidentNotification(ctx, site, "Site down", fmt.Sprintf("%s is unreachable", site.Name))
		}

	case domain.StatusDegraded:
		if from != domain.StatusHealthy {
			return
		}
		// Degradation is logged without paging anyone
		s.openIncident(ctx, site, domain.IncidentDegraded, domain.SeverityWarning,
			fmt.Sprintf("%s is degraded", site.Name), detail)

	case domain.StatusHealthy:
		if from != domain.StatusDown && from != domain.StatusDegraded {
			return
		}
		resolved, err := s.incidentRepo.ResolveAllForSite(ctx, site.ID, time.Now())
		if err != nil {
			s.logger.Warn("failed to resolve incidents", zap.String("site_id", site.ID.String()), zap.Error(err))
			return
		}
		if resolved > 0 {
			s.notifier.Dispatch(ctx, notify.Event{
				Title:   "Site recovered",
				Message: fmt.Sprintf("%s (%s) is healthy again, %d incident(s) resolved", site.Name, site.URL, resolved),
				Level:   "info",
			})
			s.createIncidentNotification(ctx, site, "Site recovered", fmt.Sprintf("%s is healthy again", site.Name))
		}
	}
}

// checkSSLExpiry opens a deduplicated incident when the certificate is
// close to expiring
func (s *MonitorService) checkSSLExpiry(ctx context.Context, site *domain.Site, expiresAt time.Time) {
	daysLeft := int(time.Until(expiresAt).Hours() / 24)
	if daysLeft > s.cfg.SSLExpiryWarningDays {
		return
	}

	created := s.openIncident(ctx, site, domain.IncidentSSLExpiry, domain.SeverityWarning,
		fmt.Sprintf("%s SSL certificate expiring", site.Name),
		fmt.Sprintf("certificate expires %s (%d days)", expiresAt.Format("2006-01-02"), daysLeft))
	if created {
		s.notifier.Dispatch(ctx, notify.Event{
			Title:   "SSL certificate expiring",
			Message: fmt.Sprintf("%s certificate expires in %d days", site.Name, daysLeft),
			Level:   "warning",
		})
	}
}

// openIncident creates an incident unless an unresolved one of the
// same type already exists for the site. Returns true when a new row
// was written.
func (s *MonitorService) openIncident(ctx context.Context, site *domain.Site, incidentType domain.IncidentType, severity domain.IncidentSeverity, title, detail string) bool {
	existing, err := s.incidentRepo.GetOpenByType(ctx, site.ID, incidentType)
	if err != nil {
		s.logger.Warn("failed to check for open incident", zap.String("site_id", site.ID.String()), zap.Error(err))
		return false
	}
	if existing != nil {
		return false
	}

	incident := &domain.Incident{
		SiteID:   site.ID,
		Type:     incidentType,
		Severity: severity,
		Status:   domain.IncidentOpen,
		Title:    title,
		Detail:   detail,
	}
	if err := s.incidentRepo.Create(ctx, incident); err != nil {
		s.logger.Warn("failed to create incident", zap.String("site_id", site.ID.String()), zap.Error(err))
		return false
	}
	return true
}

func (s *MonitorService) createIncidentNotification(ctx context.Context, site *domain.Site, title, message string) {
	notification := &domain.Notification{
		Type:       string(domain.NotificationIncident),
		Title:      title,
		Message:    message,
		EntityID:   &site.ID,
		EntityType: "site",
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create incident notification", zap.Error(err))
	}
}

// trimDetail keeps probe error strings inside the column limit
func trimDetail(detail string) string {
	if len(detail) > 500 {
		return detail[:500]
	}
	return detail
}
