package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/auth"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/integration/llm"
	"github.com/visionary-advance/agency-api/internal/mapper"
	"github.com/visionary-advance/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const seoSystemPrompt = "You are an SEO consultant for a web agency. " +
	"Given a site and its recent health metrics, write a short plain-text report. " +
	"Start with a one-paragraph summary, then a line containing only RECOMMENDATIONS:, " +
	"then a numbered list of concrete improvements."

type SEOService struct {
	seoRepo         *repository.SEOReportRepository
	siteRepo        *repository.SiteRepository
	healthCheckRepo *repository.HealthCheckRepository
	llmClient       *llm.Client
	logger          *zap.Logger
}

func NewSEOService(
	seoRepo *repository.SEOReportRepository,
	siteRepo *repository.SiteRepository,
	healthCheckRepo *repository.HealthCheckRepository,
	llmClient *llm.Client,
	logger *zap.Logger,
) *SEOService {
	return &SEOService{
		seoRepo:         seoRepo,
		siteRepo:        siteRepo,
		healthCheckRepo: healthCheckRepo,
		llmClient:       llmClient,
		logger:          logger,
	}
}

// Generate asks the language model for a report on one site and stores
// the result. Recent health data is included in the prompt so the
// report reflects actual uptime.
func (s *SEOService) Generate(ctx context.Context, siteID uuid.UUID) (*domain.SEOReportDTO, error) {
	if s.llmClient == nil {
		return nil, ErrReportsDisabled
	}

	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	prompt, metrics := s.buildPrompt(ctx, site)

	// A model failure still produces a report row; the metrics alone
	// are worth keeping and the text can be regenerated later.
	output, err := s.llmClient.Complete(ctx, seoSystemPrompt, prompt)
	if err != nil {
		s.logger.Warn("report text generation failed",
			zap.String("site_id", site.ID.String()),
			zap.Error(err),
		)
		output = ""
	}

	summary, recommendations := splitReport(output)

	report := &domain.SEOReport{
		SiteID:          site.ID,
		Summary:         summary,
		Recommendations: recommendations,
		Metrics:         metrics,
		GeneratedBy:     auth.ActorName(ctx),
	}
	if err := s.seoRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	dto := mapper.ToSEOReportDTO(report)
	return &dto, nil
}

func (s *SEOService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SEOReportDTO, error) {
	report, err := s.seoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	dto := mapper.ToSEOReportDTO(report)
	return &dto, nil
}

func (s *SEOService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.seoRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get report: %w", err)
	}
	if err := s.seoRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

func (s *SEOService) ListBySite(ctx context.Context, siteID uuid.UUID, page, pageSize int) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	reports, total, err := s.seoRepo.ListBySite(ctx, siteID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	dtos := make([]domain.SEOReportDTO, len(reports))
	for i := range reports {
		dtos[i] = mapper.ToSEOReportDTO(&reports[i])
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

func (s *SEOService) buildPrompt(ctx context.Context, site *domain.Site) (string, domain.Metadata) {
	var b strings.Builder
	fmt.Fprintf(&b, "Site: %s\nURL: %s\n", site.Name, site.URL)

	metrics := domain.Metadata{}
	latest, err := s.healthCheckRepo.GetLatest(ctx, site.ID)
	if err != nil {
		s.logger.Warn("failed to load health data for report", zap.String("site_id", site.ID.String()), zap.Error(err))
	}
	if latest != nil {
		fmt.Fprintf(&b, "Current status: %s\nLast response time: %dms\n", latest.Status, latest.ResponseTimeMS)
		metrics["status"] = string(latest.Status)
		metrics["response_time_ms"] = latest.ResponseTimeMS
		if latest.SSLExpiresAt != nil {
			fmt.Fprintf(&b, "SSL expires: %s\n", latest.SSLExpiresAt.Format("2006-01-02"))
			metrics["ssl_expires_at"] = latest.SSLExpiresAt.Format("2006-01-02")
		}
	}

	return b.String(), metrics
}

// splitReport separates the summary paragraph from the numbered list.
// Models do not always follow the marker; when it is missing the whole
// output lands in the summary.
func splitReport(output string) (summary, recommendations string) {
	marker := "RECOMMENDATIONS:"
	if idx := strings.Index(output, marker); idx >= 0 {
		return strings.TrimSpace(output[:idx]), strings.TrimSpace(output[idx+len(marker):])
	}
	return strings.TrimSpace(output), ""
}
