package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses

type LeadDTO struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name,omitempty"`
	Company        string          `json:"company,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Website        string          `json:"website,omitempty"`
	Source         *LeadSource     `json:"source,omitempty"`
	UTMSource      string          `json:"utmSource,omitempty"`
	UTMMedium      string          `json:"utmMedium,omitempty"`
	UTMCampaign    string          `json:"utmCampaign,omitempty"`
	ConversionPage string          `json:"conversionPage,omitempty"`
	BusinessType   string          `json:"businessType,omitempty"`
	BudgetRange    string          `json:"budgetRange,omitempty"`
	Timeline       string          `json:"timeline,omitempty"`
	Services       []string        `json:"services,omitempty"`
	AuditScores    *AuditScores    `json:"auditScores,omitempty"`
	Score          *int            `json:"score,omitempty"`
	ScoreBreakdown *ScoreBreakdown `json:"scoreBreakdown,omitempty"`
	Stage          LeadStage       `json:"stage"`
	IsClient       bool            `json:"isClient"`
	ClientSince    *string         `json:"clientSince,omitempty"` // ISO 8601
	BusinessID     *uuid.UUID      `json:"businessId,omitempty"`
	BusinessName   string          `json:"businessName,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      string          `json:"createdAt"` // ISO 8601
	UpdatedAt      string          `json:"updatedAt"` // ISO 8601
}

// LeadWithDetailsDTO includes the lead with its recent and pinned activity
type LeadWithDetailsDTO struct {
	LeadDTO
	PinnedActivities []ActivityDTO `json:"pinnedActivities,omitempty"`
	RecentActivities []ActivityDTO `json:"recentActivities,omitempty"`
	Projects         []ProjectDTO  `json:"projects,omitempty"`
	Proposals        []ProposalDTO `json:"proposals,omitempty"`
}

type ActivityDTO struct {
	ID          uuid.UUID    `json:"id"`
	LeadID      uuid.UUID    `json:"leadId"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Metadata    Metadata     `json:"metadata,omitempty"`
	ActorName   string       `json:"actorName,omitempty"`
	Pinned      bool         `json:"pinned"`
	PinnedAt    *string      `json:"pinnedAt,omitempty"` // ISO 8601
	PinnedBy    string       `json:"pinnedBy,omitempty"`
	CreatedAt   string       `json:"createdAt"` // ISO 8601
}

type BusinessDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Website   string    `json:"website,omitempty"`
	Industry  string    `json:"industry,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	LeadCount int64     `json:"leadCount,omitempty"`
	SiteCount int64     `json:"siteCount,omitempty"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type ProjectDTO struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	LeadID      uuid.UUID     `json:"leadId"`
	LeadName    string        `json:"leadName,omitempty"`
	Status      ProjectStatus `json:"status"`
	Budget      float64       `json:"budget"`
	StartDate   *string       `json:"startDate,omitempty"` // ISO 8601 date
	EndDate     *string       `json:"endDate,omitempty"`   // ISO 8601 date
	Milestones  []Milestone   `json:"milestones,omitempty"`
	CreatedAt   string        `json:"createdAt"` // ISO 8601
	UpdatedAt   string        `json:"updatedAt"` // ISO 8601
}

type ProposalDTO struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	LeadID      uuid.UUID      `json:"leadId"`
	LeadName    string         `json:"leadName,omitempty"`
	ProjectID   *uuid.UUID     `json:"projectId,omitempty"`
	Status      ProposalStatus `json:"status"`
	Amount      float64        `json:"amount"`
	Content     string         `json:"content,omitempty"`
	PublicToken string         `json:"publicToken,omitempty"`
	SentAt      *string        `json:"sentAt,omitempty"`    // ISO 8601
	ViewedAt    *string        `json:"viewedAt,omitempty"`  // ISO 8601
	DecidedAt   *string        `json:"decidedAt,omitempty"` // ISO 8601
	ExpiresAt   *string        `json:"expiresAt,omitempty"` // ISO 8601
	CreatedAt   string         `json:"createdAt"`           // ISO 8601
	UpdatedAt   string         `json:"updatedAt"`           // ISO 8601
}

// PublicProposalDTO is the token-access view: no internal identifiers
type PublicProposalDTO struct {
	Title     string         `json:"title"`
	Status    ProposalStatus `json:"status"`
	Amount    float64        `json:"amount"`
	Content   string         `json:"content,omitempty"`
	SentAt    *string        `json:"sentAt,omitempty"`    // ISO 8601
	ExpiresAt *string        `json:"expiresAt,omitempty"` // ISO 8601
}

type SiteDTO struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	HealthURL     string     `json:"healthUrl,omitempty"`
	IsActive      bool       `json:"isActive"`
	BusinessID    *uuid.UUID `json:"businessId,omitempty"`
	CurrentStatus SiteStatus `json:"currentStatus,omitempty"`
	LastCheckedAt *string    `json:"lastCheckedAt,omitempty"` // ISO 8601
	OpenIncidents int        `json:"openIncidents"`
	UptimePercent *float64   `json:"uptimePercent,omitempty"`
	CreatedAt     string     `json:"createdAt"` // ISO 8601
	UpdatedAt     string     `json:"updatedAt"` // ISO 8601
}

type HealthCheckDTO struct {
	ID             uuid.UUID  `json:"id"`
	SiteID         uuid.UUID  `json:"siteId"`
	Status         SiteStatus `json:"status"`
	HTTPStatus     int        `json:"httpStatus,omitempty"`
	ResponseTimeMS int64      `json:"responseTimeMs"`
	SSLExpiresAt   *string    `json:"sslExpiresAt,omitempty"` // ISO 8601
	Detail         string     `json:"detail,omitempty"`
	CheckedAt      string     `json:"checkedAt"` // ISO 8601
}

// CheckResultDTO is the outcome of a single on-demand health check run
type CheckResultDTO struct {
	Skipped        bool            `json:"skipped,omitempty"`
	Status         SiteStatus      `json:"status,omitempty"`
	HealthCheck    *HealthCheckDTO `json:"healthCheck,omitempty"`
	StatusChanged  bool            `json:"statusChanged"`
	PreviousStatus SiteStatus      `json:"previousStatus,omitempty"`
}

type IncidentDTO struct {
	ID         uuid.UUID        `json:"id"`
	SiteID     uuid.UUID        `json:"siteId"`
	SiteName   string           `json:"siteName,omitempty"`
	Type       IncidentType     `json:"type"`
	Severity   IncidentSeverity `json:"severity"`
	Status     IncidentStatus   `json:"status"`
	Title      string           `json:"title"`
	Detail     string           `json:"detail,omitempty"`
	ResolvedAt *string          `json:"resolvedAt,omitempty"` // ISO 8601
	CreatedAt  string           `json:"createdAt"`            // ISO 8601
	UpdatedAt  string           `json:"updatedAt"`            // ISO 8601
}

type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Read       bool       `json:"read"`
	ReadAt     *string    `json:"readAt,omitempty"` // ISO 8601
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	EntityType string     `json:"entityType,omitempty"`
	CreatedAt  string     `json:"createdAt"` // ISO 8601
}

type StripeCustomerDTO struct {
	ID               uuid.UUID `json:"id"`
	LeadID           uuid.UUID `json:"leadId"`
	StripeCustomerID string    `json:"stripeCustomerId"`
	Email            string    `json:"email,omitempty"`
	LastSyncedAt     *string   `json:"lastSyncedAt,omitempty"` // ISO 8601
}

type StripeInvoiceDTO struct {
	ID              uuid.UUID `json:"id"`
	LeadID          uuid.UUID `json:"leadId"`
	StripeInvoiceID string    `json:"stripeInvoiceId"`
	Status          string    `json:"status,omitempty"`
	AmountDue       int64     `json:"amountDue"`
	AmountPaid      int64     `json:"amountPaid"`
	Currency        string    `json:"currency,omitempty"`
	HostedURL       string    `json:"hostedUrl,omitempty"`
	DueDate         *string   `json:"dueDate,omitempty"` // ISO 8601
	PaidAt          *string   `json:"paidAt,omitempty"`  // ISO 8601
	CreatedAt       string    `json:"createdAt"`         // ISO 8601
}

type SEOReportDTO struct {
	ID              uuid.UUID `json:"id"`
	SiteID          uuid.UUID `json:"siteId"`
	SiteName        string    `json:"siteName,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Recommendations string    `json:"recommendations,omitempty"`
	Metrics         Metadata  `json:"metrics,omitempty"`
	GeneratedBy     string    `json:"generatedBy,omitempty"`
	CreatedAt       string    `json:"createdAt"` // ISO 8601
}

// DashboardDTO aggregates pipeline and monitoring stats for the admin panel
type DashboardDTO struct {
	LeadsByStage        map[LeadStage]int64 `json:"leadsByStage"`
	TotalLeads          int64               `json:"totalLeads"`
	TotalClients        int64               `json:"totalClients"`
	OpenIncidents       int64               `json:"openIncidents"`
	SitesDown           int64               `json:"sitesDown"`
	ActiveProjects      int64               `json:"activeProjects"`
	PendingProposals    int64               `json:"pendingProposals"`
	UnreadNotifications int64               `json:"unreadNotifications"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// APIResponse wrapper
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Request DTOs

// LeadIntakeRequest is the public form/audit submission payload.
// Everything except the email is optional; missing qualification data
// just scores low.
type LeadIntakeRequest struct {
	Email          string       `json:"email" validate:"required,email,max=255"`
	Name           string       `json:"name,omitempty" validate:"max=200"`
	Company        string       `json:"company,omitempty" validate:"max=200"`
	Phone          string       `json:"phone,omitempty" validate:"max=50"`
	Website        string       `json:"website,omitempty" validate:"max=500"`
	Source         LeadSource   `json:"source,omitempty"`
	UTMSource      string       `json:"utmSource,omitempty" validate:"max=100"`
	UTMMedium      string       `json:"utmMedium,omitempty" validate:"max=100"`
	UTMCampaign    string       `json:"utmCampaign,omitempty" validate:"max=100"`
	ConversionPage string       `json:"conversionPage,omitempty" validate:"max=500"`
	BusinessType   string       `json:"businessType,omitempty" validate:"max=100"`
	BudgetRange    string       `json:"budgetRange,omitempty" validate:"max=100"`
	Timeline       string       `json:"timeline,omitempty" validate:"max=100"`
	Services       []string     `json:"services,omitempty"`
	AuditScores    *AuditScores `json:"auditScores,omitempty"`
	Message        string       `json:"message,omitempty"`
}

type UpdateLeadRequest struct {
	Name         string     `json:"name,omitempty" validate:"max=200"`
	Company      string     `json:"company,omitempty" validate:"max=200"`
	Phone        string     `json:"phone,omitempty" validate:"max=50"`
	Website      string     `json:"website,omitempty" validate:"max=500"`
	BusinessType string     `json:"businessType,omitempty" validate:"max=100"`
	BudgetRange  string     `json:"budgetRange,omitempty" validate:"max=100"`
	Timeline     string     `json:"timeline,omitempty" validate:"max=100"`
	BusinessID   *uuid.UUID `json:"businessId,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

type UpdateLeadStageRequest struct {
	Stage LeadStage `json:"stage" validate:"required"`
	Notes string    `json:"notes,omitempty" validate:"max=500"`
}

type CreateActivityRequest struct {
	Type        ActivityType `json:"type" validate:"required"`
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description,omitempty"`
	Metadata    Metadata     `json:"metadata,omitempty"`
}

type ToggleActivityPinRequest struct {
	Pinned bool `json:"pinned"`
}

type CreateBusinessRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Website  string `json:"website,omitempty" validate:"max=500"`
	Industry string `json:"industry,omitempty" validate:"max=100"`
	Phone    string `json:"phone,omitempty" validate:"max=50"`
	Notes    string `json:"notes,omitempty"`
}

type UpdateBusinessRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Website  string `json:"website,omitempty" validate:"max=500"`
	Industry string `json:"industry,omitempty" validate:"max=100"`
	Phone    string `json:"phone,omitempty" validate:"max=50"`
	Notes    string `json:"notes,omitempty"`
}

type CreateProjectRequest struct {
	Name        string        `json:"name" validate:"required,max=200"`
	Description string        `json:"description,omitempty"`
	LeadID      uuid.UUID     `json:"leadId" validate:"required"`
	Status      ProjectStatus `json:"status,omitempty"`
	Budget      float64       `json:"budget,omitempty" validate:"gte=0"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	Milestones  []Milestone   `json:"milestones,omitempty"`
}

type UpdateProjectRequest struct {
	Name        string        `json:"name" validate:"required,max=200"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status,omitempty"`
	Budget      float64       `json:"budget,omitempty" validate:"gte=0"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	Milestones  []Milestone   `json:"milestones,omitempty"`
}

type CreateProposalRequest struct {
	Title     string     `json:"title" validate:"required,max=200"`
	LeadID    uuid.UUID  `json:"leadId" validate:"required"`
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
	Amount    float64    `json:"amount,omitempty" validate:"gte=0"`
	Content   string     `json:"content,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type UpdateProposalRequest struct {
	Title     string     `json:"title" validate:"required,max=200"`
	Amount    float64    `json:"amount,omitempty" validate:"gte=0"`
	Content   string     `json:"content,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type DecideProposalRequest struct {
	Status ProposalStatus `json:"status" validate:"required,oneof=accepted rejected"`
	Notes  string         `json:"notes,omitempty" validate:"max=500"`
}

type CreateSiteRequest struct {
	Name       string     `json:"name" validate:"required,max=200"`
	URL        string     `json:"url" validate:"required,url,max=500"`
	HealthURL  string     `json:"healthUrl,omitempty" validate:"omitempty,url,max=500"`
	BusinessID *uuid.UUID `json:"businessId,omitempty"`
}

type UpdateSiteRequest struct {
	Name       string     `json:"name" validate:"required,max=200"`
	URL        string     `json:"url" validate:"required,url,max=500"`
	HealthURL  string     `json:"healthUrl,omitempty" validate:"omitempty,url,max=500"`
	IsActive   *bool      `json:"isActive,omitempty"`
	BusinessID *uuid.UUID `json:"businessId,omitempty"`
}

type UpdateIncidentStatusRequest struct {
	Status IncidentStatus `json:"status" validate:"required,oneof=open acknowledged resolved"`
}

type CreateInvoiceRequest struct {
	LeadID       uuid.UUID `json:"leadId" validate:"required"`
	AmountCents  int64     `json:"amountCents" validate:"required,gt=0"`
	Currency     string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	Description  string    `json:"description" validate:"required,max=500"`
	DaysUntilDue int       `json:"daysUntilDue,omitempty" validate:"gte=0,lte=365"`
}

type GenerateSEOReportRequest struct {
	SiteID uuid.UUID `json:"siteId" validate:"required"`
}
