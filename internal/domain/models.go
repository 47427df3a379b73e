package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the database won't
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// LeadStage represents the lead's position in the sales pipeline
type LeadStage string

const (
	StageContact          LeadStage = "contact"
	StagePlanAuditMeeting LeadStage = "plan_audit_meeting"
	StageDiscoveryCall    LeadStage = "discovery_call"
	StageProposal         LeadStage = "proposal"
	StageOffer            LeadStage = "offer"
	StageNegotiating      LeadStage = "negotiating"
	StageWon              LeadStage = "won"
	StageLost             LeadStage = "lost"
)

// IsValid checks if the LeadStage is a valid enum value.
// Matching is case-sensitive; "Won" is not a stage.
func (s LeadStage) IsValid() bool {
	switch s {
	case StageContact, StagePlanAuditMeeting, StageDiscoveryCall, StageProposal,
		StageOffer, StageNegotiating, StageWon, StageLost:
		return true
	}
	return false
}

// IsTerminal reports whether the stage ends the pipeline
func (s LeadStage) IsTerminal() bool {
	return s == StageWon || s == StageLost
}

// LeadSource represents how a lead entered the pipeline
type LeadSource string

const (
	SourceWebsiteAudit LeadSource = "website_audit"
	SourceSystemsForm  LeadSource = "systems_form"
	SourceAuditEmail   LeadSource = "audit_email"
	SourceContactForm  LeadSource = "contact_form"
	SourceReferral     LeadSource = "referral"
	SourceManual       LeadSource = "manual"
)

// IsValid checks if the LeadSource is a valid enum value
func (s LeadSource) IsValid() bool {
	switch s {
	case SourceWebsiteAudit, SourceSystemsForm, SourceAuditEmail, SourceContactForm, SourceReferral, SourceManual:
		return true
	}
	return false
}

// AuditScores holds the four Lighthouse-style sub-scores captured by a
// website audit submission. Stored as jsonb.
type AuditScores struct {
	Performance   int `json:"performance"`
	Accessibility int `json:"accessibility"`
	BestPractices int `json:"bestPractices"`
	SEO           int `json:"seo"`
}

// Value implements driver.Valuer
func (a AuditScores) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *AuditScores) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// ScoreBreakdown holds the per-category sub-scores behind a lead score.
// Stored as jsonb alongside the computed score.
type ScoreBreakdown struct {
	Needs       int `json:"needs"`
	CompanySize int `json:"company_size"`
	Budget      int `json:"budget"`
	Timeline    int `json:"timeline"`
}

// Value implements driver.Valuer
func (b ScoreBreakdown) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner
func (b *ScoreBreakdown) Scan(value interface{}) error {
	return scanJSON(value, b)
}

// StringList is a string slice stored as a jsonb array. Used for the
// lead fields that merge by union across submissions.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Metadata is an arbitrary JSON object attached to activities and checks
type Metadata map[string]interface{}

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		m = Metadata{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, target interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("unsupported scan type %T", value)
	}
}

// Lead represents a prospective or converted customer. A lead and a
// client are two views of the same row: once IsClient is set the
// scoring fields are cleared and never repopulated.
type Lead struct {
	BaseModel
	Email           string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(200)"`
	Company         string          `gorm:"type:varchar(200)"`
	Phone           string          `gorm:"type:varchar(50)"`
	Website         string          `gorm:"type:varchar(500)"`
	Source          *LeadSource     `gorm:"type:varchar(50);index"`
	UTMSource       string          `gorm:"type:varchar(100);column:utm_source"`
	UTMMedium       string          `gorm:"type:varchar(100);column:utm_medium"`
	UTMCampaign     string          `gorm:"type:varchar(100);column:utm_campaign"`
	ConversionPage  string          `gorm:"type:varchar(500);column:conversion_page"`
	BusinessType    string          `gorm:"type:varchar(100);column:business_type"`
	BudgetRange     string          `gorm:"type:varchar(100);column:budget_range"`
	Timeline        string          `gorm:"type:varchar(100)"`
	Services        StringList      `gorm:"type:jsonb"`
	AuditScores     *AuditScores    `gorm:"type:jsonb;column:audit_scores"`
	Score           *int            `gorm:"type:int"`
	ScoreBreakdown  *ScoreBreakdown `gorm:"type:jsonb;column:score_breakdown"`
	Stage           LeadStage       `gorm:"type:varchar(50);not null;default:'contact';index"`
	IsClient        bool            `gorm:"not null;default:false;column:is_client;index"`
	ClientSince     *time.Time      `gorm:"column:client_since"`
	BusinessID      *uuid.UUID      `gorm:"type:uuid;index;column:business_id"`
	Business        *Business       `gorm:"foreignKey:BusinessID"`
	HubSpotSyncedAt *time.Time      `gorm:"column:hubspot_synced_at"`
	Notes           string          `gorm:"type:text"`
}

// TableName overrides the default table name
func (Lead) TableName() string {
	return "crm_leads"
}

// ActivityType represents the type of activity log entry
type ActivityType string

const (
	ActivityNote           ActivityType = "note"
	ActivityCall           ActivityType = "call"
	ActivityMeeting        ActivityType = "meeting"
	ActivityEmailSent      ActivityType = "email_sent"
	ActivityEmailReceived  ActivityType = "email_received"
	ActivityStageChange    ActivityType = "stage_change"
	ActivityFormSubmission ActivityType = "form_submission"
	ActivityHubSpotSync    ActivityType = "hubspot_sync"
	ActivitySystem         ActivityType = "system"
)

// IsValid checks if the ActivityType is a valid enum value
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityNote, ActivityCall, ActivityMeeting, ActivityEmailSent, ActivityEmailReceived,
		ActivityStageChange, ActivityFormSubmission, ActivityHubSpotSync, ActivitySystem:
		return true
	}
	return false
}

// IsPinnable reports whether activities of this type may be pinned
func (t ActivityType) IsPinnable() bool {
	switch t {
	case ActivityNote, ActivityEmailSent, ActivityEmailReceived:
		return true
	}
	return false
}

// MaxPinnedPerLead is the hard cap on pinned activities for one lead
const MaxPinnedPerLead = 5

// Activity represents an immutable event log entry attached to a lead
type Activity struct {
	BaseModel
	LeadID      uuid.UUID    `gorm:"type:uuid;not null;index;column:lead_id"`
	Lead        *Lead        `gorm:"foreignKey:LeadID"`
	Type        ActivityType `gorm:"type:varchar(50);not null;index"`
	Title       string       `gorm:"type:varchar(200);not null"`
	Description string       `gorm:"type:text"`
	Metadata    Metadata     `gorm:"type:jsonb"`
	ActorName   string       `gorm:"type:varchar(200);column:actor_name"`
	Pinned      bool         `gorm:"not null;default:false;index"`
	PinnedAt    *time.Time   `gorm:"column:pinned_at"`
	PinnedBy    string       `gorm:"type:varchar(200);column:pinned_by"`
}

// TableName overrides the default table name
func (Activity) TableName() string {
	return "crm_activities"
}

// Business represents an organizational entity owning leads and sites
type Business struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null;index"`
	Website  string `gorm:"type:varchar(500)"`
	Industry string `gorm:"type:varchar(100)"`
	Phone    string `gorm:"type:varchar(50)"`
	Notes    string `gorm:"type:text"`
	Leads    []Lead `gorm:"foreignKey:BusinessID"`
	Sites    []Site `gorm:"foreignKey:BusinessID"`
}

// TableName overrides the default table name
func (Business) TableName() string {
	return "crm_businesses"
}

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// MilestoneStatus represents the sub-status of a project milestone
type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "pending"
	MilestoneCompleted MilestoneStatus = "completed"
)

// Milestone is a single entry in a project's embedded milestone list
type Milestone struct {
	Title       string          `json:"title"`
	Status      MilestoneStatus `json:"status"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// Milestones is the embedded JSON array of project milestones
type Milestones []Milestone

// Value implements driver.Valuer
func (m Milestones) Value() (driver.Value, error) {
	if m == nil {
		m = Milestones{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *Milestones) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// Project represents work being performed for a lead/client
type Project struct {
	BaseModel
	Name        string        `gorm:"type:varchar(200);not null;index"`
	Description string        `gorm:"type:text"`
	LeadID      uuid.UUID     `gorm:"type:uuid;not null;index;column:lead_id"`
	Lead        *Lead         `gorm:"foreignKey:LeadID"`
	Status      ProjectStatus `gorm:"type:varchar(50);not null;default:'planning';index"`
	Budget      float64       `gorm:"type:decimal(15,2);not null;default:0"`
	StartDate   *time.Time    `gorm:"type:date;column:start_date"`
	EndDate     *time.Time    `gorm:"type:date;column:end_date"`
	Milestones  Milestones    `gorm:"type:jsonb"`
}

// TableName overrides the default table name
func (Project) TableName() string {
	return "crm_projects"
}

// ProposalStatus represents the status of a proposal
type ProposalStatus string

const (
	ProposalDraft    ProposalStatus = "draft"
	ProposalSent     ProposalStatus = "sent"
	ProposalViewed   ProposalStatus = "viewed"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
	ProposalExpired  ProposalStatus = "expired"
)

// IsValid checks if the ProposalStatus is a valid enum value
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalDraft, ProposalSent, ProposalViewed, ProposalAccepted, ProposalRejected, ProposalExpired:
		return true
	}
	return false
}

// IsDecided reports whether the proposal has reached a final state
func (s ProposalStatus) IsDecided() bool {
	return s == ProposalAccepted || s == ProposalRejected || s == ProposalExpired
}

// Proposal represents a priced offer sent to a lead. A public token
// allows unauthenticated viewing.
type Proposal struct {
	BaseModel
	Title       string         `gorm:"type:varchar(200);not null"`
	LeadID      uuid.UUID      `gorm:"type:uuid;not null;index;column:lead_id"`
	Lead        *Lead          `gorm:"foreignKey:LeadID"`
	ProjectID   *uuid.UUID     `gorm:"type:uuid;index;column:project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID"`
	Status      ProposalStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	Amount      float64        `gorm:"type:decimal(15,2);not null;default:0"`
	Content     string         `gorm:"type:text"`
	PublicToken string         `gorm:"type:varchar(64);not null;uniqueIndex;column:public_token"`
	SentAt      *time.Time     `gorm:"column:sent_at"`
	ViewedAt    *time.Time     `gorm:"column:viewed_at"`
	DecidedAt   *time.Time     `gorm:"column:decided_at"`
	ExpiresAt   *time.Time     `gorm:"column:expires_at"`
}

// TableName overrides the default table name
func (Proposal) TableName() string {
	return "crm_proposals"
}

// SiteStatus represents the classified health of a monitored site
type SiteStatus string

const (
	StatusHealthy  SiteStatus = "healthy"
	StatusDegraded SiteStatus = "degraded"
	StatusDown     SiteStatus = "down"
	StatusUnknown  SiteStatus = "unknown"
)

// IsValid checks if the SiteStatus is a valid enum value
func (s SiteStatus) IsValid() bool {
	switch s {
	case StatusHealthy, StatusDegraded, StatusDown, StatusUnknown:
		return true
	}
	return false
}

// Site represents a monitored client site
type Site struct {
	BaseModel
	Name       string     `gorm:"type:varchar(200);not null"`
	URL        string     `gorm:"type:varchar(500);not null"`
	HealthURL  string     `gorm:"type:varchar(500);column:health_url"`
	IsActive   bool       `gorm:"not null;default:true;column:is_active;index"`
	BusinessID *uuid.UUID `gorm:"type:uuid;index;column:business_id"`
	Business   *Business  `gorm:"foreignKey:BusinessID"`
}

// TableName overrides the default table name
func (Site) TableName() string {
	return "devops_sites"
}

// CheckURL returns the configured health endpoint or the default one
func (s *Site) CheckURL() string {
	if s.HealthURL != "" {
		return s.HealthURL
	}
	return s.URL + "/api/health"
}

// HealthCheck is a single point-in-time probe result. Rows are never
// updated after insert.
type HealthCheck struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SiteID         uuid.UUID  `gorm:"type:uuid;not null;index;column:site_id"`
	Site           *Site      `gorm:"foreignKey:SiteID"`
	Status         SiteStatus `gorm:"type:varchar(20);not null"`
	HTTPStatus     int        `gorm:"column:http_status"`
	ResponseTimeMS int64      `gorm:"column:response_time_ms"`
	SSLExpiresAt   *time.Time `gorm:"column:ssl_expires_at"`
	Detail         string     `gorm:"type:varchar(500)"`
	CheckedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:checked_at"`
}

// TableName overrides the default table name
func (HealthCheck) TableName() string {
	return "devops_health_checks"
}

// BeforeCreate assigns a UUID when the database won't
func (h *HealthCheck) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// IncidentType represents the kind of fault an incident records
type IncidentType string

const (
	IncidentDowntime  IncidentType = "downtime"
	IncidentDegraded  IncidentType = "degraded_performance"
	IncidentSSLExpiry IncidentType = "ssl_expiry"
)

// IncidentSeverity represents how serious an incident is
type IncidentSeverity string

const (
	SeverityCritical IncidentSeverity = "critical"
	SeverityWarning  IncidentSeverity = "warning"
)

// IncidentStatus represents the lifecycle state of an incident
type IncidentStatus string

const (
	IncidentOpen         IncidentStatus = "open"
	IncidentAcknowledged IncidentStatus = "acknowledged"
	IncidentResolved     IncidentStatus = "resolved"
)

// IsValid checks if the IncidentStatus is a valid enum value
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentOpen, IncidentAcknowledged, IncidentResolved:
		return true
	}
	return false
}

// Incident represents a detected fault on a monitored site.
// At most one non-resolved incident per (site, type) exists at a time.
type Incident struct {
	BaseModel
	SiteID     uuid.UUID        `gorm:"type:uuid;not null;index;column:site_id"`
	Site       *Site            `gorm:"foreignKey:SiteID"`
	Type       IncidentType     `gorm:"type:varchar(50);not null;index"`
	Severity   IncidentSeverity `gorm:"type:varchar(20);not null"`
	Status     IncidentStatus   `gorm:"type:varchar(20);not null;default:'open';index"`
	Title      string           `gorm:"type:varchar(200);not null"`
	Detail     string           `gorm:"type:text"`
	ResolvedAt *time.Time       `gorm:"column:resolved_at"`
}

// TableName overrides the default table name
func (Incident) TableName() string {
	return "devops_incidents"
}

// NotificationType represents the type of in-app notification
type NotificationType string

const (
	NotificationLeadWon      NotificationType = "lead_won"
	NotificationStageChanged NotificationType = "stage_changed"
	NotificationIncident     NotificationType = "incident_opened"
	NotificationRecovery     NotificationType = "incident_recovered"
)

// Notification represents an in-app notification for the admin panel
type Notification struct {
	BaseModel
	Type       string     `gorm:"type:varchar(50);not null"`
	Title      string     `gorm:"type:varchar(200);not null"`
	Message    string     `gorm:"type:varchar(500);not null"`
	Read       bool       `gorm:"column:read;not null;default:false;index"`
	ReadAt     *time.Time
	EntityID   *uuid.UUID `gorm:"type:uuid"`
	EntityType string     `gorm:"type:varchar(50)"`
}

// TableName overrides the default table name
func (Notification) TableName() string {
	return "crm_notifications"
}

// StripeCustomer mirrors a Stripe customer for a client lead
type StripeCustomer struct {
	BaseModel
	LeadID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:lead_id"`
	Lead             *Lead      `gorm:"foreignKey:LeadID"`
	StripeCustomerID string     `gorm:"type:varchar(100);not null;uniqueIndex;column:stripe_customer_id"`
	Email            string     `gorm:"type:varchar(255)"`
	LastSyncedAt     *time.Time `gorm:"column:last_synced_at"`
}

// TableName overrides the default table name
func (StripeCustomer) TableName() string {
	return "crm_stripe_customers"
}

// StripeInvoice mirrors a Stripe invoice
type StripeInvoice struct {
	BaseModel
	LeadID          uuid.UUID  `gorm:"type:uuid;not null;index;column:lead_id"`
	StripeInvoiceID string     `gorm:"type:varchar(100);not null;uniqueIndex;column:stripe_invoice_id"`
	Status          string     `gorm:"type:varchar(50)"`
	AmountDue       int64      `gorm:"column:amount_due"`
	AmountPaid      int64      `gorm:"column:amount_paid"`
	Currency        string     `gorm:"type:varchar(3)"`
	HostedURL       string     `gorm:"type:varchar(500);column:hosted_url"`
	DueDate         *time.Time `gorm:"column:due_date"`
	PaidAt          *time.Time `gorm:"column:paid_at"`
}

// TableName overrides the default table name
func (StripeInvoice) TableName() string {
	return "crm_stripe_invoices"
}

// SEOReport represents a generated SEO report for a monitored site
type SEOReport struct {
	BaseModel
	SiteID          uuid.UUID `gorm:"type:uuid;not null;index;column:site_id"`
	Site            *Site     `gorm:"foreignKey:SiteID"`
	Summary         string    `gorm:"type:text"`
	Recommendations string    `gorm:"type:text"`
	Metrics         Metadata  `gorm:"type:jsonb"`
	GeneratedBy     string    `gorm:"type:varchar(200);column:generated_by"`
}

// TableName overrides the default table name
func (SEOReport) TableName() string {
	return "seo_reports"
}
