package mapper

import (
	"time"

	"github.com/visionary-advance/agency-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	dto := domain.LeadDTO{
		ID:             lead.ID,
		Email:          lead.Email,
		Name:           lead.Name,
		Company:        lead.Company,
		Phone:          lead.Phone,
		Website:        lead.Website,
		Source:         lead.Source,
		UTMSource:      lead.UTMSource,
		UTMMedium:      lead.UTMMedium,
		UTMCampaign:    lead.UTMCampaign,
		ConversionPage: lead.ConversionPage,
		BusinessType:   lead.BusinessType,
		BudgetRange:    lead.BudgetRange,
		Timeline:       lead.Timeline,
		Services:       lead.Services,
		AuditScores:    lead.AuditScores,
		Score:          lead.Score,
		ScoreBreakdown: lead.ScoreBreakdown,
		Stage:          lead.Stage,
		IsClient:       lead.IsClient,
		ClientSince:    formatTimePtr(lead.ClientSince),
		BusinessID:     lead.BusinessID,
		Notes:          lead.Notes,
		CreatedAt:      formatTime(lead.CreatedAt),
		UpdatedAt:      formatTime(lead.UpdatedAt),
	}
	if lead.Business != nil {
		dto.BusinessName = lead.Business.Name
	}
	return dto
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:          activity.ID,
		LeadID:      activity.LeadID,
		Type:        activity.Type,
		Title:       activity.Title,
		Description: activity.Description,
		Metadata:    activity.Metadata,
		ActorName:   activity.ActorName,
		Pinned:      activity.Pinned,
		PinnedAt:    formatTimePtr(activity.PinnedAt),
		PinnedBy:    activity.PinnedBy,
		CreatedAt:   formatTime(activity.CreatedAt),
	}
}

// ToBusinessDTO converts Business to BusinessDTO
func ToBusinessDTO(business *domain.Business, leadCount, siteCount int64) domain.BusinessDTO {
	return domain.BusinessDTO{
		ID:        business.ID,
		Name:      business.Name,
		Website:   business.Website,
		Industry:  business.Industry,
		Phone:     business.Phone,
		Notes:     business.Notes,
		LeadCount: leadCount,
		SiteCount: siteCount,
		CreatedAt: formatTime(business.CreatedAt),
		UpdatedAt: formatTime(business.UpdatedAt),
	}
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	dto := domain.ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		LeadID:      project.LeadID,
		Status:      project.Status,
		Budget:      project.Budget,
		StartDate:   formatTimePtr(project.StartDate),
		EndDate:     formatTimePtr(project.EndDate),
		Milestones:  project.Milestones,
		CreatedAt:   formatTime(project.CreatedAt),
		UpdatedAt:   formatTime(project.UpdatedAt),
	}
	if project.Lead != nil {
		dto.LeadName = project.Lead.Name
	}
	return dto
}

// ToProposalDTO converts Proposal to ProposalDTO
func ToProposalDTO(proposal *domain.Proposal) domain.ProposalDTO {
	dto := domain.ProposalDTO{
		ID:          proposal.ID,
		Title:       proposal.Title,
		LeadID:      proposal.LeadID,
		ProjectID:   proposal.ProjectID,
		Status:      proposal.Status,
		Amount:      proposal.Amount,
		Content:     proposal.Content,
		PublicToken: proposal.PublicToken,
		SentAt:      formatTimePtr(proposal.SentAt),
		ViewedAt:    formatTimePtr(proposal.ViewedAt),
		DecidedAt:   formatTimePtr(proposal.DecidedAt),
		ExpiresAt:   formatTimePtr(proposal.ExpiresAt),
		CreatedAt:   formatTime(proposal.CreatedAt),
		UpdatedAt:   formatTime(proposal.UpdatedAt),
	}
	if proposal.Lead != nil {
		dto.LeadName = proposal.Lead.Name
	}
	return dto
}

// ToPublicProposalDTO converts Proposal to its token-access view
func ToPublicProposalDTO(proposal *domain.Proposal) domain.PublicProposalDTO {
	return domain.PublicProposalDTO{
		Title:     proposal.Title,
		Status:    proposal.Status,
		Amount:    proposal.Amount,
		Content:   proposal.Content,
		SentAt:    formatTimePtr(proposal.SentAt),
		ExpiresAt: formatTimePtr(proposal.ExpiresAt),
	}
}

// ToSiteDTO converts Site to SiteDTO
func ToSiteDTO(site *domain.Site, latest *domain.HealthCheck, openIncidents int, uptimePercent *float64) domain.SiteDTO {
	dto := domain.SiteDTO{
		ID:            site.ID,
		Name:          site.Name,
		URL:           site.URL,
		HealthURL:     site.HealthURL,
		IsActive:      site.IsActive,
		BusinessID:    site.BusinessID,
		OpenIncidents: openIncidents,
		UptimePercent: uptimePercent,
		CreatedAt:     formatTime(site.CreatedAt),
		UpdatedAt:     formatTime(site.UpdatedAt),
	}
	if latest != nil {
		dto.CurrentStatus = latest.Status
		dto.LastCheckedAt = formatTimePtr(&latest.CheckedAt)
	}
	return dto
}

// ToHealthCheckDTO converts HealthCheck to HealthCheckDTO
func ToHealthCheckDTO(check *domain.HealthCheck) domain.HealthCheckDTO {
	return domain.HealthCheckDTO{
		ID:             check.ID,
		SiteID:         check.SiteID,
		Status:         check.Status,
		HTTPStatus:     check.HTTPStatus,
		ResponseTimeMS: check.ResponseTimeMS,
		SSLExpiresAt:   formatTimePtr(check.SSLExpiresAt),
		Detail:         check.Detail,
		CheckedAt:      formatTime(check.CheckedAt),
	}
}

// ToIncidentDTO converts Incident to IncidentDTO
func ToIncidentDTO(incident *domain.Incident) domain.IncidentDTO {
	dto := domain.IncidentDTO{
		ID:         incident.ID,
		SiteID:     incident.SiteID,
		Type:       incident.Type,
		Severity:   incident.Severity,
		Status:     incident.Status,
		Title:      incident.Title,
		Detail:     incident.Detail,
		ResolvedAt: formatTimePtr(incident.ResolvedAt),
		CreatedAt:  formatTime(incident.CreatedAt),
		UpdatedAt:  formatTime(incident.UpdatedAt),
	}
	if incident.Site != nil {
		dto.SiteName = incident.Site.Name
	}
	return dto
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         notification.ID,
		Type:       notification.Type,
		Title:      notification.Title,
		Message:    notification.Message,
		Read:       notification.Read,
		ReadAt:     formatTimePtr(notification.ReadAt),
		EntityID:   notification.EntityID,
		EntityType: notification.EntityType,
		CreatedAt:  formatTime(notification.CreatedAt),
	}
}

// ToStripeCustomerDTO converts StripeCustomer to StripeCustomerDTO
func ToStripeCustomerDTO(customer *domain.StripeCustomer) domain.StripeCustomerDTO {
	return domain.StripeCustomerDTO{
		ID:               customer.ID,
		LeadID:           customer.LeadID,
		StripeCustomerID: customer.StripeCustomerID,
		Email:            customer.Email,
		LastSyncedAt:     formatTimePtr(customer.LastSyncedAt),
	}
}

// ToStripeInvoiceDTO converts StripeInvoice to StripeInvoiceDTO
func ToStripeInvoiceDTO(invoice *domain.StripeInvoice) domain.StripeInvoiceDTO {
	return domain.StripeInvoiceDTO{
		ID:              invoice.ID,
		LeadID:          invoice.LeadID,
		StripeInvoiceID: invoice.StripeInvoiceID,
		Status:          invoice.Status,
		AmountDue:       invoice.AmountDue,
		AmountPaid:      invoice.AmountPaid,
		Currency:        invoice.Currency,
		HostedURL:       invoice.HostedURL,
		DueDate:         formatTimePtr(invoice.DueDate),
		PaidAt:          formatTimePtr(invoice.PaidAt),
		CreatedAt:       formatTime(invoice.CreatedAt),
	}
}

// ToSEOReportDTO converts SEOReport to SEOReportDTO
func ToSEOReportDTO(report *domain.SEOReport) domain.SEOReportDTO {
	dto := domain.SEOReportDTO{
		ID:              report.ID,
		SiteID:          report.SiteID,
		Summary:         report.Summary,
		Recommendations: report.Recommendations,
		Metrics:         report.Metrics,
		GeneratedBy:     report.GeneratedBy,
		CreatedAt:       formatTime(report.CreatedAt),
	}
	if report.Site != nil {
		dto.SiteName = report.Site.Name
	}
	return dto
}
