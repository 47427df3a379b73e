package domain

import (
	"math"
	"strings"
	"time"
)

// Category weights for the lead score. The weighted sum is divided by
// 100, so weights must total 100.
const (
	WeightNeeds       = 30
	WeightCompanySize = 20
	WeightBudget      = 30
	WeightTimeline    = 20
)

// targetIndustries are company keywords that score highest
var targetIndustries = []string{"construction", "contractors"}

// corporateSuffixes hint at an established organization
var corporateSuffixes = []string{" as", " asa", " inc", " llc", " ltd", " corp", " gmbh", " ab"}

// CalculateLeadScore computes a 0-100 qualification score for a lead
// from its acquisition source, company profile, budget range and
// timeline. Pure and deterministic, no I/O. Missing inputs degrade to
// the lowest-confidence branch rather than erroring.
func CalculateLeadScore(lead *Lead) (int, ScoreBreakdown) {
	breakdown := ScoreBreakdown{
		Needs:       scoreNeeds(lead),
		CompanySize: scoreCompanySize(lead),
		Budget:      scoreBudget(lead.BudgetRange),
		Timeline:    scoreTimeline(lead.Timeline),
	}

	weighted := breakdown.Needs*WeightNeeds +
		breakdown.CompanySize*WeightCompanySize +
		breakdown.Budget*WeightBudget +
		breakdown.Timeline*WeightTimeline

	score := int(math.Round(float64(weighted) / 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, breakdown
}

func scoreNeeds(lead *Lead) int {
	var source LeadSource
	if lead.Source != nil {
		source = *lead.Source
	}

	switch source {
	case SourceWebsiteAudit:
		if lead.AuditScores == nil {
			return 30
		}
		avg := float64(lead.AuditScores.Performance+lead.AuditScores.Accessibility+
			lead.AuditScores.BestPractices+lead.AuditScores.SEO) / 4
		// the worse the audit, the stronger the need
		switch {
		case avg < 50:
			return 85
		case avg < 70:
			return 60
		default:
			return 30
		}
	case SourceSystemsForm:
		return 70
	case SourceAuditEmail:
		return 65
	case SourceContactForm:
		return 40
	default:
		return 30
	}
}

func scoreCompanySize(lead *Lead) int {
	company := strings.ToLower(lead.Company)
	businessType := strings.ToLower(lead.BusinessType)

	for _, kw := range targetIndustries {
		if strings.Contains(company, kw) || strings.Contains(businessType, kw) {
			return 70
		}
	}
	for _, suffix := range corporateSuffixes {
		if strings.HasSuffix(company, suffix) || strings.Contains(company, suffix+" ") {
			return 60
		}
	}
	if company != "" {
		return 40
	}
	return 20
}

func scoreBudget(budgetRange string) int {
	budget := strings.ToLower(budgetRange)
	switch {
	case containsAny(budget, "10k", "15k", "20k"):
		return 90
	case containsAny(budget, "5k", "7k"):
		return 70
	case strings.Contains(budget, "3k"):
		return 50
	default:
		return 30
	}
}

func scoreTimeline(timeline string) int {
	t := strings.ToLower(timeline)
	switch {
	case containsAny(t, "asap", "urgent", "immediately"):
		return 100
	case containsAny(t, "1 month", "one month", "few weeks"):
		return 80
	case containsAny(t, "2-3 months", "3 months", "quarter"):
		return 60
	case containsAny(t, "6 months", "this year"):
		return 40
	default:
		return 30
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// MergeLead merges a new submission into an existing lead record.
// Non-empty incoming scalars overwrite, list fields merge by union,
// and the score keeps whichever is higher. The existing record is
// modified in place and returned.
func MergeLead(existing *Lead, incoming *Lead) *Lead {
	if incoming.Name != "" {
		existing.Name = incoming.Name
	}
	if incoming.Company != "" {
		existing.Company = incoming.Company
	}
	if incoming.Phone != "" {
		existing.Phone = incoming.Phone
	}
	if incoming.Website != "" {
		existing.Website = incoming.Website
	}
	if incoming.UTMSource != "" {
		existing.UTMSource = incoming.UTMSource
	}
	if incoming.UTMMedium != "" {
		existing.UTMMedium = incoming.UTMMedium
	}
	if incoming.UTMCampaign != "" {
		existing.UTMCampaign = incoming.UTMCampaign
	}
	if incoming.ConversionPage != "" {
		existing.ConversionPage = incoming.ConversionPage
	}
	if incoming.BusinessType != "" {
		existing.BusinessType = incoming.BusinessType
	}
	if incoming.BudgetRange != "" {
		existing.BudgetRange = incoming.BudgetRange
	}
	if incoming.Timeline != "" {
		existing.Timeline = incoming.Timeline
	}
	if incoming.AuditScores != nil {
		existing.AuditScores = incoming.AuditScores
	}
	if incoming.Notes != "" {
		existing.Notes = incoming.Notes
	}

	existing.Services = unionStrings(existing.Services, incoming.Services)

	// clients keep source and score cleared; conversion emptied them
	// and repeat submissions must not bring them back
	if !existing.IsClient {
		if incoming.Source != nil {
			existing.Source = incoming.Source
		}
		score, breakdown := CalculateLeadScore(existing)
		if existing.Score == nil || score > *existing.Score {
			existing.Score = &score
			existing.ScoreBreakdown = &breakdown
		}
	}

	existing.UpdatedAt = time.Now()
	return existing
}

func unionStrings(a, b StringList) StringList {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a))
	out := make(StringList, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
