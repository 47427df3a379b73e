package domain_test

import (
	"testing"

	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourcePtr(s domain.LeadSource) *domain.LeadSource {
	return &s
}

func TestCalculateLeadScore(t *testing.T) {
	t.Run("contact form with no qualification data", func(t *testing.T) {
		lead := &domain.Lead{
			Email:  "lead@example.com",
			Source: sourcePtr(domain.SourceContactForm),
		}

		score, breakdown := domain.CalculateLeadScore(lead)

		assert.Equal(t, domain.ScoreBreakdown{
			Needs:       40,
			CompanySize: 20,
			Budget:      30,
			Timeline:    30,
		}, breakdown)
		// (40*30 + 20*20 + 30*30 + 30*20) / 100 = 3100 / 100
		assert.Equal(t, 31, score)
	})

	t.Run("website audit with poor scores signals strong need", func(t *testing.T) {
		lead := &domain.Lead{
			Email:  "lead@example.com",
			Source: sourcePtr(domain.SourceWebsiteAudit),
			AuditScores: &domain.AuditScores{
				Performance:   40,
				Accessibility: 40,
				BestPractices: 40,
				SEO:           40,
			},
		}

		score, breakdown := domain.CalculateLeadScore(lead)

		assert.Equal(t, 85, breakdown.Needs)
		// 4450 / 100 = 44.5 rounds away from zero
		assert.Equal(t, 45, score)
	})

	t.Run("website audit need tiers", func(t *testing.T) {
		cases := []struct {
			name  string
			avg   int
			needs int
		}{
			{"average below 50", 40, 85},
			{"average below 70", 60, 60},
			{"average 70 or above", 90, 30},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				lead := &domain.Lead{
					Source: sourcePtr(domain.SourceWebsiteAudit),
					AuditScores: &domain.AuditScores{
						Performance:   tc.avg,
						Accessibility: tc.avg,
						BestPractices: tc.avg,
						SEO:           tc.avg,
					},
				}
				_, breakdown := domain.CalculateLeadScore(lead)
				assert.Equal(t, tc.needs, breakdown.Needs)
			})
		}
	})

	t.Run("website audit without scores falls to default need", func(t *testing.T) {
		lead := &domain.Lead{Source: sourcePtr(domain.SourceWebsiteAudit)}
		_, breakdown := domain.CalculateLeadScore(lead)
		assert.Equal(t, 30, breakdown.Needs)
	})

	t.Run("need constants per source", func(t *testing.T) {
		cases := map[domain.LeadSource]int{
			domain.SourceSystemsForm: 70,
			domain.SourceAuditEmail:  65,
			domain.SourceContactForm: 40,
			domain.SourceReferral:    30,
			domain.SourceManual:      30,
		}
		for source, expected := range cases {
			lead := &domain.Lead{Source: sourcePtr(source)}
			_, breakdown := domain.CalculateLeadScore(lead)
			assert.Equal(t, expected, breakdown.Needs, "source %s", source)
		}
	})

	t.Run("missing source scores as default", func(t *testing.T) {
		lead := &domain.Lead{}
		_, breakdown := domain.CalculateLeadScore(lead)
		assert.Equal(t, 30, breakdown.Needs)
	})

	t.Run("company size tiers", func(t *testing.T) {
		cases := []struct {
			name         string
			company      string
			businessType string
			expected     int
		}{
			{"target industry in company name", "Bergen Construction", "", 70},
			{"target industry in business type", "Acme", "General Contractors", 70},
			{"corporate suffix", "Acme AS", "", 60},
			{"llc suffix", "Acme LLC", "", 60},
			{"plain company name", "Acme", "", 40},
			{"no company at all", "", "", 20},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				lead := &domain.Lead{Company: tc.company, BusinessType: tc.businessType}
				_, breakdown := domain.CalculateLeadScore(lead)
				assert.Equal(t, tc.expected, breakdown.CompanySize)
			})
		}
	})

	t.Run("budget tiers", func(t *testing.T) {
		cases := map[string]int{
			"$10k-20k":     90,
			"15k or more":  90,
			"$5k-7k":       70,
			"around 3k":    50,
			"not sure yet": 30,
			"":             30,
		}
		for budget, expected := range cases {
			lead := &domain.Lead{BudgetRange: budget}
			_, breakdown := domain.CalculateLeadScore(lead)
			assert.Equal(t, expected, breakdown.Budget, "budget %q", budget)
		}
	})

	t.Run("timeline tiers", func(t *testing.T) {
		cases := map[string]int{
			"ASAP":                  100,
			"urgent":                100,
			"within 1 month":        80,
			"2-3 months":            60,
			"sometime 6 months out": 40,
			"no rush":               30,
			"":                      30,
		}
		for timeline, expected := range cases {
			lead := &domain.Lead{Timeline: timeline}
			_, breakdown := domain.CalculateLeadScore(lead)
			assert.Equal(t, expected, breakdown.Timeline, "timeline %q", timeline)
		}
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		best := &domain.Lead{
			Source:       sourcePtr(domain.SourceWebsiteAudit),
			AuditScores:  &domain.AuditScores{Performance: 10, Accessibility: 10, BestPractices: 10, SEO: 10},
			Company:      "Bergen Construction AS",
			BusinessType: "construction",
			BudgetRange:  "$15k-20k",
			Timeline:     "ASAP",
		}
		score, _ := domain.CalculateLeadScore(best)
		assert.LessOrEqual(t, score, 100)

		worst := &domain.Lead{}
		score, _ = domain.CalculateLeadScore(worst)
		assert.GreaterOrEqual(t, score, 0)
	})
}

func TestMergeLead(t *testing.T) {
	t.Run("non-empty incoming scalars overwrite", func(t *testing.T) {
		existing := &domain.Lead{
			Email:   "lead@example.com",
			Name:    "Old Name",
			Company: "Old Co",
			Phone:   "111",
		}
		incoming := &domain.Lead{
			Email: "lead@example.com",
			Name:  "New Name",
			Phone: "222",
		}

		merged := domain.MergeLead(existing, incoming)

		assert.Equal(t, "New Name", merged.Name)
		assert.Equal(t, "222", merged.Phone)
		assert.Equal(t, "Old Co", merged.Company, "empty incoming field must not clear existing value")
	})

	t.Run("services merge by union preserving order", func(t *testing.T) {
		existing := &domain.Lead{Services: domain.StringList{"web", "seo"}}
		incoming := &domain.Lead{Services: domain.StringList{"seo", "hosting"}}

		merged := domain.MergeLead(existing, incoming)

		assert.Equal(t, domain.StringList{"web", "seo", "hosting"}, merged.Services)
	})

	t.Run("score keeps the higher value", func(t *testing.T) {
		high := 80
		existing := &domain.Lead{
			Score:          &high,
			ScoreBreakdown: &domain.ScoreBreakdown{Needs: 85},
		}
		incoming := &domain.Lead{Name: "Someone"}

		merged := domain.MergeLead(existing, incoming)

		require.NotNil(t, merged.Score)
		assert.Equal(t, 80, *merged.Score)
		assert.Equal(t, 85, merged.ScoreBreakdown.Needs)
	})

	t.Run("higher recomputed score replaces the old one", func(t *testing.T) {
		low := 10
		existing := &domain.Lead{Score: &low}
		incoming := &domain.Lead{
			Source:      sourcePtr(domain.SourceSystemsForm),
			Company:     "Bergen Construction",
			BudgetRange: "$10k",
			Timeline:    "ASAP",
		}

		merged := domain.MergeLead(existing, incoming)

		require.NotNil(t, merged.Score)
		assert.Greater(t, *merged.Score, 10)
	})

	t.Run("clients are never re-scored", func(t *testing.T) {
		existing := &domain.Lead{IsClient: true}
		incoming := &domain.Lead{
			Source:      sourcePtr(domain.SourceSystemsForm),
			BudgetRange: "$15k",
			Timeline:    "ASAP",
		}

		merged := domain.MergeLead(existing, incoming)

		assert.Nil(t, merged.Score)
		assert.Nil(t, merged.ScoreBreakdown)
	})

	t.Run("clients keep source cleared", func(t *testing.T) {
		existing := &domain.Lead{IsClient: true}
		incoming := &domain.Lead{
			Name:   "Returning Client",
			Source: sourcePtr(domain.SourceContactForm),
		}

		merged := domain.MergeLead(existing, incoming)

		assert.Nil(t, merged.Source, "conversion cleared source and a merge must not restore it")
		assert.Equal(t, "Returning Client", merged.Name, "contact fields still merge for clients")
	})
}
