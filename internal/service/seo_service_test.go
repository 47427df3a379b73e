package service_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/integration/llm"
	"github.com/visionary-advance/agency-api/internal/repository"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createSEOService(db *gorm.DB, client *llm.Client) *service.SEOService {
	return service.NewSEOService(
		repository.NewSEOReportRepository(db),
		repository.NewSiteRepository(db),
		repository.NewHealthCheckRepository(db),
		client,
		zap.NewNop(),
	)
}

// stubCompletion serves an Anthropic-shaped messages response with the
// given text.
func stubCompletion(t *testing.T, text string, prompts *[]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if prompts != nil {
			var body struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			for _, m := range body.Messages {
				*prompts = append(*prompts, m.Content)
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": text}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSEOService_Generate(t *testing.T) {
	t.Run("stores summary and recommendations", func(t *testing.T) {
		db := setupTestDB(t)

		var prompts []string
		server := stubCompletion(t,
			"The site is fast and mostly healthy.\nRECOMMENDATIONS:\n1. Add meta descriptions\n2. Compress images",
			&prompts)
		svc := createSEOService(db, llm.NewWithBaseURL("sk-test", server.URL))

		site := createTestSite(t, db, "report-me", "https://report-me.example.com/health")

		report, err := svc.Generate(testContext(), site.ID)

		require.NoError(t, err)
		assert.Equal(t, "The site is fast and mostly healthy.", report.Summary)
		assert.Equal(t, "1. Add meta descriptions\n2. Compress images", report.Recommendations)
		assert.Equal(t, "Test Admin", report.GeneratedBy)

		require.Len(t, prompts, 1)
		assert.Contains(t, prompts[0], "report-me", "the prompt names the site")

		var stored domain.SEOReport
		require.NoError(t, db.Where("site_id = ?", site.ID).First(&stored).Error)
		assert.Equal(t, report.Summary, stored.Summary)
	})

	t.Run("prompt includes recent health data", func(t *testing.T) {
		db := setupTestDB(t)

		var prompts []string
		server := stubCompletion(t, "Looks fine.", &prompts)
		svc := createSEOService(db, llm.NewWithBaseURL("sk-test", server.URL))

		site := createTestSite(t, db, "with-history", "https://with-history.example.com/health")
		check := &domain.HealthCheck{
			SiteID:         site.ID,
			Status:         domain.StatusDegraded,
			HTTPStatus:     200,
			ResponseTimeMS: 2400,
		}
		require.NoError(t, db.Create(check).Error)

		_, err := svc.Generate(testContext(), site.ID)

		require.NoError(t, err)
		require.Len(t, prompts, 1)
		assert.Contains(t, prompts[0], "degraded")
		assert.Contains(t, prompts[0], "2400ms")
	})

	t.Run("missing marker puts everything in the summary", func(t *testing.T) {
		db := setupTestDB(t)

		server := stubCompletion(t, "Just one paragraph, no list.", nil)
		svc := createSEOService(db, llm.NewWithBaseURL("sk-test", server.URL))

		site := createTestSite(t, db, "no-marker", "https://no-marker.example.com/health")

		report, err := svc.Generate(testContext(), site.ID)

		require.NoError(t, err)
		assert.Equal(t, "Just one paragraph, no list.", report.Summary)
		assert.Empty(t, report.Recommendations)
	})

	t.Run("model failure still stores a report", func(t *testing.T) {
		db := setupTestDB(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(server.Close)
		svc := createSEOService(db, llm.NewWithBaseURL("sk-test", server.URL))

		site := createTestSite(t, db, "flaky-model", "https://flaky-model.example.com/health")

		report, err := svc.Generate(testContext(), site.ID)

		require.NoError(t, err)
		assert.Empty(t, report.Summary)
		assert.Empty(t, report.Recommendations)

		var count int64
		require.NoError(t, db.Model(&domain.SEOReport{}).Where("site_id = ?", site.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("disabled without an api key", func(t *testing.T) {
		db := setupTestDB(t)
		svc := createSEOService(db, nil)

		site := createTestSite(t, db, "disabled", "https://disabled.example.com/health")

		_, err := svc.Generate(testContext(), site.ID)
		assert.ErrorIs(t, err, service.ErrReportsDisabled)
	})

	t.Run("unknown site", func(t *testing.T) {
		db := setupTestDB(t)
		server := stubCompletion(t, "x", nil)
		svc := createSEOService(db, llm.NewWithBaseURL("sk-test", server.URL))

		_, err := svc.Generate(testContext(), uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestSEOService_Delete(t *testing.T) {
	db := setupTestDB(t)

	server := stubCompletion(t, "Short report.", nil)
	svc := createSEOService(db, llm.NewWithBaseURL("sk-test", server.URL))

	site := createTestSite(t, db, "deletable", "https://deletable.example.com/health")
	report, err := svc.Generate(testContext(), site.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(testContext(), report.ID))

	_, err = svc.GetByID(testContext(), report.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(testContext(), report.ID), service.ErrNotFound)
}
