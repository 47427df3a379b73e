package service_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/integration/hubspot"
	"github.com/visionary-advance/agency-api/internal/repository"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createHubSpotService(db *gorm.DB, client *hubspot.Client) *service.HubSpotService {
	return service.NewHubSpotService(
		repository.NewLeadRepository(db),
		repository.NewActivityRepository(db),
		client,
		time.Hour,
		zap.NewNop(),
	)
}

// stubHubSpot answers the contact search with "not found" and creates
// contacts with sequential ids, counting the creates.
func stubHubSpot(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var creates atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/contacts/search":
			json.NewEncoder(w).Encode(map[string]interface{}{"total": 0, "results": []interface{}{}})
		case "/crm/v3/objects/contacts":
			n := creates.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"id": strconv.FormatInt(n, 10)})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)
	return server, &creates
}

func TestHubSpotService_SyncStaleLeads(t *testing.T) {
	t.Run("pushes never-synced and stale leads", func(t *testing.T) {
		db := setupTestDB(t)
		server, creates := stubHubSpot(t)
		svc := createHubSpotService(db, hubspot.NewWithBaseURL("pat-token", server.URL))

		never := createTestLead(t, db, "never@example.com")
		stale := createTestLead(t, db, "stale@example.com")
		old := time.Now().Add(-2 * time.Hour)
		require.NoError(t, db.Model(stale).Update("hubspot_synced_at", old).Error)
		fresh := createTestLead(t, db, "fresh@example.com")
		require.NoError(t, db.Model(fresh).Update("hubspot_synced_at", time.Now()).Error)

		synced, err := svc.SyncStaleLeads(testContext())

		require.NoError(t, err)
		assert.Equal(t, 2, synced)
		assert.Equal(t, int64(2), creates.Load())

		var reloaded domain.Lead
		require.NoError(t, db.First(&reloaded, "id = ?", never.ID).Error)
		require.NotNil(t, reloaded.HubSpotSyncedAt)
		assert.WithinDuration(t, time.Now(), *reloaded.HubSpotSyncedAt, time.Minute)

		var activity domain.Activity
		require.NoError(t, db.Where("lead_id = ? AND type = ?", never.ID, domain.ActivityHubSpotSync).First(&activity).Error)
		assert.Equal(t, "system", activity.ActorName)
	})

	t.Run("a failing lead does not stop the batch", func(t *testing.T) {
		db := setupTestDB(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/crm/v3/objects/contacts/search":
				json.NewEncoder(w).Encode(map[string]interface{}{"total": 0, "results": []interface{}{}})
			case "/crm/v3/objects/contacts":
				var body struct {
					Properties map[string]string `json:"properties"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				if body.Properties["email"] == "broken@example.com" {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				json.NewEncoder(w).Encode(map[string]string{"id": "1"})
			}
		}))
		t.Cleanup(server.Close)
		svc := createHubSpotService(db, hubspot.NewWithBaseURL("pat-token", server.URL))

		createTestLead(t, db, "broken@example.com")
		createTestLead(t, db, "working@example.com")

		synced, err := svc.SyncStaleLeads(testContext())

		require.NoError(t, err)
		assert.Equal(t, 1, synced)
	})

	t.Run("no client means sync is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		svc := createHubSpotService(db, nil)

		createTestLead(t, db, "ignored@example.com")

		synced, err := svc.SyncStaleLeads(testContext())

		require.NoError(t, err)
		assert.Equal(t, 0, synced)
	})
}

func TestHubSpotService_SyncLead(t *testing.T) {
	db := setupTestDB(t)

	var lifecycle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/contacts/search":
			json.NewEncoder(w).Encode(map[string]interface{}{"total": 0, "results": []interface{}{}})
		case "/crm/v3/objects/contacts":
			var body struct {
				Properties map[string]string `json:"properties"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			lifecycle = body.Properties["lifecyclestage"]
			json.NewEncoder(w).Encode(map[string]string{"id": "42"})
		}
	}))
	t.Cleanup(server.Close)
	svc := createHubSpotService(db, hubspot.NewWithBaseURL("pat-token", server.URL))

	t.Run("open leads map to the lead lifecycle", func(t *testing.T) {
		lead := createTestLead(t, db, "open@example.com")
		require.NoError(t, svc.SyncLead(testContext(), lead))
		assert.Equal(t, "lead", lifecycle)
	})

	t.Run("clients map to the customer lifecycle", func(t *testing.T) {
		lead := createTestLead(t, db, "client@example.com")
		require.NoError(t, db.Model(lead).Update("is_client", true).Error)
		lead.IsClient = true

		require.NoError(t, svc.SyncLead(testContext(), lead))
		assert.Equal(t, "customer", lifecycle)
	})
}
