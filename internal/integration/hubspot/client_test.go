package hubspot_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/integration/hubspot"
)

func TestNew(t *testing.T) {
	assert.Nil(t, hubspot.New(""), "an empty token disables the client")
	assert.NotNil(t, hubspot.New("pat-token"))
	assert.Nil(t, hubspot.NewWithBaseURL("", "http://localhost"))
}

func TestFindContactByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/crm/v3/objects/contacts/search", r.URL.Path)
			assert.Equal(t, "Bearer pat-token", r.Header.Get("Authorization"))

			var body struct {
				FilterGroups []struct {
					Filters []struct {
						PropertyName string `json:"propertyName"`
						Operator     string `json:"operator"`
						Value        string `json:"value"`
					} `json:"filters"`
				} `json:"filterGroups"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.FilterGroups, 1)
			require.Len(t, body.FilterGroups[0].Filters, 1)
			assert.Equal(t, "email", body.FilterGroups[0].Filters[0].PropertyName)
			assert.Equal(t, "EQ", body.FilterGroups[0].Filters[0].Operator)
			assert.Equal(t, "lead@example.com", body.FilterGroups[0].Filters[0].Value)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"total": 1,
				"results": []map[string]interface{}{
					{"id": "12345", "properties": map[string]string{"email": "lead@example.com"}},
				},
			})
		}))
		defer server.Close()

		client := hubspot.NewWithBaseURL("pat-token", server.URL)
		contact, err := client.FindContactByEmail(context.Background(), "lead@example.com")

		require.NoError(t, err)
		require.NotNil(t, contact)
		assert.Equal(t, "12345", contact.ID)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"total": 0, "results": []interface{}{}})
		}))
		defer server.Close()

		client := hubspot.NewWithBaseURL("pat-token", server.URL)
		contact, err := client.FindContactByEmail(context.Background(), "nobody@example.com")

		require.NoError(t, err)
		assert.Nil(t, contact)
	})

	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := hubspot.NewWithBaseURL("bad-token", server.URL)
		_, err := client.FindContactByEmail(context.Background(), "lead@example.com")

		assert.ErrorContains(t, err, "401")
	})
}

func TestUpsertContact(t *testing.T) {
	t.Run("creates when no contact exists", func(t *testing.T) {
		var createdProps map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/crm/v3/objects/contacts/search":
				json.NewEncoder(w).Encode(map[string]interface{}{"total": 0, "results": []interface{}{}})
			case "/crm/v3/objects/contacts":
				assert.Equal(t, http.MethodPost, r.Method)
				var body struct {
					Properties map[string]string `json:"properties"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				createdProps = body.Properties
				json.NewEncoder(w).Encode(map[string]string{"id": "77001"})
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))
		defer server.Close()

		client := hubspot.NewWithBaseURL("pat-token", server.URL)
		id, err := client.UpsertContact(context.Background(), "new@example.com", map[string]string{
			"firstname": "New",
			"company":   "",
		})

		require.NoError(t, err)
		assert.Equal(t, "77001", id)
		assert.Equal(t, "new@example.com", createdProps["email"])
		assert.Equal(t, "New", createdProps["firstname"])
		assert.NotContains(t, createdProps, "company", "empty properties are not sent")
	})

	t.Run("patches the existing contact", func(t *testing.T) {
		var patchedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/crm/v3/objects/contacts/search":
				json.NewEncoder(w).Encode(map[string]interface{}{
					"total": 1,
					"results": []map[string]interface{}{
						{"id": "88002", "properties": map[string]string{"email": "old@example.com"}},
					},
				})
			case r.Method == http.MethodPatch:
				patchedPath = r.URL.Path
				json.NewEncoder(w).Encode(map[string]string{"id": "88002"})
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
		}))
		defer server.Close()

		client := hubspot.NewWithBaseURL("pat-token", server.URL)
		id, err := client.UpsertContact(context.Background(), "old@example.com", map[string]string{
			"lifecyclestage": "customer",
		})

		require.NoError(t, err)
		assert.Equal(t, "88002", id)
		assert.Equal(t, "/crm/v3/objects/contacts/88002", patchedPath)
	})

	t.Run("search failure aborts the upsert", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := hubspot.NewWithBaseURL("pat-token", server.URL)
		_, err := client.UpsertContact(context.Background(), "x@example.com", nil)

		assert.Error(t, err)
	})
}
