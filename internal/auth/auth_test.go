package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/auth"
	"github.com/visionary-advance/agency-api/internal/config"
	"go.uber.org/zap"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:       "test-secret",
		TokenTTLMinutes: 60,
		AdminEmails:     []string{"admin@example.com"},
	}
}

func TestTokenIssuer(t *testing.T) {
	issuer := auth.NewTokenIssuer(testAuthConfig())

	t.Run("issue and validate round trip", func(t *testing.T) {
		token, err := issuer.Issue("admin@example.com", "Ada Admin")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		user, err := issuer.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", user.Email)
		assert.Equal(t, "Ada Admin", user.DisplayName)
		assert.False(t, user.System)
	})

	t.Run("allow-list is case-insensitive", func(t *testing.T) {
		_, err := issuer.Issue("ADMIN@Example.COM", "Ada Admin")
		assert.NoError(t, err)
	})

	t.Run("rejects emails off the allow-list", func(t *testing.T) {
		_, err := issuer.Issue("stranger@example.com", "Stranger")
		assert.ErrorIs(t, err, auth.ErrNotAdmin)
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		_, err := issuer.Validate("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects tokens signed with a different secret", func(t *testing.T) {
		other := auth.NewTokenIssuer(&config.AuthConfig{
			JWTSecret:       "other-secret",
			TokenTTLMinutes: 60,
			AdminEmails:     []string{"admin@example.com"},
		})
		token, err := other.Issue("admin@example.com", "Ada Admin")
		require.NoError(t, err)

		_, err = issuer.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("removing an email revokes live tokens", func(t *testing.T) {
		cfg := testAuthConfig()
		revocable := auth.NewTokenIssuer(cfg)
		token, err := revocable.Issue("admin@example.com", "Ada Admin")
		require.NoError(t, err)

		cfg.AdminEmails = nil

		_, err = revocable.Validate(token)
		assert.ErrorIs(t, err, auth.ErrNotAdmin)
	})
}

func TestAuthenticateMiddleware(t *testing.T) {
	cfg := &config.Config{
		Auth:   *testAuthConfig(),
		ApiKey: config.ApiKeyConfig{Value: "system-key"},
	}
	middleware := auth.NewMiddleware(cfg, zap.NewNop())

	var seenUser *auth.UserContext
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid api key", func(t *testing.T) {
		seenUser = nil
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		req.Header.Set("x-api-key", "system-key")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seenUser)
		assert.True(t, seenUser.System)
	})

	t.Run("wrong api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		req.Header.Set("x-api-key", "wrong-key")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		seenUser = nil
		token, err := middleware.Issuer().Issue("admin@example.com", "Ada Admin")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seenUser)
		assert.Equal(t, "admin@example.com", seenUser.Email)
		assert.False(t, seenUser.System)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestActorName(t *testing.T) {
	cases := []struct {
		name     string
		user     *auth.UserContext
		expected string
	}{
		{"display name wins", &auth.UserContext{Email: "a@b.com", DisplayName: "Ada"}, "Ada"},
		{"falls back to email", &auth.UserContext{Email: "a@b.com"}, "a@b.com"},
		{"falls back to system", &auth.UserContext{}, "system"},
		{"no user context", nil, "system"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			if tc.user != nil {
				ctx = auth.WithUserContext(ctx, tc.user)
			}
			assert.Equal(t, tc.expected, auth.ActorName(ctx))
		})
	}
}
