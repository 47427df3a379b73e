package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionary-advance/agency-api/internal/notify"
	"go.uber.org/zap"
)

func captureWebhook(t *testing.T) (*httptest.Server, *[]byte) {
	t.Helper()
	var captured []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured = body
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func TestDiscordSender(t *testing.T) {
	cases := []struct {
		level string
		color float64
	}{
		{"info", 0x3498db},
		{"warning", 0xf1c40f},
		{"critical", 0xe74c3c},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			server, captured := captureWebhook(t)
			sender := notify.NewDiscordSender(server.URL)

			err := sender.Send(context.Background(), notify.Event{
				Title:   "Site down",
				Message: "prod is unreachable",
				Level:   tc.level,
			})
			require.NoError(t, err)

			var payload struct {
				Embeds []struct {
					Title       string  `json:"title"`
					Description string  `json:"description"`
					Color       float64 `json:"color"`
				} `json:"embeds"`
			}
			require.NoError(t, json.Unmarshal(*captured, &payload))
			require.Len(t, payload.Embeds, 1)
			assert.Equal(t, "Site down", payload.Embeds[0].Title)
			assert.Equal(t, "prod is unreachable", payload.Embeds[0].Description)
			assert.Equal(t, tc.color, payload.Embeds[0].Color)
		})
	}
}

func TestSlackSender(t *testing.T) {
	cases := []struct {
		level    string
		expected string
	}{
		{"info", "*Site down*\nprod is unreachable"},
		{"warning", ":warning: *Site down*\nprod is unreachable"},
		{"critical", ":rotating_light: *Site down*\nprod is unreachable"},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			server, captured := captureWebhook(t)
			sender := notify.NewSlackSender(server.URL)

			err := sender.Send(context.Background(), notify.Event{
				Title:   "Site down",
				Message: "prod is unreachable",
				Level:   tc.level,
			})
			require.NoError(t, err)

			var payload struct {
				Text string `json:"text"`
			}
			require.NoError(t, json.Unmarshal(*captured, &payload))
			assert.Equal(t, tc.expected, payload.Text)
		})
	}
}

func TestSenderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := notify.NewDiscordSender(server.URL).Send(context.Background(), notify.Event{Title: "x"})
	assert.ErrorContains(t, err, "429")
}

func TestNotifierDispatchSwallowsFailures(t *testing.T) {
	server, captured := captureWebhook(t)

	// One sender that cannot connect and one that works
	dead := notify.NewSlackSender("http://127.0.0.1:1")
	live := notify.NewDiscordSender(server.URL)
	notifier := notify.NewNotifier(zap.NewNop(), dead, live)

	notifier.Dispatch(context.Background(), notify.Event{
		Title:   "Site recovered",
		Message: "all good",
		Level:   "info",
	})

	assert.NotEmpty(t, *captured, "healthy channels still receive the event after a failed one")
}
