package business

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/profile-session/internal/config"
)

const testToken = "token_123"

// startAccountServer serves the account API for the user jane@example.com/secret.
func startAccountServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.Method + " " + r.URL.Path {
		case "POST /api/v1/auth/signup":
			w.WriteHeader(http.StatusCreated)
		case "POST /api/v1/auth/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["email"] != "jane@example.com" || body["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message": "Invalid credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"data": {"api_token": "` + testToken + `"}}`))
		case "GET /api/v1/user/me", "PATCH /api/v1/user/me":
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error": "Unauthenticated"}`))
				return
			}
			_, _ = w.Write([]byte(`{"data": {"name": "Jane", "profile": {"birthdate": "1990-01-01", "location": "Berlin"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Remote:    config.Remote{BaseURL: baseURL + "/api/v1/", Timeout: 5 * time.Second},
		Freshness: config.Freshness{SoftTTL: 5 * time.Minute, HardTTL: 60 * time.Minute},
		Store:     config.Store{Type: config.StoreTypeMemory, Namespace: "test"},
		Watch:     config.Watch{Interval: 10 * time.Millisecond},
	}
}

// syncBuffer is written to by subscriber goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func parseEvents(t *testing.T, out string) []printedEvent {
	t.Helper()

	var events []printedEvent
	for doc := range strings.SplitSeq(out, "---\n") {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		var ev printedEvent
		require.NoError(t, yaml.Unmarshal([]byte(doc), &ev), "decoding %q", doc)
		events = append(events, ev)
	}

	return events
}

func eventNames(events []printedEvent) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	return names
}
