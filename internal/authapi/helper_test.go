package authapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          map[string]any
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeAPI) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// StartAccountServer serves the account API. With status != 0 every request is
// answered with status and body.
func StartAccountServer(t *testing.T, status int, body string) (*httptest.Server, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{status: status, body: body}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		api.mu.Lock()
		api.requests = append(api.requests, rec)
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if api.status != 0 {
			w.WriteHeader(api.status)
			_, _ = w.Write([]byte(api.body))
			return
		}

		switch r.Method + " " + r.URL.Path {
		case "POST /api/v1/auth/signup":
			w.WriteHeader(http.StatusCreated)
		case "POST /api/v1/auth/login":
			_, _ = w.Write([]byte(`{"data": {"api_token": "token_123"}}`))
		case "GET /api/v1/user/me":
			_, _ = w.Write([]byte(`{"data": {"name": "Jane", "profile": {"birthdate": "1990-01-01", "location": null}}}`))
		case "PATCH /api/v1/user/me":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return server, api
}
