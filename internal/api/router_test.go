package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

// NewRouter registers Prometheus collectors, so it is built once per test binary.
func TestNewRouter(t *testing.T) {
	e := NewRouter(Deps{MaxUploadBytes: 1 << 20, Log: zerolog.Nop()})

	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /health/ready",
		"GET /metrics",
		"POST /auth/otp",
		"POST /auth/otp/verify",
		"POST /auth/login",
		"POST /auth/logout",
		"GET /auth/session",
		"PATCH /auth/metadata",
		"GET /v1/session/stream",
		"POST /v1/applications",
		"GET /v1/applications",
		"GET /v1/applications/:id",
		"GET /v1/admin/applications",
		"GET /v1/admin/applications/:id",
		"PATCH /v1/admin/applications/:id/status",
		"POST /v1/admin/providers",
	} {
		if !registered[want] {
			t.Errorf("route %q not registered", want)
		}
	}

	t.Run("liveness", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	for _, path := range []string{"/v1/applications", "/v1/admin/applications", "/auth/session"} {
		t.Run("unauthenticated "+path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
