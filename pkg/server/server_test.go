package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gridtwin/gridtwin/pkg/common"
	"github.com/gridtwin/gridtwin/pkg/log"
	"github.com/gridtwin/gridtwin/pkg/metrics"
	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// the failure-path tests intentionally trip auth and storage warnings
func init() {
	log.SetDefaultLogLevel(slog.LevelError)
}

// newTestServer builds a Server with auth bypassed, ready for handler tests.
func newTestServer(t *testing.T, db storage.Database) *Server {
	t.Helper()
	reg, err := registry.New(registry.DefaultTuning())
	require.NoError(t, err)
	return &Server{
		registry:   reg,
		storage:    db,
		metrics:    metrics.NewRegistry(),
		validate:   validator.New(),
		listenAddr: ":8080",
		bypassAuth: true,
		serverName: "gridtwin-test",
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	handler := srv.setupHandler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"`+common.Version()+`"}`, w.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, nil)
	handler := srv.setupHandler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "max-age=63072000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "gridtwin-test", w.Header().Get("Server"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	handler := srv.setupHandler()

	// generate one measured request first
	req := httptest.NewRequest("GET", "/healthz", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "gridtwin_http_requests_total"),
		"metrics exposition should include the request counter")
}

func TestMetricsPath(t *testing.T) {
	assert.Equal(t, "/api/simulate", metricsPath("/api/simulate"))
	assert.Equal(t, "/api/simulations", metricsPath("/api/simulations"))
	assert.Equal(t, "/api/simulations/{id}", metricsPath("/api/simulations/123e4567"))
	assert.Equal(t, "/healthz", metricsPath("/healthz"))
}

func TestUnknownAPIRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	handler := srv.setupHandler()

	req := httptest.NewRequest("GET", "/api/unknown", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSONError(w, "boom", http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"boom"}`, w.Body.String())
}
