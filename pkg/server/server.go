// Package server exposes the simulation engine over HTTP: one endpoint to
// run a simulation, read endpoints for the equipment catalog and the stored
// run history, plus health and Prometheus metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-playground/validator/v10"
	"github.com/gridtwin/gridtwin/pkg/common"
	"github.com/gridtwin/gridtwin/pkg/log"
	"github.com/gridtwin/gridtwin/pkg/metrics"
	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/storage"
	"github.com/levenlabs/go-lflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// tokenVerifier is a function that validates a raw OIDC ID token.
type tokenVerifier func(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)

// Server handles the HTTP API for the GridTwin service. It orchestrates
// interactions between the equipment registry, the simulation engine and
// storage.
type Server struct {
	registry *registry.Registry
	storage  storage.Database
	metrics  *metrics.Registry
	validate *validator.Validate

	listenAddr string
	httpServer *http.Server

	oidcAudience string
	oidcVerifier tokenVerifier
	bypassAuth   bool
	serverName   string
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(r *registry.Registry, db storage.Database, m *metrics.Registry) *Server {
	srv := &Server{
		registry:   r,
		storage:    db,
		metrics:    m,
		validate:   validator.New(),
		serverName: "gridtwin",
	}
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	oidcAudience := lflag.String("oidc-audience", "", "audience/client ID to validate for API bearer tokens")
	bypassAuth := lflag.Bool("bypass-auth", false, "Disable API authentication (development only)")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		srv.bypassAuth = *bypassAuth
		if *oidcAudience != "" {
			ctx := oidc.ClientContext(context.Background(), common.HTTPClient(time.Minute))
			provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
			if err != nil {
				log.Ctx(ctx).Error("failed to initialize Google OIDC provider", slog.Any("error", err))
				os.Exit(1)
			}
			srv.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: *oidcAudience}).Verify
			srv.oidcAudience = *oidcAudience
		} else if !srv.bypassAuth {
			log.Ctx(context.Background()).Warn("no oidc-audience configured, API requests will be rejected (use --bypass-auth for local development)")
		}
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/simulate", s.handleSimulate)
	apiMux.HandleFunc("GET /api/equipment", s.handleEquipmentCatalog)
	apiMux.HandleFunc("GET /api/simulations", s.handleListSimulations)
	apiMux.HandleFunc("GET /api/simulations/{id}", s.handleGetSimulation)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.authMiddleware(apiMux))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	return s.revisionMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(s.metricsMiddleware(mux))))
}

// Run starts the HTTP server and blocks until the context is canceled or an
// error occurs. It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capturing server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Context canceled, shut down gracefully
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}{Status: "ok", Version: common.Version()})
	if err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware tracks request counts, latencies and in-flight requests.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		s.metrics.HTTPRequestsInFlight.Inc()
		defer s.metrics.HTTPRequestsInFlight.Dec()

		wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		s.metrics.RecordHTTPRequest(r.Method, metricsPath(r.URL.Path), strconv.Itoa(wrapper.statusCode), time.Since(start))
	})
}

// statusResponseWriter wraps http.ResponseWriter to capture the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// metricsPath collapses per-record URLs so that simulation IDs don't fan out
// into one Prometheus series each.
func metricsPath(path string) string {
	if strings.HasPrefix(path, "/api/simulations/") {
		return "/api/simulations/{id}"
	}
	return path
}
