// Package web implements serve mode: an HTTP server exposing the latest
// validation report, with periodic re-validation on a cron schedule.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"icslint/internal/config"
	appLog "icslint/internal/log"
	"icslint/internal/model"
	"icslint/internal/runner"
)

// Server exposes the validation report over HTTP and keeps it fresh by
// re-running validation on the configured cron schedule.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	mu        sync.RWMutex
	report    *model.Report
	updatedAt time.Time
	runErr    error
}

// NewServer constructs a Server. Call Refresh (or Start) to populate the
// initial report.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		report: model.NewReport(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the server's http.Handler, with basic auth applied when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Refresh re-runs validation over the configured patterns and swaps in the
// new report. A run-level fault keeps the previous report and is surfaced in
// the report endpoint.
func (s *Server) Refresh() {
	report, err := runner.Run(runner.Options{
		Patterns:   s.cfg.Patterns,
		ReportPath: s.cfg.ReportPath,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
	s.runErr = err
	if err != nil {
		appLog.Error("validation run failed", err)
		return
	}
	s.report = report
}

// Start runs the server until ctx is canceled: an initial validation pass,
// a cron-scheduled refresh, and the HTTP listener.
func Start(ctx context.Context, cfg *config.Config) error {
	s := NewServer(cfg)
	s.Refresh()

	c := cron.New()
	if _, err := c.AddFunc(cfg.RefreshCron, s.Refresh); err != nil {
		return errors.New("invalid refresh schedule: " + err.Error())
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "refresh", cfg.RefreshCron)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/report", s.handleReport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// reportResponse is the serve-mode envelope around the report artifact.
type reportResponse struct {
	UpdatedAt     time.Time                   `json:"updated_at"`
	TotalErrors   int                         `json:"total_errors"`
	TotalWarnings int                         `json:"total_warnings"`
	RunError      string                      `json:"run_error,omitempty"`
	Files         map[string]model.FileResult `json:"files"`
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := reportResponse{
		UpdatedAt:     s.updatedAt,
		TotalErrors:   s.report.TotalErrors(),
		TotalWarnings: s.report.TotalWarnings(),
		Files:         s.report.Files,
	}
	if s.runErr != nil {
		resp.RunError = s.runErr.Error()
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		appLog.Error("failed to encode report response", err)
	}
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password is treated as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="icslint", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
