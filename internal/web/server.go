// Package web serves the status console over HTTP.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/KagamiChan/go-ntp-client/internal/config"
	"github.com/KagamiChan/go-ntp-client/internal/logger"
	timehealth "github.com/KagamiChan/go-ntp-client/internal/time"
)

// Server provides the status HTTP server
type Server struct {
	cfg        *config.Web
	timeHealth *timehealth.TimeHealth
	router     *mux.Router
	server     *http.Server
	log        *logger.Logger
	version    string
	startedAt  time.Time
}

// NewServer creates a new status server
func NewServer(cfg *config.Web, th *timehealth.TimeHealth, version string, log *logger.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		timeHealth: th,
		router:     mux.NewRouter(),
		log:        log,
		version:    version,
		startedAt:  time.Now(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/api/time", s.handleTime).Methods(http.MethodGet)
	s.router.HandleFunc("/api/logs", s.handleLogs).Methods(http.MethodGet)
}

// Start starts the web server in the background
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Bind, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.log.Info("Web console listening", "addr", addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("Web server failed", "error", err)
		}
	}()

	return nil
}

// Shutdown stops the web server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

// statusResponse is the /api/status payload
type statusResponse struct {
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	TimeHealthy   bool   `json:"time_healthy"`
	OffsetMs      int64  `json:"offset_ms"`
	LastServer    string `json:"last_server,omitempty"`
	LastCheck     string `json:"last_check,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.timeHealth.GetStatus()

	resp := statusResponse{
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		TimeHealthy:   status.Healthy,
		OffsetMs:      status.Offset.Milliseconds(),
		LastServer:    status.LastServer,
	}
	if !status.LastCheck.IsZero() {
		resp.LastCheck = status.LastCheck.UTC().Format(time.RFC3339)
	}

	writeJSON(w, resp)
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.timeHealth.GetTimeInfo())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	n := 100
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	entries := logger.GetRecentLogs(n)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain")
		var b strings.Builder
		for _, e := range entries {
			b.WriteString(logger.FormatEntry(e))
			b.WriteByte('\n')
		}
		fmt.Fprint(w, b.String())
		return
	}

	writeJSON(w, entries)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
	}
}
