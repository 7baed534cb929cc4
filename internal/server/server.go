package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/logger"
	"github.com/newsdesk-hq/daily-clipper/internal/orchestrator"
)

//go:embed dashboard.html
var dashboardHTML []byte

// logTailSize is how many recent log lines /api/logs returns.
const logTailSize = 20

// Runner is the orchestrator surface the dashboard drives.
type Runner interface {
	Start(ctx context.Context) (string, error)
	Stop() error
	Snapshot() domain.RunSnapshot
	Subscribe() (<-chan domain.ProgressEvent, func())
	LastReport() string
}

// History lists previously stored runs, most recent first.
type History interface {
	Runs() ([]domain.RunSnapshot, error)
}

// Server exposes the collection dashboard and its JSON API.
type Server struct {
	runner  Runner
	history History
	ring    *logger.MemoryLog
	log     logger.Logger
}

// New builds a Server. history and ring may be nil; the matching
// endpoints then return empty payloads.
func New(runner Runner, history History, ring *logger.MemoryLog, log logger.Logger) *Server {
	return &Server{
		runner:  runner,
		history: history,
		ring:    ring,
		log:     logger.Ensure(log),
	}
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler returns the routed HTTP handler, CORS included.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/start", s.handleStart)
	mux.HandleFunc("/api/stop", s.handleStop)
	mux.HandleFunc("/api/download", s.handleDownload)
	mux.HandleFunc("/api/logs", s.handleLogs)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/events", s.handleEvents)

	return corsMiddleware(mux)
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.InfoObj("dashboard listening", "server_start", map[string]any{"addr": addr})
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(dashboardHTML)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.runner.Snapshot())
}

// StartResponse acknowledges an accepted run.
type StartResponse struct {
	RunID string `json:"run_id"`
	State string `json:"state"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	runID, err := s.runner.Start(r.Context())
	if errors.Is(err, orchestrator.ErrAlreadyRunning) {
		s.writeError(w, http.StatusConflict, "already_running", err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to start run: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusAccepted, StartResponse{
		RunID: runID,
		State: string(domain.RunRunning),
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	err := s.runner.Stop()
	if errors.Is(err, orchestrator.ErrNotRunning) {
		s.writeError(w, http.StatusConflict, "not_running", err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to stop run: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"state": "stopping"})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	path := s.runner.LastReport()
	if path == "" {
		s.writeError(w, http.StatusNotFound, "no_report", "No report has been generated yet")
		return
	}
	if _, err := os.Stat(path); err != nil {
		s.writeError(w, http.StatusNotFound, "no_report", "Report file is missing: "+path)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// LogsResponse is the /api/logs payload.
type LogsResponse struct {
	Lines []string `json:"lines"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var lines []string
	if s.ring != nil {
		lines = s.ring.Tail(logTailSize)
	}
	if lines == nil {
		lines = []string{}
	}
	s.writeJSON(w, http.StatusOK, LogsResponse{Lines: lines})
}

// RunsResponse is the /api/runs payload.
type RunsResponse struct {
	Runs []domain.RunSnapshot `json:"runs"`
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	runs := []domain.RunSnapshot{}
	if s.history != nil {
		stored, err := s.history.Runs()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list runs: "+err.Error())
			return
		}
		if stored != nil {
			runs = stored
		}
	}
	s.writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming is not supported")
		return
	}

	events, cancel := s.runner.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// replay current state so late subscribers see where the run is
	if raw, err := json.Marshal(s.runner.Snapshot()); err == nil {
		fmt.Fprintf(w, "event: status\ndata: %s\n\n", raw)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			raw, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	s.writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
