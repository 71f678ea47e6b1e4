// Package api serves the tool runtime over HTTP: tool definitions, one-shot
// dispatch, recent activity and captured logs. It is the boundary an external
// agent loop calls into; nothing here decides WHEN a tool runs.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/activity"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/logbuf"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/pkg/protocol"
)

// ToolService is the interface the API server needs from the runtime.
type ToolService interface {
	Definitions() []protocol.ToolDefinition
	DispatchCall(ctx context.Context, call protocol.ToolCall) string
	QueryActivity(since time.Time, onlyFailed bool, limit int) []activity.Record
}

// LogQuerier abstracts log entry querying to avoid coupling to logbuf directly.
type LogQuerier interface {
	Query(since time.Time, minLevel slog.Level, limit int) []logbuf.Entry
}

// Config holds API server configuration.
type Config struct {
	Host string
	Port int
	Key  string // API key for Bearer auth; empty disables auth
}

// Server is the toolboxd REST API server.
type Server struct {
	svc    ToolService
	cfg    Config
	logger *slog.Logger
	logs   LogQuerier
	srv    *http.Server
}

// NewServer creates a new API server. logs may be nil.
func NewServer(svc ToolService, cfg Config, logger *slog.Logger, logs LogQuerier) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:    svc,
		cfg:    cfg,
		logger: logger,
		logs:   logs,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/tools", s.requireAuth(s.handleListTools))
	mux.HandleFunc("GET /api/tools/{name}", s.requireAuth(s.handleGetTool))
	mux.HandleFunc("POST /api/calls", s.requireAuth(s.handlePostCall))
	mux.HandleFunc("GET /api/activity", s.requireAuth(s.handleGetActivity))
	mux.HandleFunc("GET /api/logs", s.requireAuth(s.handleGetLogs))

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.corsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutCtx)
	}()

	s.logger.Info("api server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// --- Middleware ---

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Key == "" {
			next(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.cfg.Key {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	defs := s.svc.Definitions()
	if defs == nil {
		defs = []protocol.ToolDefinition{}
	}
	writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	for _, def := range s.svc.Definitions() {
		if def.Function.Name == name {
			writeJSON(w, http.StatusOK, def)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "tool not found"})
}

func (s *Server) handlePostCall(w http.ResponseWriter, r *http.Request) {
	var call protocol.ToolCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if call.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	// The envelope is the result, even for tool-level errors; HTTP status
	// stays 200 so callers distinguish transport failures from tool output.
	result := s.svc.DispatchCall(r.Context(), call)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, result)
}

// activityRecord is the wire form of an activity.Record.
type activityRecord struct {
	Time       time.Time `json:"time"`
	CallID     string    `json:"call_id"`
	Tool       string    `json:"tool"`
	DurationMS int64     `json:"duration_ms"`
	OK         bool      `json:"ok"`
	Summary    string    `json:"summary,omitempty"`
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	onlyFailed := false
	if f := r.URL.Query().Get("failed"); f != "" {
		if b, err := strconv.ParseBool(f); err == nil {
			onlyFailed = b
		}
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			since = time.UnixMilli(ms)
		}
	}

	records := s.svc.QueryActivity(since, onlyFailed, limit)
	out := make([]activityRecord, len(records))
	for i, rec := range records {
		out[i] = activityRecord{
			Time:       rec.Time,
			CallID:     rec.CallID,
			Tool:       rec.Tool,
			DurationMS: rec.Duration.Milliseconds(),
			OK:         rec.OK,
			Summary:    rec.Summary,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeJSON(w, http.StatusOK, []logbuf.Entry{})
		return
	}

	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	minLevel := slog.LevelDebug
	if lvl := r.URL.Query().Get("level"); lvl != "" {
		switch strings.ToLower(lvl) {
		case "info":
			minLevel = slog.LevelInfo
		case "warn":
			minLevel = slog.LevelWarn
		case "error":
			minLevel = slog.LevelError
		}
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			since = time.UnixMilli(ms)
		}
	}

	entries := s.logs.Query(since, minLevel, limit)
	if entries == nil {
		entries = []logbuf.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
