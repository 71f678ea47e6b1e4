package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/activity"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/eval"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/logbuf"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/tool"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/pkg/protocol"
)

// runtimeService implements ToolService over real runtime pieces, the same
// way cmd/toolboxd wires it.
type runtimeService struct {
	reg  *tool.Registry
	disp *tool.Dispatcher
	ring *activity.Log
}

func (s *runtimeService) Definitions() []protocol.ToolDefinition { return s.reg.Definitions() }

func (s *runtimeService) DispatchCall(ctx context.Context, call protocol.ToolCall) string {
	return s.disp.DispatchCall(ctx, call)
}

func (s *runtimeService) QueryActivity(since time.Time, onlyFailed bool, limit int) []activity.Record {
	return s.ring.Query(since, onlyFailed, limit)
}

func newTestService() *runtimeService {
	reg := tool.NewRegistry()
	reg.Register(&tool.CalculatorTool{Eval: eval.New()})
	reg.Register(&tool.DatetimeTool{})
	ring := activity.NewLog(16)
	disp := tool.NewDispatcher(reg,
		tool.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		tool.WithActivityLog(ring),
	)
	return &runtimeService{reg: reg, disp: disp, ring: ring}
}

func newTestServer(svc ToolService, key string, logs LogQuerier) *Server {
	return NewServer(svc, Config{Host: "127.0.0.1", Port: 0, Key: key},
		slog.New(slog.NewTextHandler(io.Discard, nil)), logs)
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "GET", "/api/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestListTools(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "GET", "/api/tools", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var defs []protocol.ToolDefinition
	if err := json.NewDecoder(w.Body).Decode(&defs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions", len(defs))
	}
	if defs[0].Function.Name != "calculator" || defs[1].Function.Name != "get_current_datetime" {
		t.Errorf("definition order: %q, %q", defs[0].Function.Name, defs[1].Function.Name)
	}
}

func TestGetTool(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "GET", "/api/tools/calculator", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var def protocol.ToolDefinition
	json.NewDecoder(w.Body).Decode(&def)
	if def.Type != "function" || def.Function.Name != "calculator" {
		t.Errorf("definition = %+v", def)
	}
}

func TestGetTool_NotFound(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "GET", "/api/tools/ghost", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPostCall(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	body := `{"id":"call_1","name":"calculator","arguments":{"expression":"6 * 7"}}`
	w := doRequest(t, srv, "POST", "/api/calls", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var env map[string]any
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env["result"] != float64(42) {
		t.Errorf("result = %v", env["result"])
	}
}

func TestPostCall_UnknownToolIsStill200(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "POST", "/api/calls", `{"name":"ghost","arguments":{}}`)

	// Tool-level failures travel inside the envelope, not as HTTP status.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var env map[string]any
	json.NewDecoder(w.Body).Decode(&env)
	if env["error"] != "Unknown tool: ghost" {
		t.Errorf("error = %v", env["error"])
	}
}

func TestPostCall_InvalidJSON(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "POST", "/api/calls", "not json")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestPostCall_MissingName(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "POST", "/api/calls", `{"arguments":{"expression":"1"}}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["error"] != "name is required" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestGetActivity(t *testing.T) {
	svc := newTestService()
	srv := newTestServer(svc, "", nil)

	doRequest(t, srv, "POST", "/api/calls", `{"name":"calculator","arguments":{"expression":"1 + 1"}}`)
	doRequest(t, srv, "POST", "/api/calls", `{"name":"ghost","arguments":{}}`)

	w := doRequest(t, srv, "GET", "/api/activity", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var records []activityRecord
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Tool != "calculator" || !records[0].OK {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Tool != "ghost" || records[1].OK {
		t.Errorf("second record = %+v", records[1])
	}
	if records[0].CallID == "" || records[0].CallID == records[1].CallID {
		t.Errorf("call IDs not unique: %q, %q", records[0].CallID, records[1].CallID)
	}
}

func TestGetActivity_FailedFilter(t *testing.T) {
	svc := newTestService()
	srv := newTestServer(svc, "", nil)

	doRequest(t, srv, "POST", "/api/calls", `{"name":"calculator","arguments":{"expression":"1 + 1"}}`)
	doRequest(t, srv, "POST", "/api/calls", `{"name":"ghost","arguments":{}}`)

	w := doRequest(t, srv, "GET", "/api/activity?failed=true", "")
	var records []activityRecord
	json.NewDecoder(w.Body).Decode(&records)
	if len(records) != 1 || records[0].Tool != "ghost" {
		t.Errorf("records = %+v", records)
	}
}

func TestGetActivity_Empty(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "GET", "/api/activity", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestGetLogs(t *testing.T) {
	buf := logbuf.New(16)
	now := time.Now()
	buf.Add(logbuf.Entry{Time: now, Level: "INFO", Message: "started"})
	buf.Add(logbuf.Entry{Time: now, Level: "ERROR", Message: "broke"})

	srv := newTestServer(newTestService(), "", buf)
	w := doRequest(t, srv, "GET", "/api/logs?level=error", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var entries []logbuf.Entry
	json.NewDecoder(w.Body).Decode(&entries)
	if len(entries) != 1 || entries[0].Message != "broke" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestGetLogs_NilQuerier(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "GET", "/api/logs", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestAuth_Required(t *testing.T) {
	srv := newTestServer(newTestService(), "secret-key", nil)

	// No auth header
	w := doRequest(t, srv, "GET", "/api/tools", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no auth: status = %d, want 401", w.Code)
	}

	// Wrong key
	req := httptest.NewRequest("GET", "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", rec.Code)
	}

	// Correct key
	req = httptest.NewRequest("GET", "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("correct key: status = %d, want 200", rec.Code)
	}
}

func TestHealth_NoAuth(t *testing.T) {
	srv := newTestServer(newTestService(), "secret-key", nil)
	w := doRequest(t, srv, "GET", "/api/health", "")

	// Health should NOT require auth
	if w.Code != http.StatusOK {
		t.Errorf("health should not require auth, status = %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(newTestService(), "", nil)
	w := doRequest(t, srv, "OPTIONS", "/api/tools", "")

	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q", got)
	}
}
