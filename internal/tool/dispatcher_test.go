package tool

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/activity"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/pkg/protocol"
)

// decodeEnvelope parses a tool result as a JSON object.
func decodeEnvelope(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("invalid JSON envelope %q: %v", s, err)
	}
	return m
}

type panicTool struct{}

func (p *panicTool) Name() string               { return "bomb" }
func (p *panicTool) Description() string        { return "panics" }
func (p *panicTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (p *panicTool) Execute(_ context.Context, _ map[string]any) (string, error) {
	panic("boom")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatch_ReturnsToolResultVerbatim(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{name: "echo", result: `{"ok": true}`})
	d := NewDispatcher(reg, WithLogger(quietLogger()))

	got := d.Dispatch(context.Background(), "echo", nil)
	if got != `{"ok": true}` {
		t.Errorf("Dispatch = %q", got)
	}
}

func TestDispatch_UnknownTool(t *testing.T) {
	d := NewDispatcher(NewRegistry(), WithLogger(quietLogger()))

	env := decodeEnvelope(t, d.Dispatch(context.Background(), "nope", nil))
	if env["error"] != "Unknown tool: nope" {
		t.Errorf("error = %v", env["error"])
	}
}

func TestDispatch_TruncatesLongErrors(t *testing.T) {
	long := strings.Repeat("x", 250)
	reg := NewRegistry()
	reg.Register(&stubTool{name: "fail", err: errors.New(long)})
	d := NewDispatcher(reg, WithLogger(quietLogger()))

	env := decodeEnvelope(t, d.Dispatch(context.Background(), "fail", nil))
	want := strings.Repeat("x", 200) + "..."
	if env["error"] != want {
		t.Errorf("error = %q, want %d chars + ellipsis", env["error"], 200)
	}
}

func TestDispatch_ShortErrorsKeptIntact(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{name: "fail", err: errors.New("it broke")})
	d := NewDispatcher(reg, WithLogger(quietLogger()))

	env := decodeEnvelope(t, d.Dispatch(context.Background(), "fail", nil))
	if env["error"] != "it broke" {
		t.Errorf("error = %v", env["error"])
	}
}

func TestDispatch_RecoversPanic(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&panicTool{})
	d := NewDispatcher(reg, WithLogger(quietLogger()))

	env := decodeEnvelope(t, d.Dispatch(context.Background(), "bomb", nil))
	if env["error"] != "Tool panicked: boom" {
		t.Errorf("error = %v", env["error"])
	}

	// The dispatcher must stay usable afterwards.
	reg.Register(&stubTool{name: "echo", result: "ok"})
	if got := d.Dispatch(context.Background(), "echo", nil); got != "ok" {
		t.Errorf("dispatch after panic = %q", got)
	}
}

func TestDispatch_RateLimitsDangerousTools(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{name: "shell_command", result: "ran"})
	reg.Register(&stubTool{name: "calculator", result: "42"})
	d := NewDispatcher(reg, WithLogger(quietLogger()), WithRateLimit(1))

	if got := d.Dispatch(context.Background(), "shell_command", nil); got != "ran" {
		t.Fatalf("first dispatch = %q", got)
	}
	env := decodeEnvelope(t, d.Dispatch(context.Background(), "shell_command", nil))
	if env["error"] != "Rate limit exceeded for tool: shell_command" {
		t.Errorf("error = %v", env["error"])
	}

	// Safe tools are never throttled.
	for i := 0; i < 5; i++ {
		if got := d.Dispatch(context.Background(), "calculator", nil); got != "42" {
			t.Fatalf("safe dispatch %d = %q", i, got)
		}
	}
}

func TestDispatchCall(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{name: "echo", result: "ok"})
	d := NewDispatcher(reg, WithLogger(quietLogger()))

	call := protocol.ToolCall{ID: "call_1", Name: "echo", Arguments: map[string]any{}}
	if got := d.DispatchCall(context.Background(), call); got != "ok" {
		t.Errorf("DispatchCall = %q", got)
	}
}

func TestDispatch_RecordsActivity(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{name: "echo", result: "ok"})
	log := activity.NewLog(8)
	d := NewDispatcher(reg, WithLogger(quietLogger()), WithActivityLog(log))

	d.Dispatch(context.Background(), "echo", nil)
	d.Dispatch(context.Background(), "nope", nil)

	records := log.Query(time.Time{}, false, 0)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Tool != "echo" || !records[0].OK {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Tool != "nope" || records[1].OK {
		t.Errorf("second record = %+v", records[1])
	}
	if records[0].CallID == "" || records[0].CallID == records[1].CallID {
		t.Error("call IDs must be unique and non-empty")
	}
}
