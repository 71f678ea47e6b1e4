package tool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/activity"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/pkg/protocol"
)

// maxErrorLen bounds unexpected error text before it reaches the model.
const maxErrorLen = 200

// Dispatcher wraps a Registry with the guarantees a model-facing loop
// needs: any input yields a bounded JSON string, panics are contained,
// every call is logged and recorded, dangerous tools are rate limited.
type Dispatcher struct {
	reg      *Registry
	logger   *slog.Logger
	activity *activity.Log
	limiter  *rate.Limiter
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the structured logger used for dispatch lines.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// WithActivityLog records every dispatch into the given ring.
func WithActivityLog(a *activity.Log) DispatcherOption {
	return func(d *Dispatcher) { d.activity = a }
}

// WithRateLimit throttles dangerous tools to perMinute invocations,
// with a burst of the same size. Zero or negative disables the limit.
func WithRateLimit(perMinute int) DispatcherOption {
	return func(d *Dispatcher) {
		if perMinute > 0 {
			d.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
		}
	}
}

// NewDispatcher creates a Dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{reg: reg, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch executes the named tool and always returns a JSON envelope.
// Tools format their own expected-failure envelopes; the {"error": ...}
// wrapping here is the backstop for unknown tools, panics, rate limits
// and errors a tool did not translate itself.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params map[string]any) string {
	callID := uuid.NewString()
	start := time.Now()

	t, ok := d.reg.Get(name)
	if !ok {
		d.record(callID, name, start, false, "unknown tool")
		return errorJSON("Unknown tool: " + name)
	}

	if d.limiter != nil && IsDangerous(name) && !d.limiter.Allow() {
		d.record(callID, name, start, false, "rate limited")
		return errorJSON("Rate limit exceeded for tool: " + name)
	}

	result, err := d.execute(ctx, t, params)
	if err != nil {
		msg := truncateError(err.Error())
		d.record(callID, name, start, false, msg)
		return errorJSON(msg)
	}

	d.record(callID, name, start, true, "")
	return result
}

// DispatchCall executes a model-issued tool call.
func (d *Dispatcher) DispatchCall(ctx context.Context, call protocol.ToolCall) string {
	return d.Dispatch(ctx, call.Name, call.Arguments)
}

// execute isolates the recover so a panicking tool cannot take down the
// caller's loop.
func (d *Dispatcher) execute(ctx context.Context, t Tool, params map[string]any) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Tool panicked: %v", r)
		}
	}()
	return t.Execute(ctx, params)
}

func (d *Dispatcher) record(callID, name string, start time.Time, ok bool, summary string) {
	dur := time.Since(start)
	d.logger.Info("tool dispatch",
		"tool", name,
		"call_id", callID,
		"duration_ms", dur.Milliseconds(),
		"ok", ok,
	)
	if d.activity != nil {
		d.activity.Add(activity.Record{
			Time:     start,
			CallID:   callID,
			Tool:     name,
			Duration: dur,
			OK:       ok,
			Summary:  summary,
		})
	}
}

func truncateError(msg string) string {
	if len(msg) > maxErrorLen {
		return msg[:maxErrorLen] + "..."
	}
	return msg
}
