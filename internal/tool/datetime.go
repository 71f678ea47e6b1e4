package tool

import (
	"context"
	"time"
)

// DatetimeTool reports the current date and time in UTC.
type DatetimeTool struct {
	Now func() time.Time // test hook, defaults to time.Now
}

func (t *DatetimeTool) Name() string        { return "get_current_datetime" }
func (t *DatetimeTool) Description() string { return "Get the current date and time in UTC." }
func (t *DatetimeTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *DatetimeTool) Execute(_ context.Context, _ map[string]any) (string, error) {
	now := time.Now()
	if t.Now != nil {
		now = t.Now()
	}
	utc := now.UTC()
	return jsonString(map[string]any{
		"utc":            utc.Format("2006-01-02T15:04:05.000000-07:00"),
		"unix_timestamp": float64(utc.UnixNano()) / 1e9,
	}), nil
}
