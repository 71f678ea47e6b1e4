package tool

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/memory"
)

func newTestMemoryStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("memory.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMemoryRead(t *testing.T) {
	store := newTestMemoryStore(t)
	if err := store.Set("project", "my project notes"); err != nil {
		t.Fatal(err)
	}

	env := execEnvelope(t, &MemoryReadTool{Store: store}, map[string]any{"scope": "project"})

	if env["scope"] != "project" || env["content"] != "my project notes" {
		t.Errorf("envelope = %v", env)
	}
}

func TestMemoryRead_Missing(t *testing.T) {
	store := newTestMemoryStore(t)

	env := execEnvelope(t, &MemoryReadTool{Store: store}, map[string]any{"scope": "nonexistent"})

	if env["content"] != "" {
		t.Errorf("content = %v", env["content"])
	}
	if env["note"] != "Memory scope is empty or does not exist." {
		t.Errorf("note = %v", env["note"])
	}
}

func TestMemoryRead_RequiresScope(t *testing.T) {
	store := newTestMemoryStore(t)

	env := execEnvelope(t, &MemoryReadTool{Store: store}, map[string]any{})
	if env["error"] != "scope is required" {
		t.Errorf("error = %v", env["error"])
	}
}

func TestMemoryRead_RejectsBadScopeName(t *testing.T) {
	store := newTestMemoryStore(t)

	env := execEnvelope(t, &MemoryReadTool{Store: store}, map[string]any{"scope": "a/b"})
	got, _ := env["error"].(string)
	if !strings.Contains(got, "path separators") {
		t.Errorf("error = %q", got)
	}
}

func TestMemoryWrite(t *testing.T) {
	store := newTestMemoryStore(t)

	env := execEnvelope(t, &MemoryWriteTool{Store: store}, map[string]any{
		"scope":   "preferences",
		"content": "user likes dark mode",
	})

	if env["status"] != "ok" || env["bytes"] != float64(20) {
		t.Errorf("envelope = %v", env)
	}

	stored, found, err := store.Get("preferences")
	if err != nil || !found || stored != "user likes dark mode" {
		t.Errorf("stored = %q, found=%v, err=%v", stored, found, err)
	}
}

func TestMemoryWrite_RequiresContent(t *testing.T) {
	store := newTestMemoryStore(t)

	env := execEnvelope(t, &MemoryWriteTool{Store: store}, map[string]any{"scope": "test"})
	if env["error"] != "content is required" {
		t.Errorf("error = %v", env["error"])
	}
}

func TestMemoryList(t *testing.T) {
	store := newTestMemoryStore(t)
	store.Set("project", "abc")
	store.Set("team", "defgh")

	env := execEnvelope(t, &MemoryListTool{Store: store}, nil)

	if env["count"] != float64(2) {
		t.Fatalf("count = %v", env["count"])
	}
	scopes, _ := env["scopes"].([]any)
	first, _ := scopes[0].(map[string]any)
	if first["name"] != "project" || first["bytes"] != float64(3) {
		t.Errorf("scopes[0] = %v", first)
	}
	if first["updated_at"] == "" {
		t.Error("updated_at empty")
	}
}

func TestMemoryList_Empty(t *testing.T) {
	store := newTestMemoryStore(t)

	env := execEnvelope(t, &MemoryListTool{Store: store}, nil)

	if env["count"] != float64(0) {
		t.Errorf("count = %v", env["count"])
	}
}

func TestMemoryDelete(t *testing.T) {
	store := newTestMemoryStore(t)
	store.Set("temp", "data")

	env := execEnvelope(t, &MemoryDeleteTool{Store: store}, map[string]any{"scope": "temp"})

	if env["status"] != "ok" || env["scope"] != "temp" {
		t.Errorf("envelope = %v", env)
	}
	if _, found, _ := store.Get("temp"); found {
		t.Error("scope still exists after delete")
	}
}

func TestMemoryDelete_Missing(t *testing.T) {
	store := newTestMemoryStore(t)

	env := execEnvelope(t, &MemoryDeleteTool{Store: store}, map[string]any{"scope": "ghost"})

	if env["error"] != "Memory scope not found: ghost" {
		t.Errorf("error = %v", env["error"])
	}
}
