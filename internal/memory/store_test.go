package memory

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetAndGet(t *testing.T) {
	s := openStore(t)
	if err := s.Set("project", "# My Project\nSome notes."); err != nil {
		t.Fatalf("Set: %v", err)
	}
	content, ok, err := s.Get("project")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("scope not found after Set")
	}
	if content != "# My Project\nSome notes." {
		t.Errorf("Get = %q", content)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	content, ok, err := s.Get("nonexistent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || content != "" {
		t.Errorf("expected absent scope, got ok=%v content=%q", ok, content)
	}
}

func TestOverwrite(t *testing.T) {
	s := openStore(t)
	s.Set("project", "version 1")
	s.Set("project", "version 2")
	content, _, err := s.Get("project")
	if err != nil {
		t.Fatal(err)
	}
	if content != "version 2" {
		t.Errorf("expected overwritten content, got %q", content)
	}
}

func TestList_OrderedByName(t *testing.T) {
	s := openStore(t)
	s.Set("project", "project notes")
	s.Set("preferences", "user prefs")
	s.Set("team", "team info")

	scopes, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(scopes) != 3 {
		t.Fatalf("expected 3 scopes, got %d", len(scopes))
	}
	want := []string{"preferences", "project", "team"}
	for i, sc := range scopes {
		if sc.Name != want[i] {
			t.Errorf("scopes[%d].Name = %q, want %q", i, sc.Name, want[i])
		}
		if sc.UpdatedAt.IsZero() {
			t.Errorf("scopes[%d].UpdatedAt is zero", i)
		}
	}
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	s.Set("temp", "temporary data")

	removed, err := s.Delete("temp")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Error("Delete reported nothing removed")
	}
	if _, ok, _ := s.Get("temp"); ok {
		t.Error("scope still present after delete")
	}

	removed, err = s.Delete("ghost")
	if err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if removed {
		t.Error("Delete reported removal of absent scope")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set("durable", "still here"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	content, ok, err := s2.Get("durable")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || content != "still here" {
		t.Errorf("after reopen: ok=%v content=%q", ok, content)
	}
}

func TestValidateScope(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"", "Scope must be a non-empty string"},
		{strings.Repeat("x", 65), "Scope name too long (max 64 characters)"},
		{"a/b", "must not contain path separators"},
		{`a\b`, "must not contain path separators"},
	}
	for _, tc := range cases {
		err := ValidateScope(tc.name)
		if err == nil {
			t.Errorf("ValidateScope(%q) passed", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("ValidateScope(%q) = %q, want substring %q", tc.name, err, tc.want)
		}
		if !toolerr.IsValidation(err) {
			t.Errorf("ValidateScope(%q) kind = %q", tc.name, toolerr.KindOf(err))
		}
	}
	if err := ValidateScope("project-notes_2"); err != nil {
		t.Errorf("valid scope rejected: %v", err)
	}
}
