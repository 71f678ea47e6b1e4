package activity

import (
	"fmt"
	"testing"
	"time"
)

func TestAddAndLen(t *testing.T) {
	l := NewLog(10)
	if l.Len() != 0 {
		t.Fatalf("new log Len = %d", l.Len())
	}
	l.Add(Record{Tool: "calculator", OK: true})
	l.Add(Record{Tool: "read_file", OK: true})
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
}

func TestEvictsOldest(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		l.Add(Record{Tool: fmt.Sprintf("tool-%d", i), OK: true})
	}
	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
	got := l.Query(time.Time{}, false, 0)
	if len(got) != 3 {
		t.Fatalf("Query returned %d records", len(got))
	}
	if got[0].Tool != "tool-2" || got[2].Tool != "tool-4" {
		t.Errorf("ring order wrong: first=%s last=%s", got[0].Tool, got[2].Tool)
	}
}

func TestQuery_Filters(t *testing.T) {
	l := NewLog(10)
	base := time.Now()
	l.Add(Record{Time: base.Add(-time.Hour), Tool: "old", OK: true})
	l.Add(Record{Time: base, Tool: "good", OK: true})
	l.Add(Record{Time: base, Tool: "bad", OK: false})

	recent := l.Query(base.Add(-time.Minute), false, 0)
	if len(recent) != 2 {
		t.Fatalf("since filter returned %d records", len(recent))
	}

	failed := l.Query(time.Time{}, true, 0)
	if len(failed) != 1 || failed[0].Tool != "bad" {
		t.Fatalf("onlyFailed returned %v", failed)
	}
}

func TestQuery_LimitKeepsMostRecent(t *testing.T) {
	l := NewLog(10)
	for i := 0; i < 6; i++ {
		l.Add(Record{Tool: fmt.Sprintf("tool-%d", i), OK: true})
	}
	got := l.Query(time.Time{}, false, 2)
	if len(got) != 2 {
		t.Fatalf("limit returned %d records", len(got))
	}
	if got[0].Tool != "tool-4" || got[1].Tool != "tool-5" {
		t.Errorf("limit kept wrong records: %v, %v", got[0].Tool, got[1].Tool)
	}
}

func TestNewLog_DefaultSize(t *testing.T) {
	l := NewLog(0)
	l.Add(Record{Tool: "x", OK: true})
	if l.Len() != 1 {
		t.Fatal("zero-size log unusable")
	}
}
