// Package activity keeps a fixed-size in-memory ring of recent tool
// invocations. Nothing is persisted; the ring exists so a frontend or the
// CLI can show what the runtime just did.
package activity

import (
	"sync"
	"time"
)

// Record is one tool invocation.
type Record struct {
	Time     time.Time
	CallID   string
	Tool     string
	Duration time.Duration
	OK       bool
	Summary  string // bounded excerpt of the envelope
}

// Log is a fixed-capacity ring of Records.
type Log struct {
	mu      sync.Mutex
	records []Record
	size    int
	pos     int
	count   int
}

// NewLog creates a ring holding up to size records.
func NewLog(size int) *Log {
	if size <= 0 {
		size = 256
	}
	return &Log{records: make([]Record, size), size: size}
}

// Add appends a record, evicting the oldest when full.
func (l *Log) Add(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[l.pos] = r
	l.pos = (l.pos + 1) % l.size
	if l.count < l.size {
		l.count++
	}
}

// Len returns the number of records currently held.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Query returns records oldest-first. A zero since means no time filter;
// onlyFailed keeps records whose invocation produced an error envelope;
// limit > 0 keeps only the most recent matches.
func (l *Log) Query(since time.Time, onlyFailed bool, limit int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Record
	start := l.pos - l.count
	if start < 0 {
		start += l.size
	}
	for i := 0; i < l.count; i++ {
		r := l.records[(start+i)%l.size]
		if !since.IsZero() && r.Time.Before(since) {
			continue
		}
		if onlyFailed && r.OK {
			continue
		}
		out = append(out, r)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
