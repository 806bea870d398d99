// Package audit provides the process-wide operation log. Every orchestration
// step, guardrail denial and agent outcome is appended here so a failing run
// can be reconstructed after the fact. The log is append-only and lives for
// the lifetime of the process.
package audit

import (
	"sync"
	"time"
)

// Entry is a single audit record. Entries are immutable once appended.
type Entry struct {
	Timestamp time.Time
	Operation string
	Actor     string
	Outcome   string
	Detail    string
}

// Log is an append-only, mutex-guarded audit trail. The zero value is not
// usable; construct with NewLog. Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewLog returns an empty audit log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append records an operation outcome. It never fails; the log grows without
// bound for the process lifetime.
func (l *Log) Append(operation, actor, outcome, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		Timestamp: l.now(),
		Operation: operation,
		Actor:     actor,
		Outcome:   outcome,
		Detail:    detail,
	})
}

// Entries returns a snapshot copy of all recorded entries.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
