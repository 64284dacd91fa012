// Package chronicle provides the shared chronological event log. Appends
// are guarded by one lock so pipeline workers can log concurrently; reads
// return snapshots.
package chronicle

import (
	"fmt"
	"sync"
)

// Entry is one notable occurrence in the world.
type Entry struct {
	Tick        uint64 `json:"tick"`
	Category    string `json:"category"` // "war", "death", "birth", "plugin", ...
	Description string `json:"description"`
}

// keepRecent is how many entries stay resident; older entries are handed to
// the flush callback so nothing is silently lost.
const keepRecent = 200

// Log is the append-only event log.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	flush   func([]Entry) // receives evicted entries; may be nil
}

// New creates a log. flush, if non-nil, receives entries evicted by Prune
// and the remainder on Drain.
func New(flush func([]Entry)) *Log {
	return &Log{flush: flush}
}

// Append records an event. Safe from any goroutine.
func (l *Log) Append(tick uint64, category, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		Tick:        tick,
		Category:    category,
		Description: fmt.Sprintf(format, args...),
	})
}

// Recent returns a snapshot of the last n entries.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	start := len(l.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]Entry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// Len returns the number of resident entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// CountSince counts resident entries at or after tick in the given category.
func (l *Log) CountSince(tick uint64, category string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Tick >= tick && e.Category == category {
			n++
		}
	}
	return n
}

// Prune evicts everything but the newest keepRecent entries, flushing the
// evicted prefix first.
func (l *Log) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) <= keepRecent {
		return
	}
	evicted := l.entries[:len(l.entries)-keepRecent]
	if l.flush != nil {
		flushed := make([]Entry, len(evicted))
		copy(flushed, evicted)
		l.flush(flushed)
	}
	l.entries = append([]Entry(nil), l.entries[len(l.entries)-keepRecent:]...)
}

// Drain flushes every resident entry and empties the log. Called on clean
// shutdown and before a fatal abort.
func (l *Log) Drain() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.flush != nil && len(l.entries) > 0 {
		flushed := make([]Entry, len(l.entries))
		copy(flushed, l.entries)
		l.flush(flushed)
	}
	l.entries = nil
}
