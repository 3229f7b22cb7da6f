// Package testutil provides helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// LogEntry is a captured log record.
type LogEntry struct {
	Level slog.Level
	Msg   string
	Attrs map[string]string
}

// LogRecorder is a slog.Handler that records every entry.
type LogRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
	attrs   []slog.Attr
	parent  *LogRecorder
}

// NewLogger returns a logger writing into a new recorder.
func NewLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	return slog.New(rec), rec
}

func (h *LogRecorder) root() *LogRecorder {
	if h.parent != nil {
		return h.parent.root()
	}
	return h
}

// Enabled implements slog.Handler.
func (h *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{Level: r.Level, Msg: r.Message, Attrs: map[string]string{}}
	for _, a := range h.attrs {
		entry.Attrs[a.Key] = fmt.Sprint(a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		entry.Attrs[a.Key] = fmt.Sprint(a.Value.Any())
		return true
	})

	root := h.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.entries = append(root.entries, entry)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...), parent: h.root()}
}

// WithGroup implements slog.Handler.
func (h *LogRecorder) WithGroup(string) slog.Handler {
	return h
}

// Entries returns a copy of all captured entries.
func (h *LogRecorder) Entries() []LogEntry {
	root := h.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	return append([]LogEntry(nil), root.entries...)
}

// AtLevel returns the captured entries with exactly the given level.
func (h *LogRecorder) AtLevel(level slog.Level) []LogEntry {
	var out []LogEntry
	for _, e := range h.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
