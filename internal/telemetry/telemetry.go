// Package telemetry provides an append-only event sink shared by concurrent
// verification requests. Appends are serialized; ordering is guaranteed only
// within a single request's events.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is one telemetry record.
type Event struct {
	Type      string         `json:"event_type"`
	Payload   map[string]any `json:"payload"`
	Timestamp string         `json:"timestamp"`
}

// Sink records pipeline lifecycle events.
type Sink interface {
	Record(eventType string, payload map[string]any)
}

// FileSink appends JSONL events to a log file.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink creates the sink and its parent directory.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileSink{path: path}, nil
}

// Record appends one event. Telemetry is best-effort: write errors are
// swallowed so they can never fail a verification request.
func (s *FileSink) Record(eventType string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	event := Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	line, err := json.Marshal(event)
	if err != nil {
		return
	}
	line = append(line, '\n')
	_, _ = f.Write(line)
}

// NopSink discards all events.
type NopSink struct{}

// Record does nothing.
func (NopSink) Record(string, map[string]any) {}
