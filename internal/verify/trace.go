package verify

import "go.uber.org/zap"

// TraceEntry is one ordered audit line from a pipeline run.
type TraceEntry struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// TraceRecorder accumulates the ordered audit trail for one request and
// mirrors every entry to the structured log. Entries appear in pipeline
// order; the recorder is not safe for concurrent use.
type TraceRecorder struct {
	entries []TraceEntry
	log     *zap.Logger
}

// NewTraceRecorder creates a recorder that mirrors entries to log. A nil
// logger disables mirroring.
func NewTraceRecorder(log *zap.Logger) *TraceRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &TraceRecorder{log: log}
}

// Add appends one entry.
func (t *TraceRecorder) Add(stage, message string) {
	t.entries = append(t.entries, TraceEntry{Stage: stage, Message: message})
	t.log.Debug(message, zap.String("stage", stage))
}

// Extend appends one entry per message under the same stage.
func (t *TraceRecorder) Extend(stage string, messages []string) {
	for _, m := range messages {
		t.Add(stage, m)
	}
}

// Entries returns the accumulated trail in insertion order.
func (t *TraceRecorder) Entries() []TraceEntry {
	return t.entries
}
