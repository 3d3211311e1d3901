package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkAppendsJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "telemetry.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	sink.Record("verification_start", map[string]any{"request_id": "r1"})
	sink.Record("verification_success", map[string]any{"request_id": "r1", "risk_level": "low"})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, events, 2)
	assert.Equal(t, "verification_start", events[0].Type)
	assert.Equal(t, "r1", events[0].Payload["request_id"])
	assert.NotEmpty(t, events[0].Timestamp)
	assert.Equal(t, "verification_success", events[1].Type)
}

func TestFileSinkNilPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	sink.Record("verification_error", nil)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	assert.NotNil(t, e.Payload)
}

func TestFileSinkConcurrentWritesStayLineFramed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Record("event", map[string]any{"n": 1})
		}()
	}
	wg.Wait()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		count++
	}
	assert.Equal(t, 20, count)
}

func TestNopSink(t *testing.T) {
	assert.NotPanics(t, func() {
		NopSink{}.Record("anything", nil)
	})
}
