package audit_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensegate/licensegate/pkg/audit"
)

// TestLogger_Record verifies the event envelope: prefixed JSON lines
// with identity, run tag, timestamp and metadata.
func TestLogger_Record(t *testing.T) {
	var buf bytes.Buffer
	logger := audit.NewLoggerWithWriter(&buf, "run-123")

	err := logger.Record(t.Context(), audit.EventRecord, "record.rejected", "some-pkg",
		map[string]any{"index": 3, "reason": "duplicate"})
	require.NoError(t, err)

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "AUDIT: "))

	var event audit.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "AUDIT: ")), &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "run-123", event.RunID)
	assert.Equal(t, audit.EventRecord, event.Type)
	assert.Equal(t, "record.rejected", event.Action)
	assert.Equal(t, "some-pkg", event.Resource)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, "duplicate", event.Metadata["reason"])
}

// TestLogger_UniqueEventIDs verifies every event gets its own identity.
func TestLogger_UniqueEventIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := audit.NewLoggerWithWriter(&buf, "")

	require.NoError(t, logger.Record(t.Context(), audit.EventRun, "run.start", "", nil))
	require.NoError(t, logger.Record(t.Context(), audit.EventRun, "run.start", "", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second audit.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[0], "AUDIT: ")), &first))
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "AUDIT: ")), &second))
	assert.NotEqual(t, first.ID, second.ID)
}

// TestNop verifies the no-op logger accepts everything silently.
func TestNop(t *testing.T) {
	assert.NoError(t, audit.Nop().Record(t.Context(), audit.EventPolicy, "x", "y", nil))
}
