// Package audit records a machine-readable trail of each run: the
// snapshot taken, every record the pipeline rejected, and the final
// verdict summary. CI systems parse the trail to explain gate failures.
package audit

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of the audit event.
type EventType string

const (
	EventRun    EventType = "RUN"
	EventRecord EventType = "RECORD"
	EventPolicy EventType = "POLICY"
	EventExport EventType = "EXPORT"
)

// Event represents a structured audit record.
type Event struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id,omitempty"`
	Type      EventType      `json:"type"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Logger defines the interface for recording audit events.
type Logger interface {
	Record(ctx context.Context, eventType EventType, action, resource string, metadata map[string]any) error
}

// logger implements Logger, writing structured JSON to a configurable Writer.
type logger struct {
	mu     sync.Mutex
	writer io.Writer
	runID  string
}

// NewLogger creates a Logger writing to os.Stderr, tagged with the
// given run ID.
func NewLogger(runID string) Logger {
	return NewLoggerWithWriter(os.Stderr, runID)
}

// NewLoggerWithWriter creates a Logger writing to the given writer.
// This allows injection for testing and custom sinks.
func NewLoggerWithWriter(w io.Writer, runID string) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &logger{writer: w, runID: runID}
}

func (l *logger) Record(ctx context.Context, eventType EventType, action, resource string, metadata map[string]any) error {
	event := Event{
		ID:        uuid.New().String(),
		RunID:     l.runID,
		Type:      eventType,
		Action:    action,
		Resource:  resource,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	// Prefix with AUDIT: for easy filtering
	_, err = l.writer.Write(append([]byte("AUDIT: "), append(bytes, '\n')...))
	return err
}

// Nop returns a Logger that drops every event.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Record(context.Context, EventType, string, string, map[string]any) error {
	return nil
}
