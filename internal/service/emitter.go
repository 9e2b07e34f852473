package service

import (
	"context"
	"log/slog"
	"sync"

	"prodexport/internal/logging"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: export lifecycle notifications
// ─────────────────────────────────────────────────────────────

// Export lifecycle events.
const (
	EventExportStarted  = "export:started"
	EventExportFinished = "export:finished"
	EventExportFailed   = "export:failed"
)

// EventEmitter receives export lifecycle events. The CLI logs them; tests
// record them with MockEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// LogEmitter writes each event as a structured log line.
type LogEmitter struct{}

func (LogEmitter) Emit(ctx context.Context, event string, data any) {
	logging.FromContext(ctx).Log(ctx, slog.LevelDebug, "event", "event", event, "data", data)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Names returns the recorded event names in order.
func (m *MockEmitter) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.Events))
	for i, e := range m.Events {
		names[i] = e.Event
	}
	return names
}
