package testutil

import (
	"fmt"
	"sync"
)

// RecordingLogger captures log messages so tests can assert on warnings
// emitted for skipped files.
type RecordingLogger struct {
	mu       sync.Mutex
	Warnings []string
	Infos    []string
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Debug(msg string, args ...any) {}

func (l *RecordingLogger) Info(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, format(msg, args))
}

func (l *RecordingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warnings = append(l.Warnings, format(msg, args))
}

func (l *RecordingLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warnings = append(l.Warnings, format(msg, args))
}

func format(msg string, args []any) string {
	out := msg
	for i := 0; i+1 < len(args); i += 2 {
		out += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	return out
}
