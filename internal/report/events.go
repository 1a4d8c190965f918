// Package report writes a JSONL audit log of pipeline run events, one
// file per run under the artifacts directory.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventFileDone    EventType = "file_done"
	EventFileFailed  EventType = "file_failed"
	EventResolveMiss EventType = "resolve_miss"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in the pipeline run
type Event struct {
	Timestamp time.Time  `json:"ts"`
	Level     EventLevel `json:"level"`
	Event     EventType  `json:"event"`
	Phase     string     `json:"phase,omitempty"`
	Path      string     `json:"path,omitempty"`
	Rows      int        `json:"rows,omitempty"`
	Duration  int64      `json:"duration_ms,omitempty"`
	Title     string     `json:"title,omitempty"`
	Artist    string     `json:"artist,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("run-%s.jsonl", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogFileDone logs the completion of one input file
func (l *EventLogger) LogFileDone(phase, path string, rows int, duration time.Duration) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventFileDone,
		Phase:    phase,
		Path:     path,
		Rows:     rows,
		Duration: duration.Milliseconds(),
	})
}

// LogFileFailed logs a file that failed to decode or load
func (l *EventLogger) LogFileFailed(phase, path string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: EventFileFailed,
		Phase: phase,
		Path:  path,
		Error: err.Error(),
	})
}

// LogResolveMiss logs a play event whose song lookup missed
func (l *EventLogger) LogResolveMiss(path, title, artist string) error {
	return l.Log(&Event{
		Level:  LevelDebug,
		Event:  EventResolveMiss,
		Path:   path,
		Title:  title,
		Artist: artist,
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
