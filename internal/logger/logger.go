// Package logger writes one JSON object per line, the format every HanDoc
// component uses for its operational logs.
package logger

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

type Logger struct {
	mu        *sync.Mutex
	out       io.Writer
	loc       *time.Location
	component string
	debug     bool
}

// New returns a Logger writing to w with timestamps rendered in loc.
func New(w io.Writer, loc *time.Location, component string) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{mu: &sync.Mutex{}, out: w, loc: loc, component: component}
}

// Default logs to stderr in UTC.
func Default(component string) *Logger {
	return New(os.Stderr, time.UTC, component)
}

// With returns a logger sharing the same output under another component name.
func (l *Logger) With(component string) *Logger {
	return &Logger{mu: l.mu, out: l.out, loc: l.loc, component: component, debug: l.debug}
}

// SetDebug turns debug entries on or off for this logger and the ones later
// derived from it with With.
func (l *Logger) SetDebug(on bool) {
	l.debug = on
}

func (l *Logger) Debug(event string, fields map[string]any) {
	if l.debug {
		l.write("debug", event, nil, fields)
	}
}

// Location is the timezone used for the "ts" field.
func (l *Logger) Location() *time.Location {
	return l.loc
}

func (l *Logger) Info(event string, fields map[string]any) {
	l.write("info", event, nil, fields)
}

func (l *Logger) Warn(event string, fields map[string]any) {
	l.write("warn", event, nil, fields)
}

func (l *Logger) Error(event string, err error, fields map[string]any) {
	l.write("error", event, err, fields)
}

// Log writes a raw entry. The level is derived from "status" when absent:
// "error" maps to level error, anything else to info.
func (l *Logger) Log(data map[string]any) {
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}
	l.emit(data)
}

func (l *Logger) write(level, event string, err error, fields map[string]any) {
	data := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		data[k] = v
	}
	data["level"] = level
	data["event"] = event
	if err != nil {
		data["error_message"] = err.Error()
	}
	l.emit(data)
}

func (l *Logger) emit(data map[string]any) {
	data["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	if _, ok := data["component"]; !ok && l.component != "" {
		data["component"] = l.component
	}

	b, err := json.Marshal(data)
	if err != nil {
		b, _ = json.Marshal(map[string]any{
			"ts":            data["ts"],
			"level":         "error",
			"event":         "log_marshal_failed",
			"error_message": err.Error(),
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(b, '\n'))
}
