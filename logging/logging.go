// Package logging provides real-time log output for keep-alive activity.
// Keep-alive is best-effort and invisible to the application, so this
// package is the only place its internals become observable. Probe-level
// detail is emitted at DEBUG and filtered out by default.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	sessionID string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		sessionID: l.sessionID,
	}
}

// WithSessionID returns a new logger tagged with a session ID.
func (l *Logger) WithSessionID(id string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		sessionID: id,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		f := fields[0]
		if l.sessionID != "" {
			merged := make(map[string]interface{}, len(f)+1)
			for k, v := range f {
				merged[k] = v
			}
			merged["session"] = l.sessionID
			f = merged
		}
		fieldStr = formatFields(f)
	} else if l.sessionID != "" {
		fieldStr = formatFields(map[string]interface{}{"session": l.sessionID})
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Keep-alive event logging methods ---
// Called by the keepalive package as the scheduler moves through its states.
// All scheduler events log at DEBUG; the wrapper stays silent at the
// default level even when it disables itself.

// StrategyResolved logs the outcome of strategy selection.
func (l *Logger) StrategyResolved(strategy string, detail string) {
	fields := map[string]interface{}{
		"strategy": strategy,
	}
	if detail != "" {
		fields["detail"] = detail
	}
	l.Debug("strategy_resolved", fields)
}

// ProbeResult logs a single probe outcome (real-time output).
func (l *Logger) ProbeResult(strategy string, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"strategy": strategy,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Debug("probe_failed", fields)
	} else {
		l.Debug("probe_ok", fields)
	}
}

// SchedulerStarted logs scheduler activation.
func (l *Logger) SchedulerStarted(strategy string, interval time.Duration) {
	l.Debug("keepalive_started", map[string]interface{}{
		"strategy": strategy,
		"interval": interval.String(),
	})
}

// SchedulerStopped logs an explicit stop.
func (l *Logger) SchedulerStopped() {
	l.Debug("keepalive_stopped", nil)
}

// ThresholdReached logs the terminal self-disable transition.
func (l *Logger) ThresholdReached(failures int) {
	l.Debug("keepalive_disabled", map[string]interface{}{
		"consecutive_failures": failures,
	})
}

// ClassifierDecision logs why keep-alive was enabled or disabled at wrap time.
func (l *Logger) ClassifierDecision(enabled bool, reason string) {
	l.Debug("classifier_decision", map[string]interface{}{
		"enabled": enabled,
		"reason":  reason,
	})
}
