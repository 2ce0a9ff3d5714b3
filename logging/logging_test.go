package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(LevelInfo)

	// Debug should be filtered
	logger.Debug("debug message")
	if buf.Len() > 0 {
		t.Error("debug message should be filtered at INFO level")
	}

	// Info should pass
	logger.Info("info message")
	if buf.Len() == 0 {
		t.Error("info message should be logged")
	}

	output := buf.String()
	if !strings.Contains(output, "INFO") {
		t.Error("log should contain INFO level")
	}
	if !strings.Contains(output, "info message") {
		t.Error("log should contain the message")
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New().WithComponent("keepalive")
	logger.SetOutput(&buf)

	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "[keepalive]") {
		t.Errorf("expected component 'keepalive' in log, got: %s", output)
	}
}

func TestLogger_WithSessionID(t *testing.T) {
	var buf bytes.Buffer
	logger := New().WithSessionID("sess-123")
	logger.SetOutput(&buf)

	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "session=sess-123") {
		t.Errorf("expected session field in log, got: %s", output)
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.Info("probe", map[string]interface{}{
		"strategy": "probe-op",
	})

	output := buf.String()
	if !strings.Contains(output, "strategy=probe-op") {
		t.Errorf("expected field 'strategy=probe-op' in log, got: %s", output)
	}
}

func TestLogger_ProbeResult(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(LevelDebug)

	logger.ProbeResult("probe-op", 12*time.Millisecond, nil)
	logger.ProbeResult("probe-op", 30*time.Millisecond, errors.New("timeout"))

	output := buf.String()
	if !strings.Contains(output, "probe_ok") {
		t.Errorf("expected probe_ok entry, got: %s", output)
	}
	if !strings.Contains(output, "probe_failed") {
		t.Errorf("expected probe_failed entry, got: %s", output)
	}
	if !strings.Contains(output, "error=timeout") {
		t.Errorf("expected error field, got: %s", output)
	}
}

func TestLogger_ProbeResultFilteredByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.ProbeResult("capability-list", time.Millisecond, nil)
	if buf.Len() > 0 {
		t.Error("probe results should be filtered at default INFO level")
	}
}

func TestLogger_ThresholdReached(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	// The terminal disable is silent at the default level.
	logger.ThresholdReached(3)
	if buf.Len() > 0 {
		t.Errorf("threshold should be filtered at INFO level, got: %s", buf.String())
	}

	logger.SetLevel(LevelDebug)
	logger.ThresholdReached(3)

	output := buf.String()
	if !strings.Contains(output, "keepalive_disabled") {
		t.Errorf("expected disable entry, got: %s", output)
	}
	if !strings.Contains(output, "consecutive_failures=3") {
		t.Errorf("expected failure count field, got: %s", output)
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New().WithComponent("test")
	logger.SetOutput(&buf)

	logger.Info("hello world", map[string]interface{}{"key": "value"})

	output := buf.String()
	// Format: LEVEL TIMESTAMP [component] message key=value
	if !strings.HasPrefix(output, "INFO ") {
		t.Errorf("expected line to start with 'INFO ', got: %s", output)
	}
	if !strings.Contains(output, "[test]") {
		t.Errorf("expected component [test], got: %s", output)
	}
	if !strings.Contains(output, "hello world") {
		t.Errorf("expected message, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value, got: %s", output)
	}
}
