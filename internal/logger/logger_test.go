package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestDebugLevelGatesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf))
	l.Debug("hidden")
	l.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug output not suppressed at info level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info output missing: %q", out)
	}

	buf.Reset()
	l = New(WithWriter(&buf), WithDebug(true))
	l.Debug("hidden")
	if !strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug output missing at debug level: %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithJSON(true))
	l.Info("event", "key", "value")

	out := buf.String()
	if !strings.Contains(out, `"msg":"event"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
}
