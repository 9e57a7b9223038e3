package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/avcrec/pkg/ports"
)

func TestConsoleLogger_Streams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewWriters(ports.LevelDebug, &stdout, &stderr)

	l.Debug("debug line")
	l.Info("info %s line %d", "unit", 120)
	l.Warn("warn %v", "boom")
	l.Error("error %v", "boom")

	out := stdout.String()
	if !strings.Contains(out, "debug line") {
		t.Errorf("stdout missing debug line: %q", out)
	}
	if !strings.Contains(out, "120") {
		t.Errorf("stdout missing formatted info line: %q", out)
	}
	if strings.Contains(out, "boom") {
		t.Errorf("warnings leaked to stdout: %q", out)
	}
	if n := strings.Count(stderr.String(), "boom"); n != 2 {
		t.Errorf("stderr has %d warning/error lines, want 2: %q", n, stderr.String())
	}
}

func TestConsoleLogger_Level(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewWriters(ports.LevelWarn, &stdout, &stderr)

	l.Debug("debug line")
	l.Info("info line")
	if stdout.Len() != 0 {
		t.Errorf("messages below level were written: %q", stdout.String())
	}

	l.Warn("warn line")
	if stderr.Len() == 0 {
		t.Error("warning was not written")
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var stdout bytes.Buffer
	l := NewWriters(ports.LevelInfo, &stdout, &bytes.Buffer{})

	l.WithComponent("session").Info("info line")

	if got := stdout.String(); !strings.HasPrefix(got, "[session] ") {
		t.Errorf("line = %q, want [session] prefix", got)
	}
}

func TestNoopLogger(t *testing.T) {
	l := NewNoop()
	l.Info("info line")
	if l.WithComponent("x") != l {
		t.Error("WithComponent should return the same logger")
	}
}
