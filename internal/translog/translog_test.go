package translog_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/EmonFan/bardolph/internal/translog"
)

func TestWithRunAttachesRunIDToEveryRecord(t *testing.T) {
	var buf bytes.Buffer
	l := translog.New(&buf, slog.LevelWarn)
	tagged := translog.WithRun(l, "run-123")

	tagged.Warn("unknown-group-or-location", "name", "kitchen")

	line := buf.String()
	if !strings.Contains(line, "run=run-123") {
		t.Errorf("log line = %q, want it to contain run=run-123", line)
	}
	if !strings.Contains(line, "name=kitchen") {
		t.Errorf("log line = %q, want it to still contain the record's own attrs", line)
	}
}

func TestWithRunDoesNotLeakBetweenSiblings(t *testing.T) {
	var buf bytes.Buffer
	base := translog.New(&buf, slog.LevelWarn)

	a := translog.WithRun(base, "run-a")
	b := translog.WithRun(base, "run-b")

	a.Warn("msg-a")
	b.Warn("msg-b")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "run=run-a") || strings.Contains(lines[0], "run-b") {
		t.Errorf("first line = %q, want only run=run-a", lines[0])
	}
	if !strings.Contains(lines[1], "run=run-b") || strings.Contains(lines[1], "run-a") {
		t.Errorf("second line = %q, want only run=run-b", lines[1])
	}
}
