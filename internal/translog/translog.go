// Package translog wraps log/slog with a single-line, mutex-guarded handler
// in the style of a thin slog wrapper, so runtime and compile-time messages
// share one compact format regardless of destination.
package translog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// handler renders a record as "TIME LEVEL: message attr=val attr=val".
type handler struct {
	out   io.Writer
	mu    *sync.Mutex
	min   slog.Level
	attrs []slog.Attr // bound via WithAttrs, emitted ahead of each record's own
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.min }

// WithAttrs returns a child handler that carries attrs in addition to any it
// already has, without mutating the receiver — concurrent callers of
// WithRun must not see each other's run IDs.
func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := &handler{out: h.out, mu: h.mu, min: h.min}
	child.attrs = append(child.attrs, h.attrs...)
	child.attrs = append(child.attrs, attrs...)
	return child
}

func (h *handler) WithGroup(name string) slog.Handler { return h }

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	parts := []string{
		r.Time.Format("2006/01/02 15:04:05"),
		r.Level.String() + ":",
		r.Message,
	}
	for _, a := range h.attrs {
		parts = append(parts, a.Key+"="+a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Key+"="+a.Value.String())
		return true
	})
	line := strings.Join(parts, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write([]byte(line))
	return err
}

// New builds a logger writing to out at or above min level. Passing os.Stderr
// and slog.LevelWarn matches the spec's "runtime errors logged at WARN, IO
// errors at ERROR" requirement without any lower-level noise by default.
func New(out io.Writer, min slog.Level) *slog.Logger {
	return slog.New(&handler{out: out, mu: &sync.Mutex{}, min: min})
}

// Default is a ready-to-use logger writing WARN and above to stderr.
func Default() *slog.Logger {
	return New(os.Stderr, slog.LevelWarn)
}

// WithRun tags every record from the returned logger with a run ID, so
// concurrently executing scripts (the scheduler, §5) stay distinguishable
// in one shared log stream.
func WithRun(l *slog.Logger, runID string) *slog.Logger {
	return l.With("run", runID)
}
