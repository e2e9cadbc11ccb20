package build

import (
	"io"
	"os"
	"sync"

	"github.com/decred/slog"
)

// LogWriter is a convenience type that implements the io.Writer interface.
// It writes to both standard output and, once attached, a rotated log
// file.
type LogWriter struct {
	mu    sync.Mutex
	extra io.Writer
}

// A compile time check to ensure LogWriter satisfies io.Writer.
var _ io.Writer = (*LogWriter)(nil)

// Write writes the byte slice to both stdout and, once one has been
// attached, the rotated log file. It is safe for concurrent use.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	extra := w.extra
	w.mu.Unlock()

	os.Stdout.Write(p)
	if extra != nil {
		extra.Write(p)
	}

	return len(p), nil
}

// SetExtraWriter attaches a second writer (typically a log rotator) that
// every Write call is mirrored to, in addition to stdout.
func (w *LogWriter) SetExtraWriter(extra io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.extra = extra
}

// NewSubLogger creates a new subsystem logger tagged with the given
// four-letter subsystem name. genLogger is a backend's Logger method value
// (e.g. slog.NewBackend(w).Logger). Every package in this module that
// wants logging exposes a UseLogger setter that takes the logger
// constructed this way.
func NewSubLogger(subsystem string, genLogger func(string) slog.Logger) slog.Logger {
	logger := genLogger(subsystem)
	logger.SetLevel(slog.LevelInfo)
	return logger
}
