package curve

import "github.com/decred/slog"

// log is the subsystem logger for the curve package. It is a no-op until
// UseLogger is called, following the per-package logging pattern used
// throughout this module (see build.NewSubLogger).
var log = slog.Disabled

// UseLogger sets the subsystem logger used by package curve. Called with a
// logger obtained from build.NewSubLogger during application start-up.
func UseLogger(logger slog.Logger) {
	log = logger
}
