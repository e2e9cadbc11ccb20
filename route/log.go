package route

import "github.com/decred/slog"

// log is the subsystem logger for package route; disabled until UseLogger
// is called.
var log = slog.Disabled

// UseLogger sets the subsystem logger used by package route.
func UseLogger(logger slog.Logger) {
	log = logger
}
