package routing

import "github.com/decred/slog"

// log is the subsystem logger for package routing; disabled until
// UseLogger is called. The backend wires it up via
// routing.UseLogger(crtrLog) from the top-level log.go.
var log = slog.Disabled

// UseLogger sets the subsystem logger used by package routing.
func UseLogger(logger slog.Logger) {
	log = logger
}
