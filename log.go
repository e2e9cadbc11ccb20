package routingcore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/ilplabs/routingcore/build"
	"github.com/ilplabs/routingcore/curve"
	"github.com/ilplabs/routingcore/route"
	"github.com/ilplabs/routingcore/routing"
	"github.com/jrick/logrotate/rotator"
)

// Loggers per subsystem. A single backend logger is created and all
// subsystem loggers created from it write to the backend. When adding a
// new subsystem, add its logger variable here and to subsystemLoggers.
//
// Until InitLogRotator attaches a log file, log output goes to stdout
// only; the CLI calls InitLogRotator early during startup unless file
// logging is disabled.
var (
	logWriter = &build.LogWriter{}

	// backendLog is the logging backend used to create all subsystem
	// loggers. It writes through logWriter, which mirrors to the log
	// rotator once one is attached.
	backendLog = slog.NewBackend(logWriter)

	// logRotator is the rotating file output. It should be closed on
	// shutdown.
	logRotator *rotator.Rotator

	crvLog = build.NewSubLogger("CRVE", backendLog.Logger)
	rtLog  = build.NewSubLogger("ROUT", backendLog.Logger)
	crtrLog = build.NewSubLogger("CRTR", backendLog.Logger)
)

func init() {
	curve.UseLogger(crvLog)
	route.UseLogger(rtLog)
	routing.UseLogger(crtrLog)
}

// subsystemLoggers maps each subsystem identifier to its associated
// logger, for runtime log-level adjustment.
var subsystemLoggers = map[string]slog.Logger{
	"CRVE": crvLog,
	"ROUT": rtLog,
	"CRTR": crtrLog,
}

// InitLogRotator initializes the logging rotator to write logs to logFile
// and create roll files alongside it. It must be called before any
// subsystem logger is used, if file logging is desired at all.
func InitLogRotator(logFile string, maxLogFileSize, maxLogFiles int) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %v", err)
	}
	r, err := rotator.New(logFile, int64(maxLogFileSize*1024), false, maxLogFiles)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %v", err)
	}

	pr, pw := io.Pipe()
	go r.Run(pr)

	logWriter.SetExtraWriter(pw)
	logRotator = r
	return nil
}

// SetLogLevel sets the logging level for the named subsystem. Unknown
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := slog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for every subsystem logger.
func SetLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}
