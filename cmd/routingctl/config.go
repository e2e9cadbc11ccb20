package main

import (
	"fmt"
	"os"
	"time"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultLogFilename  = "routingctl.log"
	defaultLogLevel     = "info"
	defaultMaxLogFiles  = 3
	defaultMaxLogSizeKB = 10 * 1024
	defaultHoldDownMs   = 60000
	defaultMaxPoints    = 16
)

// config holds routingctl's command-line options, parsed by go-flags from
// a single struct-tagged definition, no hand-rolled flag registration.
type config struct {
	LogDir    string `long:"logdir" description:"Directory to store log files"`
	LogLevel  string `long:"loglevel" description:"Logging level for all subsystems" default:"info"`
	DebugHTTP bool   `long:"nofilelogging" description:"Disable file logging entirely"`

	RoutesFile string `long:"routes" description:"Path to a JSON file of announced RouteData records to load" required:"true"`
	LocalFile  string `long:"local" description:"Path to a JSON file of local-pair RouteData records to load" required:"true"`

	SourceAddr string `long:"source" description:"Source ledger address for the best-hop query" required:"true"`
	FinalAddr  string `long:"dest" description:"Destination address for the best-hop query" required:"true"`
	Amount     string `long:"amount" description:"Decimal amount for the query" required:"true"`

	ByDestination bool `long:"by-destination" description:"Interpret --amount as a destination amount instead of a source amount"`

	HoldDownMs int64 `long:"holddown" description:"Hold-down duration in milliseconds applied to derived routes; 0 means static (never expires)" default:"60000"`
	MaxPoints  int   `long:"maxpoints" description:"Maximum curve points for a toJSON export; the best-hop query does not read it" default:"16"`
}

// loadConfig parses the command line into a config, seeding defaults
// before handing control to main.
func loadConfig() (*config, error) {
	cfg := config{
		LogLevel:   defaultLogLevel,
		HoldDownMs: defaultHoldDownMs,
		MaxPoints:  defaultMaxPoints,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir()
	}

	return &cfg, nil
}

func defaultLogDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "."
	}
	return fmt.Sprintf("%s/routingctl/logs", dir)
}

func (c *config) holdDown() *time.Duration {
	if c.HoldDownMs <= 0 {
		return nil
	}
	d := time.Duration(c.HoldDownMs) * time.Millisecond
	return &d
}
