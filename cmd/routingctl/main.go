// Command routingctl is a small demonstration harness for the routing
// core: it loads a set of local pairs and announced routes from JSON
// fixtures, builds a routing.Tables from them, and answers one best-hop
// query against it.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ilplabs/routingcore"
	"github.com/ilplabs/routingcore/decimal"
	"github.com/ilplabs/routingcore/route"
	"github.com/ilplabs/routingcore/routing"
	"github.com/ilplabs/routingcore/routing/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "routingctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.DebugHTTP {
		logFile := fmt.Sprintf("%s/%s", cfg.LogDir, defaultLogFilename)
		if err := routingcore.InitLogRotator(
			logFile, defaultMaxLogSizeKB, defaultMaxLogFiles,
		); err != nil {
			return err
		}
	}
	routingcore.SetLogLevels(cfg.LogLevel)

	localData, err := loadRouteData(cfg.LocalFile)
	if err != nil {
		return fmt.Errorf("loading local pairs: %w", err)
	}
	announcedData, err := loadRouteData(cfg.RoutesFile)
	if err != nil {
		return fmt.Errorf("loading announced routes: %w", err)
	}

	localRoutes, err := decodeRoutes(localData)
	if err != nil {
		return fmt.Errorf("decoding local pairs: %w", err)
	}
	announcedRoutes, err := decodeRoutes(announcedData)
	if err != nil {
		return fmt.Errorf("decoding announced routes: %w", err)
	}

	recorder := metrics.NewRecorder(prometheus.NewRegistry())

	tables := routing.NewTables(cfg.holdDown(), nil)
	tables.UseRecorder(recorder, "routingctl")
	tables.AddLocalRoutes(localRoutes)

	for _, r := range announcedRoutes {
		tables.AddRoute(r)
	}

	amount, err := decimal.NewFromString(cfg.Amount)
	if err != nil {
		return fmt.Errorf("invalid --amount: %w", err)
	}

	if cfg.ByDestination {
		res, ok := tables.FindBestHopForDestinationAmount(cfg.SourceAddr, cfg.FinalAddr, amount)
		if !ok {
			return fmt.Errorf("no route found for destination amount %s to %s", cfg.Amount, cfg.FinalAddr)
		}
		fmt.Printf("bestHop=%s bestCost=%s\n", res.BestHop, res.BestCost)
		return nil
	}

	res, ok := tables.FindBestHopForSourceAmount(cfg.SourceAddr, cfg.FinalAddr, amount)
	if !ok {
		return fmt.Errorf("no route found for source amount %s to %s", cfg.Amount, cfg.FinalAddr)
	}
	fmt.Printf("bestHop=%s bestValue=%s\n", res.BestHop, res.BestValue)
	return nil
}

func loadRouteData(path string) ([]route.RouteData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data []route.RouteData
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func decodeRoutes(data []route.RouteData) ([]*route.Route, error) {
	routes := make([]*route.Route, 0, len(data))
	for _, d := range data {
		r, err := route.FromData(d)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}
