// regionscout ranks Azure regions by average VM hourly price.
//
// Usage:
//
//	regionscout serve [--listen :8080]
//	regionscout summary [--currency USD] [--group-by region]
//	regionscout cheapest [--top-n 10]
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/azscout/regions-cheapest/internal/azure"
	"github.com/azscout/regions-cheapest/internal/geo"
	"github.com/azscout/regions-cheapest/internal/server"
	"github.com/azscout/regions-cheapest/internal/source"
	"github.com/azscout/regions-cheapest/internal/summary"
)

var version = "0.1.0"

func main() {
	// A .env file is optional; real env vars win either way.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "regionscout",
		Usage:   "Rank Azure regions by average VM hourly price",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "regionscout.yaml",
				Usage:   "Path to YAML config file",
				EnvVars: []string{"REGIONSCOUT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"REGIONSCOUT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "core-url",
				Usage:   "Base URL of the az-scout core server",
				EnvVars: []string{"REGIONSCOUT_CORE_URL"},
			},
			&cli.StringFlag{
				Name:    "bulk-cache-url",
				Usage:   "Base URL of the bdd-sku bulk cache plugin",
				EnvVars: []string{"REGIONSCOUT_BULK_CACHE_URL"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory holding the region data files",
				EnvVars: []string{"REGIONSCOUT_DATA_DIR"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Address to listen on",
						EnvVars: []string{"REGIONSCOUT_LISTEN"},
					},
				},
				Action: runServe,
			},
			{
				Name:  "summary",
				Usage: "Print the per-region pricing summary as JSON",
				Flags: append(queryFlags(),
					&cli.StringFlag{
						Name:  "group-by",
						Value: "region",
						Usage: "Group rows by 'region' or 'geography'",
					},
				),
				Action: runSummary,
			},
			{
				Name:  "cheapest",
				Usage: "Print the top N cheapest regions as JSON",
				Flags: append(queryFlags(),
					&cli.IntFlag{
						Name:  "top-n",
						Value: summary.DefaultTopN,
						Usage: "Number of regions to return",
					},
				),
				Action: runCheapest,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "regionscout: %v\n", err)
		os.Exit(1)
	}
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "tenant-id",
			Usage:   "Azure tenant ID",
			EnvVars: []string{"REGIONSCOUT_TENANT_ID"},
		},
		&cli.StringFlag{
			Name:  "currency",
			Value: "USD",
			Usage: "ISO 4217 currency code",
		},
		&cli.StringSliceFlag{
			Name:  "sku",
			Usage: "Restrict to these VM SKUs (repeatable)",
		},
	}
}

// setup builds the logger and the wired summary service from config plus
// command-line overrides.
func setup(c *cli.Context) (*Config, *summary.Service, zerolog.Logger, error) {
	config, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	if v := c.String("log-level"); v != "" {
		config.LogLevel = v
	}
	if v := c.String("core-url"); v != "" {
		config.CoreBaseURL = v
	}
	if v := c.String("bulk-cache-url"); v != "" {
		config.BulkCacheBaseURL = v
	}
	if v := c.String("data-dir"); v != "" {
		config.DataDir = v
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	discovery := azure.NewDiscoveryClient(config.CoreBaseURL, logger)
	retail := azure.NewRetailClient(config.RetailEndpoint, logger)
	lookup := geo.NewLookup(config.DataDir, logger)

	bulkCache := source.NewCacheProvider(config.BulkCacheBaseURL, logger)
	live := source.NewLiveProvider(retail, logger)
	selector := source.NewSelector(bulkCache, live, retail, logger)

	service := summary.NewService(discovery, selector, lookup, logger)
	return config, service, logger, nil
}

func runServe(c *cli.Context) error {
	config, service, logger, err := setup(c)
	if err != nil {
		return err
	}
	if v := c.String("listen"); v != "" {
		config.ListenAddr = v
	}

	srv := &http.Server{
		Addr:         config.ListenAddr,
		Handler:      server.New(service, logger).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
		<-signalChan

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
		close(shutdownDone)
	}()

	logger.Info().Str("addr", config.ListenAddr).Msg("Starting regionscout server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	<-shutdownDone
	return nil
}

func runSummary(c *cli.Context) error {
	_, service, _, err := setup(c)
	if err != nil {
		return err
	}

	result := service.Summary(c.Context, summary.Params{
		TenantID:  c.String("tenant-id"),
		Currency:  c.String("currency"),
		GroupBy:   c.String("group-by"),
		SKUSample: c.StringSlice("sku"),
	})
	return printJSON(result)
}

func runCheapest(c *cli.Context) error {
	_, service, _, err := setup(c)
	if err != nil {
		return err
	}

	rows, dataSource := service.Cheapest(c.Context, summary.Params{
		TenantID:  c.String("tenant-id"),
		Currency:  c.String("currency"),
		SKUSample: c.StringSlice("sku"),
		TopN:      c.Int("top-n"),
	})
	return printJSON(map[string]any{
		"rows":       rows,
		"dataSource": dataSource,
	})
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
