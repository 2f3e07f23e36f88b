// Package cmd defines the CLI commands for the jobscrawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/config"
	"github.com/rolehounds/jobscrawler/internal/engine"
	collyfetcher "github.com/rolehounds/jobscrawler/internal/fetcher/colly"
	"github.com/rolehounds/jobscrawler/internal/geo"
	"github.com/rolehounds/jobscrawler/internal/logging"
	"github.com/rolehounds/jobscrawler/internal/store"
)

var cfgFile string

// appKeyType is the key for storing the app in the command context.
type appKeyType string

const appKey appKeyType = "app"

// app bundles the shared services built once per invocation.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *store.Store
	fetcher   *collyfetcher.Fetcher
	gazetteer *geo.Gazetteer
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// newApp is the service factory. It is a variable so tests can swap in a
// stub.
var newApp = func(_ context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.Open(cfg.DB.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	gazetteer, err := geo.Load()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load gazetteer: %w", err)
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgents: cfg.Crawler.UserAgents,
	}, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		fetcher:   fetcher,
		gazetteer: gazetteer,
	}, nil
}

func resolveApp(ctx context.Context) (*app, error) {
	a, ok := ctx.Value(appKey).(*app)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}

// newEngine wires an engine for the effective test mode: the config value
// OR'd with the command-line flag.
func (a *app) newEngine(testFlag bool) *engine.Engine {
	test := a.cfg.Crawler.Test || testFlag
	return engine.New(a.fetcher, a.store, a.gazetteer, a.cfg.Sources.Dir, test, a.logger)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobscrawler",
		Short: "A multi-strategy job postings crawler.",
		Long: `jobscrawler collects software job postings from RSS feeds, JSON APIs
and plain HTML boards, normalizes and geo-tags them, and stores the unique
rows in a local SQLite database for review.`,

		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app); ok && a != nil {
				a.close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, env vars work without one)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newScheduleCmd())
	cmd.AddCommand(newJobsCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	// Local overrides such as JOBSCRAWLER_DB_PATH live in .env during
	// development; absence is not an error.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
