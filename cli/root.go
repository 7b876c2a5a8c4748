/*
Package cli wires configuration, stores, and jobs into cobra commands.

PURPOSE:
  One subcommand per scheduled job plus the operator API server. The
  scheduler (cron, CI, whatever runs these) invokes a subcommand; each
  run is a fresh process with no state beyond the store.

COMMANDS:
  sync-hours      Pull tracker activities, reconcile, upsert hour records
  sync-roster     Pull directory tables, upsert chatters and models
  map-users       Link tracker accounts to chatters by name
  coach           Evaluate yesterday's metrics into coaching tasks
  migrate-scores  One-off legacy score import
  serve           Read-only operator API

SEE ALSO:
  - jobs/: The orchestrators these commands invoke
  - config/: Layered configuration loading
*/
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/store"
	"github.com/agencyops/chattersync/store/sqlite"
	"github.com/agencyops/chattersync/store/supabase"
)

// version is set at build time via -ldflags "-X .../cli.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "chattersync",
	Short:   "Workforce sync and coaching pipeline",
	Long:    "Scheduled jobs that reconcile time tracking, roster, and performance data,\nplus a read-only operator API.",
	Version: version,
	SilenceUsage: true,
}

// Execute runs the CLI. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, log, nil
}

// Backend is the full store surface a subcommand may need. Both the REST
// store and the local SQLite store satisfy it.
type Backend interface {
	store.RosterStore
	store.ModelStore
	store.HoursStore
	store.MetricsStore
	store.CoachingStore
	store.ScoreStore
	store.SettingsStore
	store.RunStore
	store.NotificationSink
}

// openStore picks the REST store when configured, the local SQLite file
// otherwise. The returned closer is a no-op for the REST store.
func openStore(cfg *config.Config) (Backend, func() error, error) {
	if cfg.StoreURL != "" {
		return supabase.New(cfg.StoreURL, cfg.StoreKey), func() error { return nil }, nil
	}
	s, err := sqlite.New(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}
	return s, s.Close, nil
}
