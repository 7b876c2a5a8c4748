package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agencyops/chattersync/jobs"
	"github.com/agencyops/chattersync/upstream/airtable"
	"github.com/agencyops/chattersync/upstream/hubstaff"
)

// =============================================================================
// SYNC COMMANDS
// =============================================================================

var backfillDays int

var syncHoursCmd = &cobra.Command{
	Use:   "sync-hours",
	Short: "Reconcile tracker activity into hour records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		backend, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		job := &jobs.HoursSync{
			Log:      log,
			Cfg:      cfg,
			Tracker:  hubstaff.New(cfg.TrackerAPIURL, cfg.TrackerTokenURL),
			Roster:   backend,
			Hours:    backend,
			Settings: backend,
			Runs:     backend,
		}
		rep, err := job.Run(cmd.Context(), backfillDays)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rep.Render())
		return nil
	},
}

var syncRosterCmd = &cobra.Command{
	Use:   "sync-roster",
	Short: "Copy directory chatters and models into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		backend, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		job := &jobs.RosterSync{
			Log:       log,
			Cfg:       cfg,
			Directory: airtable.New(cfg.DirectoryURL, cfg.DirectoryBaseID, cfg.DirectoryToken),
			Roster:    backend,
			Models:    backend,
			Runs:      backend,
		}
		return job.Run(cmd.Context())
	},
}

func init() {
	syncHoursCmd.Flags().IntVar(&backfillDays, "backfill", 0,
		"override the lookback window in days (capped by max_backfill_days)")
	rootCmd.AddCommand(syncHoursCmd, syncRosterCmd)
}
