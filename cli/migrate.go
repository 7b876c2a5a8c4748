package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agencyops/chattersync/jobs"
	"github.com/agencyops/chattersync/upstream/airtable"
)

var migrateDryRun bool

var migrateScoresCmd = &cobra.Command{
	Use:   "migrate-scores",
	Short: "Import legacy directory score rows as score events",
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

		job := &jobs.MigrateScores{
			Log:       log,
			Cfg:       cfg,
			Directory: airtable.New(cfg.DirectoryURL, cfg.DirectoryBaseID, cfg.DirectoryToken),
			Roster:    backend,
			Scores:    backend,
			Runs:      backend,
		}
		result, err := job.Run(cmd.Context(), migrateDryRun)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if migrateDryRun {
			fmt.Fprintln(out, "dry run - nothing written")
		}
		fmt.Fprintf(out, "processed=%d imported=%d skipped=%d unmatched=%d\n",
			result.Processed, result.Imported, result.Skipped, len(result.Unmatched))
		for _, name := range result.Unmatched {
			fmt.Fprintf(out, "  unmatched: %s\n", name)
		}
		return nil
	},
}

func init() {
	migrateScoresCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false,
		"report what would be imported without writing")
	rootCmd.AddCommand(migrateScoresCmd)
}
