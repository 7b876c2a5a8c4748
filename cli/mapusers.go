package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agencyops/chattersync/jobs"
	"github.com/agencyops/chattersync/upstream/hubstaff"
)

var mapUsersDryRun bool

var mapUsersCmd = &cobra.Command{
	Use:   "map-users",
	Short: "Link tracker accounts to chatters by name",
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

		job := &jobs.MapUsers{
			Log:      log,
			Cfg:      cfg,
			Tracker:  hubstaff.New(cfg.TrackerAPIURL, cfg.TrackerTokenURL),
			Roster:   backend,
			Settings: backend,
			Runs:     backend,
		}
		result, err := job.Run(cmd.Context(), mapUsersDryRun)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if mapUsersDryRun {
			fmt.Fprintln(out, "dry run - nothing written")
		}
		for id, chatter := range result.Mapped {
			fmt.Fprintf(out, "mapped %d -> %s\n", id, chatter.FullName)
		}
		for id, name := range result.Unmatched {
			fmt.Fprintf(out, "unmatched tracker user %d (%q)\n", id, name)
		}
		for _, c := range result.Unclaimed {
			fmt.Fprintf(out, "still unmapped: %s\n", c.FullName)
		}
		return nil
	},
}

func init() {
	mapUsersCmd.Flags().BoolVar(&mapUsersDryRun, "dry-run", false,
		"report what would be mapped without writing")
	rootCmd.AddCommand(mapUsersCmd)
}
