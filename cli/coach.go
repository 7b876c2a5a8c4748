package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agencyops/chattersync/jobs"
)

var coachAllTeams bool

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Evaluate yesterday's metrics into coaching tasks",
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

		job := &jobs.Coach{
			Log:     log,
			Cfg:     cfg,
			Roster:  backend,
			Metrics: backend,
			Store:   backend,
			Notify:  backend,
			Runs:    backend,
		}
		result, err := job.Run(cmd.Context(), time.Now(), coachAllTeams)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "day=%s evaluated=%d tasks=%d skipped=%d\n",
			result.Day, result.Evaluated, len(result.Tasks), result.Skipped)
		for _, t := range result.Tasks {
			fmt.Fprintf(out, "  P%d %s (%d flags)\n", t.Priority, t.ChatterName, len(t.Flags))
		}
		return nil
	},
}

func init() {
	coachCmd.Flags().BoolVar(&coachAllTeams, "all-teams", false,
		"evaluate every team regardless of shift windows")
	rootCmd.AddCommand(coachCmd)
}
