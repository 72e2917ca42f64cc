package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"disk-burnin/internal/config"
	"disk-burnin/internal/history"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List past burn-in runs from the history database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		repo, err := history.NewRepository(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer repo.Close()

		runs, err := repo.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No burn-in runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDEVICE\tMODEL\tSERIAL\tMODE\tRESULT\tSTARTED\tPHASES")
		for _, run := range runs {
			mode := "live"
			if run.DryRun {
				mode = "dry-run"
			}
			result := "FAILED"
			if run.Success {
				result = "PASSED"
			}

			outcomes, err := repo.RunOutcomes(run.ID)
			if err != nil {
				return err
			}
			phases := ""
			for i, o := range outcomes {
				if i > 0 {
					phases += ", "
				}
				phases += fmt.Sprintf("%s=%s", o.Phase, o.Status)
			}

			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				run.ID, run.Device, run.Model, run.Serial, mode, result,
				run.StartedAt.Format(time.RFC3339), phases)
		}
		return w.Flush()
	},
}
