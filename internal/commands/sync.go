package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"expensesync/internal/repository"
)

func newSyncCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "sync [entity...]",
		Short:     "Push unsynced rows and pull missing ones",
		Long:      "Reconciles categories, expenses and expense_images with the remote, in that order. Naming entities restricts the run.",
		ValidArgs: []string{repository.EntityCategories, repository.EntityExpenses, repository.EntityImages},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}
			reports, err := app.Sync.Sync(cmd.Context(), args...)
			printReports(cmd.OutOrStdout(), reports)
			return err
		},
	}
}

func printReports(out io.Writer, reports []repository.SyncReport) {
	for _, r := range reports {
		fmt.Fprintf(out, "%s: pushed %d, pulled %d, failed %d (%s)\n",
			r.Entity, r.Pushed(), r.Pulled(), len(r.Failures()), r.Duration.Round(time.Millisecond))
		for _, f := range r.Failures() {
			fmt.Fprintf(out, "  %s %s: %v\n", f.Phase, f.ID, f.Err)
		}
		if r.PullErr != nil {
			fmt.Fprintf(out, "  pull: %v\n", r.PullErr)
		}
	}
}
