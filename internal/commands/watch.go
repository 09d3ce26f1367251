package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensesync/internal/core"
	"expensesync/internal/watch"
)

func newWatchCommand(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:       "watch <expenses|categories>",
		Short:     "Print a snapshot now and after every local change",
		Long:      "Prints the current rows, then a new snapshot after every change made by this process. Changes come from an in-process hub, so mutations made by other expensesync runs or by the sync worker are not seen until the command is started again.",
		ValidArgs: []string{watch.TopicExpenses, watch.TopicCategories},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if args[0] == watch.TopicCategories {
				feed, err := app.Categories.WatchCategories(cmd.Context())
				if err != nil {
					return err
				}
				return follow(feed, limit, func(cats []core.Category) error {
					fmt.Fprintf(out, "-- %d categories\n", len(cats))
					return printCategories(out, cats)
				})
			}
			feed, err := app.Expenses.WatchExpenses(cmd.Context())
			if err != nil {
				return err
			}
			return follow(feed, limit, func(list []core.Expense) error {
				fmt.Fprintf(out, "-- %d expenses\n", len(list))
				return printExpenses(out, list)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "count", 0, "exit after this many snapshots (0 follows until interrupted)")

	return cmd
}

// follow prints snapshots until the feed closes or limit is reached.
func follow[T any](feed *watch.Feed[T], limit int, show func(T) error) error {
	defer feed.Close()
	n := 0
	for snap := range feed.C {
		if err := show(snap); err != nil {
			return err
		}
		n++
		if limit > 0 && n >= limit {
			return nil
		}
	}
	return feed.Err()
}
