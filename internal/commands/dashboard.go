package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensesync/internal/core"
)

func newDashboardCommand(e *env) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize spending for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			now := e.now()
			start, end := p.Range(core.Today(now, now.Location()))
			expenses, err := app.Expenses.ListExpensesByDateRange(ctx, start, end)
			if err != nil {
				return err
			}
			cats, err := app.Categories.ListCategories(ctx)
			if err != nil {
				return err
			}
			s := core.Summarize(expenses, cats, start, end)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s to %s\n", s.Start, s.End)
			fmt.Fprintf(out, "Total: %s\n\n", core.FormatAmount(s.Total))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tAMOUNT\tSHARE")
			for _, c := range s.ByCategory {
				fmt.Fprintf(w, "%s\t%s\t%s%%\n", c.Category.Name, core.FormatAmount(c.Amount), c.Percentage.StringFixed(2))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "DAY\tAMOUNT\t")
			for _, d := range s.Daily {
				fmt.Fprintf(w, "%s\t%s\t\n", d.Date, core.FormatAmount(d.Amount))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&period, "period", string(core.PeriodMonth), "week, month, year or all")

	return cmd
}
