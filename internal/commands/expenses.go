package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensesync/internal/core"
)

func newExpensesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Record and inspect expenses",
	}
	cmd.AddCommand(
		newExpensesAddCommand(e),
		newExpensesListCommand(e),
		newExpensesShowCommand(e),
		newExpensesDeleteCommand(e),
	)
	return cmd
}

func newExpensesAddCommand(e *env) *cobra.Command {
	var form core.ExpenseForm
	var date string
	var images []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate and save an expense, then request a sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date == "" {
				form.Date = core.Today(e.now(), e.now().Location())
			} else {
				d, err := core.ParseDate(date)
				if err != nil {
					return err
				}
				form.Date = d
			}

			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}
			saved, err := app.Service.CreateExpense(cmd.Context(), form, images...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Title, "title", "", "expense title")
	cmd.Flags().StringVar(&form.Amount, "amount", "", "amount, e.g. 12.50")
	cmd.Flags().StringVar(&form.CategoryID, "category", "", "category id")
	cmd.Flags().StringVar(&form.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringArrayVar(&images, "image", nil, "photo to attach (repeatable)")

	return cmd
}

func newExpensesListCommand(e *env) *cobra.Command {
	var category, from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if category != "" && (from != "" || to != "") {
				return errors.New("--category cannot be combined with --from/--to")
			}
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var list []core.Expense
			switch {
			case category != "":
				list, err = app.Expenses.ListExpensesByCategory(ctx, category)
			case from != "" || to != "":
				start, end, perr := parseRange(from, to)
				if perr != nil {
					return perr
				}
				list, err = app.Expenses.ListExpensesByDateRange(ctx, start, end)
			default:
				list, err = app.Expenses.ListExpenses(ctx)
			}
			if err != nil {
				return err
			}
			return printExpenses(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only this category id")
	cmd.Flags().StringVar(&from, "from", "", "first date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date, inclusive (YYYY-MM-DD)")

	return cmd
}

func newExpensesShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one expense with its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}
			exp, err := app.Expenses.GetExpenseByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if exp == nil {
				return fmt.Errorf("expense %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", exp.ID)
			fmt.Fprintf(out, "Title:    %s\n", exp.Title)
			fmt.Fprintf(out, "Amount:   %s\n", core.FormatAmount(exp.Amount))
			fmt.Fprintf(out, "Date:     %s\n", exp.Date)
			fmt.Fprintf(out, "Category: %s\n", exp.CategoryID)
			if exp.Notes != "" {
				fmt.Fprintf(out, "Notes:    %s\n", exp.Notes)
			}
			fmt.Fprintf(out, "Synced:   %t\n", exp.IsSync)
			for _, img := range exp.Images {
				fmt.Fprintf(out, "Image:    %s %s uploaded=%t\n", img.ID, img.ImageURI, img.Uploaded())
			}
			return nil
		},
	}
}

func newExpensesDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense and its images locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}
			return app.Expenses.DeleteExpense(cmd.Context(), args[0])
		},
	}
}

func parseRange(from, to string) (core.Date, core.Date, error) {
	start, end := core.NewDate(2000, 1, 1), core.NewDate(2100, 12, 31)
	var err error
	if from != "" {
		if start, err = core.ParseDate(from); err != nil {
			return core.Date{}, core.Date{}, err
		}
	}
	if to != "" {
		if end, err = core.ParseDate(to); err != nil {
			return core.Date{}, core.Date{}, err
		}
	}
	if end.Before(start.Time) {
		return core.Date{}, core.Date{}, fmt.Errorf("--to %s is before --from %s", end, start)
	}
	return start, end, nil
}

func printExpenses(out io.Writer, list []core.Expense) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTITLE\tAMOUNT\tCATEGORY\tIMAGES\tSYNCED")
	for _, x := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%t\n",
			x.ID, x.Date, x.Title, core.FormatAmount(x.Amount), x.CategoryID, len(x.Images), x.IsSync)
	}
	return w.Flush()
}
