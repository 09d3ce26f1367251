package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensesync/internal/core"
)

func newCategoriesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
	}
	cmd.AddCommand(
		newCategoriesListCommand(e),
		newCategoriesAddCommand(e),
		newCategoriesDeleteCommand(e),
	)
	return cmd
}

func newCategoriesListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}
			cats, err := app.Categories.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			return printCategories(cmd.OutOrStdout(), cats)
		},
	}
}

func newCategoriesAddCommand(e *env) *cobra.Command {
	var name, icon, color string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}
			id, err := app.Categories.AddCategory(cmd.Context(), core.Category{
				Name:  name,
				Icon:  icon,
				Color: color,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "category name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&icon, "icon", "other", "icon key")
	cmd.Flags().StringVar(&color, "color", "#9E9E9E", "hex color")

	return cmd
}

func newCategoriesDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}
			return app.Categories.DeleteCategory(cmd.Context(), args[0])
		},
	}
}

func printCategories(out io.Writer, cats []core.Category) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tICON\tCOLOR\tSYNCED")
	for _, c := range cats {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", c.ID, c.Name, c.Icon, c.Color, c.IsSync)
	}
	return w.Flush()
}
