package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newImagesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Attach and remove expense photos",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <expense-id> <file>",
			Short: "Compress a photo and attach it to an expense",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := e.get(cmd.Context())
				if err != nil {
					return err
				}
				img, err := app.Expenses.AddExpenseImage(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), img.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <image-id>",
			Short: "Delete a photo locally (the uploaded copy is kept)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := e.get(cmd.Context())
				if err != nil {
					return err
				}
				return app.Expenses.DeleteExpenseImage(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "list <expense-id>",
			Short: "List the photos of an expense",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := e.get(cmd.Context())
				if err != nil {
					return err
				}
				imgs, err := app.Expenses.GetExpenseImages(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tFILE\tTHUMBNAIL\tREMOTE URL")
				for _, img := range imgs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", img.ID, img.ImageURI, img.ThumbnailURI, img.RemoteURL)
				}
				return w.Flush()
			},
		},
	)
	return cmd
}
