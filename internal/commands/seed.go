package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.get(cmd.Context())
			if err != nil {
				return err
			}
			seeded, err := app.Sync.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "Default categories created")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Categories already present, nothing seeded")
			}
			return nil
		},
	}
}
