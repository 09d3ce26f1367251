package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"expensesync/internal/cli"
	"expensesync/internal/log"
)

// AppLoader builds the wired application for a command invocation.
type AppLoader func(ctx context.Context) (*cli.App, error)

// env is shared by every subcommand. The app is built on first use.
type env struct {
	load AppLoader
	now  func() time.Time
	app  *cli.App
}

func (e *env) get(ctx context.Context) (*cli.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	app, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	e.app = app
	return app, nil
}

func (e *env) close(ctx context.Context) error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close(ctx)
	e.app = nil
	return err
}

// DefaultLoader reads .env and the process environment, installs the logger
// and wires the application.
func DefaultLoader(ctx context.Context) (*cli.App, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	cli.SetupLogger(cfg, log.ComponentCLI)
	return cli.NewApp(ctx, cfg)
}

// Execute runs the CLI with args taken from the process and releases the app
// whether or not the command succeeded.
func Execute(ctx context.Context, load AppLoader) error {
	e := &env{load: load, now: time.Now}
	err := newRootCommand(e).ExecuteContext(ctx)
	if cerr := e.close(ctx); cerr != nil && err == nil {
		err = fmt.Errorf("closing app: %w", cerr)
	}
	return err
}

func newRootCommand(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "expensesync",
		Short: "Offline-first expense tracking with remote sync",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newSeedCommand(e),
		newCategoriesCommand(e),
		newExpensesCommand(e),
		newImagesCommand(e),
		newSyncCommand(e),
		newDashboardCommand(e),
		newWatchCommand(e),
	)

	return rootCmd
}
