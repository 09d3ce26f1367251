package main

import (
	"context"
	"os"

	"expensesync/internal/cli"
	"expensesync/internal/commands"
)

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	err := commands.Execute(ctx, commands.DefaultLoader)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
