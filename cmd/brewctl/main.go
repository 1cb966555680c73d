// Command brewctl drives the espresso controller without the desktop UI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brewdash/brewdash/internal/app"
)

const flagConfigDir = "config-dir"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "brewctl",
		Short: "Headless control for the brewdash espresso controller",
		Long: `brewctl shares config, local snapshot and stream lock with the
brewdash desktop app. It can follow the telemetry stream, change
extraction parameters and start or stop a shot.`,
		Version:       app.BuildVersionWithDate(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(flagConfigDir, "", "directory holding config, log and database (default: user config dir)")

	root.AddCommand(newWatchCmd())
	root.AddCommand(newSetCmd())
	root.AddCommand(newBrewCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newSnapshotCmd())

	return root
}

func resolvePaths(cmd *cobra.Command) (app.Paths, error) {
	dir, _ := cmd.Flags().GetString(flagConfigDir)
	if dir != "" {
		return app.PathsIn(dir)
	}

	return app.ResolvePaths()
}

// openRuntime initializes the shared runtime. The caller owns Close.
func openRuntime(cmd *cobra.Command, opts app.Options) (*app.Runtime, error) {
	paths, err := resolvePaths(cmd)
	if err != nil {
		return nil, err
	}
	if opts.LogOutput == nil {
		opts.LogOutput = cmd.ErrOrStderr()
	}
	rt, err := app.InitializeWithPaths(cmd.Context(), paths, opts)
	if err != nil {
		return nil, fmt.Errorf("initialize runtime: %w", err)
	}

	return rt, nil
}
