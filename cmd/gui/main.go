package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/brewdash/brewdash/internal/app"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/platform"
	"github.com/brewdash/brewdash/internal/ui"
)

type launchOptions struct {
	StartHidden bool
	ConfigDir   string
}

func parseLaunchOptions(args []string) (launchOptions, error) {
	var opts launchOptions
	fs := pflag.NewFlagSet(app.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.StartHidden, "start-hidden", false, "start minimized to the system tray")
	fs.StringVar(&opts.ConfigDir, "config-dir", "", "directory holding config, log and database")
	if err := fs.Parse(args); err != nil {
		return launchOptions{}, err
	}
	if fs.NArg() > 0 {
		return launchOptions{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	return opts, nil
}

func resolvePaths(opts launchOptions) (app.Paths, error) {
	if opts.ConfigDir != "" {
		return app.PathsIn(opts.ConfigDir)
	}

	return app.ResolvePaths()
}

func main() {
	opts, err := parseLaunchOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app.Name, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths, err := resolvePaths(opts)
	if err != nil {
		slog.Error("resolve app paths", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	lock, err := app.LockStream(cfg.Device)
	switch {
	case errors.Is(err, platform.ErrStreamInUse):
		slog.Error("another brewdash process is already streaming from this controller", "target", app.ConnectionTarget(cfg.Device))
		os.Exit(1)
	case errors.Is(err, platform.ErrStreamLockUnsupported):
		slog.Warn("stream lock is not supported on this platform")
	case err != nil:
		slog.Error("acquire stream lock", "error", err)
		os.Exit(1)
	default:
		defer func() {
			_ = lock.Release()
		}()
	}

	rt, err := app.InitializeWithPaths(ctx, paths, app.Options{
		Login: platform.NewLoginRegistrar(app.Name, opts.ConfigDir),
	})
	if err != nil {
		slog.Error("initialize app runtime", "error", err)
		os.Exit(1)
	}

	var closeOnce sync.Once
	closeRuntime := func() {
		closeOnce.Do(func() {
			_ = rt.Close()
		})
	}
	defer closeRuntime()

	launch := ui.LaunchOptions{StartHidden: opts.StartHidden || rt.CurrentConfig().UI.StartMinimized}
	err = ui.Run(ui.BuildRuntimeDependencies(rt, launch, func() {
		stop()
		closeRuntime()
	}))
	if err != nil {
		slog.Error("run ui", "error", err)
		os.Exit(1)
	}
}
