package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/brewdash/brewdash/internal/app"
	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
	"github.com/brewdash/brewdash/internal/metrics"
	"github.com/brewdash/brewdash/internal/notifications"
)

const metricsShutdownTimeout = 3 * time.Second

type watchOptions struct {
	MetricsAddr string
	Notify      bool
	Raw         bool
}

func newWatchCmd() *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the telemetry stream and print readings",
		Long: `Follow the telemetry stream until interrupted. Holds the stream
lock, so it cannot run next to the desktop app for the same controller.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9101")
	cmd.Flags().BoolVar(&opts.Notify, "notify", false, "send desktop notifications for connection changes and failed updates")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print raw stream frames")

	return cmd
}

func runWatch(cmd *cobra.Command, opts watchOptions) error {
	paths, err := resolvePaths(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("device is not configured (%s): %w", paths.ConfigFile, err)
	}
	lock, err := app.LockStream(cfg.Device)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release()
	}()

	ctx := cmd.Context()
	if opts.MetricsAddr != "" {
		stopMetrics := serveMetrics(opts.MetricsAddr)
		defer stopMetrics()
	}

	topics := []string{connectors.TopicConnStatus, connectors.TopicMachineState, connectors.TopicCommandDone}
	if opts.Raw {
		topics = append(topics, connectors.TopicRawFrameIn)
	}

	rt, err := openRuntime(cmd, app.Options{})
	if err != nil {
		return err
	}
	sub := rt.Bus.Subscribe(topics...)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printEvents(cmd.OutOrStdout(), sub)
	}()

	if opts.Notify {
		logger := rt.LogManager.Logger("notifications")
		notifier := app.NewNotificationService(
			rt.Bus,
			rt.CurrentConfig,
			func() bool { return false },
			notifications.Throttle(notifications.NewDesktopSender(app.Name, logger), notifications.DefaultThrottleWindow),
			logger,
		)
		notifier.Start(ctx)
	}

	<-ctx.Done()
	// Closing the runtime shuts the bus down, which ends printEvents.
	err = rt.Close()
	<-printed

	return err
}

// printEvents writes one line per bus event until the subscription closes.
func printEvents(out io.Writer, sub bus.Subscription) {
	for raw := range sub {
		if line, ok := formatEvent(raw); ok {
			fmt.Fprintln(out, line)
		}
	}
}

func formatEvent(raw any) (string, bool) {
	switch event := raw.(type) {
	case connectors.ConnectionStatus:
		line := fmt.Sprintf("[%s] %s", event.State, event.Target)
		if event.MaxAttempts > 0 && event.Attempt > 0 {
			line += fmt.Sprintf(" attempt %d/%d", event.Attempt, event.MaxAttempts)
		}
		if event.Err != "" {
			line += ": " + event.Err
		}

		return line, true
	case domain.MachineUpdate:
		state := event.State

		return fmt.Sprintf(
			"%-12s temp=%.2f°C setpoint=%.0f°C pressure=%.2f bar target=%.2f bar weight=%.1fg",
			state.Phase(), state.Temp, state.Setpoint, state.Pressure, state.TargetPressure, state.ShotWeightGrams(),
		), true
	case connectors.CommandResult:
		if message, failed := commandFailure(event); failed {
			return "[command] " + message, true
		}

		return fmt.Sprintf("[command] %s accepted", event.Parameter), true
	case connectors.RawFrame:
		return "[raw] " + event.Text, true
	default:
		return "", false
	}
}

// serveMetrics exposes the Prometheus registry until the returned func runs.
func serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics listener failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
