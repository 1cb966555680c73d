package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/brewdash/brewdash/internal/app"
	"github.com/brewdash/brewdash/internal/command"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
)

const defaultCommandTimeout = 15 * time.Second

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <parameter> <value>",
		Short: "Change one controller parameter",
		Long: `Change one controller parameter. Parameters: setpoint,
preInfusionTime, preInfusionPressure, shotPressure.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParseParameter(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			rt, err := openRuntime(cmd, app.Options{Offline: true})
			if err != nil {
				return err
			}
			defer func() {
				_ = rt.Close()
			}()

			result, err := submitChange(cmd.Context(), rt, p, value, timeout)
			if err != nil {
				return err
			}
			if message, failed := commandFailure(result); failed {
				return errors.New(message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", p.Label(), strconv.FormatFloat(value, 'f', -1, 64))

			return nil
		},
	}
	cmd.Flags().Duration("timeout", defaultCommandTimeout, "how long to wait for the controller")

	return cmd
}

// submitChange runs one edit through the dispatcher and waits for its
// outcome on the bus.
func submitChange(ctx context.Context, rt *app.Runtime, p domain.Parameter, value float64, timeout time.Duration) (connectors.CommandResult, error) {
	sub := rt.Bus.Subscribe(connectors.TopicCommandDone)
	defer rt.Bus.Unsubscribe(sub, connectors.TopicCommandDone)

	if err := rt.Dispatcher.RequestChange(p, value); err != nil {
		return connectors.CommandResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return connectors.CommandResult{}, fmt.Errorf("waiting for %s: %w", p, ctx.Err())
		case raw, ok := <-sub:
			if !ok {
				return connectors.CommandResult{}, command.ErrClosed
			}
			result, ok := raw.(connectors.CommandResult)
			if !ok || result.Parameter != string(p) {
				continue
			}

			return result, nil
		}
	}
}

func commandFailure(result connectors.CommandResult) (string, bool) {
	switch {
	case result.Busy:
		return command.BusyMessage, true
	case result.Failed():
		return fmt.Sprintf("%s (%s)", command.FailureMessage(result.Parameter), result.Err), true
	default:
		return "", false
	}
}

func newBrewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "brew on|off",
		Short:     "Start or stop a shot",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			rt, err := openRuntime(cmd, app.Options{Offline: true})
			if err != nil {
				return err
			}
			defer func() {
				_ = rt.Close()
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := rt.Dispatcher.SetBrewing(ctx, on); err != nil {
				return err
			}
			if on {
				fmt.Fprintln(cmd.OutOrStdout(), "Brewing started")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Brewing stopped")
			}

			return nil
		},
	}
	cmd.Flags().Duration("timeout", defaultCommandTimeout, "how long to wait for the controller")

	return cmd
}

func parseOnOff(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "start", "1", "true":
		return true, nil
	case "off", "stop", "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", raw)
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Fetch the controller's extraction config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")

			rt, err := openRuntime(cmd, app.Options{Offline: true})
			if err != nil {
				return err
			}
			defer func() {
				_ = rt.Close()
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			settings, err := rt.Dispatcher.RefreshConfig(ctx)
			if err != nil {
				return err
			}
			writeSettings(cmd, settings)

			return nil
		},
	}
	cmd.Flags().Duration("timeout", defaultCommandTimeout, "how long to wait for the controller")

	return cmd
}

func writeSettings(cmd *cobra.Command, settings domain.DeviceSettings) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-22s %.1fs\n", domain.ParamPreInfusionTime.Label()+":", settings.PreInfusionTime)
	fmt.Fprintf(out, "%-22s %.1f bar\n", domain.ParamPreInfusionPressure.Label()+":", settings.PreInfusionPressure)
	fmt.Fprintf(out, "%-22s %.1f bar\n", domain.ParamShotPressure.Label()+":", settings.ShotPressure)
}
