package main

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/brewdash/brewdash/internal/domain"
	"github.com/brewdash/brewdash/internal/persistence"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or clear the locally stored dashboard snapshot",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored snapshot and cached settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			snap, ok, err := persistence.NewSnapshotRepo(db, nil).Load(cmd.Context())
			if err != nil {
				return err
			}
			cached, err := persistence.NewSettingsRepo(db).All(cmd.Context())
			if err != nil {
				return err
			}
			writeSnapshot(cmd.OutOrStdout(), snap, ok, cached)

			return nil
		},
	}

	var snapshotOnly bool
	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored snapshot and cached settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			scope := persistence.ClearAll
			if snapshotOnly {
				scope = persistence.ClearSnapshot
			}
			if err := persistence.Clear(cmd.Context(), db, scope); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Local data cleared (%s)\n", scope)

			return nil
		},
	}
	clear.Flags().BoolVar(&snapshotOnly, "snapshot-only", false, "keep the cached device settings")

	cmd.AddCommand(show, clear)

	return cmd
}

func openDB(cmd *cobra.Command) (*sql.DB, error) {
	paths, err := resolvePaths(cmd)
	if err != nil {
		return nil, err
	}

	return persistence.Open(cmd.Context(), paths.DBFile)
}

func writeSnapshot(out io.Writer, snap domain.Snapshot, ok bool, cached map[domain.Parameter]float64) {
	if !ok {
		fmt.Fprintln(out, "No snapshot stored")
	} else {
		state := snap.State
		fmt.Fprintf(out, "Saved at:       %s\n", snap.SavedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "Temperature:    %.2f°C\n", state.Temp)
		fmt.Fprintf(out, "Setpoint:       %.2f°C\n", state.Setpoint)
		fmt.Fprintf(out, "Pressure:       %.2f bar\n", state.Pressure)
		fmt.Fprintf(out, "Shot weight:    %.1fg\n", state.ShotWeightGrams())
		fmt.Fprintf(out, "Status:         %s\n", state.Phase())
		fmt.Fprintf(out, "Series points:  %d\n", snap.Series.Len())
		if last, ok := snap.Series.Last(); ok {
			fmt.Fprintf(out, "Last point:     %s\n", last.At.Format(time.RFC3339))
		}
	}

	if len(cached) == 0 {
		return
	}
	fmt.Fprintln(out, "Cached settings:")
	for _, p := range domain.Parameters() {
		if v, ok := cached[p]; ok {
			fmt.Fprintf(out, "  %-22s %g\n", p.Label()+":", v)
		}
	}
}
