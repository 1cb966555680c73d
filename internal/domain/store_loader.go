package domain

import (
	"context"
	"fmt"
)

// LoadStoresFromRepositories hydrates the in-memory stores at startup.
// Cached settings take precedence over the snapshot's copy of them.
func LoadStoresFromRepositories(ctx context.Context, machine *MachineStore, buffer *TelemetryBuffer, snapRepo SnapshotRepository, settingsRepo SettingsRepository) error {
	state := DefaultScalarState()

	snap, ok, err := snapRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot from db: %w", err)
	}
	if ok {
		state = snap.State
		// A misaligned stored series leaves the chart empty.
		_ = buffer.Load(snap.Series)
	}

	cached, err := settingsRepo.All(ctx)
	if err != nil {
		return fmt.Errorf("load settings cache from db: %w", err)
	}
	for p, v := range cached {
		if p.Valid() {
			state.set(p, v)
		}
	}

	machine.Load(state)

	return nil
}
