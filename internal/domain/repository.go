package domain

import "context"

type SnapshotRepository interface {
	Save(ctx context.Context, snap Snapshot) error
	// Load returns ok=false when nothing usable is stored.
	Load(ctx context.Context) (snap Snapshot, ok bool, err error)
}

// SettingsRepository caches the last value the controller accepted per parameter.
type SettingsRepository interface {
	Put(ctx context.Context, p Parameter, value float64) error
	All(ctx context.Context) (map[Parameter]float64, error)
}
