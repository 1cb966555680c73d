package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brewdash/brewdash/internal/domain"
)

// SnapshotKey namespaces the dashboard snapshot record.
const SnapshotKey = "espressoAppState"

type snapshotRecord struct {
	Temp                float64      `json:"temp"`
	Setpoint            float64      `json:"setpoint"`
	Pressure            float64      `json:"pressure"`
	BrewTemp            float64      `json:"brewTemp"`
	TargetPressure      float64      `json:"targetPressure"`
	PumpDuty            float64      `json:"pumpDuty"`
	ShotGrams           float64      `json:"shotGrams"`
	PumpOnTime          float64      `json:"pumpOnTime"`
	BrewSwitch          *bool        `json:"brewSwitch,omitempty"`
	PreInfusing         bool         `json:"preInfusing"`
	PreInfusionTime     float64      `json:"preInfusionTime"`
	PreInfusionPressure float64      `json:"preInfusionPressure"`
	ShotPressure        float64      `json:"shotPressure"`
	Series              seriesRecord `json:"series"`
}

type seriesRecord struct {
	Timestamps     []int64   `json:"timestamps"`
	BrewTemp       []float64 `json:"brewTemp"`
	Pressure       []float64 `json:"pressure"`
	TargetPressure []float64 `json:"targetPressure"`
	PumpDuty       []float64 `json:"pumpDuty"`
	ShotGrams      []float64 `json:"shotGrams"`
}

type SnapshotRepo struct {
	db     *sql.DB
	key    string
	logger *slog.Logger
}

func NewSnapshotRepo(db *sql.DB, logger *slog.Logger) *SnapshotRepo {
	if logger == nil {
		logger = slog.Default().With("component", "persistence")
	}

	return &SnapshotRepo{db: db, key: SnapshotKey, logger: logger}
}

func (r *SnapshotRepo) Save(ctx context.Context, snap domain.Snapshot) error {
	raw, err := json.Marshal(encodeSnapshot(snap))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots(key, payload, saved_at)
		VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			saved_at = excluded.saved_at
	`, r.key, compressBlob(raw), savedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	return nil
}

// Load returns ok=false when no snapshot is stored or the stored record is
// unreadable. Only database failures are returned as errors.
func (r *SnapshotRepo) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	var (
		blob    []byte
		savedMs int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT payload, saved_at FROM snapshots WHERE key = ?
	`, r.key).Scan(&blob, &savedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("select snapshot: %w", err)
	}

	raw, err := decompressBlob(blob)
	if err != nil {
		r.logger.Warn("discarding unreadable snapshot", "error", err)

		return domain.Snapshot{}, false, nil
	}
	// Keys missing from an older or partial record keep their defaults.
	rec := encodeSnapshot(domain.Snapshot{State: domain.DefaultScalarState()})
	if err := json.Unmarshal(raw, &rec); err != nil {
		r.logger.Warn("discarding malformed snapshot", "error", err)

		return domain.Snapshot{}, false, nil
	}

	snap := decodeSnapshot(rec)
	if savedMs > 0 {
		snap.SavedAt = time.UnixMilli(savedMs)
	}

	return snap, true, nil
}

func (r *SnapshotRepo) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, r.key); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	return nil
}

func encodeSnapshot(snap domain.Snapshot) snapshotRecord {
	st := snap.State
	rec := snapshotRecord{
		Temp:                st.Temp,
		Setpoint:            st.Setpoint,
		Pressure:            st.Pressure,
		BrewTemp:            st.BrewTemp,
		TargetPressure:      st.TargetPressure,
		PumpDuty:            st.PumpDuty,
		ShotGrams:           st.ShotGrams,
		PumpOnTime:          st.PumpOnTime,
		PreInfusing:         st.PreInfusing,
		PreInfusionTime:     st.Settings.PreInfusionTime,
		PreInfusionPressure: st.Settings.PreInfusionPressure,
		ShotPressure:        st.Settings.ShotPressure,
		Series: seriesRecord{
			Timestamps:     nonNil(snap.Series.Timestamps),
			BrewTemp:       nonNil(snap.Series.BrewTemp),
			Pressure:       nonNil(snap.Series.Pressure),
			TargetPressure: nonNil(snap.Series.TargetPressure),
			PumpDuty:       nonNil(snap.Series.PumpDuty),
			ShotGrams:      nonNil(snap.Series.ShotGrams),
		},
	}
	if st.BrewSwitchKnown {
		brewSwitch := st.BrewSwitch
		rec.BrewSwitch = &brewSwitch
	}

	return rec
}

func decodeSnapshot(rec snapshotRecord) domain.Snapshot {
	state := domain.ScalarState{
		Temp:           rec.Temp,
		Setpoint:       rec.Setpoint,
		Pressure:       rec.Pressure,
		BrewTemp:       rec.BrewTemp,
		TargetPressure: rec.TargetPressure,
		PumpDuty:       rec.PumpDuty,
		ShotGrams:      rec.ShotGrams,
		PumpOnTime:     rec.PumpOnTime,
		PreInfusing:    rec.PreInfusing,
		Settings: domain.DeviceSettings{
			PreInfusionTime:     rec.PreInfusionTime,
			PreInfusionPressure: rec.PreInfusionPressure,
			ShotPressure:        rec.ShotPressure,
		},
	}
	if rec.BrewSwitch != nil {
		state.BrewSwitch = *rec.BrewSwitch
		state.BrewSwitchKnown = true
	}

	return domain.Snapshot{
		State: state,
		Series: domain.Series{
			Timestamps:     rec.Series.Timestamps,
			BrewTemp:       rec.Series.BrewTemp,
			Pressure:       rec.Series.Pressure,
			TargetPressure: rec.Series.TargetPressure,
			PumpDuty:       rec.Series.PumpDuty,
			ShotGrams:      rec.Series.ShotGrams,
		},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
