package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSnapshotRepo struct {
	snap  Snapshot
	ok    bool
	err   error
	saved []Snapshot
}

func (r *fakeSnapshotRepo) Save(_ context.Context, snap Snapshot) error {
	r.saved = append(r.saved, snap)

	return nil
}

func (r *fakeSnapshotRepo) Load(context.Context) (Snapshot, bool, error) {
	return r.snap, r.ok, r.err
}

type fakeSettingsRepo struct {
	values map[Parameter]float64
}

func (r *fakeSettingsRepo) Put(_ context.Context, p Parameter, v float64) error {
	if r.values == nil {
		r.values = make(map[Parameter]float64)
	}
	r.values[p] = v

	return nil
}

func (r *fakeSettingsRepo) All(context.Context) (map[Parameter]float64, error) {
	return r.values, nil
}

func TestLoadStoresFromRepositories_RestoresSnapshotAndCache(t *testing.T) {
	state := DefaultScalarState()
	state.Temp = 93
	state.Setpoint = 101
	snapRepo := &fakeSnapshotRepo{
		ok: true,
		snap: Snapshot{
			State: state,
			Series: Series{
				Timestamps:     []int64{1, 2},
				BrewTemp:       []float64{93, 93.5},
				Pressure:       []float64{2.1, 2.4},
				TargetPressure: []float64{0, 0},
				PumpDuty:       []float64{0, 0},
				ShotGrams:      []float64{0, 0},
			},
		},
	}
	settingsRepo := &fakeSettingsRepo{values: map[Parameter]float64{
		ParamShotPressure: 9.5,
		Parameter("steam"): 1,
	}}

	machine := NewMachineStore()
	buffer := NewTelemetryBuffer(0)
	if err := LoadStoresFromRepositories(context.Background(), machine, buffer, snapRepo, settingsRepo); err != nil {
		t.Fatalf("load stores: %v", err)
	}

	got := machine.Snapshot()
	if got.Temp != 93 || got.Setpoint != 101 {
		t.Fatalf("unexpected restored state %+v", got)
	}
	if got.Settings.ShotPressure != 9.5 {
		t.Fatalf("expected cached shot pressure, got %v", got.Settings.ShotPressure)
	}
	if buffer.Len() != 2 {
		t.Fatalf("expected 2 restored samples, got %d", buffer.Len())
	}
}

func TestLoadStoresFromRepositories_MisalignedSeriesIsDropped(t *testing.T) {
	snapRepo := &fakeSnapshotRepo{
		ok: true,
		snap: Snapshot{
			State:  DefaultScalarState(),
			Series: Series{Timestamps: []int64{1, 2}, BrewTemp: []float64{90}},
		},
	}
	buffer := NewTelemetryBuffer(0)
	if err := LoadStoresFromRepositories(context.Background(), NewMachineStore(), buffer, snapRepo, &fakeSettingsRepo{}); err != nil {
		t.Fatalf("load stores: %v", err)
	}
	if buffer.Len() != 0 {
		t.Fatalf("expected empty buffer, got %d", buffer.Len())
	}
}

func TestLoadStoresFromRepositories_NoSnapshotUsesDefaults(t *testing.T) {
	machine := NewMachineStore()
	machine.ApplyLocal(ParamSetpoint, 110)
	if err := LoadStoresFromRepositories(context.Background(), machine, NewTelemetryBuffer(0), &fakeSnapshotRepo{}, &fakeSettingsRepo{}); err != nil {
		t.Fatalf("load stores: %v", err)
	}
	if got := machine.Value(ParamSetpoint); got != DefaultScalarState().Setpoint {
		t.Fatalf("expected default setpoint, got %v", got)
	}
}

func TestLoadStoresFromRepositories_PropagatesErrors(t *testing.T) {
	snapRepo := &fakeSnapshotRepo{err: errors.New("disk gone")}
	err := LoadStoresFromRepositories(context.Background(), NewMachineStore(), NewTelemetryBuffer(0), snapRepo, &fakeSettingsRepo{})
	if err == nil || !errors.Is(err, snapRepo.err) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

type syncQueue struct{ names []string }

func (q *syncQueue) Enqueue(name string, fn func(context.Context) error) {
	q.names = append(q.names, name)
	_ = fn(context.Background())
}

func TestSnapshotProjectionFlush_SavesCurrentState(t *testing.T) {
	machine := NewMachineStore()
	machine.ApplyLocal(ParamSetpoint, 99)
	buffer := NewTelemetryBuffer(0)
	buffer.Append(TelemetrySample{At: time.UnixMilli(10), BrewTemp: 92, Pressure: 3})
	repo := &fakeSnapshotRepo{}

	projection := NewSnapshotProjection(machine, buffer, repo, &syncQueue{}, time.Second, nil)
	projection.Flush(context.Background())

	if len(repo.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(repo.saved))
	}
	saved := repo.saved[0]
	if saved.State.Setpoint != 99 || saved.Series.Len() != 1 {
		t.Fatalf("unexpected saved snapshot %+v", saved)
	}
}
