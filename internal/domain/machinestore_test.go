package domain

import "testing"

type guardFunc func(Parameter) bool

func (f guardFunc) Pending(p Parameter) bool { return f(p) }

func TestMachineStoreMerge_UpdatesOnlyPresentFields(t *testing.T) {
	store := NewMachineStore()
	store.Merge(Reading{Temp: float(91), PumpOnTime: float(3)})
	state := store.Merge(Reading{Pressure: float(5)})

	if state.Temp != 91 {
		t.Fatalf("expected temp to be kept, got %v", state.Temp)
	}
	if state.Pressure != 5 || state.PumpOnTime != 3 {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.Setpoint != DefaultScalarState().Setpoint {
		t.Fatalf("expected default setpoint, got %v", state.Setpoint)
	}
}

func TestMachineStoreMerge_SkipsGuardedSetpoint(t *testing.T) {
	store := NewMachineStore()
	pending := true
	store.SetGuard(guardFunc(func(p Parameter) bool { return pending && p == ParamSetpoint }))

	store.ApplyLocal(ParamSetpoint, 97)
	state := store.Merge(Reading{Setpoint: float(93), Temp: float(90)})
	if state.Setpoint != 97 {
		t.Fatalf("expected pending edit to win, got %v", state.Setpoint)
	}
	if state.Temp != 90 {
		t.Fatalf("expected unguarded field to update, got %v", state.Temp)
	}

	pending = false
	state = store.Merge(Reading{Setpoint: float(93)})
	if state.Setpoint != 93 {
		t.Fatalf("expected authoritative value after guard cleared, got %v", state.Setpoint)
	}
}

func TestMachineStoreMergeSettings_IgnoresZeroAbsentAndGuarded(t *testing.T) {
	store := NewMachineStore()
	store.SetGuard(guardFunc(func(p Parameter) bool { return p == ParamShotPressure }))

	state := store.MergeSettings(PartialSettings{
		PreInfusionTime: float(0),
		ShotPressure:    float(11),
	})
	if state.Settings.PreInfusionTime != 8 {
		t.Fatalf("expected zero pre-infusion time to be ignored, got %v", state.Settings.PreInfusionTime)
	}
	if state.Settings.ShotPressure != 8 {
		t.Fatalf("expected guarded shot pressure to be kept, got %v", state.Settings.ShotPressure)
	}

	state = store.MergeSettings(PartialSettings{PreInfusionPressure: float(2.5)})
	if state.Settings.PreInfusionPressure != 2.5 {
		t.Fatalf("expected pre-infusion pressure update, got %v", state.Settings.PreInfusionPressure)
	}
}

func TestScalarStatePhase(t *testing.T) {
	tests := []struct {
		name  string
		state ScalarState
		want  MachinePhase
	}{
		{name: "unknown switch", state: ScalarState{}, want: PhaseIdle},
		{name: "switch high", state: ScalarState{BrewSwitchKnown: true, BrewSwitch: true}, want: PhaseIdle},
		{name: "brewing", state: ScalarState{BrewSwitchKnown: true}, want: PhaseBrewing},
		{name: "pre-infusing", state: ScalarState{BrewSwitchKnown: true, PreInfusing: true}, want: PhasePreInfusing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Phase(); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMachineStore_BrewSwitchFromMessage(t *testing.T) {
	store := NewMachineStore()
	state := store.Merge(Reading{BrewSwitch: boolean(false), PreInfusing: boolean(true)})
	if state.Phase() != PhasePreInfusing {
		t.Fatalf("expected pre-infusing phase, got %s", state.Phase())
	}
	select {
	case <-store.Changes():
	default:
		t.Fatalf("expected change notification")
	}
}

func TestParseParameter(t *testing.T) {
	for raw, want := range map[string]Parameter{
		"setpoint":              ParamSetpoint,
		"SetPoint":              ParamSetpoint,
		"pre-infusion-time":     ParamPreInfusionTime,
		"pre_infusion_pressure": ParamPreInfusionPressure,
		"shotPressure":          ParamShotPressure,
	} {
		got, err := ParseParameter(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseParameter("steam"); err == nil {
		t.Fatalf("expected unknown parameter error")
	}
}

func TestParameterEndpoint(t *testing.T) {
	if ParamSetpoint.Endpoint() != "setPoint" {
		t.Fatalf("unexpected setpoint endpoint %q", ParamSetpoint.Endpoint())
	}
	for _, p := range []Parameter{ParamPreInfusionTime, ParamPreInfusionPressure, ParamShotPressure} {
		if p.Endpoint() != "config" {
			t.Fatalf("unexpected endpoint for %s: %q", p, p.Endpoint())
		}
	}
}
