package domain

import "sync"

// EditGuard reports whether the user is editing a parameter. Inbound data
// must not overwrite a parameter while its edit is pending.
type EditGuard interface {
	Pending(p Parameter) bool
}

// MachineStore keeps the latest scalar state for the UI.
type MachineStore struct {
	mu      sync.RWMutex
	state   ScalarState
	guard   EditGuard
	changes chan struct{}
}

func NewMachineStore() *MachineStore {
	return &MachineStore{
		state:   DefaultScalarState(),
		changes: make(chan struct{}, 1),
	}
}

func (s *MachineStore) SetGuard(guard EditGuard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guard = guard
}

// Load replaces the whole state, used for snapshot hydration.
func (s *MachineStore) Load(state ScalarState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.notify()
}

// Merge applies every field present in r and returns the resulting state.
// The guard is consulted under the store lock, so a local value applied
// after an edit started is never overwritten by this merge.
func (s *MachineStore) Merge(r Reading) ScalarState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.state
	if r.Temp != nil {
		st.Temp = *r.Temp
	}
	if r.Setpoint != nil && !s.pendingLocked(ParamSetpoint) {
		st.Setpoint = *r.Setpoint
	}
	if r.Pressure != nil {
		st.Pressure = *r.Pressure
	}
	if r.BrewTemp != nil {
		st.BrewTemp = *r.BrewTemp
	}
	if r.TargetPressure != nil {
		st.TargetPressure = *r.TargetPressure
	}
	if r.PumpDuty != nil {
		st.PumpDuty = *r.PumpDuty
	}
	if r.ShotGrams != nil {
		st.ShotGrams = *r.ShotGrams
	}
	if r.PumpOnTime != nil {
		st.PumpOnTime = *r.PumpOnTime
	}
	if r.BrewSwitch != nil {
		st.BrewSwitch = *r.BrewSwitch
		st.BrewSwitchKnown = true
	}
	if r.PreInfusing != nil {
		st.PreInfusing = *r.PreInfusing
	}
	s.notify()

	return s.state
}

// MergeSettings applies a getConfig response. Absent and zero values are
// ignored, as are parameters with a pending edit.
func (s *MachineStore) MergeSettings(p PartialSettings) ScalarState {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply := func(param Parameter, v *float64) {
		if v == nil || *v == 0 || s.pendingLocked(param) {
			return
		}
		s.state.set(param, *v)
	}
	apply(ParamPreInfusionTime, p.PreInfusionTime)
	apply(ParamPreInfusionPressure, p.PreInfusionPressure)
	apply(ParamShotPressure, p.ShotPressure)
	s.notify()

	return s.state
}

// ApplyLocal writes an optimistic user value.
func (s *MachineStore) ApplyLocal(p Parameter, v float64) ScalarState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.set(p, v)
	s.notify()

	return s.state
}

func (s *MachineStore) Snapshot() ScalarState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

func (s *MachineStore) Value(p Parameter) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Value(p)
}

func (s *MachineStore) Changes() <-chan struct{} {
	return s.changes
}

func (s *MachineStore) pendingLocked(p Parameter) bool {
	return s.guard != nil && s.guard.Pending(p)
}

func (s *MachineStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
