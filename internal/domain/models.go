package domain

import (
	"fmt"
	"strings"
	"time"
)

// Parameter is a user-editable controller setting.
type Parameter string

const (
	ParamSetpoint            Parameter = "setpoint"
	ParamPreInfusionTime     Parameter = "preInfusionTime"
	ParamPreInfusionPressure Parameter = "preInfusionPressure"
	ParamShotPressure        Parameter = "shotPressure"
)

const (
	EndpointSetPoint = "setPoint"
	EndpointConfig   = "config"
)

// ParameterRange bounds the values accepted for a parameter.
type ParameterRange struct {
	Min  float64
	Max  float64
	Step float64
}

func (r ParameterRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var parameterRanges = map[Parameter]ParameterRange{
	ParamSetpoint:            {Min: 80, Max: 120, Step: 1},
	ParamPreInfusionTime:     {Min: 0, Max: 15, Step: 0.5},
	ParamPreInfusionPressure: {Min: 1, Max: 6, Step: 0.1},
	ParamShotPressure:        {Min: 4, Max: 12, Step: 0.1},
}

func Parameters() []Parameter {
	return []Parameter{ParamSetpoint, ParamPreInfusionTime, ParamPreInfusionPressure, ParamShotPressure}
}

func ParseParameter(raw string) (Parameter, error) {
	normalized := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(raw)))
	for _, p := range Parameters() {
		if strings.ToLower(string(p)) == normalized {
			return p, nil
		}
	}

	return "", fmt.Errorf("unknown parameter: %q", raw)
}

func (p Parameter) Valid() bool {
	_, ok := parameterRanges[p]

	return ok
}

func (p Parameter) Range() ParameterRange {
	return parameterRanges[p]
}

// Endpoint returns the controller HTTP path that accepts this parameter.
func (p Parameter) Endpoint() string {
	if p == ParamSetpoint {
		return EndpointSetPoint
	}

	return EndpointConfig
}

func (p Parameter) Label() string {
	switch p {
	case ParamSetpoint:
		return "Temperature Setpoint"
	case ParamPreInfusionTime:
		return "Pre-Infusion Time"
	case ParamPreInfusionPressure:
		return "Pre-Infusion Pressure"
	case ParamShotPressure:
		return "Shot Pressure"
	default:
		return string(p)
	}
}

// DeviceSettings holds the controller's extraction config.
type DeviceSettings struct {
	PreInfusionTime     float64
	PreInfusionPressure float64
	ShotPressure        float64
}

// PartialSettings is a getConfig response; nil fields were absent.
type PartialSettings struct {
	PreInfusionTime     *float64 `json:"preInfusionTime,omitempty"`
	PreInfusionPressure *float64 `json:"preInfusionPressure,omitempty"`
	ShotPressure        *float64 `json:"shotPressure,omitempty"`
}

// MachinePhase summarizes what the machine is doing right now.
type MachinePhase string

const (
	PhaseIdle        MachinePhase = "IDLE"
	PhasePreInfusing MachinePhase = "PRE-INFUSING"
	PhaseBrewing     MachinePhase = "BREWING"
)

// ScalarState is the latest value of every scalar the dashboard shows.
type ScalarState struct {
	Temp           float64
	Setpoint       float64
	Pressure       float64
	BrewTemp       float64
	TargetPressure float64
	PumpDuty       float64
	ShotGrams      float64
	PumpOnTime     float64
	// BrewSwitch is reported inverted by the controller: false means brewing.
	BrewSwitch      bool
	BrewSwitchKnown bool
	PreInfusing     bool
	Settings        DeviceSettings
}

func DefaultScalarState() ScalarState {
	return ScalarState{
		Temp:     20,
		Setpoint: 95,
		Settings: DeviceSettings{
			PreInfusionTime:     8,
			PreInfusionPressure: 3,
			ShotPressure:        8,
		},
	}
}

func (s ScalarState) Brewing() bool {
	return s.BrewSwitchKnown && !s.BrewSwitch
}

func (s ScalarState) Phase() MachinePhase {
	if !s.Brewing() {
		return PhaseIdle
	}
	if s.PreInfusing {
		return PhasePreInfusing
	}

	return PhaseBrewing
}

// ShotWeightGrams converts the controller's milligram counter to grams.
func (s ScalarState) ShotWeightGrams() float64 {
	return s.ShotGrams / 1000
}

// Value returns the current value of a user-editable parameter.
func (s ScalarState) Value(p Parameter) float64 {
	switch p {
	case ParamSetpoint:
		return s.Setpoint
	case ParamPreInfusionTime:
		return s.Settings.PreInfusionTime
	case ParamPreInfusionPressure:
		return s.Settings.PreInfusionPressure
	case ParamShotPressure:
		return s.Settings.ShotPressure
	default:
		return 0
	}
}

func (s *ScalarState) set(p Parameter, v float64) {
	switch p {
	case ParamSetpoint:
		s.Setpoint = v
	case ParamPreInfusionTime:
		s.Settings.PreInfusionTime = v
	case ParamPreInfusionPressure:
		s.Settings.PreInfusionPressure = v
	case ParamShotPressure:
		s.Settings.ShotPressure = v
	}
}

// TelemetrySample is one time-aligned row of the chart series.
type TelemetrySample struct {
	At             time.Time
	BrewTemp       float64
	Pressure       float64
	TargetPressure float64
	PumpDuty       float64
	ShotGrams      float64
}

// MachineUpdate is published after every applied inbound message.
type MachineUpdate struct {
	State     ScalarState
	Sample    *TelemetrySample
	SeriesLen int
}

// SeriesCleared is published when the chart series are reset.
type SeriesCleared struct {
	At time.Time
}

// Snapshot is the locally persisted view of the dashboard.
type Snapshot struct {
	State   ScalarState
	Series  Series
	SavedAt time.Time
}
