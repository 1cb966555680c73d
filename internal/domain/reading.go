package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var errNotObject = errors.New("stream message is not a json object")

// Reading is one decoded stream message. Nil fields were absent.
type Reading struct {
	Temp           *float64 `json:"temp,omitempty"`
	Setpoint       *float64 `json:"setpoint,omitempty"`
	Pressure       *float64 `json:"pressure,omitempty"`
	BrewTemp       *float64 `json:"brewTemp,omitempty"`
	TargetPressure *float64 `json:"targetPressure,omitempty"`
	PumpDuty       *float64 `json:"pumpDuty,omitempty"`
	ShotGrams      *float64 `json:"shotGrams,omitempty"`
	PumpOnTime     *float64 `json:"pumpOnTime,omitempty"`
	BrewSwitch     *bool    `json:"brewSwitch,omitempty"`
	PreInfusing    *bool    `json:"preInfusing,omitempty"`
}

func DecodeReading(raw []byte) (Reading, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Reading{}, errNotObject
	}

	var r Reading
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return Reading{}, fmt.Errorf("decode stream message: %w", err)
	}

	return r, nil
}

// HasSample reports whether the message carries enough to extend the chart.
func (r Reading) HasSample() bool {
	return r.BrewTemp != nil && r.Pressure != nil
}

// Sample builds a chart row, substituting 0 for absent series fields.
func (r Reading) Sample(at time.Time) (TelemetrySample, bool) {
	if !r.HasSample() {
		return TelemetrySample{}, false
	}

	return TelemetrySample{
		At:             at,
		BrewTemp:       *r.BrewTemp,
		Pressure:       *r.Pressure,
		TargetPressure: valueOrZero(r.TargetPressure),
		PumpDuty:       valueOrZero(r.PumpDuty),
		ShotGrams:      valueOrZero(r.ShotGrams),
	}, true
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}

	return *v
}
