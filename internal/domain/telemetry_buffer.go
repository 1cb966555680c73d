package domain

import (
	"errors"
	"slices"
	"sync"
	"time"
)

var ErrSeriesMisaligned = errors.New("telemetry series have different lengths")

// Series holds the chart data as parallel columns sharing one timestamp
// column (unix milliseconds).
type Series struct {
	Timestamps     []int64
	BrewTemp       []float64
	Pressure       []float64
	TargetPressure []float64
	PumpDuty       []float64
	ShotGrams      []float64
}

func (s Series) Len() int {
	return len(s.Timestamps)
}

// Aligned reports whether every column has the timestamp column's length
// and timestamps never go backwards.
func (s Series) Aligned() bool {
	n := len(s.Timestamps)
	for _, col := range s.columns() {
		if len(col) != n {
			return false
		}
	}
	for i := 1; i < n; i++ {
		if s.Timestamps[i] < s.Timestamps[i-1] {
			return false
		}
	}

	return true
}

func (s Series) clone() Series {
	return Series{
		Timestamps:     slices.Clone(s.Timestamps),
		BrewTemp:       slices.Clone(s.BrewTemp),
		Pressure:       slices.Clone(s.Pressure),
		TargetPressure: slices.Clone(s.TargetPressure),
		PumpDuty:       slices.Clone(s.PumpDuty),
		ShotGrams:      slices.Clone(s.ShotGrams),
	}
}

func (s Series) columns() [][]float64 {
	return [][]float64{s.BrewTemp, s.Pressure, s.TargetPressure, s.PumpDuty, s.ShotGrams}
}

// Last returns the newest row, if any.
func (s Series) Last() (TelemetrySample, bool) {
	n := s.Len()
	if n == 0 || !s.Aligned() {
		return TelemetrySample{}, false
	}
	i := n - 1

	return TelemetrySample{
		At:             time.UnixMilli(s.Timestamps[i]),
		BrewTemp:       s.BrewTemp[i],
		Pressure:       s.Pressure[i],
		TargetPressure: s.TargetPressure[i],
		PumpDuty:       s.PumpDuty[i],
		ShotGrams:      s.ShotGrams[i],
	}, true
}

// TelemetryBuffer is the append-only chart store. Every mutation touches all
// columns under one lock so readers never observe misaligned series.
type TelemetryBuffer struct {
	mu        sync.RWMutex
	series    Series
	maxPoints int
}

// NewTelemetryBuffer returns an empty buffer. maxPoints <= 0 means unbounded;
// otherwise the oldest row is dropped from every column once the cap is hit.
func NewTelemetryBuffer(maxPoints int) *TelemetryBuffer {
	if maxPoints < 0 {
		maxPoints = 0
	}

	return &TelemetryBuffer{maxPoints: maxPoints}
}

func (b *TelemetryBuffer) Append(sample TelemetrySample) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	at := sample.At.UnixMilli()
	if n := len(b.series.Timestamps); n > 0 && at < b.series.Timestamps[n-1] {
		at = b.series.Timestamps[n-1]
	}

	b.series.Timestamps = append(b.series.Timestamps, at)
	b.series.BrewTemp = append(b.series.BrewTemp, sample.BrewTemp)
	b.series.Pressure = append(b.series.Pressure, sample.Pressure)
	b.series.TargetPressure = append(b.series.TargetPressure, sample.TargetPressure)
	b.series.PumpDuty = append(b.series.PumpDuty, sample.PumpDuty)
	b.series.ShotGrams = append(b.series.ShotGrams, sample.ShotGrams)

	if b.maxPoints > 0 && len(b.series.Timestamps) > b.maxPoints {
		b.dropOldestLocked(len(b.series.Timestamps) - b.maxPoints)
	}

	return len(b.series.Timestamps)
}

func (b *TelemetryBuffer) dropOldestLocked(n int) {
	b.series.Timestamps = slices.Delete(b.series.Timestamps, 0, n)
	b.series.BrewTemp = slices.Delete(b.series.BrewTemp, 0, n)
	b.series.Pressure = slices.Delete(b.series.Pressure, 0, n)
	b.series.TargetPressure = slices.Delete(b.series.TargetPressure, 0, n)
	b.series.PumpDuty = slices.Delete(b.series.PumpDuty, 0, n)
	b.series.ShotGrams = slices.Delete(b.series.ShotGrams, 0, n)
}

func (b *TelemetryBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.series = Series{}
}

// Snapshot returns a copy that later appends cannot modify.
func (b *TelemetryBuffer) Snapshot() Series {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.series.clone()
}

func (b *TelemetryBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.series.Timestamps)
}

// Load replaces the buffer contents. Misaligned input leaves the buffer
// empty and returns ErrSeriesMisaligned.
func (b *TelemetryBuffer) Load(series Series) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !series.Aligned() {
		b.series = Series{}

		return ErrSeriesMisaligned
	}
	b.series = series.clone()
	if b.maxPoints > 0 && len(b.series.Timestamps) > b.maxPoints {
		b.dropOldestLocked(len(b.series.Timestamps) - b.maxPoints)
	}

	return nil
}
