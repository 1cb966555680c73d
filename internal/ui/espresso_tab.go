package ui

import (
	"context"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/brewdash/brewdash/internal/domain"
)

const brewRequestTimeout = 10 * time.Second

type readingRow struct {
	label    *widget.Label
	value    *widget.Label
	advanced bool
}

func newReadingRow(name string, advanced bool) *readingRow {
	value := widget.NewLabelWithStyle("-", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true, Monospace: true})

	return &readingRow{
		label:    widget.NewLabel(name),
		value:    value,
		advanced: advanced,
	}
}

// espressoTab shows live readings, the chart and the shot controls.
// Methods other than MarkSeriesDirty must run on the UI goroutine.
type espressoTab struct {
	root fyne.CanvasObject

	temperature *readingRow
	pressure    *readingRow
	pumpOnTime  *readingRow
	setpoint    *readingRow
	shotWeight  *readingRow
	pumpDuty    *readingRow
	rows        []*readingRow

	phaseChip   *widget.Label
	brewButton  *widget.Button
	timerLabel  *widget.Label
	timerButton *widget.Button
	advanced    *widget.Check
	chart       *telemetryChart
	legend      *fyne.Container

	buffer    *domain.TelemetryBuffer
	shotTimer *domain.ShotTimer
	brewing   bool

	chartDirty atomic.Bool
}

func newEspressoTab(dep RuntimeDependencies) *espressoTab {
	t := &espressoTab{
		temperature: newReadingRow("Temperature", false),
		pressure:    newReadingRow("Pressure", false),
		pumpOnTime:  newReadingRow("Pump On Time", true),
		setpoint:    newReadingRow("Setpoint", false),
		shotWeight:  newReadingRow("Shot Weight", false),
		pumpDuty:    newReadingRow("Pump Duty", true),
		buffer:      dep.Data.Buffer,
		shotTimer:   dep.Data.ShotTimer,
		chart:       newTelemetryChart(),
	}
	t.rows = []*readingRow{t.temperature, t.pressure, t.pumpOnTime, t.setpoint, t.shotWeight, t.pumpDuty}
	if t.shotTimer == nil {
		t.shotTimer = domain.NewShotTimer(nil)
	}

	t.phaseChip = widget.NewLabelWithStyle(string(domain.PhaseIdle), fyne.TextAlignTrailing, fyne.TextStyle{Bold: true})

	t.brewButton = widget.NewButton(brewButtonText(false), func() {
		requestBrew(dep, !t.brewing)
	})
	t.brewButton.Importance = widget.HighImportance
	if dep.Actions.Commands == nil {
		t.brewButton.Disable()
	}

	t.timerLabel = widget.NewLabelWithStyle(formatShotTime(0), fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true})
	t.timerButton = widget.NewButton(timerButtonText(false), func() {
		t.shotTimer.Toggle()
		t.Tick()
	})
	timerReset := widget.NewButton("Reset", func() {
		t.shotTimer.Reset()
		t.Tick()
	})

	clearChart := widget.NewButton("Clear Chart", func() {
		if dep.Actions.Connection != nil {
			dep.Actions.Connection.ClearSeries()
		}
		t.MarkSeriesDirty()
	})

	advancedMode := dep.Data.Config.UI.AdvancedMode
	t.legend = newChartLegend(advancedMode)
	t.advanced = widget.NewCheck("Advanced", func(enabled bool) {
		t.setAdvanced(enabled)
		persistAdvancedMode(dep, enabled)
	})
	t.advanced.SetChecked(advancedMode)
	t.setAdvanced(advancedMode)

	readings := container.New(layout.NewFormLayout())
	for _, row := range t.rows {
		readings.Add(row.label)
		readings.Add(row.value)
	}
	readings.Add(widget.NewLabel("Status"))
	readings.Add(t.phaseChip)

	timerCard := widget.NewCard("Shot Timer", "", container.NewVBox(
		t.timerLabel,
		container.NewGridWithColumns(2, t.timerButton, timerReset),
	))
	side := container.NewVBox(
		widget.NewCard("", "", readings),
		timerCard,
		t.brewButton,
	)

	toolbar := container.NewHBox(t.legend, layout.NewSpacer(), t.advanced, clearChart)
	chartArea := container.NewBorder(toolbar, nil, nil, nil, t.chart)

	t.root = container.NewBorder(nil, nil, nil, side, chartArea)
	if dep.Data.Machine != nil {
		t.ApplyState(dep.Data.Machine.Snapshot())
	}
	t.MarkSeriesDirty()
	t.Tick()

	return t
}

func (t *espressoTab) Content() fyne.CanvasObject {
	return t.root
}

// ApplyState updates readings, the status chip and the brew button.
func (t *espressoTab) ApplyState(state domain.ScalarState) {
	t.temperature.value.SetText(formatTemperature(state.Temp))
	t.pressure.value.SetText(formatPressure(state.Pressure))
	t.pumpOnTime.value.SetText(formatSeconds(state.PumpOnTime))
	t.setpoint.value.SetText(formatTemperature(state.Setpoint))
	t.shotWeight.value.SetText(formatShotWeight(state.ShotGrams))
	t.pumpDuty.value.SetText(formatPumpDuty(state.PumpDuty))

	phase := state.Phase()
	t.phaseChip.SetText(string(phase))
	t.phaseChip.Importance = phaseImportance(phase)
	t.phaseChip.Refresh()

	t.brewing = state.Brewing()
	t.brewButton.SetText(brewButtonText(t.brewing))
}

// MarkSeriesDirty schedules a chart redraw on the next tick. Safe to call
// from any goroutine.
func (t *espressoTab) MarkSeriesDirty() {
	t.chartDirty.Store(true)
}

// Tick refreshes the shot timer and redraws the chart when data changed.
func (t *espressoTab) Tick() {
	t.timerLabel.SetText(formatShotTime(t.shotTimer.Elapsed()))
	t.timerButton.SetText(timerButtonText(t.shotTimer.Running()))
	if t.chartDirty.Swap(false) && t.buffer != nil {
		t.chart.SetSeries(t.buffer.Snapshot())
	}
}

func (t *espressoTab) setAdvanced(enabled bool) {
	for _, row := range t.rows {
		if !row.advanced {
			continue
		}
		setVisible(enabled, row.label, row.value)
	}
	t.chart.SetAdvanced(enabled)
	t.legend.Objects = newChartLegend(enabled).Objects
	t.legend.Refresh()
}

// requestBrew flips the brew switch off the UI goroutine. Failures reach the
// banner through the command result event.
func requestBrew(dep RuntimeDependencies, on bool) {
	if dep.Actions.Commands == nil {
		return
	}
	runAsync := dep.UIHooks.RunAsync
	if runAsync == nil {
		runAsync = func(fn func()) { go fn() }
	}
	runAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), brewRequestTimeout)
		defer cancel()
		if err := dep.Actions.Commands.SetBrewing(ctx, on); err != nil {
			appLogger.Warn("brew toggle failed", "on", on, "error", err)
		}
	})
}

func persistAdvancedMode(dep RuntimeDependencies, enabled bool) {
	if dep.Actions.OnSave == nil {
		return
	}
	cfg := dep.Data.Config
	if dep.Data.CurrentConfig != nil {
		cfg = dep.Data.CurrentConfig()
	}
	if cfg.UI.AdvancedMode == enabled {
		return
	}
	cfg.UI.AdvancedMode = enabled
	if err := dep.Actions.OnSave(cfg); err != nil {
		appLogger.Warn("failed to persist advanced mode", "error", err)
	}
}

func setVisible(visible bool, objects ...fyne.CanvasObject) {
	for _, object := range objects {
		if visible {
			object.Show()
		} else {
			object.Hide()
		}
	}
}
