package ui

import (
	"fmt"
	"math"
	"time"

	"fyne.io/fyne/v2/widget"

	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
)

func formatTemperature(v float64) string {
	return fmt.Sprintf("%.2f°C", v)
}

func formatPressure(v float64) string {
	return fmt.Sprintf("%.2f bar", v)
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.2fs", v)
}

// formatShotWeight takes the controller's milligram counter.
func formatShotWeight(shotGrams float64) string {
	return fmt.Sprintf("%.1fg", shotGrams/1000)
}

func formatPumpDuty(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

// formatShotTime renders whole seconds, the way the timer counts.
func formatShotTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	return fmt.Sprintf("%ds", int(d/time.Second))
}

func formatParameterValue(p domain.Parameter, v float64) string {
	switch p {
	case domain.ParamSetpoint:
		return fmt.Sprintf("%.0f°C", v)
	case domain.ParamPreInfusionTime:
		return fmt.Sprintf("%.1fs", v)
	case domain.ParamPreInfusionPressure, domain.ParamShotPressure:
		return fmt.Sprintf("%.1f bar", v)
	default:
		return fmt.Sprintf("%g", v)
	}
}

// snapToStep rounds a slider value onto the parameter's step grid and drops
// float noise such as 3.1000000000000005.
func snapToStep(v float64, r domain.ParameterRange) float64 {
	if r.Step > 0 {
		v = r.Min + math.Round((v-r.Min)/r.Step)*r.Step
	}
	v = math.Round(v*1000) / 1000

	return math.Min(math.Max(v, r.Min), r.Max)
}

func phaseImportance(phase domain.MachinePhase) widget.Importance {
	switch phase {
	case domain.PhaseBrewing:
		return widget.SuccessImportance
	case domain.PhasePreInfusing:
		return widget.WarningImportance
	default:
		return widget.MediumImportance
	}
}

func brewButtonText(brewing bool) string {
	if brewing {
		return "Stop Brew"
	}

	return "Start Brew"
}

func timerButtonText(running bool) string {
	if running {
		return "Pause"
	}

	return "Start"
}

func editStateText(state connectors.EditState) string {
	switch state {
	case connectors.EditStateEditing:
		return "pending"
	case connectors.EditStateSubmitting:
		return "sending"
	default:
		return ""
	}
}
