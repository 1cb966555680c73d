package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/brewdash/brewdash/internal/command"
	"github.com/brewdash/brewdash/internal/connectors"
)

// errorBanner shows the latest failed command until dismissed or until the
// user starts a new edit. UI goroutine only.
type errorBanner struct {
	label *widget.Label
	root  *fyne.Container
}

func newErrorBanner() *errorBanner {
	label := widget.NewLabel("")
	label.Importance = widget.DangerImportance
	label.Wrapping = fyne.TextWrapWord

	b := &errorBanner{label: label}
	dismiss := widget.NewButtonWithIcon("", theme.CancelIcon(), b.Hide)
	dismiss.Importance = widget.LowImportance
	b.root = container.NewBorder(nil, nil, widget.NewIcon(theme.ErrorIcon()), dismiss, label)
	b.root.Hide()

	return b
}

func (b *errorBanner) Content() fyne.CanvasObject {
	return b.root
}

func (b *errorBanner) Show(message string) {
	b.label.SetText(message)
	b.root.Show()
}

func (b *errorBanner) Hide() {
	b.label.SetText("")
	b.root.Hide()
}

func (b *errorBanner) Visible() bool {
	return b.root.Visible()
}

// ApplyResult shows failed and rejected results; successes leave the
// banner alone.
func (b *errorBanner) ApplyResult(result connectors.CommandResult) {
	if message, ok := commandResultMessage(result); ok {
		b.Show(message)
	}
}

func commandResultMessage(result connectors.CommandResult) (string, bool) {
	switch {
	case result.Busy:
		return command.BusyMessage, true
	case result.Failed():
		return command.FailureMessage(result.Parameter), true
	default:
		return "", false
	}
}
