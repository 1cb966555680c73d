package ui

import (
	"testing"

	fynetest "fyne.io/fyne/v2/test"

	"github.com/brewdash/brewdash/internal/command"
	"github.com/brewdash/brewdash/internal/connectors"
)

func TestCommandResultMessage(t *testing.T) {
	if msg, ok := commandResultMessage(connectors.CommandResult{Parameter: "shotPressure", Busy: true}); !ok || msg != command.BusyMessage {
		t.Fatalf("expected busy message, got %q (%v)", msg, ok)
	}

	msg, ok := commandResultMessage(connectors.CommandResult{Parameter: "shotPressure", Err: "timeout"})
	if !ok || msg != command.FailureMessage("shotPressure") {
		t.Fatalf("expected failure message, got %q (%v)", msg, ok)
	}

	if _, ok := commandResultMessage(connectors.CommandResult{Parameter: "shotPressure"}); ok {
		t.Fatalf("expected success to produce no message")
	}
}

func TestErrorBannerApplyResult(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	banner := newErrorBanner()
	if banner.Visible() {
		t.Fatalf("expected banner hidden initially")
	}

	banner.ApplyResult(connectors.CommandResult{Parameter: "setpoint"})
	if banner.Visible() {
		t.Fatalf("expected success to keep banner hidden")
	}

	banner.ApplyResult(connectors.CommandResult{Parameter: "setpoint", Err: "http 500"})
	if !banner.Visible() {
		t.Fatalf("expected failure to show banner")
	}
	if banner.label.Text != command.FailureMessage("setpoint") {
		t.Fatalf("unexpected banner text %q", banner.label.Text)
	}

	banner.ApplyResult(connectors.CommandResult{Parameter: "setpoint"})
	if !banner.Visible() {
		t.Fatalf("expected later success to leave the error shown")
	}

	banner.Hide()
	if banner.Visible() || banner.label.Text != "" {
		t.Fatalf("expected hide to clear banner")
	}
}
