package ui

import (
	"strings"
	"testing"

	fynetest "fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	brewapp "github.com/brewdash/brewdash/internal/app"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/resources"
)

func TestFormatWindowTitle(t *testing.T) {
	got := formatWindowTitle(connectors.ConnectionStatus{
		State:         connectors.ConnectionStateConnected,
		TransportName: "websocket",
	})
	want := "brewdash " + brewapp.BuildVersion() + " - WebSocket connected"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatConnStatus(t *testing.T) {
	tests := []struct {
		name   string
		status connectors.ConnectionStatus
		want   string
	}{
		{
			name: "serial with target",
			status: connectors.ConnectionStatus{
				State:         connectors.ConnectionStateConnected,
				TransportName: "serial",
				Target:        "/dev/ttyACM2",
			},
			want: "Serial connected (/dev/ttyACM2)",
		},
		{
			name: "reconnect attempt",
			status: connectors.ConnectionStatus{
				State:         connectors.ConnectionStateConnecting,
				TransportName: "websocket",
				Target:        "ws://10.0.0.5:90/ws",
				Attempt:       2,
				MaxAttempts:   5,
			},
			want: "WebSocket connecting (ws://10.0.0.5:90/ws) [attempt 2/5]",
		},
		{
			name: "error",
			status: connectors.ConnectionStatus{
				State:         connectors.ConnectionStateDisconnected,
				TransportName: "websocket",
				Err:           "connection refused",
			},
			want: "WebSocket disconnected (connection refused)",
		},
		{
			name:   "bare state",
			status: connectors.ConnectionStatus{State: connectors.ConnectionStateDisconnected},
			want:   "disconnected",
		},
	}

	for _, tt := range tests {
		if got := formatConnStatus(tt.status); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestTransportDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "websocket", in: "websocket", want: "WebSocket"},
		{name: "serial", in: "Serial", want: "Serial"},
		{name: "fallback", in: "custom", want: "custom"},
		{name: "empty", in: " ", want: ""},
	}

	for _, tt := range tests {
		got := transportDisplayName(tt.in)
		if got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestConnectionToggleText(t *testing.T) {
	if got := connectionToggleText(connectors.ConnectionStatus{State: connectors.ConnectionStateConnected}); got != "Disconnect" {
		t.Fatalf("expected Disconnect while connected, got %q", got)
	}
	if got := connectionToggleText(connectors.ConnectionStatus{State: connectors.ConnectionStateConnecting}); got != "Disconnect" {
		t.Fatalf("expected Disconnect while connecting, got %q", got)
	}
	if got := connectionToggleText(connectors.ConnectionStatus{State: connectors.ConnectionStateDisconnected}); got != "Connect" {
		t.Fatalf("expected Connect while disconnected, got %q", got)
	}
}

func TestSidebarStatusIcon(t *testing.T) {
	connected := sidebarStatusIcon(connectors.ConnectionStatus{
		State: connectors.ConnectionStateConnected,
	})
	if connected != resources.UIIconConnected {
		t.Fatalf("expected connected icon, got %q", connected)
	}

	connecting := sidebarStatusIcon(connectors.ConnectionStatus{
		State: connectors.ConnectionStateConnecting,
	})
	if connecting != resources.UIIconDisconnected {
		t.Fatalf("expected disconnected icon for connecting state, got %q", connecting)
	}
}

func TestResolveInitialConnStatusFallsBackToConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Device.Host = "10.0.0.5"
	got := resolveInitialConnStatus(RuntimeDependencies{Data: DataDependencies{Config: cfg}})
	if got.State != connectors.ConnectionStateDisconnected {
		t.Fatalf("expected disconnected state, got %q", got.State)
	}
	if got.Target != "ws://10.0.0.5:90/ws" {
		t.Fatalf("expected target from config, got %q", got.Target)
	}

	live := connectors.ConnectionStatus{State: connectors.ConnectionStateConnected}
	got = resolveInitialConnStatus(RuntimeDependencies{Data: DataDependencies{
		Config:            cfg,
		CurrentConnStatus: func() connectors.ConnectionStatus { return live },
	}})
	if got.State != connectors.ConnectionStateConnected {
		t.Fatalf("expected live status, got %q", got.State)
	}
}

func TestConnectionStatusPresenterSetAndApplyTheme(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	window := app.NewWindow("status")
	label := widget.NewLabel("")
	button := widget.NewButton("", nil)
	presenter := newConnectionStatusPresenter(
		window,
		label,
		button,
		connectors.ConnectionStatus{
			State:         connectors.ConnectionStateDisconnected,
			TransportName: "websocket",
		},
		theme.VariantLight,
	)

	if presenter.SidebarIcon() == nil {
		t.Fatalf("expected sidebar icon")
	}
	if button.Text != "Connect" {
		t.Fatalf("expected Connect button while disconnected, got %q", button.Text)
	}

	presenter.Set(connectors.ConnectionStatus{
		State:         connectors.ConnectionStateConnected,
		TransportName: "serial",
		Target:        "/dev/ttyACM0",
	}, theme.VariantDark)
	if !strings.Contains(label.Text, "connected") || !strings.Contains(label.Text, "/dev/ttyACM0") {
		t.Fatalf("expected connected status in label, got %q", label.Text)
	}
	if !strings.Contains(window.Title(), "Serial connected") {
		t.Fatalf("expected title to follow status, got %q", window.Title())
	}
	if button.Text != "Disconnect" {
		t.Fatalf("expected Disconnect button while connected, got %q", button.Text)
	}
	presenter.ApplyTheme(theme.VariantLight)
	if presenter.SidebarIcon().Resource == nil {
		t.Fatalf("expected sidebar icon resource after theme application")
	}
	if presenter.CurrentStatus().State != connectors.ConnectionStateConnected {
		t.Fatalf("expected current status to be stored")
	}
}
