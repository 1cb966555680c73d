package ui

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	brewapp "github.com/brewdash/brewdash/internal/app"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/resources"
)

type connectionStatusPresenter struct {
	window       fyne.Window
	statusLabel  *widget.Label
	toggleButton *widget.Button
	sidebarIcon  *widget.Icon

	mu      sync.RWMutex
	current connectors.ConnectionStatus
}

func newConnectionStatusPresenter(
	window fyne.Window,
	statusLabel *widget.Label,
	toggleButton *widget.Button,
	initialStatus connectors.ConnectionStatus,
	initialVariant fyne.ThemeVariant,
) *connectionStatusPresenter {
	presenter := &connectionStatusPresenter{
		window:       window,
		statusLabel:  statusLabel,
		toggleButton: toggleButton,
		sidebarIcon:  widget.NewIcon(resources.UIIconResource(sidebarStatusIcon(initialStatus), initialVariant)),
		current:      initialStatus,
	}
	presenter.applyUI(initialStatus, initialVariant)

	return presenter
}

func (p *connectionStatusPresenter) SidebarIcon() *widget.Icon {
	return p.sidebarIcon
}

func (p *connectionStatusPresenter) Set(status connectors.ConnectionStatus, variant fyne.ThemeVariant) {
	p.mu.Lock()
	p.current = status
	p.mu.Unlock()
	p.applyUI(status, variant)
}

func (p *connectionStatusPresenter) ApplyTheme(variant fyne.ThemeVariant) {
	p.mu.RLock()
	status := p.current
	p.mu.RUnlock()
	if p.sidebarIcon != nil {
		setConnStatusIcon(p.sidebarIcon, status, variant)
	}
}

func (p *connectionStatusPresenter) CurrentStatus() connectors.ConnectionStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.current
}

func (p *connectionStatusPresenter) applyUI(status connectors.ConnectionStatus, variant fyne.ThemeVariant) {
	if p.window != nil {
		p.window.SetTitle(formatWindowTitle(status))
	}
	if p.statusLabel != nil {
		p.statusLabel.SetText(formatConnStatus(status))
	}
	if p.toggleButton != nil {
		p.toggleButton.SetText(connectionToggleText(status))
	}
	if p.sidebarIcon != nil {
		setConnStatusIcon(p.sidebarIcon, status, variant)
	}
}

func formatConnStatus(status connectors.ConnectionStatus) string {
	text := string(status.State)
	if transportName := transportDisplayName(status.TransportName); transportName != "" {
		text = transportName + " " + text
	}
	if target := strings.TrimSpace(status.Target); target != "" {
		text += " (" + target + ")"
	}
	if status.State == connectors.ConnectionStateConnecting && status.Attempt > 0 && status.MaxAttempts > 0 {
		text += fmt.Sprintf(" [attempt %d/%d]", status.Attempt, status.MaxAttempts)
	}
	if status.Err != "" {
		text += " (" + status.Err + ")"
	}

	return text
}

func transportDisplayName(name string) string {
	normalized := config.ConnectorType(strings.ToLower(strings.TrimSpace(name)))
	switch normalized {
	case config.ConnectorWebSocket, config.ConnectorSerial:
		return connectorOptionFromType(normalized)
	default:
		return strings.TrimSpace(name)
	}
}

// connectionToggleText labels the button with the action it performs.
func connectionToggleText(status connectors.ConnectionStatus) string {
	switch status.State {
	case connectors.ConnectionStateConnected, connectors.ConnectionStateConnecting:
		return "Disconnect"
	default:
		return "Connect"
	}
}

func formatWindowTitle(status connectors.ConnectionStatus) string {
	return fmt.Sprintf("brewdash %s - %s", brewapp.BuildVersion(), formatConnStatus(status))
}

func setConnStatusIcon(sidebarIcon *widget.Icon, status connectors.ConnectionStatus, variant fyne.ThemeVariant) {
	sidebarIcon.SetResource(resources.UIIconResource(sidebarStatusIcon(status), variant))
}

func sidebarStatusIcon(status connectors.ConnectionStatus) resources.UIIcon {
	if status.State == connectors.ConnectionStateConnected {
		return resources.UIIconConnected
	}

	return resources.UIIconDisconnected
}

func resolveInitialConnStatus(dep RuntimeDependencies) connectors.ConnectionStatus {
	if dep.Data.CurrentConnStatus != nil {
		return dep.Data.CurrentConnStatus()
	}
	status := brewapp.ConnectionStatusFromConfig(dep.Data.Config.Device)
	status.State = connectors.ConnectionStateDisconnected

	return status
}
