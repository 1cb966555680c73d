package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	brewapp "github.com/brewdash/brewdash/internal/app"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
	"github.com/brewdash/brewdash/internal/resources"
)

// systemTray mirrors the machine phase in the tray menu and offers brew and
// connection toggles without opening the window. It is inert when the
// driver has no tray. Methods must run on the UI goroutine.
type systemTray struct {
	desk desktop.App
	menu *fyne.Menu

	status     *fyne.MenuItem
	brew       *fyne.MenuItem
	connection *fyne.MenuItem

	brewing bool
}

func configureSystemTray(
	fyApp fyne.App,
	window fyne.Window,
	dep RuntimeDependencies,
	initialVariant fyne.ThemeVariant,
	quit func(),
) *systemTray {
	tray := &systemTray{}
	desk, ok := fyApp.(desktop.App)
	if !ok {
		return tray
	}
	tray.desk = desk

	tray.status = fyne.NewMenuItem(trayStatusText(domain.DefaultScalarState()), nil)
	tray.status.Disabled = true
	tray.brew = fyne.NewMenuItem(brewButtonText(false), func() {
		appLogger.Debug("system tray brew action invoked", "on", !tray.brewing)
		requestBrew(dep, !tray.brewing)
	})
	tray.brew.Disabled = dep.Actions.Commands == nil
	tray.connection = fyne.NewMenuItem(connectionToggleText(connectors.ConnectionStatus{}), func() {
		if dep.Actions.Connection != nil {
			dep.Actions.Connection.Toggle()
		}
	})
	tray.connection.Disabled = dep.Actions.Connection == nil

	tray.menu = fyne.NewMenu(brewapp.Name,
		tray.status,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show", func() {
			appLogger.Debug("system tray show action invoked")
			window.Show()
			window.RequestFocus()
		}),
		tray.brew,
		tray.connection,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			appLogger.Debug("system tray quit action invoked")
			if quit != nil {
				quit()
			}
		}),
	)
	desk.SetSystemTrayMenu(tray.menu)
	tray.SetIcon(initialVariant)

	return tray
}

func (t *systemTray) SetIcon(variant fyne.ThemeVariant) {
	if t == nil || t.desk == nil {
		return
	}
	t.desk.SetSystemTrayIcon(resources.TrayIconResource(variant))
}

func (t *systemTray) ApplyState(state domain.ScalarState) {
	if t == nil || t.menu == nil {
		return
	}
	t.brewing = state.Brewing()
	t.status.Label = trayStatusText(state)
	t.brew.Label = brewButtonText(t.brewing)
	t.menu.Refresh()
}

func (t *systemTray) ApplyConnStatus(status connectors.ConnectionStatus) {
	if t == nil || t.menu == nil {
		return
	}
	t.connection.Label = connectionToggleText(status)
	t.menu.Refresh()
}

func trayStatusText(state domain.ScalarState) string {
	return fmt.Sprintf("%s, %s", state.Phase(), formatTemperature(state.Temp))
}
