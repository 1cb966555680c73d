package ui

import (
	"fyne.io/fyne/v2"

	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
)

// bindPresentationListeners routes bus events into the main view. Widget
// updates hop onto the UI goroutine through fyne.Do.
func bindPresentationListeners(dep RuntimeDependencies, fyApp fyne.App, view mainView) func() {
	appLogger.Debug("starting UI event listeners")
	stop := startUIEventListeners(dep.Data.Bus, presentationHandlers(fyApp, view, fyne.Do))
	if dep.Data.CurrentConnStatus != nil && view.connStatusPresenter != nil {
		status := dep.Data.CurrentConnStatus()
		view.connStatusPresenter.Set(status, fyApp.Settings().ThemeVariant())
		view.tray.ApplyConnStatus(status)
	}
	if dep.Data.Machine != nil {
		view.tray.ApplyState(dep.Data.Machine.Snapshot())
	}

	return stop
}

func presentationHandlers(fyApp fyne.App, view mainView, runOnUI func(func())) uiEventHandlers {
	return uiEventHandlers{
		OnConnStatus: func(status connectors.ConnectionStatus) {
			runOnUI(func() {
				if view.connStatusPresenter != nil {
					view.connStatusPresenter.Set(status, fyApp.Settings().ThemeVariant())
				}
				view.tray.ApplyConnStatus(status)
			})
		},
		OnMachineUpdate: func(update domain.MachineUpdate) {
			if view.espresso != nil && update.Sample != nil {
				view.espresso.MarkSeriesDirty()
			}
			runOnUI(func() {
				if view.espresso != nil {
					view.espresso.ApplyState(update.State)
				}
				if view.config != nil {
					view.config.ApplyState(update.State)
				}
				view.tray.ApplyState(update.State)
				view.sidebar.SetBadge(tabEspresso, update.State.Brewing())
			})
		},
		OnSeriesCleared: func() {
			if view.espresso != nil {
				view.espresso.MarkSeriesDirty()
			}
		},
		OnEditState: func(change connectors.EditStateChange) {
			runOnUI(func() {
				if view.config != nil {
					view.config.ApplyEditState(change)
				}
			})
		},
		OnCommandResult: func(result connectors.CommandResult) {
			runOnUI(func() {
				if view.banner != nil {
					view.banner.ApplyResult(result)
				}
			})
		},
		OnDeviceConfig: func(settings domain.DeviceSettings) {
			runOnUI(func() {
				if view.config != nil {
					view.config.ApplySettings(settings)
				}
			})
		},
	}
}
