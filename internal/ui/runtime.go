package ui

import (
	"sync"

	"fyne.io/fyne/v2"
)

type uiStopper struct {
	name string
	stop func()
}

// uiRuntime owns the window lifetime. Stoppers run in reverse registration
// order and onQuit runs last, after nothing reads from the bus any more.
type uiRuntime struct {
	fyApp  fyne.App
	window fyne.Window
	onQuit func()

	stoppers     []uiStopper
	shutdownOnce sync.Once
}

func newUIRuntime(fyApp fyne.App, window fyne.Window, onQuit func()) *uiRuntime {
	return &uiRuntime{
		fyApp:  fyApp,
		window: window,
		onQuit: onQuit,
	}
}

// AddStopper registers a teardown step. Nil functions are ignored.
func (r *uiRuntime) AddStopper(name string, stop func()) {
	if stop == nil {
		return
	}
	r.stoppers = append(r.stoppers, uiStopper{name: name, stop: stop})
}

// BindCloseIntercept hides the window when a tray can bring it back and
// quits otherwise.
func (r *uiRuntime) BindCloseIntercept(hasTray bool) {
	if r.window == nil {
		return
	}
	r.window.SetCloseIntercept(func() {
		if !hasTray {
			appLogger.Debug("main window closed without tray: quitting")
			r.Quit()

			return
		}
		appLogger.Debug("main window close intercepted: hiding to tray")
		r.window.Hide()
	})
}

func (r *uiRuntime) Quit() {
	r.shutdownOnce.Do(func() {
		appLogger.Info("quitting UI runtime")
		r.stop()
		if r.fyApp != nil {
			r.fyApp.Quit()
		}
	})
}

func (r *uiRuntime) Run(startHidden bool) {
	if r.window != nil {
		r.window.Show()
		if startHidden {
			appLogger.Info("start minimized is enabled: hiding main window")
			r.window.Hide()
		}
	}
	if r.fyApp != nil {
		r.fyApp.Run()
	}
	appLogger.Info("UI runtime stopped")
	r.shutdownOnce.Do(r.stop)
}

func (r *uiRuntime) stop() {
	for i := len(r.stoppers) - 1; i >= 0; i-- {
		appLogger.Debug("stopping UI component", "component", r.stoppers[i].name)
		r.stoppers[i].stop()
	}
	if r.onQuit != nil {
		r.onQuit()
	}
}
