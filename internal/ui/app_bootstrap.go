package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	brewapp "github.com/brewdash/brewdash/internal/app"
	"github.com/brewdash/brewdash/internal/resources"
)

var appLogger = slog.With("component", "ui")

var newFyneApp = func() fyne.App {
	return fyneapp.NewWithID(brewapp.Name)
}

// Run builds the dashboard window and blocks until the app quits.
func Run(dep RuntimeDependencies) error {
	return runWithApp(dep, newFyneApp())
}

func runWithApp(dep RuntimeDependencies, fyApp fyne.App) error {
	initialVariant := fyApp.Settings().ThemeVariant()
	fyApp.SetIcon(resources.AppIconResource(initialVariant))
	appLogger.Info(
		"starting UI runtime",
		"start_hidden", dep.Launch.StartHidden,
		"initial_theme", initialVariant,
	)

	initialStatus := resolveInitialConnStatus(dep)

	window := fyApp.NewWindow("")
	window.Resize(fyne.NewSize(1000, 700))
	if dep.UIHooks.CurrentWindow == nil {
		dep.UIHooks.CurrentWindow = func() fyne.Window { return window }
	}
	view := buildMainView(
		dep,
		window,
		initialVariant,
		initialStatus,
	)

	uiRuntime := newUIRuntime(fyApp, window, dep.Actions.OnQuit)
	view.tray = configureSystemTray(fyApp, window, dep, initialVariant, uiRuntime.Quit)
	uiRuntime.BindCloseIntercept(view.tray.desk != nil)

	themeRuntime := newThemeRuntime(fyApp)
	themeRuntime.Register(view.sidebar.ApplyTheme)
	themeRuntime.Register(view.connStatusPresenter.ApplyTheme)
	themeRuntime.Register(view.tray.SetIcon)
	themeRuntime.BindSettings()
	themeRuntime.Apply(initialVariant)

	uiRuntime.AddStopper("notifications", startNotificationService(dep, fyApp, dep.Launch.StartHidden))
	uiRuntime.AddStopper("listeners", bindPresentationListeners(dep, fyApp, view))
	uiRuntime.AddStopper("refresh", startRefreshLoop(dashboardRefreshInterval, func() {
		fyne.Do(view.espresso.Tick)
	}))

	window.SetContent(container.NewBorder(nil, nil, view.left, nil, view.rightStack))
	view.sidebar.BindShortcuts(window.Canvas())
	uiRuntime.Run(dep.Launch.StartHidden)

	return nil
}
