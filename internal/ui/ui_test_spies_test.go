package ui

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/brewdash/brewdash/internal/domain"
)

type basicAppWrapper struct {
	fyne.App
}

type appRunQuitSpy struct {
	fyne.App
	runCalls  int
	quitCalls int
}

func (a *appRunQuitSpy) Run() {
	a.runCalls++
}

func (a *appRunQuitSpy) Quit() {
	a.quitCalls++
}

type trayAppSpy struct {
	fyne.App
	trayMenu *fyne.Menu
	trayIcon fyne.Resource
}

func (a *trayAppSpy) SetSystemTrayMenu(menu *fyne.Menu) {
	a.trayMenu = menu
}

func (a *trayAppSpy) SetSystemTrayIcon(icon fyne.Resource) {
	a.trayIcon = icon
}

func (a *trayAppSpy) SetSystemTrayWindow(fyne.Window) {}

type windowSpy struct {
	fyne.Window
	showCalls      int
	hideCalls      int
	focusCalls     int
	closeIntercept func()
}

func (w *windowSpy) Show() {
	w.showCalls++
	if w.Window != nil {
		w.Window.Show()
	}
}

func (w *windowSpy) Hide() {
	w.hideCalls++
	if w.Window != nil {
		w.Window.Hide()
	}
}

func (w *windowSpy) RequestFocus() {
	w.focusCalls++
	if w.Window != nil {
		w.Window.RequestFocus()
	}
}

func (w *windowSpy) SetCloseIntercept(fn func()) {
	w.closeIntercept = fn
	if w.Window != nil {
		w.Window.SetCloseIntercept(fn)
	}
}

type lifecycleSpy struct {
	onEnteredForeground func()
	onExitedForeground  func()
	onStarted           func()
	onStopped           func()
}

func (l *lifecycleSpy) SetOnEnteredForeground(fn func()) {
	l.onEnteredForeground = fn
}

func (l *lifecycleSpy) SetOnExitedForeground(fn func()) {
	l.onExitedForeground = fn
}

func (l *lifecycleSpy) SetOnStarted(fn func()) {
	l.onStarted = fn
}

func (l *lifecycleSpy) SetOnStopped(fn func()) {
	l.onStopped = fn
}

type lifecycleAppSpy struct {
	fyne.App
	lifecycle fyne.Lifecycle
}

func (a *lifecycleAppSpy) Lifecycle() fyne.Lifecycle {
	if a.lifecycle != nil {
		return a.lifecycle
	}

	return a.App.Lifecycle()
}

type parameterChange struct {
	Parameter domain.Parameter
	Value     float64
}

type commandSenderSpy struct {
	mu           sync.Mutex
	changes      []parameterChange
	brewCalls    []bool
	refreshCalls int
	settings     domain.DeviceSettings
	err          error
}

func (s *commandSenderSpy) RequestChange(p domain.Parameter, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, parameterChange{Parameter: p, Value: value})

	return s.err
}

func (s *commandSenderSpy) SetBrewing(_ context.Context, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brewCalls = append(s.brewCalls, on)

	return s.err
}

func (s *commandSenderSpy) RefreshConfig(context.Context) (domain.DeviceSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++

	return s.settings, s.err
}

func (s *commandSenderSpy) Changes() []parameterChange {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]parameterChange(nil), s.changes...)
}

func (s *commandSenderSpy) BrewCalls() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]bool(nil), s.brewCalls...)
}

type connectionControllerSpy struct {
	toggleCalls int
	clearCalls  int
}

func (s *connectionControllerSpy) Toggle() {
	s.toggleCalls++
}

func (s *connectionControllerSpy) ClearSeries() {
	s.clearCalls++
}

// syncHooks runs async work inline so widget assertions need no waiting.
func syncHooks() UIHooks {
	return UIHooks{
		RunOnUI:  func(fn func()) { fn() },
		RunAsync: func(fn func()) { fn() },
	}
}
