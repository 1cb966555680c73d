package ui

import (
	"slices"
	"testing"

	fynetest "fyne.io/fyne/v2/test"
)

func TestUIRuntimeQuitStopsOnceAndQuitsApp(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)
	app := &appRunQuitSpy{App: base}

	var stopCalls int
	var onQuitCalls int
	runtime := newUIRuntime(app, nil, func() { onQuitCalls++ })
	runtime.AddStopper("refresh", func() { stopCalls++ })
	runtime.AddStopper("ignored", nil)

	runtime.Quit()
	runtime.Quit()

	if app.quitCalls != 1 {
		t.Fatalf("expected app quit once, got %d", app.quitCalls)
	}
	if stopCalls != 1 || onQuitCalls != 1 {
		t.Fatalf("expected stop callbacks once: stop=%d onQuit=%d", stopCalls, onQuitCalls)
	}
}

func TestUIRuntimeCloseInterceptHidesToTray(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)
	app := &appRunQuitSpy{App: base}

	window := &windowSpy{Window: base.NewWindow("runtime")}
	runtime := newUIRuntime(app, window, nil)

	runtime.BindCloseIntercept(true)
	if window.closeIntercept == nil {
		t.Fatalf("expected close intercept to be set")
	}

	window.closeIntercept()
	if window.hideCalls != 1 {
		t.Fatalf("expected intercept to hide window once, got %d", window.hideCalls)
	}
	if app.quitCalls != 0 {
		t.Fatalf("expected app to keep running, got %d quit calls", app.quitCalls)
	}
}

func TestUIRuntimeCloseInterceptQuitsWithoutTray(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)
	app := &appRunQuitSpy{App: base}

	window := &windowSpy{Window: base.NewWindow("runtime")}
	var onQuitCalls int
	runtime := newUIRuntime(app, window, func() { onQuitCalls++ })

	runtime.BindCloseIntercept(false)
	window.closeIntercept()

	if window.hideCalls != 0 {
		t.Fatalf("expected window not to hide, got %d", window.hideCalls)
	}
	if app.quitCalls != 1 || onQuitCalls != 1 {
		t.Fatalf("expected quit once: app=%d onQuit=%d", app.quitCalls, onQuitCalls)
	}
}

func TestUIRuntimeRunShowsWindowAndStopsAfterRunReturns(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)
	app := &appRunQuitSpy{App: base}
	window := &windowSpy{Window: base.NewWindow("runtime")}

	var stopCalls int
	runtime := newUIRuntime(app, window, nil)
	runtime.AddStopper("notifications", func() { stopCalls++ })

	runtime.Run(true)

	if app.runCalls != 1 {
		t.Fatalf("expected app run once, got %d", app.runCalls)
	}
	if window.showCalls != 1 {
		t.Fatalf("expected window show once, got %d", window.showCalls)
	}
	if window.hideCalls != 1 {
		t.Fatalf("expected window hide once for start hidden, got %d", window.hideCalls)
	}
	if stopCalls != 1 {
		t.Fatalf("expected stop callback once, got %d", stopCalls)
	}
}

func TestUIRuntimeStopsInReverseOrderBeforeOnQuit(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)
	app := &appRunQuitSpy{App: base}

	var order []string
	runtime := newUIRuntime(app, nil, func() { order = append(order, "quit") })
	runtime.AddStopper("notifications", func() { order = append(order, "notifications") })
	runtime.AddStopper("listeners", func() { order = append(order, "listeners") })
	runtime.AddStopper("refresh", func() { order = append(order, "refresh") })
	runtime.Quit()

	want := []string{"refresh", "listeners", "notifications", "quit"}
	if !slices.Equal(order, want) {
		t.Fatalf("expected stop order %v, got %v", want, order)
	}
}
