package ui

import (
	"testing"

	fynetest "fyne.io/fyne/v2/test"

	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/notifications"
)

func TestStartNotificationServiceRegistersLifecycleHooks(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)

	lifecycle := &lifecycleSpy{}
	app := &lifecycleAppSpy{
		App:       base,
		lifecycle: lifecycle,
	}
	dep := RuntimeDependencies{
		Data: DataDependencies{
			Bus:           nil,
			CurrentConfig: config.Default,
		},
	}

	stop := startNotificationService(dep, app, true)
	if stop == nil {
		t.Fatalf("expected notification stop function")
	}
	if lifecycle.onEnteredForeground == nil {
		t.Fatalf("expected on-entered-foreground hook to be registered")
	}
	if lifecycle.onExitedForeground == nil {
		t.Fatalf("expected on-exited-foreground hook to be registered")
	}

	lifecycle.onEnteredForeground()
	lifecycle.onExitedForeground()
	stop()
	stop()
}

func TestForegroundTrackerFollowsLifecycle(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)

	lifecycle := &lifecycleSpy{}
	tracker := trackForeground(&lifecycleAppSpy{App: base, lifecycle: lifecycle}, true)
	if tracker.InForeground() {
		t.Fatalf("expected hidden start to begin in background")
	}
	lifecycle.onEnteredForeground()
	if !tracker.InForeground() {
		t.Fatalf("expected foreground after entering")
	}
	lifecycle.onExitedForeground()
	if tracker.InForeground() {
		t.Fatalf("expected background after exiting")
	}
}

func TestFyneNotifierSkipsEmptyPayload(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)

	fyneNotifier(nil).Send(notifications.Payload{Title: "Update failed"})
	fyneNotifier(base).Send(notifications.Payload{Title: "  "})
}

func TestStartNotificationServiceWithoutConfigSource(t *testing.T) {
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)

	stop := startNotificationService(RuntimeDependencies{}, base, false)
	stop()
}
