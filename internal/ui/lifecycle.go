package ui

import (
	"context"
	"strings"
	"sync/atomic"

	"fyne.io/fyne/v2"

	brewapp "github.com/brewdash/brewdash/internal/app"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/notifications"
)

// foregroundTracker follows the Fyne lifecycle so alerts are raised only
// while the dashboard is in the background.
type foregroundTracker struct {
	foreground atomic.Bool
}

func trackForeground(fyApp fyne.App, startHidden bool) *foregroundTracker {
	t := &foregroundTracker{}
	t.foreground.Store(!startHidden)
	fyApp.Lifecycle().SetOnEnteredForeground(func() {
		t.foreground.Store(true)
	})
	fyApp.Lifecycle().SetOnExitedForeground(func() {
		t.foreground.Store(false)
	})

	return t
}

func (t *foregroundTracker) InForeground() bool {
	return t.foreground.Load()
}

// fyneNotifier posts payloads as native notifications from the UI goroutine.
func fyneNotifier(fyApp fyne.App) notifications.Sender {
	return notifications.SenderFunc(func(payload notifications.Payload) {
		title := strings.TrimSpace(payload.Title)
		content := strings.TrimSpace(payload.Content)
		if fyApp == nil || (title == "" && content == "") {
			return
		}
		fyne.Do(func() {
			fyApp.SendNotification(fyne.NewNotification(title, content))
		})
	})
}

func startNotificationService(dep RuntimeDependencies, fyApp fyne.App, startHidden bool) func() {
	tracker := trackForeground(fyApp, startHidden)

	currentConfig := dep.Data.CurrentConfig
	if currentConfig == nil {
		currentConfig = config.Default
	}

	ctx, stop := context.WithCancel(context.Background())
	brewapp.NewNotificationService(
		dep.Data.Bus,
		currentConfig,
		tracker.InForeground,
		notifications.Throttle(fyneNotifier(fyApp), notifications.DefaultThrottleWindow),
		appLogger.With("component", "ui.notifications"),
	).Start(ctx)

	return stop
}
