package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/notifications"
)

func startTestNotificationService(t *testing.T, currentConfig func() config.AppConfig, foreground func() bool) (*bus.PubSubBus, *collectingNotificationSender) {
	t.Helper()

	messageBus := newTestMessageBus(t)
	sender := newCollectingNotificationSender()
	service := NewNotificationService(messageBus, currentConfig, foreground, sender, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	service.Start(ctx)

	return messageBus, sender
}

func TestNotificationServiceConnectionStatusFilteringAndFormatting(t *testing.T) {
	cfg := config.Default()
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig { return cfg },
		func() bool { return false },
	)

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateConnected,
		TransportName: "websocket",
		Target:        "ws://192.168.4.1:90/ws",
	})
	gotNotifications := sender.waitForCount(t, 1)
	if got := gotNotifications[0].Title; got != "WebSocket - connected" {
		t.Fatalf("expected connected title, got %q", got)
	}
	if got := gotNotifications[0].Kind; got != notifications.KindConnection {
		t.Fatalf("expected connection kind, got %q", got)
	}

	// Duplicate consecutive state must be ignored.
	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateConnected,
		TransportName: "websocket",
		Target:        "ws://192.168.4.1:90/ws",
	})
	sender.assertCount(t, 1)

	// Connecting itself should not notify.
	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateConnecting,
		TransportName: "websocket",
		Target:        "ws://192.168.4.1:90/ws",
	})
	sender.assertCount(t, 1)

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateDisconnected,
		TransportName: "serial",
		Target:        "/dev/ttyUSB0",
		Err:           "read timeout",
	})
	gotNotifications = sender.waitForCount(t, 2)
	if got := gotNotifications[1].Title; got != "Serial - disconnected" {
		t.Fatalf("expected disconnected title, got %q", got)
	}
	if got := gotNotifications[1].Content; got != "/dev/ttyUSB0 (error: read timeout)" {
		t.Fatalf("expected disconnected content with error, got %q", got)
	}
}

func TestNotificationServiceReconnectGaveUp(t *testing.T) {
	cfg := config.Default()
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig { return cfg },
		func() bool { return false },
	)

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{
		State:         connectors.ConnectionStateDisconnected,
		TransportName: "websocket",
		Target:        "ws://192.168.4.1:90/ws",
		Attempt:       5,
		MaxAttempts:   5,
	})
	gotNotifications := sender.waitForCount(t, 1)
	if got := gotNotifications[0].Content; got != "ws://192.168.4.1:90/ws. Reconnect manually to resume." {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestNotificationServiceCommandFailures(t *testing.T) {
	cfg := config.Default()
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig { return cfg },
		func() bool { return false },
	)

	messageBus.Publish(connectors.TopicCommandDone, connectors.CommandResult{
		Parameter: "shotPressure",
		Value:     9,
	})
	sender.assertCount(t, 0)

	messageBus.Publish(connectors.TopicCommandDone, connectors.CommandResult{
		Parameter: "shotPressure",
		Value:     9,
		Err:       "request config: connection refused",
	})
	gotNotifications := sender.waitForCount(t, 1)
	if got := gotNotifications[0].Title; got != notificationTitleCommandFailed {
		t.Fatalf("expected title %q, got %q", notificationTitleCommandFailed, got)
	}
	if got := gotNotifications[0].Content; got != "Failed to update Shot Pressure. Please try again." {
		t.Fatalf("unexpected content: %q", got)
	}
	if got := gotNotifications[0].Kind; got != notifications.KindCommand {
		t.Fatalf("expected command kind, got %q", got)
	}

	messageBus.Publish(connectors.TopicCommandDone, connectors.CommandResult{
		Parameter: "setpoint",
		Err:       "another command is in flight",
		Busy:      true,
	})
	gotNotifications = sender.waitForCount(t, 2)
	if got := gotNotifications[1].Title; got != notificationTitleCommandBusy {
		t.Fatalf("expected title %q, got %q", notificationTitleCommandBusy, got)
	}
}

func TestNotificationServiceForegroundAndPerTypeSettings(t *testing.T) {
	cfg := config.Default()
	var cfgMu sync.RWMutex
	messageBus, sender := startTestNotificationService(t,
		func() config.AppConfig {
			cfgMu.RLock()
			defer cfgMu.RUnlock()

			return cfg
		},
		func() bool { return true },
	)

	failure := connectors.CommandResult{Parameter: "setpoint", Err: "timeout"}

	// Focused app + notify_when_focused=false -> suppressed.
	messageBus.Publish(connectors.TopicCommandDone, failure)
	sender.assertCount(t, 0)

	cfgMu.Lock()
	cfg.UI.Notifications.NotifyWhenFocused = true
	cfgMu.Unlock()
	messageBus.Publish(connectors.TopicCommandDone, failure)
	sender.waitForCount(t, 1)

	cfgMu.Lock()
	cfg.UI.Notifications.CommandFailures = false
	cfgMu.Unlock()
	messageBus.Publish(connectors.TopicCommandDone, failure)
	sender.assertCount(t, 1)
}

func newTestMessageBus(t *testing.T) *bus.PubSubBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messageBus := bus.New(logger)
	t.Cleanup(func() {
		messageBus.Close()
	})

	return messageBus
}

type collectingNotificationSender struct {
	mu            sync.Mutex
	notifications []notifications.Payload
	changes       chan struct{}
}

func newCollectingNotificationSender() *collectingNotificationSender {
	return &collectingNotificationSender{
		changes: make(chan struct{}, 1),
	}
}

func (s *collectingNotificationSender) Send(notification notifications.Payload) {
	s.mu.Lock()
	s.notifications = append(s.notifications, notification)
	s.mu.Unlock()

	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *collectingNotificationSender) snapshot() []notifications.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]notifications.Payload, len(s.notifications))
	copy(out, s.notifications)

	return out
}

func (s *collectingNotificationSender) waitForCount(t *testing.T, expected int) []notifications.Payload {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		current := s.snapshot()
		if len(current) >= expected {
			return current
		}
		select {
		case <-s.changes:
		case <-time.After(10 * time.Millisecond):
		}
	}

	t.Fatalf("timed out waiting for %d notifications", expected)

	return nil
}

func (s *collectingNotificationSender) assertCount(t *testing.T, expected int) {
	t.Helper()

	time.Sleep(100 * time.Millisecond)
	current := s.snapshot()
	if len(current) != expected {
		t.Fatalf("expected %d notifications, got %d", expected, len(current))
	}
}
