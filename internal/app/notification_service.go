package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/command"
	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/notifications"
)

const (
	notificationTitleCommandFailed = "Update failed"
	notificationTitleCommandBusy   = "Update skipped"
)

// NotificationService listens to bus events and emits user-facing notifications.
type NotificationService struct {
	bus           bus.MessageBus
	currentConfig func() config.AppConfig
	isForeground  func() bool
	sender        notifications.Sender
	logger        *slog.Logger

	connStatusMu     sync.Mutex
	lastConnState    connectors.ConnectionState
	lastConnStateSet bool
}

func NewNotificationService(
	messageBus bus.MessageBus,
	currentConfig func() config.AppConfig,
	isForeground func() bool,
	sender notifications.Sender,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default().With("component", "app.notifications")
	}

	return &NotificationService{
		bus:           messageBus,
		currentConfig: currentConfig,
		isForeground:  isForeground,
		sender:        sender,
		logger:        logger,
	}
}

func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || s.bus == nil || s.sender == nil {
		return
	}

	connSub := s.bus.Subscribe(connectors.TopicConnStatus)
	resultSub := s.bus.Subscribe(connectors.TopicCommandDone)

	go func() {
		defer s.bus.Unsubscribe(connSub, connectors.TopicConnStatus)
		defer s.bus.Unsubscribe(resultSub, connectors.TopicCommandDone)

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-connSub:
				if !ok {
					return
				}
				status, ok := raw.(connectors.ConnectionStatus)
				if !ok {
					continue
				}
				s.handleConnectionStatus(status)
			case raw, ok := <-resultSub:
				if !ok {
					return
				}
				result, ok := raw.(connectors.CommandResult)
				if !ok {
					continue
				}
				s.handleCommandResult(result)
			}
		}
	}()
}

func (s *NotificationService) handleConnectionStatus(status connectors.ConnectionStatus) {
	prefs := s.notificationPrefs()
	if status.State == "" {
		return
	}

	s.connStatusMu.Lock()
	if s.lastConnStateSet && s.lastConnState == status.State {
		s.connStatusMu.Unlock()

		return
	}
	s.lastConnState = status.State
	s.lastConnStateSet = true
	s.connStatusMu.Unlock()

	if status.State != connectors.ConnectionStateConnected &&
		status.State != connectors.ConnectionStateDisconnected {
		return
	}
	if !s.shouldNotify(prefs, prefs.ConnectionStatus) {
		return
	}

	transport := notificationTransportName(status.TransportName)
	if transport == "" {
		transport = "Unknown"
	}
	details := strings.TrimSpace(status.Target)
	if details == "" {
		details = "No connection details"
	}
	if status.State == connectors.ConnectionStateDisconnected {
		if errText := strings.TrimSpace(status.Err); errText != "" {
			details = fmt.Sprintf("%s (error: %s)", details, errText)
		}
		if !status.UserDisabled && status.MaxAttempts > 0 && status.Attempt >= status.MaxAttempts {
			details += ". Reconnect manually to resume."
		}
	}

	s.send(notifications.Payload{
		Kind:    notifications.KindConnection,
		Title:   fmt.Sprintf("%s - %s", transport, status.State),
		Content: details,
	})
}

func (s *NotificationService) handleCommandResult(result connectors.CommandResult) {
	if !result.Failed() {
		return
	}
	prefs := s.notificationPrefs()
	if !s.shouldNotify(prefs, prefs.CommandFailures) {
		return
	}

	if result.Busy {
		s.send(notifications.Payload{
			Kind:    notifications.KindCommand,
			Title:   notificationTitleCommandBusy,
			Content: command.BusyMessage,
		})

		return
	}
	s.send(notifications.Payload{
		Kind:    notifications.KindCommand,
		Title:   notificationTitleCommandFailed,
		Content: command.FailureMessage(result.Parameter),
	})
}

func (s *NotificationService) shouldNotify(prefs config.NotificationConfig, kindEnabled bool) bool {
	if !kindEnabled {
		return false
	}
	if prefs.NotifyWhenFocused {
		return true
	}
	if s.isForeground == nil {
		return true
	}

	return !s.isForeground()
}

func (s *NotificationService) notificationPrefs() config.NotificationConfig {
	cfg := config.Default()
	if s.currentConfig != nil {
		cfg = s.currentConfig()
		cfg.FillMissingDefaults()
	}

	return cfg.UI.Notifications
}

func (s *NotificationService) send(notification notifications.Payload) {
	title := strings.TrimSpace(notification.Title)
	content := strings.TrimSpace(notification.Content)
	if title == "" && content == "" {
		return
	}
	s.logger.Debug("sending notification", "kind", notification.Kind, "title", title)
	s.sender.Send(notifications.Payload{
		Kind:    notification.Kind,
		Title:   title,
		Content: content,
	})
}

func notificationTransportName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "websocket":
		return "WebSocket"
	case "serial":
		return "Serial"
	default:
		return strings.TrimSpace(name)
	}
}
