package notifications

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/gen2brain/beeep"
)

var appNameOnce sync.Once

// DesktopSender posts notifications through the OS notification service.
// It serves headless surfaces; the GUI sends through Fyne instead.
type DesktopSender struct {
	logger *slog.Logger
	notify func(title, message string) error
}

func NewDesktopSender(appName string, logger *slog.Logger) *DesktopSender {
	if logger == nil {
		logger = slog.Default().With("component", "notifications")
	}
	if name := strings.TrimSpace(appName); name != "" {
		appNameOnce.Do(func() {
			beeep.AppName = name
		})
	}

	return &DesktopSender{
		logger: logger,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

func (s *DesktopSender) Send(payload Payload) {
	if err := s.notify(payload.Title, payload.Content); err != nil {
		s.logger.Warn("desktop notification failed", "title", payload.Title, "error", err)
	}
}
