package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"

	"github.com/brewdash/brewdash/internal/config"
)

// Manager owns the process logger: a console handler, optionally paired with
// a plain text log file, behind one shared level.
type Manager struct {
	mu      sync.RWMutex
	console io.Writer
	level   slog.LevelVar
	logger  *slog.Logger
	file    *os.File
}

// NewManager logs to console, or to stdout when console is nil.
func NewManager(console io.Writer) *Manager {
	m := &Manager{console: console}
	m.level.Set(slog.LevelInfo)
	m.logger = slog.New(slog.NewTextHandler(m.consoleWriter(), &slog.HandlerOptions{Level: &m.level}))

	return m
}

// Configure rebuilds the handlers and installs the result as slog's default.
// Loggers handed out earlier keep their old handler but share the level.
func (m *Manager) Configure(cfg config.LoggingConfig, filePath string) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file != nil {
		_ = m.file.Close()
		m.file = nil
	}
	m.level.Set(level)

	handlers := []slog.Handler{m.consoleHandler(cfg.Color)}
	if cfg.LogToFile {
		cleanPath := filepath.Clean(filePath)
		// #nosec G304 -- path is resolved by app runtime and points to user config dir.
		file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		m.file = file
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{Level: &m.level}))
	}

	m.logger = slog.New(newFanoutHandler(handlers...))
	slog.SetDefault(m.logger)

	return nil
}

func (m *Manager) Logger(component string) *slog.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.logger.With("component", component)
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			return err
		}
		m.file = nil
	}

	return nil
}

func (m *Manager) consoleWriter() io.Writer {
	if m.console != nil {
		return m.console
	}

	return os.Stdout
}

func (m *Manager) consoleHandler(color bool) slog.Handler {
	if color {
		return tint.NewHandler(m.consoleWriter(), &tint.Options{Level: &m.level, TimeFormat: time.TimeOnly})
	}

	return slog.NewTextHandler(m.consoleWriter(), &slog.HandlerOptions{Level: &m.level})
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level: %q", raw)
	}
}

// fanoutHandler passes every record to all handlers. A failing destination
// does not stop the others.
type fanoutHandler struct {
	handlers []slog.Handler
}

func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}

	return &fanoutHandler{handlers: handlers}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}

	return &fanoutHandler{handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}

	return &fanoutHandler{handlers: next}
}
