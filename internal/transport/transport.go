package transport

import (
	"context"
	"errors"
	"log/slog"
)

var ErrClosed = errors.New("stream is closed")

// ErrMalformed marks a read that dropped one bad message. The connection
// stays usable and the next ReadMessage resumes after it.
var ErrMalformed = errors.New("malformed stream message")

// Stream opens connections to the controller's telemetry stream. Every call
// to Open yields an independent Conn, so a retired connection can never
// deliver into its successor.
type Stream interface {
	Name() string
	Open(ctx context.Context) (Conn, error)
}

// Conn is one live stream connection. ReadMessage returns one complete text
// message per call. Close unblocks a pending ReadMessage.
type Conn interface {
	ReadMessage(ctx context.Context) ([]byte, error)
	Close() error
}

type StatusTargetResolver interface {
	StatusTarget() string
}

// connLogger tags stream logs with the transport kind and its target.
func connLogger(kind, targetKey, target string) *slog.Logger {
	return slog.With("component", "transport", "transport", kind, targetKey, target)
}
