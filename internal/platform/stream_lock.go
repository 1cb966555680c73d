// Package platform holds OS-specific helpers for the desktop and CLI entry points.
package platform

import (
	"errors"
	"strings"
)

// ErrStreamInUse indicates another brewdash process already streams from the controller.
var ErrStreamInUse = errors.New("controller stream already in use")

// ErrStreamLockUnsupported indicates the current platform has no lock backend implementation.
var ErrStreamLockUnsupported = errors.New("stream lock unsupported")

// StreamLock is held for as long as a process owns the controller stream.
type StreamLock interface {
	Release() error
}

// AcquireStreamLock takes the per-user lock for one controller target. The
// controller serves few stream clients, so one local process owns the
// stream per target; the lock is dropped by the OS if the process dies.
func AcquireStreamLock(appID, target string) (StreamLock, error) {
	return acquireStreamLock(
		normalizeLockComponent(appID, "app"),
		normalizeLockComponent(target, "default"),
	)
}

func normalizeLockComponent(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	normalized := strings.Trim(b.String(), "_-.")
	if normalized == "" {
		return fallback
	}

	return normalized
}
