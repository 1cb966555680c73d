package app

import (
	"fmt"

	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/platform"
)

// LockStream takes the per-user stream lock for the configured controller.
// Callers hold it for as long as they stream and release it on exit.
func LockStream(cfg config.DeviceConfig) (platform.StreamLock, error) {
	lock, err := platform.AcquireStreamLock(Name, ConnectionTarget(cfg))
	if err != nil {
		return nil, fmt.Errorf("lock controller stream %q: %w", ConnectionTarget(cfg), err)
	}

	return lock, nil
}
