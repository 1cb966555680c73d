//go:build !linux && !windows

package platform

import (
	"errors"
	"runtime"
)

// ErrLoginItemUnsupported is returned when enabling login start on an OS
// without a backend.
var ErrLoginItemUnsupported = errors.New("login start unsupported on " + runtime.GOOS)

type noLoginItem struct{}

func newLoginRegistrar(loginItem) LoginRegistrar {
	return noLoginItem{}
}

func (noLoginItem) Sync(entry LoginEntry) error {
	if entry.Enabled {
		return ErrLoginItemUnsupported
	}

	return nil
}
