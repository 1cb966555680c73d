//go:build !unix && !windows

package platform

import (
	"fmt"
	"runtime"
)

func acquireStreamLock(_, _ string) (StreamLock, error) {
	return nil, fmt.Errorf("%w on %s", ErrStreamLockUnsupported, runtime.GOOS)
}
