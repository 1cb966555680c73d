//go:build unix && !windows

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

type unixStreamLock struct {
	file *os.File
}

func acquireStreamLock(appID, target string) (StreamLock, error) {
	lockPath, err := unixStreamLockPath(appID, target)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- lockPath is built from process-owned runtime/temp directories.
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open stream lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		if isUnixLockContention(err) {
			return nil, ErrStreamInUse
		}

		return nil, fmt.Errorf("acquire stream file lock: %w", err)
	}

	// The pid is informational only; flock is the source of truth.
	_ = file.Truncate(0)
	_, _ = file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)

	return &unixStreamLock{file: file}, nil
}

func (l *unixStreamLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	fd := int(l.file.Fd())
	unlockErr := syscall.Flock(fd, syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil && !errors.Is(unlockErr, syscall.EBADF) {
		return fmt.Errorf("unlock stream file lock: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close stream lock file: %w", closeErr)
	}

	return nil
}

func unixStreamLockPath(appID, target string) (string, error) {
	lockDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if lockDir != "" {
		lockDir = filepath.Join(lockDir, appID)
	} else {
		lockDir = filepath.Join(os.TempDir(), appID+"-"+strconv.Itoa(os.Getuid()))
	}

	if err := os.MkdirAll(lockDir, 0o700); err != nil {
		return "", fmt.Errorf("create stream lock dir: %w", err)
	}

	return filepath.Join(lockDir, "stream-"+target+".lock"), nil
}

func isUnixLockContention(err error) bool {
	return errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN)
}
