//go:build windows

package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

type windowsStreamLock struct {
	handle windows.Handle
}

func acquireStreamLock(appID, target string) (StreamLock, error) {
	sid, err := windowsCurrentUserSID()
	if err != nil {
		return nil, err
	}

	namePtr, err := windows.UTF16PtrFromString(windowsStreamMutexName(appID, target, sid))
	if err != nil {
		return nil, fmt.Errorf("encode stream mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, namePtr)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if handle != 0 {
			_ = windows.CloseHandle(handle)
		}

		return nil, ErrStreamInUse
	}
	if err != nil {
		if handle != 0 {
			_ = windows.CloseHandle(handle)
		}

		return nil, fmt.Errorf("create stream mutex: %w", err)
	}

	return &windowsStreamLock{handle: handle}, nil
}

func (l *windowsStreamLock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}

	err := windows.CloseHandle(l.handle)
	l.handle = 0
	if err != nil {
		return fmt.Errorf("close stream mutex handle: %w", err)
	}

	return nil
}

func windowsCurrentUserSID() (string, error) {
	token := windows.GetCurrentProcessToken()
	tokenUser, err := token.GetTokenUser()
	if err != nil {
		return "", fmt.Errorf("read current user token: %w", err)
	}

	return tokenUser.User.Sid.String(), nil
}

func windowsStreamMutexName(appID, target, userSID string) string {
	return `Local\` + appID + `-stream-` + target + `-` + normalizeLockComponent(userSID, "sid")
}
