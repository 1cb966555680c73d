//go:build windows

package platform

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// runKeyLoginItem manages a value under the per-user Run registry key.
type runKeyLoginItem struct {
	loginItem
}

func newLoginRegistrar(it loginItem) LoginRegistrar {
	return runKeyLoginItem{loginItem: it}
}

func (w runKeyLoginItem) Sync(entry LoginEntry) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if !entry.Enabled {
		err := key.DeleteValue(w.name)
		if err != nil && !errors.Is(err, registry.ErrNotExist) && !errors.Is(err, syscall.ERROR_FILE_NOT_FOUND) {
			return fmt.Errorf("remove login entry: %w", err)
		}

		return nil
	}

	exe, args, err := w.command(entry)
	if err != nil {
		return err
	}
	fields := make([]string, 0, len(args)+1)
	for _, field := range append([]string{exe}, args...) {
		fields = append(fields, syscall.EscapeArg(field))
	}
	if err := key.SetStringValue(w.name, strings.Join(fields, " ")); err != nil {
		return fmt.Errorf("write login entry: %w", err)
	}

	return nil
}
