package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	startHiddenFlag = "--start-hidden"
	configDirFlag   = "--config-dir"
)

// LoginEntry is the desired login registration for the dashboard.
type LoginEntry struct {
	Enabled     bool
	StartHidden bool
}

// LoginRegistrar adds or removes the per-user entry that launches the
// dashboard at login. Sync is idempotent.
type LoginRegistrar interface {
	Sync(entry LoginEntry) error
}

// NewLoginRegistrar returns the backend for the current OS. A non-empty
// configDir is passed back to the launched process.
func NewLoginRegistrar(appName, configDir string) LoginRegistrar {
	return newLoginRegistrar(loginItem{
		name:      strings.TrimSpace(appName),
		configDir: strings.TrimSpace(configDir),
	})
}

type loginItem struct {
	name      string
	configDir string
	// executable overrides os.Executable in tests.
	executable string
}

func (it loginItem) command(entry LoginEntry) (string, []string, error) {
	exe := it.executable
	if exe == "" {
		var err error
		exe, err = currentExecutable()
		if err != nil {
			return "", nil, err
		}
	}

	var args []string
	if entry.StartHidden {
		args = append(args, startHiddenFlag)
	}
	if it.configDir != "" {
		args = append(args, configDirFlag, it.configDir)
	}

	return exe, args, nil
}

func currentExecutable() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if path = strings.TrimSpace(path); path == "" {
		return "", fmt.Errorf("resolve executable: empty path")
	}
	if path, err = filepath.Abs(path); err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	return filepath.Clean(path), nil
}
