package app

import (
	"fmt"
	"log/slog"

	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/platform"
)

// LoginSyncWarning reports a saved config whose login registration could
// not be updated.
type LoginSyncWarning struct {
	Err error
}

func (w *LoginSyncWarning) Error() string {
	if w == nil || w.Err == nil {
		return "login start sync failed"
	}

	return fmt.Sprintf("login start sync failed: %v", w.Err)
}

func (w *LoginSyncWarning) Unwrap() error {
	if w == nil {
		return nil
	}

	return w.Err
}

func loginEntry(cfg config.UIConfig) platform.LoginEntry {
	return platform.LoginEntry{Enabled: cfg.Autostart, StartHidden: cfg.StartMinimized}
}

// syncLogin is a no-op unless the runtime was built with a registrar.
func (r *Runtime) syncLogin(cfg config.UIConfig, trigger string) error {
	if r.login == nil {
		return nil
	}

	entry := loginEntry(cfg)
	if err := r.login.Sync(entry); err != nil {
		return err
	}
	slog.Info("login start synced", "trigger", trigger, "enabled", entry.Enabled, "start_hidden", entry.StartHidden)

	return nil
}
