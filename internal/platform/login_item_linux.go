//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// xdgLoginItem manages an XDG autostart desktop entry.
type xdgLoginItem struct {
	loginItem
}

func newLoginRegistrar(it loginItem) LoginRegistrar {
	return xdgLoginItem{loginItem: it}
}

func (x xdgLoginItem) Sync(entry LoginEntry) error {
	path, err := x.entryPath()
	if err != nil {
		return err
	}
	if !entry.Enabled {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove login entry: %w", err)
		}

		return nil
	}

	exe, args, err := x.command(entry)
	if err != nil {
		return err
	}
	if err := replaceFile(path, []byte(x.desktopEntry(exe, args)), 0o644); err != nil {
		return fmt.Errorf("write login entry: %w", err)
	}

	return nil
}

func (x xdgLoginItem) entryPath() (string, error) {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		var err error
		if base, err = os.UserConfigDir(); err != nil {
			return "", fmt.Errorf("resolve user config dir: %w", err)
		}
	}

	return filepath.Join(filepath.Clean(base), "autostart", x.name+".desktop"), nil
}

func (x xdgLoginItem) desktopEntry(exe string, args []string) string {
	fields := make([]string, 0, len(args)+1)
	for _, field := range append([]string{exe}, args...) {
		fields = append(fields, quoteExecField(field))
	}

	return "[Desktop Entry]\n" +
		"Type=Application\n" +
		"Name=" + x.name + "\n" +
		"Comment=Espresso machine dashboard\n" +
		"Exec=" + strings.Join(fields, " ") + "\n" +
		"Terminal=false\n" +
		"X-GNOME-Autostart-enabled=true\n"
}

// quoteExecField quotes one Exec argument per the desktop entry spec.
func quoteExecField(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)

	return `"` + r.Replace(s) + `"`
}

func replaceFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()

		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
