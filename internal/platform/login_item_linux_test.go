//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestXDGLoginItemSyncLifecycle(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)

	item := xdgLoginItem{loginItem: loginItem{name: "brewdash", executable: "/opt/brew dash/brewdash"}}
	path := filepath.Join(root, "autostart", "brewdash.desktop")

	if err := item.Sync(LoginEntry{Enabled: true}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	raw, err := os.ReadFile(path) // #nosec G304 -- path is under t.TempDir.
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	entry := string(raw)
	if !strings.HasPrefix(entry, "[Desktop Entry]\n") {
		t.Fatalf("expected desktop entry header, got %q", entry)
	}
	if !strings.Contains(entry, `Exec="/opt/brew dash/brewdash"`+"\n") {
		t.Fatalf("expected quoted executable without flags, got %q", entry)
	}

	if err := item.Sync(LoginEntry{Enabled: true, StartHidden: true}); err != nil {
		t.Fatalf("enable hidden: %v", err)
	}
	raw, err = os.ReadFile(path) // #nosec G304 -- path is under t.TempDir.
	if err != nil {
		t.Fatalf("read updated entry: %v", err)
	}
	if !strings.Contains(string(raw), `"--start-hidden"`) {
		t.Fatalf("expected start hidden flag, got %q", raw)
	}

	if err := item.Sync(LoginEntry{}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected entry removed, stat err: %v", err)
	}
	if err := item.Sync(LoginEntry{}); err != nil {
		t.Fatalf("disable twice: %v", err)
	}
}

func TestQuoteExecField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/usr/bin/brewdash", want: `"/usr/bin/brewdash"`},
		{in: `C:\x "y"`, want: `"C:\\x \"y\""`},
		{in: "$HOME`id`", want: "\"\\$HOME\\`id\\`\""},
	}

	for _, tt := range tests {
		if got := quoteExecField(tt.in); got != tt.want {
			t.Fatalf("quote %q: expected %s, got %s", tt.in, tt.want, got)
		}
	}
}
