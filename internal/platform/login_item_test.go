package platform

import (
	"slices"
	"testing"
)

func TestLoginItemCommand(t *testing.T) {
	tests := []struct {
		name      string
		configDir string
		entry     LoginEntry
		want      []string
	}{
		{name: "plain", entry: LoginEntry{Enabled: true}},
		{name: "hidden", entry: LoginEntry{Enabled: true, StartHidden: true}, want: []string{"--start-hidden"}},
		{
			name:      "custom config dir",
			configDir: "/srv/brewdash",
			entry:     LoginEntry{Enabled: true, StartHidden: true},
			want:      []string{"--start-hidden", "--config-dir", "/srv/brewdash"},
		},
	}

	for _, tt := range tests {
		it := loginItem{name: "brewdash", configDir: tt.configDir, executable: "/opt/brewdash/brewdash"}
		exe, args, err := it.command(tt.entry)
		if err != nil {
			t.Fatalf("%s: command: %v", tt.name, err)
		}
		if exe != "/opt/brewdash/brewdash" {
			t.Fatalf("%s: expected executable override, got %q", tt.name, exe)
		}
		if !slices.Equal(args, tt.want) {
			t.Fatalf("%s: expected args %q, got %q", tt.name, tt.want, args)
		}
	}
}

func TestLoginItemCommandResolvesExecutable(t *testing.T) {
	exe, _, err := loginItem{name: "brewdash"}.command(LoginEntry{Enabled: true})
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	if exe == "" {
		t.Fatalf("expected resolved executable path")
	}
}
