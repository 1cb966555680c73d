package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppConfigFillMissingDefaults(t *testing.T) {
	cfg := AppConfig{}
	cfg.FillMissingDefaults()

	if cfg.Device.Connector != ConnectorWebSocket {
		t.Fatalf("expected default connector %q, got %q", ConnectorWebSocket, cfg.Device.Connector)
	}
	if cfg.Device.StreamPort != DefaultStreamPort || cfg.Device.HTTPPort != DefaultHTTPPort {
		t.Fatalf("unexpected default ports: stream=%d http=%d", cfg.Device.StreamPort, cfg.Device.HTTPPort)
	}
	if cfg.Device.BrewOnValue != "0" || cfg.Device.BrewOffValue != "1" {
		t.Fatalf("unexpected brew wire values: on=%q off=%q", cfg.Device.BrewOnValue, cfg.Device.BrewOffValue)
	}
	if cfg.Sync.ReconnectDelayMS != 2000 {
		t.Fatalf("expected reconnect delay 2000, got %d", cfg.Sync.ReconnectDelayMS)
	}
	if cfg.Sync.DebounceMS != 700 {
		t.Fatalf("expected debounce 700, got %d", cfg.Sync.DebounceMS)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Logging.Level)
	}
}

func TestAppConfigFillMissingDefaults_KeepsZeroReconnectAttempts(t *testing.T) {
	cfg := Default()
	cfg.Sync.MaxReconnectAttempts = 0
	cfg.FillMissingDefaults()

	if cfg.Sync.MaxReconnectAttempts != 0 {
		t.Fatalf("expected zero attempts to be kept, got %d", cfg.Sync.MaxReconnectAttempts)
	}
}

func TestAppConfigFillMissingDefaults_PairsLoneBrewValue(t *testing.T) {
	tests := []struct {
		name    string
		on, off string
		wantOn  string
		wantOff string
	}{
		{name: "only on default", on: "0", wantOn: "0", wantOff: "1"},
		{name: "only on inverted", on: "1", wantOn: "1", wantOff: "0"},
		{name: "only off", off: "0", wantOn: "1", wantOff: "0"},
		{name: "only on custom", on: "start", wantOn: "start", wantOff: "0"},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Device.Host = "10.0.0.2"
		cfg.Device.BrewOnValue = tt.on
		cfg.Device.BrewOffValue = tt.off
		cfg.FillMissingDefaults()

		if cfg.Device.BrewOnValue != tt.wantOn || cfg.Device.BrewOffValue != tt.wantOff {
			t.Fatalf("%s: expected on=%q off=%q, got on=%q off=%q", tt.name, tt.wantOn, tt.wantOff, cfg.Device.BrewOnValue, cfg.Device.BrewOffValue)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("%s: unexpected validation error: %v", tt.name, err)
		}
	}
}

func TestDefaultEnablesNotificationTypes(t *testing.T) {
	cfg := Default()
	if cfg.UI.Notifications.NotifyWhenFocused {
		t.Fatalf("expected notify_when_focused to be disabled by default")
	}
	if !cfg.UI.Notifications.ConnectionStatus {
		t.Fatalf("expected connection status notification to be enabled by default")
	}
	if !cfg.UI.Notifications.CommandFailures {
		t.Fatalf("expected command failure notification to be enabled by default")
	}
	if cfg.Sync.MaxReconnectAttempts != 5 {
		t.Fatalf("expected 5 reconnect attempts, got %d", cfg.Sync.MaxReconnectAttempts)
	}
	if !cfg.UI.AutoShotTimer {
		t.Fatalf("expected auto shot timer to be enabled by default")
	}
}

func TestLoadAcceptsCommentsAndTrailingCommas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
  // controller on the kitchen network
  "device": {
    "host": "192.168.1.40",
    "brew_on_value": "1",
    "brew_off_value": "0",
  },
  /* keep the window short while tuning */
  "sync": {"debounce_ms": 300},
}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Device.Host != "192.168.1.40" {
		t.Fatalf("unexpected host %q", cfg.Device.Host)
	}
	if cfg.Device.BrewOnValue != "1" || cfg.Device.BrewOffValue != "0" {
		t.Fatalf("expected explicit brew wire values to be kept, got on=%q off=%q", cfg.Device.BrewOnValue, cfg.Device.BrewOffValue)
	}
	if cfg.Sync.DebounceMS != 300 {
		t.Fatalf("expected debounce 300, got %d", cfg.Sync.DebounceMS)
	}
	if cfg.Sync.ReconnectDelayMS != DefaultReconnectDelayMS {
		t.Fatalf("expected default reconnect delay, got %d", cfg.Sync.ReconnectDelayMS)
	}
	if !cfg.UI.Notifications.CommandFailures {
		t.Fatalf("expected missing notification section to keep defaults")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load missing config: %v", err)
	}
	if cfg.Device.Connector != ConnectorWebSocket {
		t.Fatalf("expected default connector, got %q", cfg.Device.Connector)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Device.Host = "espresso.local"
	cfg.Sync.SingleFlight = true
	cfg.UI.AdvancedMode = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("config mismatch after round trip:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "websocket with host", mutate: func(c *AppConfig) { c.Device.Host = "10.0.0.2" }},
		{name: "websocket without host", mutate: func(c *AppConfig) {}, wantErr: true},
		{name: "serial with port", mutate: func(c *AppConfig) {
			c.Device.Connector = ConnectorSerial
			c.Device.SerialPort = "/dev/ttyUSB0"
		}},
		{name: "serial without port", mutate: func(c *AppConfig) { c.Device.Connector = ConnectorSerial }, wantErr: true},
		{name: "unknown connector", mutate: func(c *AppConfig) { c.Device.Connector = "bluetooth" }, wantErr: true},
		{name: "blank brew wire value", mutate: func(c *AppConfig) {
			c.Device.Host = "10.0.0.2"
			c.Device.BrewOnValue = " "
		}, wantErr: true},
		{name: "equal brew wire values", mutate: func(c *AppConfig) {
			c.Device.Host = "10.0.0.2"
			c.Device.BrewOffValue = c.Device.BrewOnValue
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
