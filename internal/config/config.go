package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// ConnectorType identifies which stream transport should be used.
type ConnectorType string

const (
	ConnectorWebSocket ConnectorType = "websocket"
	ConnectorSerial    ConnectorType = "serial"

	DefaultStreamPort = 90
	DefaultHTTPPort   = 80
	DefaultSerialBaud = 115200

	DefaultReconnectDelayMS     = 2000
	DefaultMaxReconnectAttempts = 5
	DefaultDebounceMS           = 700
	DefaultSnapshotIntervalMS   = 1000
	DefaultMaxSeriesPoints      = 20000

	// The controller firmware reads "0" as brew on and "1" as brew off.
	DefaultBrewOnValue  = "0"
	DefaultBrewOffValue = "1"
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	LogToFile bool   `json:"log_to_file"`
	Color     bool   `json:"color"`
}

// DeviceConfig describes how to reach the espresso controller.
type DeviceConfig struct {
	Connector    ConnectorType `json:"connector"`
	Host         string        `json:"host"`
	StreamPort   int           `json:"stream_port"`
	HTTPPort     int           `json:"http_port"`
	SerialPort   string        `json:"serial_port"`
	SerialBaud   int           `json:"serial_baud"`
	BrewOnValue  string        `json:"brew_on_value"`
	BrewOffValue string        `json:"brew_off_value"`
}

// SyncConfig tunes reconnect, debounce and snapshot behavior.
type SyncConfig struct {
	ReconnectDelayMS     int  `json:"reconnect_delay_ms"`
	MaxReconnectAttempts int  `json:"max_reconnect_attempts"`
	DebounceMS           int  `json:"debounce_ms"`
	SingleFlight         bool `json:"single_flight"`
	SnapshotIntervalMS   int  `json:"snapshot_interval_ms"`
	MaxSeriesPoints      int  `json:"max_series_points"`
}

// NotificationConfig stores desktop notification preferences.
type NotificationConfig struct {
	NotifyWhenFocused bool `json:"notify_when_focused"`
	ConnectionStatus  bool `json:"connection_status"`
	CommandFailures   bool `json:"command_failures"`
}

// UIConfig stores persistent UI preferences.
type UIConfig struct {
	AdvancedMode bool `json:"advanced_mode"`
	// AutoShotTimer starts and pauses the shot timer from the brew switch.
	AutoShotTimer  bool               `json:"auto_shot_timer"`
	StartMinimized bool               `json:"start_minimized"`
	Autostart      bool               `json:"autostart"`
	Notifications  NotificationConfig `json:"notifications"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Device  DeviceConfig  `json:"device"`
	Sync    SyncConfig    `json:"sync"`
	Logging LoggingConfig `json:"logging"`
	UI      UIConfig      `json:"ui"`
}

func Default() AppConfig {
	return AppConfig{
		Device: DeviceConfig{
			Connector:    ConnectorWebSocket,
			StreamPort:   DefaultStreamPort,
			HTTPPort:     DefaultHTTPPort,
			SerialBaud:   DefaultSerialBaud,
			BrewOnValue:  DefaultBrewOnValue,
			BrewOffValue: DefaultBrewOffValue,
		},
		Sync: SyncConfig{
			ReconnectDelayMS:     DefaultReconnectDelayMS,
			MaxReconnectAttempts: DefaultMaxReconnectAttempts,
			DebounceMS:           DefaultDebounceMS,
			SnapshotIntervalMS:   DefaultSnapshotIntervalMS,
			MaxSeriesPoints:      DefaultMaxSeriesPoints,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			AutoShotTimer: true,
			Notifications: NotificationConfig{
				ConnectionStatus: true,
				CommandFailures:  true,
			},
		},
	}
}

// Load reads the config file at path. A missing file yields defaults.
// Comments and trailing commas are accepted.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(raw), &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	if c.Device.Connector == "" {
		c.Device.Connector = ConnectorWebSocket
	}
	c.Device.Host = strings.TrimSpace(c.Device.Host)
	if c.Device.StreamPort <= 0 {
		c.Device.StreamPort = DefaultStreamPort
	}
	if c.Device.HTTPPort <= 0 {
		c.Device.HTTPPort = DefaultHTTPPort
	}
	if c.Device.SerialBaud <= 0 {
		c.Device.SerialBaud = DefaultSerialBaud
	}
	// A lone brew wire value gets the opposite default as its partner.
	switch {
	case c.Device.BrewOnValue == "" && c.Device.BrewOffValue == "":
		c.Device.BrewOnValue = DefaultBrewOnValue
		c.Device.BrewOffValue = DefaultBrewOffValue
	case c.Device.BrewOnValue == "":
		c.Device.BrewOnValue = otherBrewValue(c.Device.BrewOffValue)
	case c.Device.BrewOffValue == "":
		c.Device.BrewOffValue = otherBrewValue(c.Device.BrewOnValue)
	}
	if c.Sync.ReconnectDelayMS <= 0 {
		c.Sync.ReconnectDelayMS = DefaultReconnectDelayMS
	}
	// Zero attempts is a legal way to disable auto-reconnect.
	if c.Sync.MaxReconnectAttempts < 0 {
		c.Sync.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if c.Sync.DebounceMS <= 0 {
		c.Sync.DebounceMS = DefaultDebounceMS
	}
	if c.Sync.SnapshotIntervalMS <= 0 {
		c.Sync.SnapshotIntervalMS = DefaultSnapshotIntervalMS
	}
	if c.Sync.MaxSeriesPoints < 0 {
		c.Sync.MaxSeriesPoints = 0
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func otherBrewValue(v string) string {
	if v == DefaultBrewOnValue {
		return DefaultBrewOffValue
	}

	return DefaultBrewOnValue
}

func (c AppConfig) Validate() error {
	switch c.Device.Connector {
	case ConnectorWebSocket:
		if strings.TrimSpace(c.Device.Host) == "" {
			return errors.New("device host is required")
		}
	case ConnectorSerial:
		if strings.TrimSpace(c.Device.SerialPort) == "" {
			return errors.New("serial port is required")
		}
		if c.Device.SerialBaud <= 0 {
			return errors.New("serial baud must be positive")
		}
	default:
		return fmt.Errorf("unknown connector: %s", c.Device.Connector)
	}
	if strings.TrimSpace(c.Device.BrewOnValue) == "" || strings.TrimSpace(c.Device.BrewOffValue) == "" {
		return errors.New("brew on/off wire values are required")
	}
	if c.Device.BrewOnValue == c.Device.BrewOffValue {
		return fmt.Errorf("brew on/off wire values must differ: %q", c.Device.BrewOnValue)
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
