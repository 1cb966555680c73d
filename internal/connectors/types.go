package connectors

import "time"

// ConnectionState describes the stream lifecycle state shown in UI.
type ConnectionState string

const (
	ConnectionStateDisconnected ConnectionState = "disconnected"
	ConnectionStateConnecting   ConnectionState = "connecting"
	ConnectionStateConnected    ConnectionState = "connected"
)

// ConnectionStatus is a bus event snapshot of current stream status.
type ConnectionStatus struct {
	State         ConnectionState
	Err           string
	TransportName string
	Target        string
	Attempt       int
	MaxAttempts   int
	// UserDisabled is set while the user has switched the stream off.
	UserDisabled bool
	Timestamp    time.Time
}

func (s ConnectionStatus) IsConnected() bool {
	return s.State == ConnectionStateConnected
}

// RawFrame carries an inbound stream payload for debug views.
type RawFrame struct {
	Text string
	Len  int
}

// EditState is the per-parameter lifecycle of a user edit.
type EditState string

const (
	EditStateIdle       EditState = "idle"
	EditStateEditing    EditState = "editing"
	EditStateSubmitting EditState = "submitting"
)

// EditStateChange is published whenever a parameter changes edit state.
type EditStateChange struct {
	Parameter string
	State     EditState
	Value     float64
}

// CommandResult reports the outcome of one outbound request to the device.
type CommandResult struct {
	RequestID string
	Parameter string
	Value     float64
	Err       string
	Busy      bool
	At        time.Time
}

func (r CommandResult) Failed() bool {
	return r.Err != ""
}
