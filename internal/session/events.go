package session

import "github.com/brewdash/brewdash/internal/transport"

type eventKind int

const (
	eventOpened eventKind = iota
	eventMessage
	eventClosed
	eventErrored
	eventReconnectDue
	eventConnect
	eventToggle
	eventDisconnect
	eventClearSeries
)

func (k eventKind) String() string {
	switch k {
	case eventOpened:
		return "opened"
	case eventMessage:
		return "message"
	case eventClosed:
		return "closed"
	case eventErrored:
		return "errored"
	case eventReconnectDue:
		return "reconnect_due"
	case eventConnect:
		return "connect"
	case eventToggle:
		return "toggle"
	case eventDisconnect:
		return "disconnect"
	case eventClearSeries:
		return "clear_series"
	default:
		return "unknown"
	}
}

// event is the only way state changes reach the manager loop. Stream events
// carry the generation of the connection that produced them; timer events
// carry the sequence number of the timer that fired.
type event struct {
	kind    eventKind
	gen     uint64
	seq     uint64
	conn    transport.Conn
	payload []byte
	err     error
	done    chan struct{}
}
