package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/brewdash/brewdash/internal/config"
	"github.com/brewdash/brewdash/internal/transport"
)

// SwitchableStream wraps the active stream and lets runtime swap it on config
// updates. The session keeps one stream for its whole life, so the next
// Open after Apply dials the new target.
type SwitchableStream struct {
	mu sync.RWMutex

	cfg    config.DeviceConfig
	stream transport.Stream
}

func NewConnectionStream(cfg config.DeviceConfig) (*SwitchableStream, error) {
	st, err := newStreamForDevice(cfg)
	if err != nil {
		return nil, err
	}

	return &SwitchableStream{
		cfg:    cfg,
		stream: st,
	}, nil
}

// Apply retargets the stream. A config for the same connector updates the
// current stream in place.
func (s *SwitchableStream) Apply(cfg config.DeviceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Connector == s.cfg.Connector {
		switch st := s.stream.(type) {
		case *transport.WebSocketStream:
			st.SetEndpoint(strings.TrimSpace(cfg.Host), cfg.StreamPort)
			s.cfg = cfg

			return nil
		case *transport.SerialStream:
			st.SetConfig(strings.TrimSpace(cfg.SerialPort), cfg.SerialBaud)
			s.cfg = cfg

			return nil
		}
	}

	next, err := newStreamForDevice(cfg)
	if err != nil {
		return err
	}
	s.stream = next
	s.cfg = cfg

	return nil
}

func (s *SwitchableStream) Name() string {
	st := s.current()
	if st == nil {
		return "unknown"
	}

	return st.Name()
}

func (s *SwitchableStream) StatusTarget() string {
	s.mu.RLock()
	st := s.stream
	cfg := s.cfg
	s.mu.RUnlock()

	if provider, ok := st.(transport.StatusTargetResolver); ok {
		target := strings.TrimSpace(provider.StatusTarget())
		if target != "" {
			return target
		}
	}

	return ConnectionTarget(cfg)
}

func (s *SwitchableStream) Open(ctx context.Context) (transport.Conn, error) {
	st := s.current()
	if st == nil {
		return nil, fmt.Errorf("stream is not configured")
	}

	return st.Open(ctx)
}

func (s *SwitchableStream) current() transport.Stream {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stream
}

func (s *SwitchableStream) Config() config.DeviceConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cfg
}

func NewStreamForDevice(cfg config.DeviceConfig) (transport.Stream, error) {
	return newStreamForDevice(cfg)
}

func newStreamForDevice(cfg config.DeviceConfig) (transport.Stream, error) {
	switch cfg.Connector {
	case config.ConnectorWebSocket:
		return transport.NewWebSocketStream(strings.TrimSpace(cfg.Host), cfg.StreamPort), nil
	case config.ConnectorSerial:
		return transport.NewSerialStream(strings.TrimSpace(cfg.SerialPort), cfg.SerialBaud), nil
	default:
		return nil, fmt.Errorf("unknown connector: %q", cfg.Connector)
	}
}
