package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

const defaultSerialReadTimeout = 300 * time.Millisecond

// SerialStream reads newline-delimited JSON from a controller attached over
// USB, the bench setup used while developing firmware.
type SerialStream struct {
	mu       sync.Mutex
	portName string
	baudRate int
}

func NewSerialStream(portName string, baudRate int) *SerialStream {
	return &SerialStream{
		portName: portName,
		baudRate: baudRate,
	}
}

func (s *SerialStream) Name() string {
	return "serial"
}

func (s *SerialStream) SetConfig(portName string, baudRate int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portName = portName
	s.baudRate = baudRate
}

func (s *SerialStream) StatusTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.portName
}

func (s *SerialStream) Open(ctx context.Context) (Conn, error) {
	s.mu.Lock()
	portName, baudRate := s.portName, s.baudRate
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if portName == "" {
		return nil, errors.New("serial port is empty")
	}
	if baudRate <= 0 {
		return nil, fmt.Errorf("invalid serial baud rate: %d", baudRate)
	}

	logger := connLogger("serial", "port", portName)
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		logger.Warn("connect failed", "error", err)

		return nil, fmt.Errorf("open serial port %q: %w", portName, err)
	}
	if err := port.SetReadTimeout(defaultSerialReadTimeout); err != nil {
		_ = port.Close()

		return nil, fmt.Errorf("set serial read timeout: %w", err)
	}
	logger.Info("connected", "baud", baudRate)

	return &serialConn{port: port, lines: newLineReader(port, 0), portName: portName}, nil
}

// ListSerialPorts returns the serial ports the OS currently reports.
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}

	return ports, nil
}

type serialConn struct {
	port     serial.Port
	lines    *lineReader
	portName string

	mu     sync.Mutex
	closed bool
}

func (c *serialConn) ReadMessage(ctx context.Context) ([]byte, error) {
	line, err := c.lines.ReadLine(ctx)
	if err != nil {
		if c.isClosed() {
			return nil, ErrClosed
		}

		return nil, fmt.Errorf("read serial line: %w", err)
	}

	return line, nil
}

func (c *serialConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	connLogger("serial", "port", c.portName).Info("closed")

	return c.port.Close()
}

func (c *serialConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}
