package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultStreamPort       = 90
	defaultHandshakeTimeout = 6 * time.Second
	maxStreamMessageSize    = 64 << 10
)

// WebSocketStream connects to the controller's /ws endpoint.
type WebSocketStream struct {
	mu   sync.Mutex
	host string
	port int
	path string
}

func NewWebSocketStream(host string, port int) *WebSocketStream {
	if port == 0 {
		port = defaultStreamPort
	}

	return &WebSocketStream{host: host, port: port, path: "/ws"}
}

func (s *WebSocketStream) Name() string {
	return "websocket"
}

// SetEndpoint points later Open calls at a new controller. Open
// connections are unaffected.
func (s *WebSocketStream) SetEndpoint(host string, port int) {
	if port == 0 {
		port = defaultStreamPort
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.host = host
	s.port = port
}

func (s *WebSocketStream) StatusTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.host == "" {
		return ""
	}

	return s.urlLocked()
}

func (s *WebSocketStream) urlLocked() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(s.host, strconv.Itoa(s.port)),
		Path:   s.path,
	}

	return u.String()
}

func (s *WebSocketStream) Open(ctx context.Context) (Conn, error) {
	s.mu.Lock()
	host := s.host
	target := s.urlLocked()
	s.mu.Unlock()

	logger := connLogger("websocket", "target", target)
	if host == "" {
		logger.Warn("connect failed: host is empty")

		return nil, errors.New("websocket host is empty")
	}

	dialer := websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout}
	logger.Info("connecting")
	ws, resp, err := dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		logger.Warn("connect failed", "error", err)

		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	ws.SetReadLimit(maxStreamMessageSize)
	logger.Info("connected", "remote", ws.RemoteAddr().String())

	return &wsConn{ws: ws, target: target}, nil
}

type wsConn struct {
	ws     *websocket.Conn
	target string

	closeOnce sync.Once
	closeErr  error
}

func (c *wsConn) ReadMessage(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetReadDeadline(deadline)
	} else {
		_ = c.ws.SetReadDeadline(time.Time{})
	}

	for {
		kind, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, ErrClosed
			}

			return nil, fmt.Errorf("read websocket message: %w", err)
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			return payload, nil
		}
	}
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		logger := connLogger("websocket", "target", c.target)
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.closeErr = c.ws.Close()
		if c.closeErr != nil {
			logger.Warn("close failed", "error", c.closeErr)

			return
		}
		logger.Info("closed")
	})

	return c.closeErr
}
