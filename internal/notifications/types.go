// Package notifications defines user-facing alerts and their delivery backends.
package notifications

import (
	"sync"
	"time"
)

// Kind groups notifications for throttling and logging.
type Kind string

const (
	KindConnection Kind = "connection"
	KindCommand    Kind = "command"
)

// Payload is a user-facing notification about the machine or its link.
type Payload struct {
	Kind    Kind
	Title   string
	Content string
}

// Sender sends notifications using a platform-specific backend.
type Sender interface {
	Send(payload Payload)
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(payload Payload)

func (f SenderFunc) Send(payload Payload) {
	f(payload)
}

// DefaultThrottleWindow is how long an identical alert stays suppressed.
const DefaultThrottleWindow = 30 * time.Second

// Throttle drops a payload identical to one delivered less than window ago.
// Dragging a slider against a busy controller would otherwise raise one
// alert per rejected step.
func Throttle(next Sender, window time.Duration) Sender {
	if next == nil || window <= 0 {
		return next
	}

	return &throttledSender{
		next:   next,
		window: window,
		now:    time.Now,
		sent:   make(map[Payload]time.Time),
	}
}

type throttledSender struct {
	next   Sender
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	sent map[Payload]time.Time
}

func (s *throttledSender) Send(payload Payload) {
	now := s.now()

	s.mu.Lock()
	for key, at := range s.sent {
		if now.Sub(at) >= s.window {
			delete(s.sent, key)
		}
	}
	if _, recent := s.sent[payload]; recent {
		s.mu.Unlock()

		return
	}
	s.sent[payload] = now
	s.mu.Unlock()

	s.next.Send(payload)
}
