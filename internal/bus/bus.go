package bus

import (
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/cskr/pubsub"
)

// defaultCapacity bounds how far a slow subscriber may lag behind telemetry
// before Publish blocks.
const defaultCapacity = 128

type Subscription chan any

// MessageBus carries connection, telemetry and command events between the
// sync core and its consumers.
type MessageBus interface {
	Publish(topic string, msg any)
	Subscribe(topics ...string) Subscription
	Unsubscribe(ch Subscription, topics ...string)
	Close()
}

// PubSubBus fans events out to topic subscribers. Close closes every
// subscriber channel; calls made after Close are dropped.
type PubSubBus struct {
	ps     *pubsub.PubSub
	closed atomic.Bool
	logger *slog.Logger
}

func New(logger *slog.Logger) *PubSubBus {
	if logger == nil {
		logger = slog.Default().With("component", "bus")
	}

	return &PubSubBus{
		ps:     pubsub.New(defaultCapacity),
		logger: logger,
	}
}

func (b *PubSubBus) Publish(topic string, msg any) {
	if b.closed.Load() {
		b.logger.Debug("drop publish after close", "topic", topic, "payload_type", payloadType(msg))

		return
	}
	b.logger.Debug("publish", "topic", topic, "payload_type", payloadType(msg))
	b.ps.Pub(msg, topic)
}

// Subscribe returns a channel for topics. After Close it returns an already
// closed channel so range loops end immediately.
func (b *PubSubBus) Subscribe(topics ...string) Subscription {
	if b.closed.Load() {
		ch := make(Subscription)
		close(ch)

		return ch
	}
	ch := b.ps.Sub(topics...)
	b.logger.Debug("subscribe", "topics", topics)

	return ch
}

// Unsubscribe detaches ch from topics, or from everything when none are
// given. It is a no-op once the bus is closed.
func (b *PubSubBus) Unsubscribe(ch Subscription, topics ...string) {
	if b.closed.Load() {
		return
	}
	if len(topics) == 0 {
		b.ps.Unsub(ch)
		b.logger.Debug("unsubscribe", "mode", "all")

		return
	}
	b.ps.Unsub(ch, topics...)
	b.logger.Debug("unsubscribe", "topics", topics)
}

func (b *PubSubBus) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	b.ps.Shutdown()
	b.logger.Debug("closed")
}

func payloadType(v any) string {
	if v == nil {
		return "<nil>"
	}

	return reflect.TypeOf(v).String()
}
