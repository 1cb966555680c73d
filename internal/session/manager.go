// Package session owns the controller's telemetry stream: connecting,
// bounded reconnects and merging inbound messages into the stores.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
	"github.com/brewdash/brewdash/internal/metrics"
	"github.com/brewdash/brewdash/internal/transport"
)

const (
	DefaultReconnectDelay = 2 * time.Second
	DefaultMaxAttempts    = 5

	eventQueueSize = 64
)

type Config struct {
	ReconnectDelay time.Duration
	// MaxAttempts bounds consecutive failed connections before the manager
	// goes quiet until the user reconnects. Zero disables auto-reconnect.
	MaxAttempts int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Manager runs the connection state machine on a single goroutine. Reader
// goroutines and timers only post events to it.
type Manager struct {
	stream  transport.Stream
	machine *domain.MachineStore
	buffer  *domain.TelemetryBuffer
	bus     bus.MessageBus
	logger  *slog.Logger
	now     func() time.Time

	delay       time.Duration
	maxAttempts int

	events    chan event
	done      chan struct{}
	startOnce sync.Once
	started   atomic.Bool
	cancel    context.CancelFunc

	statusMu sync.RWMutex
	status   connectors.ConnectionStatus

	// Owned by the loop goroutine.
	state        connectors.ConnectionState
	attempts     int
	userDisabled bool
	gen          uint64
	conn         transport.Conn
	cancelConn   context.CancelFunc
	timer        *time.Timer
	timerSeq     uint64
}

func NewManager(stream transport.Stream, machine *domain.MachineStore, buffer *domain.TelemetryBuffer, b bus.MessageBus, cfg Config) *Manager {
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 0 {
		maxAttempts = DefaultMaxAttempts
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "session")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	m := &Manager{
		stream:      stream,
		machine:     machine,
		buffer:      buffer,
		bus:         b,
		logger:      logger,
		now:         now,
		delay:       delay,
		maxAttempts: maxAttempts,
		events:      make(chan event, eventQueueSize),
		done:        make(chan struct{}),
		state:       connectors.ConnectionStateDisconnected,
	}
	m.status = m.statusSnapshot(nil)

	return m
}

// Start runs the loop and opens the first connection. Cancelling ctx tears
// the session down.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		loopCtx, cancel := context.WithCancel(ctx)
		m.cancel = cancel
		m.started.Store(true)
		go m.run(loopCtx)
		m.post(event{kind: eventConnect})
	})
}

// Close tears the session down and waits for the loop to exit.
func (m *Manager) Close() {
	if !m.started.Load() {
		return
	}
	m.cancel()
	<-m.done
}

// Done is closed once the loop has exited.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Connect is an explicit user connect: it re-enables the stream and resets
// the attempt counter.
func (m *Manager) Connect() {
	m.post(event{kind: eventConnect})
}

// Toggle disconnects when connected and connects otherwise.
func (m *Manager) Toggle() {
	m.post(event{kind: eventToggle})
}

// Disconnect switches the stream off until the next Connect or Toggle.
func (m *Manager) Disconnect() {
	m.post(event{kind: eventDisconnect})
}

// ClearSeries empties the chart series. It returns once the clear is
// ordered after every message already handled.
func (m *Manager) ClearSeries() {
	done := make(chan struct{})
	if !m.started.Load() || !m.post(event{kind: eventClearSeries, done: done}) {
		m.clearSeries()

		return
	}
	select {
	case <-done:
	case <-m.done:
	}
}

func (m *Manager) Status() connectors.ConnectionStatus {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()

	return m.status
}

func (m *Manager) IsConnected() bool {
	return m.Status().IsConnected()
}

// post hands an event to the loop. It reports false once the loop has exited.
func (m *Manager) post(ev event) bool {
	select {
	case <-m.done:
		return false
	default:
	}
	select {
	case m.events <- ev:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)
	defer m.teardown()

	m.logger.Info("session started", "transport", m.stream.Name(), "max_attempts", m.maxAttempts, "reconnect_delay", m.delay.String())
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.events:
			m.handle(ctx, ev)
		}
	}
}

func (m *Manager) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case eventOpened:
		m.onOpened(ev)
	case eventMessage:
		if ev.gen == m.gen {
			m.onMessage(ev.payload)
		}
	case eventClosed, eventErrored:
		if ev.gen != m.gen {
			m.logger.Debug("ignoring event from retired connection", "event", ev.kind.String(), "gen", ev.gen)

			return
		}
		m.onClosed(ev.err)
	case eventReconnectDue:
		if m.timer == nil || ev.seq != m.timerSeq {
			return
		}
		m.timer = nil
		if m.userDisabled {
			return
		}
		m.attempts++
		metrics.StreamReconnectAttemptsTotal.Inc()
		m.logger.Info("reconnecting", "attempt", m.attempts, "max_attempts", m.maxAttempts)
		m.connect(ctx)
	case eventConnect:
		m.userDisabled = false
		m.attempts = 0
		m.connect(ctx)
	case eventToggle:
		if m.state == connectors.ConnectionStateConnected {
			m.disable()
		} else {
			m.userDisabled = false
			m.attempts = 0
			m.connect(ctx)
		}
	case eventDisconnect:
		m.disable()
	case eventClearSeries:
		m.clearSeries()
		close(ev.done)
	}
}

// connect retires any current connection before opening a new one, so at
// most one connection ever feeds the loop.
func (m *Manager) connect(ctx context.Context) {
	m.retire()
	gen := m.gen
	m.setState(connectors.ConnectionStateConnecting, nil)

	connCtx, cancel := context.WithCancel(ctx)
	m.cancelConn = cancel
	go m.dial(connCtx, gen)
}

func (m *Manager) dial(ctx context.Context, gen uint64) {
	conn, err := m.stream.Open(ctx)
	if err != nil {
		m.post(event{kind: eventErrored, gen: gen, err: err})

		return
	}
	if !m.post(event{kind: eventOpened, gen: gen, conn: conn}) {
		_ = conn.Close()

		return
	}
	m.read(ctx, gen, conn)
}

func (m *Manager) read(ctx context.Context, gen uint64, conn transport.Conn) {
	for {
		payload, err := conn.ReadMessage(ctx)
		if errors.Is(err, transport.ErrMalformed) {
			metrics.StreamDecodeErrorsTotal.Inc()
			m.logger.Warn("discarding malformed stream message", "gen", gen, "error", err)

			continue
		}
		if err != nil {
			kind := eventErrored
			if errors.Is(err, transport.ErrClosed) {
				kind = eventClosed
			}
			m.post(event{kind: kind, gen: gen, err: err})

			return
		}
		if !m.post(event{kind: eventMessage, gen: gen, payload: payload}) {
			return
		}
	}
}

func (m *Manager) onOpened(ev event) {
	if ev.gen != m.gen {
		_ = ev.conn.Close()

		return
	}
	m.conn = ev.conn
	m.attempts = 0
	m.stopTimer()
	m.setState(connectors.ConnectionStateConnected, nil)
}

func (m *Manager) onClosed(err error) {
	m.retire()
	if errors.Is(err, transport.ErrClosed) {
		err = nil
	}
	if m.userDisabled {
		m.setState(connectors.ConnectionStateDisconnected, err)

		return
	}
	m.setState(connectors.ConnectionStateDisconnected, err)
	m.scheduleReconnect()
}

func (m *Manager) scheduleReconnect() {
	if m.attempts >= m.maxAttempts {
		m.logger.Info("reconnect attempts exhausted", "attempts", m.attempts)

		return
	}
	m.stopTimer()
	m.timerSeq++
	seq := m.timerSeq
	m.timer = time.AfterFunc(m.delay, func() {
		m.post(event{kind: eventReconnectDue, seq: seq})
	})
	m.logger.Debug("reconnect scheduled", "delay", m.delay.String(), "attempt", m.attempts)
}

func (m *Manager) disable() {
	m.userDisabled = true
	m.attempts = m.maxAttempts
	m.stopTimer()
	m.retire()
	m.setState(connectors.ConnectionStateDisconnected, nil)
}

// retire closes the current connection and bumps the generation so that any
// event it still produces is ignored.
func (m *Manager) retire() {
	m.gen++
	if m.cancelConn != nil {
		m.cancelConn()
		m.cancelConn = nil
	}
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Debug("close retired connection", "error", err)
		}
		m.conn = nil
	}
}

func (m *Manager) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) teardown() {
	m.retire()
	m.stopTimer()
	m.setState(connectors.ConnectionStateDisconnected, nil)
	m.logger.Info("session stopped")
}

func (m *Manager) onMessage(payload []byte) {
	metrics.StreamMessagesTotal.Inc()
	m.bus.Publish(connectors.TopicRawFrameIn, connectors.RawFrame{Text: string(payload), Len: len(payload)})

	reading, err := domain.DecodeReading(payload)
	if err != nil {
		metrics.StreamDecodeErrorsTotal.Inc()
		m.logger.Warn("discarding malformed stream message", "len", len(payload), "error", err)

		return
	}

	// Merge and append run back to back on the loop goroutine; no other
	// stream event can land between them.
	state := m.machine.Merge(reading)
	update := domain.MachineUpdate{State: state, SeriesLen: m.buffer.Len()}
	if sample, ok := reading.Sample(m.now()); ok {
		update.SeriesLen = m.buffer.Append(sample)
		update.Sample = &sample
		metrics.TelemetrySamplesTotal.Inc()
		metrics.TelemetrySeriesLength.Set(float64(update.SeriesLen))
	}
	observeReadings(state)

	m.bus.Publish(connectors.TopicMachineState, update)
}

func (m *Manager) clearSeries() {
	m.buffer.Clear()
	metrics.TelemetrySeriesLength.Set(0)
	m.bus.Publish(connectors.TopicSeries, domain.SeriesCleared{At: m.now()})
	m.logger.Info("chart series cleared")
}

func (m *Manager) setState(state connectors.ConnectionState, err error) {
	m.state = state
	status := m.statusSnapshot(err)

	m.statusMu.Lock()
	m.status = status
	m.statusMu.Unlock()

	metrics.StreamConnected.Set(metrics.BoolGauge(state == connectors.ConnectionStateConnected))
	if err != nil {
		m.logger.Warn("stream status", "state", state, "attempt", m.attempts, "error", err)
	} else {
		m.logger.Info("stream status", "state", state, "attempt", m.attempts)
	}
	m.bus.Publish(connectors.TopicConnStatus, status)
}

func (m *Manager) statusSnapshot(err error) connectors.ConnectionStatus {
	status := connectors.ConnectionStatus{
		State:         m.state,
		TransportName: m.stream.Name(),
		Attempt:       m.attempts,
		MaxAttempts:   m.maxAttempts,
		UserDisabled:  m.userDisabled,
		Timestamp:     m.now(),
	}
	if resolver, ok := m.stream.(transport.StatusTargetResolver); ok {
		status.Target = resolver.StatusTarget()
	}
	if err != nil {
		status.Err = err.Error()
	}

	return status
}

func observeReadings(state domain.ScalarState) {
	metrics.MachineReading.WithLabelValues("temp").Set(state.Temp)
	metrics.MachineReading.WithLabelValues("setpoint").Set(state.Setpoint)
	metrics.MachineReading.WithLabelValues("pressure").Set(state.Pressure)
	metrics.MachineReading.WithLabelValues("brew_temp").Set(state.BrewTemp)
	metrics.MachineReading.WithLabelValues("pump_duty").Set(state.PumpDuty)
	metrics.MachineReading.WithLabelValues("shot_grams").Set(state.ShotWeightGrams())
}
