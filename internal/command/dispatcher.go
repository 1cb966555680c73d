// Package command turns user edits into debounced requests to the
// controller without racing the inbound telemetry stream.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/connectors"
	"github.com/brewdash/brewdash/internal/domain"
	"github.com/brewdash/brewdash/internal/metrics"
)

const (
	DefaultDebounce       = 700 * time.Millisecond
	DefaultRequestTimeout = 8 * time.Second

	brewingParameter = "brewing"

	// BusyMessage is the user-facing text for a submission rejected by
	// single-flight.
	BusyMessage = "Another update is still in progress. Please try again."
)

var (
	ErrBusy       = errors.New("another command is in flight")
	ErrClosed     = errors.New("dispatcher is closed")
	ErrOutOfRange = errors.New("value out of range")
)

// Device is the controller's request/response surface.
type Device interface {
	Submit(ctx context.Context, p domain.Parameter, value float64) error
	SetBrewing(ctx context.Context, on bool) error
	GetConfig(ctx context.Context) (domain.PartialSettings, error)
}

type Config struct {
	Debounce time.Duration
	// SingleFlight rejects a submission while any other is outstanding.
	SingleFlight   bool
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// pendingEdit is the state machine of one parameter: Idle (no entry),
// Editing (debounce running), Submitting (debounce elapsed).
type pendingEdit struct {
	state   connectors.EditState
	value   float64
	seq     uint64
	sentSeq uint64
	timer   *time.Timer
	// inFlight is set while a request for this parameter is outstanding;
	// queued marks a debounced value waiting for it to finish.
	inFlight bool
	queued   bool
}

type Dispatcher struct {
	device   Device
	machine  *domain.MachineStore
	settings domain.SettingsRepository
	queue    domain.WriteQueue
	bus      bus.MessageBus
	logger   *slog.Logger

	debounce     time.Duration
	timeout      time.Duration
	singleFlight bool

	// guards are read by MachineStore under its own lock, so they are
	// atomics rather than fields protected by mu.
	guards map[domain.Parameter]*atomic.Bool

	mu       sync.Mutex
	edits    map[domain.Parameter]*pendingEdit
	inFlight int
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher wires the dispatcher as the machine store's edit guard.
// settings and queue may be nil, in which case accepted values are not
// cached.
func NewDispatcher(device Device, machine *domain.MachineStore, settings domain.SettingsRepository, queue domain.WriteQueue, b bus.MessageBus, cfg Config) *Dispatcher {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "command")
	}

	guards := make(map[domain.Parameter]*atomic.Bool)
	for _, p := range domain.Parameters() {
		guards[p] = &atomic.Bool{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		device:       device,
		machine:      machine,
		settings:     settings,
		queue:        queue,
		bus:          b,
		logger:       logger,
		debounce:     debounce,
		timeout:      timeout,
		singleFlight: cfg.SingleFlight,
		guards:       guards,
		edits:        make(map[domain.Parameter]*pendingEdit),
		ctx:          ctx,
		cancel:       cancel,
	}
	machine.SetGuard(d)

	return d
}

// Pending reports whether p has an edit in Editing or Submitting state.
func (d *Dispatcher) Pending(p domain.Parameter) bool {
	guard, ok := d.guards[p]

	return ok && guard.Load()
}

// State returns the edit state of p.
func (d *Dispatcher) State(p domain.Parameter) connectors.EditState {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.edits[p]; ok {
		return e.state
	}

	return connectors.EditStateIdle
}

// RequestChange applies value locally and (re)starts the debounce for p.
// Only the last value of a burst reaches the controller.
func (d *Dispatcher) RequestChange(p domain.Parameter, value float64) error {
	if !p.Valid() {
		return fmt.Errorf("request change: unknown parameter %q", p)
	}
	if r := p.Range(); !r.Contains(value) {
		return fmt.Errorf("%s %v not in [%v, %v]: %w", p, value, r.Min, r.Max, ErrOutOfRange)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()

		return ErrClosed
	}
	e, ok := d.edits[p]
	if !ok {
		e = &pendingEdit{}
		d.edits[p] = e
	}
	e.seq++
	seq := e.seq
	e.value = value
	e.queued = false
	e.state = connectors.EditStateEditing
	d.guards[p].Store(true)
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(d.debounce, func() { d.fire(p, seq) })
	d.machine.ApplyLocal(p, value)
	d.mu.Unlock()

	d.publishEditState(p, connectors.EditStateEditing, value)

	return nil
}

func (d *Dispatcher) fire(p domain.Parameter, seq uint64) {
	d.mu.Lock()
	e, ok := d.edits[p]
	if !ok || d.closed || e.seq != seq {
		d.mu.Unlock()

		return
	}
	e.timer = nil
	e.state = connectors.EditStateSubmitting
	value := e.value

	switch {
	case e.inFlight:
		e.queued = true
		d.mu.Unlock()
		d.publishEditState(p, connectors.EditStateSubmitting, value)
	case d.singleFlight && d.inFlight > 0:
		delete(d.edits, p)
		d.guards[p].Store(false)
		d.mu.Unlock()

		d.logger.Info("submission rejected: another command is in flight", "parameter", p, "value", value)
		metrics.CommandSubmissionsTotal.WithLabelValues(string(p), "busy").Inc()
		d.publishEditState(p, connectors.EditStateIdle, value)
		d.publishResult(connectors.CommandResult{
			RequestID: uuid.NewString(),
			Parameter: string(p),
			Value:     value,
			Err:       ErrBusy.Error(),
			Busy:      true,
			At:        time.Now(),
		})
	default:
		d.startSubmitLocked(p, e)
		d.mu.Unlock()
		d.publishEditState(p, connectors.EditStateSubmitting, value)
	}
}

func (d *Dispatcher) startSubmitLocked(p domain.Parameter, e *pendingEdit) {
	e.inFlight = true
	e.sentSeq = e.seq
	d.inFlight++
	d.wg.Add(1)
	go d.submit(p, e.value)
}

func (d *Dispatcher) submit(p domain.Parameter, value float64) {
	defer d.wg.Done()

	requestID := uuid.NewString()
	logger := d.logger.With("request_id", requestID, "parameter", p, "value", value)
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	logger.Debug("submitting parameter")
	timer := metrics.NewTimer()
	err := d.device.Submit(ctx, p, value)
	timer.ObserveDurationVec(metrics.CommandDuration, string(p))

	result := connectors.CommandResult{RequestID: requestID, Parameter: string(p), Value: value, At: time.Now()}
	if err != nil {
		logger.Warn("parameter submission failed", "error", err)
		metrics.CommandSubmissionsTotal.WithLabelValues(string(p), "error").Inc()
		result.Err = err.Error()
	} else {
		logger.Info("parameter accepted")
		metrics.CommandSubmissionsTotal.WithLabelValues(string(p), "ok").Inc()
		d.cacheAccepted(p, value)
	}

	d.publishResult(result)
	d.complete(p)
}

// complete ends the outstanding request for p. A value queued behind it is
// sent now; a newer edit keeps the guard raised.
func (d *Dispatcher) complete(p domain.Parameter) {
	d.mu.Lock()
	d.inFlight--
	e, ok := d.edits[p]
	if !ok {
		d.mu.Unlock()

		return
	}
	e.inFlight = false

	switch {
	case e.queued && !d.closed:
		e.queued = false
		value := e.value
		d.startSubmitLocked(p, e)
		d.mu.Unlock()
		d.publishEditState(p, connectors.EditStateSubmitting, value)
	case e.seq != e.sentSeq && !d.closed:
		d.mu.Unlock()
	default:
		value := e.value
		delete(d.edits, p)
		d.guards[p].Store(false)
		d.mu.Unlock()
		d.publishEditState(p, connectors.EditStateIdle, value)
	}
}

func (d *Dispatcher) cacheAccepted(p domain.Parameter, value float64) {
	if d.settings == nil || d.queue == nil {
		return
	}
	d.queue.Enqueue("cache_setting", func(ctx context.Context) error {
		return d.settings.Put(ctx, p, value)
	})
}

// SetBrewing starts or stops a shot right away; brew toggles are not
// debounced.
func (d *Dispatcher) SetBrewing(ctx context.Context, on bool) error {
	requestID := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.device.SetBrewing(ctx, on)
	result := connectors.CommandResult{RequestID: requestID, Parameter: brewingParameter, Value: metrics.BoolGauge(on), At: time.Now()}
	if err != nil {
		d.logger.Warn("brew toggle failed", "request_id", requestID, "on", on, "error", err)
		metrics.CommandSubmissionsTotal.WithLabelValues(brewingParameter, "error").Inc()
		result.Err = err.Error()
	} else {
		d.logger.Info("brew toggled", "request_id", requestID, "on", on)
		metrics.CommandSubmissionsTotal.WithLabelValues(brewingParameter, "ok").Inc()
	}
	d.publishResult(result)
	if err != nil {
		return fmt.Errorf("set brewing: %w", err)
	}

	return nil
}

// RefreshConfig fetches the controller's extraction config and merges it.
// Parameters with a pending edit keep their local value.
func (d *Dispatcher) RefreshConfig(ctx context.Context) (domain.DeviceSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	partial, err := d.device.GetConfig(ctx)
	if err != nil {
		return domain.DeviceSettings{}, fmt.Errorf("refresh config: %w", err)
	}
	state := d.machine.MergeSettings(partial)
	d.bus.Publish(connectors.TopicDeviceConfig, state.Settings)
	d.logger.Debug("device config refreshed", "settings", state.Settings)

	return state.Settings, nil
}

// Close drops debounced edits that have not fired and waits for
// outstanding requests.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()

		return
	}
	d.closed = true
	for p, e := range d.edits {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		if !e.inFlight {
			delete(d.edits, p)
			d.guards[p].Store(false)
		}
	}
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

// FailureMessage is the user-facing text for a failed parameter update.
func FailureMessage(parameter string) string {
	label := parameter
	if p := domain.Parameter(parameter); p.Valid() {
		label = p.Label()
	} else if parameter == brewingParameter {
		label = "Brewing"
	}

	return fmt.Sprintf("Failed to update %s. Please try again.", label)
}

func (d *Dispatcher) publishEditState(p domain.Parameter, state connectors.EditState, value float64) {
	d.bus.Publish(connectors.TopicEditState, connectors.EditStateChange{Parameter: string(p), State: state, Value: value})
}

func (d *Dispatcher) publishResult(result connectors.CommandResult) {
	d.bus.Publish(connectors.TopicCommandDone, result)
}
