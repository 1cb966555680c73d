package domain

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brewdash/brewdash/internal/bus"
	"github.com/brewdash/brewdash/internal/connectors"
)

// WriteQueue serializes persistence writes from async domain events.
type WriteQueue interface {
	Enqueue(name string, fn func(context.Context) error)
}

// SnapshotProjection saves the dashboard snapshot at most once per interval
// after machine state or series changed.
type SnapshotProjection struct {
	machine  *MachineStore
	buffer   *TelemetryBuffer
	repo     SnapshotRepository
	queue    WriteQueue
	interval time.Duration
	logger   *slog.Logger
	dirty    atomic.Bool
}

func NewSnapshotProjection(machine *MachineStore, buffer *TelemetryBuffer, repo SnapshotRepository, queue WriteQueue, interval time.Duration, logger *slog.Logger) *SnapshotProjection {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default().With("component", "snapshot")
	}

	return &SnapshotProjection{
		machine:  machine,
		buffer:   buffer,
		repo:     repo,
		queue:    queue,
		interval: interval,
		logger:   logger,
	}
}

func (p *SnapshotProjection) Start(ctx context.Context, b bus.MessageBus) {
	sub := b.Subscribe(connectors.TopicMachineState, connectors.TopicSeries, connectors.TopicEditState)
	go func() {
		defer b.Unsubscribe(sub)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub:
				if !ok {
					return
				}
				p.dirty.Store(true)
			case <-ticker.C:
				if p.dirty.Swap(false) {
					snap := p.capture()
					p.queue.Enqueue("save_snapshot", func(writeCtx context.Context) error {
						return p.repo.Save(writeCtx, snap)
					})
				}
			}
		}
	}()
}

// Flush writes the current snapshot synchronously. Used on shutdown after
// the writer queue has stopped.
func (p *SnapshotProjection) Flush(ctx context.Context) {
	if err := p.repo.Save(ctx, p.capture()); err != nil {
		p.logger.Warn("flush snapshot failed", "error", err)
	}
}

func (p *SnapshotProjection) capture() Snapshot {
	return Snapshot{
		State:   p.machine.Snapshot(),
		Series:  p.buffer.Snapshot(),
		SavedAt: time.Now(),
	}
}
