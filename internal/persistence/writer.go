package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	writeMaxAttempts  = 3
	writeRetryBackoff = 300 * time.Millisecond
)

type writeCmd struct {
	name string
	fn   func(context.Context) error
}

// WriterQueue runs persistence writes one at a time off the caller's
// goroutine. Failed writes are retried and then logged; they never reach the
// code that enqueued them.
type WriterQueue struct {
	logger *slog.Logger
	queue  chan writeCmd
	done   chan struct{}
	once   sync.Once
}

func NewWriterQueue(logger *slog.Logger, capacity int) *WriterQueue {
	if capacity <= 0 {
		capacity = 256
	}
	if logger == nil {
		logger = slog.Default().With("component", "persistence")
	}

	return &WriterQueue{
		logger: logger,
		queue:  make(chan writeCmd, capacity),
		done:   make(chan struct{}),
	}
}

// Enqueue never blocks. When the queue is full the oldest pending write is
// dropped; snapshot writes supersede each other so only the latest matters.
func (w *WriterQueue) Enqueue(name string, fn func(context.Context) error) {
	cmd := writeCmd{name: name, fn: fn}
	for {
		select {
		case w.queue <- cmd:
			return
		default:
		}
		select {
		case dropped := <-w.queue:
			w.logger.Warn("db write queue full, dropping oldest", "cmd", dropped.name)
		default:
		}
	}
}

func (w *WriterQueue) Start(ctx context.Context) {
	go func() {
		defer w.once.Do(func() { close(w.done) })
		for {
			select {
			case <-ctx.Done():
				return
			case cmd := <-w.queue:
				w.runWithRetry(ctx, cmd)
			}
		}
	}()
}

// Done is closed after the worker started by Start has exited.
func (w *WriterQueue) Done() <-chan struct{} {
	return w.done
}

// Drain runs whatever is still queued on the calling goroutine. It is meant
// for shutdown, after the worker has stopped.
func (w *WriterQueue) Drain(ctx context.Context) {
	for {
		select {
		case cmd := <-w.queue:
			w.runWithRetry(ctx, cmd)
		default:
			return
		}
	}
}

func (w *WriterQueue) runWithRetry(ctx context.Context, cmd writeCmd) {
	for attempt := 1; attempt <= writeMaxAttempts; attempt++ {
		if err := cmd.fn(ctx); err != nil {
			w.logger.Error("db write failed", "cmd", cmd.name, "attempt", attempt, "error", err)
			if attempt == writeMaxAttempts {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * writeRetryBackoff):
			}

			continue
		}

		return
	}
}
