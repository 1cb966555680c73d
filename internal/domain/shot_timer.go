package domain

import (
	"sync"
	"time"
)

// ShotTimer measures extraction time. It is started and paused by the user
// or, in auto mode, by the controller's brew switch.
type ShotTimer struct {
	mu        sync.Mutex
	now       func() time.Time
	running   bool
	startedAt time.Time
	elapsed   time.Duration
}

func NewShotTimer(now func() time.Time) *ShotTimer {
	if now == nil {
		now = time.Now
	}

	return &ShotTimer{now: now}
}

func (t *ShotTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.startedAt = t.now()
}

func (t *ShotTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.elapsed += t.now().Sub(t.startedAt)
	t.running = false
}

// Toggle flips between running and paused and returns the new running state.
func (t *ShotTimer) Toggle() bool {
	if t.Running() {
		t.Pause()

		return false
	}
	t.Start()

	return true
}

func (t *ShotTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.elapsed = 0
}

func (t *ShotTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.running
}

func (t *ShotTimer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return t.elapsed
	}

	return t.elapsed + t.now().Sub(t.startedAt)
}

// Follow drives the timer from the machine state: a new shot resets and
// starts it, the end of a shot pauses it.
func (t *ShotTimer) Follow(state ScalarState) {
	brewing := state.Brewing()
	running := t.Running()
	switch {
	case brewing && !running:
		t.Reset()
		t.Start()
	case !brewing && running:
		t.Pause()
	}
}
