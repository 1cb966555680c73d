package domain

import (
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestShotTimer_StartPauseReset(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	timer := NewShotTimer(clock.Now)

	timer.Start()
	clock.Advance(3 * time.Second)
	timer.Pause()
	clock.Advance(10 * time.Second)
	if got := timer.Elapsed(); got != 3*time.Second {
		t.Fatalf("expected 3s after pause, got %s", got)
	}

	if !timer.Toggle() {
		t.Fatalf("expected toggle to resume")
	}
	clock.Advance(2 * time.Second)
	if got := timer.Elapsed(); got != 5*time.Second {
		t.Fatalf("expected 5s while running, got %s", got)
	}

	timer.Reset()
	if timer.Running() || timer.Elapsed() != 0 {
		t.Fatalf("expected stopped zero timer after reset")
	}
}

func TestShotTimer_FollowsBrewSwitch(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	timer := NewShotTimer(clock.Now)

	timer.Follow(ScalarState{BrewSwitchKnown: true, BrewSwitch: false})
	clock.Advance(25 * time.Second)
	timer.Follow(ScalarState{BrewSwitchKnown: true, BrewSwitch: false})
	timer.Follow(ScalarState{BrewSwitchKnown: true, BrewSwitch: true})
	clock.Advance(5 * time.Second)

	if got := timer.Elapsed(); got != 25*time.Second {
		t.Fatalf("expected shot time 25s, got %s", got)
	}

	timer.Follow(ScalarState{BrewSwitchKnown: true, BrewSwitch: false})
	if got := timer.Elapsed(); got != 0 {
		t.Fatalf("expected new shot to restart timer, got %s", got)
	}
}
