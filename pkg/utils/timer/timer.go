// Package timer tracks elapsed time across the stages of a long-running CLI command.
package timer

import (
	"sync"
	"time"
)

// Timer measures total elapsed time and the time spent in the current stage.
type Timer interface {
	// Start resets the timer and begins the first stage.
	Start()
	// NewStage marks the beginning of a new stage without resetting the total.
	NewStage()
	// GetTiming returns the total elapsed time and the elapsed time of the current stage.
	GetTiming() (time.Duration, time.Duration)
	// Stop freezes both durations at their current values.
	Stop()
}

// StageTimer is the default Timer backed by the wall clock.
type StageTimer struct {
	mu         sync.Mutex
	now        func() time.Time
	started    time.Time
	stageStart time.Time
	stoppedAt  time.Time
}

// New returns a StageTimer. Call Start before reading timings.
func New() *StageTimer {
	return &StageTimer{now: time.Now}
}

// Start implements Timer.
func (t *StageTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.started = now
	t.stageStart = now
	t.stoppedAt = time.Time{}
}

// NewStage implements Timer.
func (t *StageTimer) NewStage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stageStart = t.now()
}

// GetTiming implements Timer.
func (t *StageTimer) GetTiming() (time.Duration, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started.IsZero() {
		return 0, 0
	}

	end := t.now()
	if !t.stoppedAt.IsZero() {
		end = t.stoppedAt
	}

	return end.Sub(t.started), end.Sub(t.stageStart)
}

// Stop implements Timer.
func (t *StageTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stoppedAt.IsZero() {
		t.stoppedAt = t.now()
	}
}
