// Package sched provides a repeating task runner with an owned cancellation
// token. Ticks carry monotonically increasing sequence numbers and fire on a
// fixed interval regardless of whether earlier ticks are still running, so a
// slow tick never delays the schedule.
package sched

import (
	"context"
	"sync"
	"time"
)

// Task is one scheduled tick. seq starts at 1 and increases by one per tick.
type Task func(ctx context.Context, seq uint64)

type Ticker struct {
	interval time.Duration
	task     Task

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewTicker(interval time.Duration, task Task) *Ticker {
	return &Ticker{
		interval: interval,
		task:     task,
	}
}

// Start begins the schedule. It reports false and does nothing when the
// ticker is already running.
func (t *Ticker) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true

	go t.loop(ctx, t.done)
	return true
}

func (t *Ticker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq++
			// Each tick runs on its own goroutine: in-flight ticks may
			// overlap and the schedule never waits for a response.
			go t.task(ctx, seq)
		}
	}
}

// Stop cancels the schedule so no further ticks fire. Ticks already in
// flight are not interrupted beyond their context being cancelled. Safe to
// call any number of times.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	cancel := t.cancel
	done := t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the schedule is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
