package engine

import (
	"context"
	"log/slog"
	"time"
)

// Start launches the wall-clock run loop in its own goroutine.
// Idempotent: calling Start on a running engine does nothing. The loop
// fires on a period of 1s divided by the speed multiplier; each firing
// advances exactly one simulated day, or none while paused or past the
// end date.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return
	}
	e.running = true
	e.paused = false

	ctx, cancel := context.WithCancel(context.Background())
	e.stop = cancel
	go e.run(ctx)
	slog.Info("simulation started", "date", e.current.Format("2006-01-02"), "speed", e.speed)
}

// run is the single writer loop. Pause is cooperative: it is checked
// once per firing, so an in-flight day always completes.
func (e *Engine) run(ctx context.Context) {
	for {
		timer := time.NewTimer(e.tickPeriod())
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("simulation loop stopped")
			return
		case <-timer.C:
		}

		e.mu.Lock()
		if !e.paused {
			e.advanceLocked()
		}
		e.mu.Unlock()
	}
}

func (e *Engine) tickPeriod() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(float64(time.Second) / e.speed)
}

// Pause toggles the paused flag. The underlying timer keeps firing; a
// paused firing advances nothing.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = !e.paused
	slog.Info("simulation pause toggled", "paused", e.paused)
}

// Stop halts the run loop without touching world state.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if !e.running {
		return
	}
	e.running = false
	e.paused = false
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
}

// Reset halts the loop and rebuilds all state to its initial value:
// start date, zeroed global stats, reconstructed countries. A snapshot
// notification is published so consumers refresh immediately.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	e.setupLocked()
	slog.Info("simulation reset", "date", e.current.Format("2006-01-02"))

	e.notes.publish(Notification{Type: NoteTick, Snapshot: e.snapshotLocked()})
}

// SetSpeed sets the wall-clock speed multiplier, clamped to [0.1, 5].
// Takes effect from the next timer period.
func (e *Engine) SetSpeed(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = clampSpeed(x)
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Running reports whether the run loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Paused reports whether the loop is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// TickPeriod returns the wall-clock interval between loop firings at the
// current speed.
func (e *Engine) TickPeriod() time.Duration {
	return e.tickPeriod()
}
