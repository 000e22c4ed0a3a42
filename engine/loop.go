package engine

import (
	"context"
	"time"
)

// ProgressFunc reports a monotonic 0-100 value and a human-readable
// message at each cooperative yield point, per spec.md §5.
type ProgressFunc func(percent int, message string)

// Step is one unit of chunked work (spec.md §5: "per top-cell, per N
// records, per LOD depth level"). It returns the progress percent to
// report and whether the work is done.
type Step func() (percent int, message string, done bool, err error)

// RunCooperatively drives steps to completion, checking ctx for
// cancellation between every step and invoking on after each one, the
// way the teacher's EventBus.Run loop checks el.ctx.Done() between
// polling platform events and running the adaptive renderUpdater: here
// "poll platform events, then render" becomes "run one chunk, then
// yield", generalized from a 60fps render cadence to parse/rebuild work
// that finishes in a bounded number of steps rather than running
// forever.
func RunCooperatively(ctx context.Context, on ProgressFunc, step Step) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		percent, message, done, err := step()
		if err != nil {
			return err
		}
		if on != nil {
			on(percent, message)
		}
		if done {
			return nil
		}
	}
}

// adaptiveClock mirrors the teacher's render_updater.go: it measures the
// interval between two phases of work (here, successive LOD Sample calls
// rather than frames) and smooths it with the same 0.95/0.05 exponential
// average the teacher uses to adapt its platform-event poll timeout to
// recent work duration. It measures only; it never waits or enforces a
// minimum interval.
type adaptiveClock struct {
	lastTick time.Time
	avg      time.Duration
}

func newAdaptiveClock() *adaptiveClock {
	return &adaptiveClock{lastTick: time.Now()}
}

// Tick returns the elapsed time in seconds since the previous Tick and
// updates the smoothed average (exposed via Average for callers that
// want to adapt their own cadence, e.g. throttling overlay redraws).
func (c *adaptiveClock) Tick() float64 {
	now := time.Now()
	elapsed := now.Sub(c.lastTick)
	c.lastTick = now
	c.avg = time.Duration(0.95*float64(c.avg) + 0.05*float64(elapsed))
	return elapsed.Seconds()
}

func (c *adaptiveClock) Average() time.Duration { return c.avg }
