package frame

import (
	"context"
	"time"
)

// Pacer drives a Queue at a fixed refresh interval for hosts without a
// display-synchronised loop. Queue flushes and host events run on the
// goroutine that called Run, so they never interleave.
type Pacer struct {
	queue    *Queue
	interval time.Duration
	frames   int
}

// NewPacer creates a pacer that flushes q every interval.
func NewPacer(q *Queue, interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Pacer{queue: q, interval: interval}
}

// Run flushes the queue on every tick and runs each function received on
// events between ticks. It returns ctx.Err() once ctx is done. A nil or
// closed events channel is allowed.
func (p *Pacer) Run(ctx context.Context, events <-chan func()) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			fn()
		case <-ticker.C:
			p.queue.Flush()
			p.frames++
		}
	}
}

// Frames returns the number of refresh ticks handled so far.
// Only meaningful once Run has returned.
func (p *Pacer) Frames() int {
	return p.frames
}

// Interval returns the refresh interval.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
