package frame

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQueueRunsOncePerFlush(t *testing.T) {
	q := NewQueue()
	runs := 0

	var step func()
	step = func() {
		runs++
		q.Schedule(step)
	}
	q.Schedule(step)

	for i := 0; i < 5; i++ {
		if ran := q.Flush(); ran != 1 {
			t.Fatalf("flush %d ran %d callbacks, want 1", i, ran)
		}
	}
	if runs != 5 {
		t.Errorf("expected 5 runs, got %d", runs)
	}
	if q.Pending() != 1 {
		t.Errorf("expected rescheduled step pending, got %d", q.Pending())
	}
}

func TestQueueCancelPending(t *testing.T) {
	q := NewQueue()
	ran := false
	h := q.Schedule(func() { ran = true })

	q.Cancel(h)
	if q.Flush() != 0 || ran {
		t.Error("cancelled callback ran")
	}
}

func TestQueueCancelIgnoresUnknown(t *testing.T) {
	q := NewQueue()
	count := 0
	q.Schedule(func() { count++ })

	q.Cancel(0)
	q.Cancel(999)
	if q.Flush() != 1 || count != 1 {
		t.Errorf("expected callback to run once, got %d", count)
	}

	// Cancelling an already-run handle is a no-op
	q.Cancel(1)
	if q.Pending() != 0 {
		t.Errorf("expected empty queue, got %d", q.Pending())
	}
}

func TestQueueCancelDuringFlush(t *testing.T) {
	q := NewQueue()
	secondRan := false

	var second Handle
	q.Schedule(func() { q.Cancel(second) })
	second = q.Schedule(func() { secondRan = true })

	if ran := q.Flush(); ran != 1 {
		t.Errorf("expected 1 callback to run, got %d", ran)
	}
	if secondRan {
		t.Error("callback cancelled mid-flush still ran")
	}
}

func TestQueueHandlesUnique(t *testing.T) {
	q := NewQueue()
	a := q.Schedule(func() {})
	b := q.Schedule(func() {})
	if a == 0 || b == 0 || a == b {
		t.Errorf("expected distinct non-zero handles, got %d and %d", a, b)
	}
}

func TestPacerFlushesAndRunsEvents(t *testing.T) {
	q := NewQueue()
	steps := 0
	var step func()
	step = func() {
		steps++
		q.Schedule(step)
	}
	q.Schedule(step)

	events := make(chan func(), 1)
	resized := false
	events <- func() { resized = true }

	p := NewPacer(q, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Run(ctx, events)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if !resized {
		t.Error("event was not run")
	}
	if steps == 0 {
		t.Error("expected at least one step")
	}
	if steps != p.Frames() {
		t.Errorf("expected one step per frame, got %d steps for %d frames", steps, p.Frames())
	}
}

func TestPacerClosedEvents(t *testing.T) {
	q := NewQueue()
	events := make(chan func())
	close(events)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := NewPacer(q, time.Millisecond).Run(ctx, events); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestPacerDefaultInterval(t *testing.T) {
	p := NewPacer(NewQueue(), 0)
	if p.Interval() != time.Second/60 {
		t.Errorf("expected 60fps default, got %v", p.Interval())
	}
}
