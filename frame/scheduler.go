// Package frame schedules per-frame callbacks on a single logical thread.
package frame

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

// Scheduler requests a callback at the next rendering moment.
type Scheduler interface {
	// Schedule queues fn to run once at the next frame.
	Schedule(fn func()) Handle
	// Cancel drops a pending callback. Unknown or already-run handles are ignored.
	Cancel(h Handle)
}

type entry struct {
	handle Handle
	fn     func()
}

// Queue is a cooperative Scheduler driven by its host: callbacks run only
// inside Flush, on the caller's goroutine. A callback scheduled while a
// flush is running waits for the next Flush, so a self-rescheduling step
// runs exactly once per frame.
//
// Queue is not safe for concurrent use; the host serialises Flush with its
// other event handling.
type Queue struct {
	pending []entry
	running []entry // batch of the flush in progress
	next    Handle
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Schedule implements Scheduler.
func (q *Queue) Schedule(fn func()) Handle {
	q.next++
	q.pending = append(q.pending, entry{handle: q.next, fn: fn})
	return q.next
}

// Cancel implements Scheduler. Cancelling a callback that belongs to the
// flush in progress but has not run yet also prevents it from running.
func (q *Queue) Cancel(h Handle) {
	if h == 0 {
		return
	}
	for i, e := range q.pending {
		if e.handle == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
	for i := range q.running {
		if q.running[i].handle == h {
			q.running[i].fn = nil
			return
		}
	}
}

// Pending returns the number of callbacks waiting for the next flush.
func (q *Queue) Pending() int {
	return len(q.pending)
}

// Flush runs every callback that was pending when Flush was called and
// returns how many ran.
func (q *Queue) Flush() int {
	if len(q.pending) == 0 {
		return 0
	}
	q.running = q.pending
	q.pending = nil

	ran := 0
	for i := range q.running {
		fn := q.running[i].fn
		if fn == nil {
			continue
		}
		q.running[i].fn = nil
		fn()
		ran++
	}
	q.running = nil
	return ran
}
