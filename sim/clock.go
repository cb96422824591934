// sim/clock.go

package sim

import (
	"container/heap"
	"sync"

	"github.com/mmp/aerosim/log"
)

// event is one pending wakeup: a process parked on Wait or on a resource's
// FIFO queue is resumed by closing resume once the loop reaches this
// event's (time, seq).
type event struct {
	time   float64
	seq    uint64
	resume chan struct{}
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Clock is a virtual-time, single-active-goroutine event loop. Flight
// processes are real goroutines, but the loop hands control to exactly one
// of them at a time: Spawn/Wait/a blocking resource acquire all park their
// goroutine on a private channel and signal stepDone before doing so, and
// the loop only advances once that signal arrives. This gives deterministic,
// sequence-ordered dispatch without requiring any locking of simulation
// state touched by process bodies -- only one goroutine is ever actually
// running between two yield points.
type Clock struct {
	mu        sync.Mutex
	now       float64
	seq       uint64
	pending   eventHeap
	liveProcs int

	stepDone chan struct{}

	lg *log.Logger
}

// NewClock creates a Clock starting at virtual time 0.
func NewClock(lg *log.Logger) *Clock {
	return &Clock{stepDone: make(chan struct{}), lg: lg}
}

// Now returns the current virtual time, in minutes.
func (c *Clock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// scheduleAt pushes a pending wakeup at t that will resume ch when
// dispatched.
func (c *Clock) scheduleAt(t float64, ch chan struct{}) {
	c.mu.Lock()
	c.seq++
	heap.Push(&c.pending, &event{time: t, seq: c.seq, resume: ch})
	c.mu.Unlock()
}

// newEventAt allocates a fresh channel and schedules it at t, returning the
// channel for the caller to block on.
func (c *Clock) newEventAt(t float64) chan struct{} {
	ch := make(chan struct{})
	c.scheduleAt(t, ch)
	return ch
}

// yield hands control back to the loop. The calling goroutine must not
// touch any shared simulation state again until it has received a wakeup.
func (c *Clock) yield() {
	c.stepDone <- struct{}{}
}

// Spawn launches fn as a process first woken at virtual time start.
func (c *Clock) Spawn(start float64, fn func(p *Proc)) {
	c.mu.Lock()
	c.liveProcs++
	c.mu.Unlock()

	ch := c.newEventAt(start)
	go func() {
		<-ch
		fn(&Proc{clock: c})
		c.mu.Lock()
		c.liveProcs--
		c.mu.Unlock()
		c.yield()
	}()
}

// Run dispatches pending events in (time, seq) order until none remain or
// until virtual time would exceed until.
func (c *Clock) Run(until float64) {
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			stuck := c.liveProcs > 0
			c.mu.Unlock()
			if stuck {
				c.lg.Warn("event loop drained with live processes still parked; likely a resource that never releases")
			}
			return
		}
		next := c.pending[0]
		if next.time > until {
			c.mu.Unlock()
			return
		}
		heap.Pop(&c.pending)
		c.now = next.time
		c.mu.Unlock()

		close(next.resume)
		<-c.stepDone
	}
}

// Proc is a flight (or background) process's handle onto the clock it runs
// under.
type Proc struct {
	clock *Clock
}

// Now returns the process's clock's current virtual time.
func (p *Proc) Now() float64 { return p.clock.Now() }

// Wait suspends the caller until now+delta. delta is clamped to >= 0.
func (p *Proc) Wait(delta float64) {
	if delta < 0 {
		delta = 0
	}
	ch := p.clock.newEventAt(p.clock.Now() + delta)
	p.clock.yield()
	<-ch
}
