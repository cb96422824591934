// sim/resource.go

package sim

import "sort"

// Lease is a scoped capacity grant. Release is idempotent and safe to call
// from a defer on every exit path (including the diversion branch), per
// §3's ownership rule that no entity but the engine mutates the resource
// pool -- Lease.Release is the engine's only mutation entry point once a
// slot has been granted.
type Lease struct {
	resource    *Resource
	releaseKind EventKind
	released    bool
}

// Release returns the slot to the resource, logging an OccupancyEvent of
// the kind the lease was requested to release as. Calling Release twice is
// a no-op.
func (l *Lease) Release(now float64) {
	if l == nil || l.released {
		return
	}
	l.released = true
	l.resource.release(now, l.releaseKind)
}

// snapshotSample is one (time, occupancy) observation, used to answer
// snapshot_at queries.
type snapshotSample struct {
	t         float64
	occupancy int
}

// Resource is one airport's combined gate/parking and runway capacity pool:
// a FIFO wait queue, a runway-separation interlock, and an append-only
// occupancy event history.
type Resource struct {
	clock     *Clock
	airportID string

	capacity  int
	occupancy int

	queue []chan struct{}

	lastRunwayEvent   float64
	hasRunwayEvent    bool
	separationMinutes float64

	history []snapshotSample
	emit    func(OccupancyEvent)
}

// NewResource creates a Resource for the given airport with a starting
// occupancy (for multi-day carryover) and an emit callback invoked for
// every OccupancyEvent (typically an OccupancySink.PutEvent).
func NewResource(clock *Clock, airportID string, capacity, initialOccupancy int, separationMinutes float64, emit func(OccupancyEvent)) *Resource {
	r := &Resource{
		clock:             clock,
		airportID:         airportID,
		capacity:          capacity,
		occupancy:         initialOccupancy,
		separationMinutes: separationMinutes,
		emit:              emit,
	}
	r.logEvent(r.clock.Now(), EventInitial)
	return r
}

func (r *Resource) logEvent(now float64, kind EventKind) {
	r.history = append(r.history, snapshotSample{t: now, occupancy: r.occupancy})
	if r.emit != nil {
		r.emit(OccupancyEvent{
			Minute:         now,
			Airport:        r.airportID,
			Kind:           kind,
			OccupancyAfter: r.occupancy,
			Capacity:       r.capacity,
		})
	}
}

// Request acquires a slot, emitting an event of kind grantKind once
// granted. If the resource is full the caller is enqueued FIFO and the
// calling process is suspended (via Proc's clock handoff) until a prior
// lease releases and reaches the head of the queue.
func (r *Resource) Request(p *Proc, grantKind, releaseKind EventKind) *Lease {
	if r.occupancy < r.capacity {
		r.occupancy++
		r.logEvent(p.clock.Now(), grantKind)
		return &Lease{resource: r, releaseKind: releaseKind}
	}

	ch := make(chan struct{})
	r.queue = append(r.queue, ch)
	p.clock.yield()
	<-ch

	r.logEvent(p.clock.Now(), grantKind)
	return &Lease{resource: r, releaseKind: releaseKind}
}

// release frees a slot and, if the FIFO queue is non-empty, grants it to
// the head waiter by scheduling its resume as a normal future event at the
// current instant -- so it is dispatched through the same loop as every
// other event, never running concurrently with the goroutine that called
// release. occupancy is floored at zero so a lease release can never drive
// it negative even if some other path already under-counted it.
func (r *Resource) release(now float64, kind EventKind) {
	if r.occupancy > 0 {
		r.occupancy--
	}
	r.logEvent(now, kind)

	if len(r.queue) > 0 {
		ch := r.queue[0]
		r.queue = r.queue[1:]
		r.occupancy++
		r.clock.scheduleAt(now, ch)
	}
}

// RunwayWait suspends p until the runway separation window since the last
// runway event has elapsed, then records this instant as the new last
// runway event.
func (r *Resource) RunwayWait(p *Proc) {
	now := p.clock.Now()
	if r.hasRunwayEvent && now < r.lastRunwayEvent+r.separationMinutes {
		p.Wait(r.lastRunwayEvent + r.separationMinutes - now)
	}
	r.lastRunwayEvent = p.clock.Now()
	r.hasRunwayEvent = true
}

// QueueLen returns the current FIFO wait-queue length, used by the
// diversion decision's projected-wait estimate.
func (r *Resource) QueueLen() int { return len(r.queue) }

// Occupancy returns current occupancy.
func (r *Resource) Occupancy() int { return r.occupancy }

// Capacity returns the fixed capacity.
func (r *Resource) Capacity() int { return r.capacity }

// SnapshotAt returns the last logged occupancy at or before t.
func (r *Resource) SnapshotAt(t float64) (occupancy int, ok bool) {
	idx := sort.Search(len(r.history), func(i int) bool { return r.history[i].t > t })
	if idx == 0 {
		return 0, false
	}
	return r.history[idx-1].occupancy, true
}

// ForceEvent emits an OccupancyEvent without mutating occupancy, used by
// the capacity-refused path (external noise arriving at a full airport)
// where §4.5 requires the event to be recorded but occupancy must not
// increase.
func (r *Resource) ForceEvent(now float64, kind EventKind) {
	r.history = append(r.history, snapshotSample{t: now, occupancy: r.occupancy})
	if r.emit != nil {
		r.emit(OccupancyEvent{
			Minute:         now,
			Airport:        r.airportID,
			Kind:           kind,
			OccupancyAfter: r.occupancy,
			Capacity:       r.capacity,
		})
	}
}

// RouteSeparation enforces the minimum gap between consecutive uses of the
// same unordered route, independent of either endpoint's runway-separation
// interlock. Grounded on _esperar_separacion_ruta, which keys its interlock
// on sorted(origin, destination) rather than on either airport alone.
type RouteSeparation struct {
	clock             *Clock
	separationMinutes float64
	last              map[string]float64
}

// NewRouteSeparation creates a RouteSeparation enforcing separationMinutes
// between uses of the same route.
func NewRouteSeparation(clock *Clock, separationMinutes float64) *RouteSeparation {
	return &RouteSeparation{clock: clock, separationMinutes: separationMinutes, last: make(map[string]float64)}
}

func routeKey(a, b string) string {
	if a <= b {
		return a + "|" + b
	}
	return b + "|" + a
}

// Wait suspends p until the separation window since the last use of route
// (a, b) has elapsed, then records this instant as the route's last use.
func (rs *RouteSeparation) Wait(p *Proc, a, b string) {
	key := routeKey(a, b)
	last, ok := rs.last[key]
	now := p.clock.Now()
	if ok && now < last+rs.separationMinutes {
		p.Wait(last + rs.separationMinutes - now)
	}
	rs.last[key] = p.clock.Now()
}

// AdjustExternal increments or decrements occupancy for an external-noise
// pulse, clamped to [0, capacity], emitting kind. If delta > 0 and the
// resource is already full, no mutation happens and EventCapacityRefused
// is emitted instead of kind, matching _log_evento's "cap_llena" fallback.
// Reports whether the adjustment actually applied, so a caller driving a
// burst of arrivals followed by matching departures knows exactly how many
// of its arrivals were granted (and thus how many departures to release) --
// a refused arrival must never be paired with a departure decrement, or it
// silently consumes a slot held by an unrelated lease.
func (r *Resource) AdjustExternal(now float64, delta int, kind EventKind) bool {
	if delta > 0 && r.occupancy >= r.capacity {
		r.ForceEvent(now, EventCapacityRefused)
		return false
	}
	next := r.occupancy + delta
	if next < 0 {
		next = 0
	}
	if next > r.capacity {
		next = r.capacity
	}
	r.occupancy = next
	r.logEvent(now, kind)
	return true
}
