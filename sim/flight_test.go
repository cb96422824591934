package sim

import (
	"math"
	"testing"

	"github.com/mmp/aerosim/aviation"
)

func TestSplitDistanceSumsToTotal(t *testing.T) {
	cfg := DefaultConfig()
	split := splitDistance(cfg, 1000)
	total := split.Takeoff + split.Cruise + split.Approach + split.Landing
	if math.Abs(total-1000) > 1e-6 {
		t.Fatalf("expected phase split to sum to planned distance, got %v", total)
	}
}

func TestSplitDistanceShortHopCollapsesCruise(t *testing.T) {
	cfg := DefaultConfig()
	// A distance shorter than the sum of the terminal-segment floors must
	// scale those segments down and leave nothing for cruise.
	split := splitDistance(cfg, 5)
	if split.Cruise != 0 {
		t.Fatalf("expected cruise to collapse to zero on a short hop, got %v", split.Cruise)
	}
	total := split.Takeoff + split.Approach + split.Landing
	if math.Abs(total-5) > 1e-6 {
		t.Fatalf("expected terminal segments to sum to the whole short distance, got %v", total)
	}
}

func TestPhaseTimeMinutesZeroSpeed(t *testing.T) {
	if got := phaseTimeMinutes(100, 0); got != 0 {
		t.Fatalf("expected zero speed to produce zero time, got %v", got)
	}
}

func TestPhaseTimeMinutes(t *testing.T) {
	got := phaseTimeMinutes(100, 200)
	if math.Abs(got-30) > 1e-9 {
		t.Fatalf("expected 100km at 200km/h to take 30 minutes, got %v", got)
	}
}

func TestFuelBurnLitersScalesWithFactor(t *testing.T) {
	base := fuelBurnLiters(60, 1000, 1.0)
	scaled := fuelBurnLiters(60, 1000, 1.1)
	if scaled <= base {
		t.Fatalf("expected a larger factor to burn more fuel: base=%v scaled=%v", base, scaled)
	}
	if math.Abs(base-1000) > 1e-9 {
		t.Fatalf("expected 60 minutes at 1000L/h to burn 1000L, got %v", base)
	}
}

func TestSampleSpeedKMHDegenerateRange(t *testing.T) {
	engine := &Engine{flightRand: nil}
	got := engine.sampleSpeedKMH(aviation.SpeedRange{Min: 380, Max: 380})
	if got != 380 {
		t.Fatalf("expected a degenerate range to return its fixed value without drawing, got %v", got)
	}
}

func TestDestinationWaitEstimateZeroForUnknownAirport(t *testing.T) {
	engine := &Engine{cfg: DefaultConfig(), resources: map[string]*Resource{}}
	if got := engine.destinationWaitEstimate("ZZZ", 0); got != 0 {
		t.Fatalf("expected zero wait estimate for an airport with no resource, got %v", got)
	}
}

func TestHasFreeCapacity(t *testing.T) {
	c := NewClock(nil)
	r := NewResource(c, "AAA", 1, 1, 0, nil)
	engine := &Engine{resources: map[string]*Resource{"AAA": r}}

	if engine.hasFreeCapacity("AAA") {
		t.Fatal("expected a full resource to report no free capacity")
	}
	if engine.hasFreeCapacity("ZZZ") {
		t.Fatal("expected an unknown airport to report no free capacity")
	}
}

func TestDestinationWaitEstimateGrowsWithQueueLength(t *testing.T) {
	c := NewClock(nil)
	r := NewResource(c, "AAA", 2, 0, 3, nil)
	engine := &Engine{cfg: DefaultConfig(), resources: map[string]*Resource{"AAA": r}}

	before := engine.destinationWaitEstimate("AAA", 0)

	c.Spawn(0, func(p *Proc) {
		r.Request(p, EventLanding, EventDepartDestination)
	})
	c.Spawn(0, func(p *Proc) {
		r.Request(p, EventLanding, EventDepartDestination)
	})
	c.Spawn(0, func(p *Proc) {
		r.Request(p, EventLanding, EventDepartDestination)
	})
	c.Run(1)

	after := engine.destinationWaitEstimate("AAA", c.Now())
	if after <= before {
		t.Fatalf("expected wait estimate to grow once the queue is non-empty: before=%v after=%v", before, after)
	}
}
