package sim

import (
	"testing"

	"github.com/mmp/aerosim/aviation"
	"github.com/mmp/aerosim/rand"
)

func TestWindOracleUsesFixedTableLabel(t *testing.T) {
	cfg := DefaultConfig()
	airports := aviation.AirportTable{
		"AAA": {ID: "AAA", Capacity: 5, LowWind: aviation.WindFavor, HighWind: aviation.WindAgainst},
	}
	w := NewWindOracle(cfg, airports, rand.Derive(1, "wind"))

	label, speed, fuel := w.Resolve("AAA", aviation.PhaseTaxi)
	if label != aviation.WindFavor {
		t.Fatalf("expected fixed favor label at low altitude, got %v", label)
	}
	if speed != cfg.WindSpeedFactorFavor || fuel != cfg.FuelFactorFavor {
		t.Fatalf("expected favor's speed/fuel factors, got %v/%v", speed, fuel)
	}

	label, _, _ = w.Resolve("AAA", aviation.PhaseCruise)
	if label != aviation.WindAgainst {
		t.Fatalf("expected fixed against label at high altitude, got %v", label)
	}
}

func TestWindOracleDrawsAndMemoizesUnlabeled(t *testing.T) {
	cfg := DefaultConfig()
	airports := aviation.AirportTable{
		"AAA": {ID: "AAA", Capacity: 5, LowWind: aviation.WindUnknown, HighWind: aviation.WindUnknown},
	}
	w := NewWindOracle(cfg, airports, rand.Derive(1, "wind"))

	first, _, _ := w.Resolve("AAA", aviation.PhaseLanding)
	for i := 0; i < 10; i++ {
		again, _, _ := w.Resolve("AAA", aviation.PhaseLanding)
		if again != first {
			t.Fatalf("expected memoized draw for (airport, phase), got %v then %v", first, again)
		}
	}
}

func TestWindOracleDrawsIndependentlyPerPhase(t *testing.T) {
	cfg := DefaultConfig()
	airports := aviation.AirportTable{
		"AAA": {ID: "AAA", Capacity: 5, LowWind: aviation.WindUnknown, HighWind: aviation.WindUnknown},
	}
	w := NewWindOracle(cfg, airports, rand.Derive(1, "wind"))

	takeoff, _, _ := w.Resolve("AAA", aviation.PhaseTakeoff)
	landing, _, _ := w.Resolve("AAA", aviation.PhaseLanding)

	// Both phases share the low-altitude table entry, but a draw is cached
	// per (airport, phase) rather than per airport -- the two need not
	// agree, and re-resolving each must keep returning its own value.
	for i := 0; i < 5; i++ {
		if v, _, _ := w.Resolve("AAA", aviation.PhaseTakeoff); v != takeoff {
			t.Fatalf("takeoff draw changed across calls: %v vs %v", takeoff, v)
		}
		if v, _, _ := w.Resolve("AAA", aviation.PhaseLanding); v != landing {
			t.Fatalf("landing draw changed across calls: %v vs %v", landing, v)
		}
	}
}

func TestWindOracleUnknownAirportStillDrawsAValidLabel(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWindOracle(cfg, aviation.AirportTable{}, rand.Derive(1, "wind"))

	label, _, _ := w.Resolve("ZZZ", aviation.PhaseTaxi)
	if label != aviation.WindFavor && label != aviation.WindAgainst && label != aviation.WindNeutral {
		t.Fatalf("expected a drawn favor/against/neutral label for an unknown airport, got %v", label)
	}
}
