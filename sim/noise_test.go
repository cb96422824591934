package sim

import (
	"testing"

	"github.com/mmp/aerosim/aviation"
	"github.com/mmp/aerosim/rand"
)

func TestExternalNoiseOnlyTouchesTopNAirports(t *testing.T) {
	airports := aviation.AirportTable{
		"AAA": {ID: "AAA", Capacity: 10, LowWind: aviation.WindNeutral, HighWind: aviation.WindNeutral},
		"BBB": {ID: "BBB", Capacity: 10, LowWind: aviation.WindNeutral, HighWind: aviation.WindNeutral},
		"CCC": {ID: "CCC", Capacity: 10, LowWind: aviation.WindNeutral, HighWind: aviation.WindNeutral},
	}
	cfg := DefaultConfig()
	cfg.ExteriorTopN = 1
	cfg.ExteriorIntervalMin, cfg.ExteriorIntervalMax = 1, 2
	cfg.ExteriorStayMin, cfg.ExteriorStayMax = 1, 2
	cfg = ApplyOptions(cfg, WithHorizon(50))

	g := aviation.NewGraph()
	g.AddPassengers("AAA", "BBB", 1000)
	g.AddPassengers("BBB", "CCC", 10)
	for _, e := range g.Edges() {
		e.DistanceKM = 500
	}

	events := NewMemoryOccupancySink()
	engine, err := NewEngine(cfg, airports, g, aviation.FlightPlan{}, WithOccupancySink(events))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := engine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	noisy := map[string]bool{}
	for _, e := range events.Events {
		if e.Kind == EventExternalArrival || e.Kind == EventExternalDeparture {
			noisy[e.Airport] = true
		}
	}
	if len(noisy) > cfg.ExteriorTopN {
		t.Fatalf("expected external noise confined to the top %d airport(s) by traffic, got noise on %v", cfg.ExteriorTopN, noisy)
	}
	if !noisy["BBB"] {
		t.Fatalf("expected the highest-traffic airport BBB to carry external noise, noisy=%v", noisy)
	}
}

func TestRandRangeClampsDegenerateRange(t *testing.T) {
	r := rand.Derive(1, "noise")
	if got := randRange(r, 10, 10); got != 10 {
		t.Fatalf("expected degenerate range to return lo, got %v", got)
	}
	if got := randRange(r, 10, 5); got != 10 {
		t.Fatalf("expected hi <= lo to return lo, got %v", got)
	}
}

func TestRandRangeWithinBounds(t *testing.T) {
	r := rand.Derive(2, "noise")
	for i := 0; i < 100; i++ {
		v := randRange(r, 5, 15)
		if v < 5 || v > 15 {
			t.Fatalf("randRange produced out-of-bounds value %v", v)
		}
	}
}
