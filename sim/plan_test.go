package sim

import (
	"testing"

	"github.com/mmp/aerosim/aviation"
	"github.com/mmp/aerosim/math"
	"github.com/mmp/aerosim/rand"
)

func buildTestGraph() *aviation.Graph {
	positions := map[string]math.LatLon{
		"AAA": {Lat: 0, Lon: 0},
		"BBB": {Lat: 0, Lon: 5},
		"CCC": {Lat: 5, Lon: 0},
	}
	routes := map[[2]string]float64{
		{"AAA", "BBB"}: 1000,
		{"BBB", "CCC"}: 500,
	}
	return aviation.BuildGraph(routes, positions)
}

func TestGeneratePlanRowCount(t *testing.T) {
	g := buildTestGraph()
	cfg := PlanConfig{
		TotalFlights:         50,
		StartHour:            6,
		EndHour:              22,
		ConcentratePeakHours: true,
		CruiseSpeedKMH:       800,
		ExteriorProbability:  0,
	}
	plan, err := GeneratePlan(g, cfg, rand.Derive(1, "plan"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Rows) != cfg.TotalFlights {
		t.Fatalf("expected %d rows, got %d", cfg.TotalFlights, len(plan.Rows))
	}
}

func TestGeneratePlanDeparturesWithinWindow(t *testing.T) {
	g := buildTestGraph()
	cfg := PlanConfig{
		TotalFlights:         100,
		StartHour:            6,
		EndHour:              22,
		ConcentratePeakHours: true,
		CruiseSpeedKMH:       800,
	}
	plan, err := GeneratePlan(g, cfg, rand.Derive(2, "plan"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range plan.Rows {
		if r.DepartMinute < cfg.StartHour*60 || r.DepartMinute >= cfg.EndHour*60 {
			t.Fatalf("departure minute %d outside [%d, %d)", r.DepartMinute, cfg.StartHour*60, cfg.EndHour*60)
		}
	}
}

func TestGeneratePlanRowsSortedByDeparture(t *testing.T) {
	g := buildTestGraph()
	cfg := PlanConfig{TotalFlights: 40, StartHour: 6, EndHour: 22, CruiseSpeedKMH: 800}
	plan, err := GeneratePlan(g, cfg, rand.Derive(3, "plan"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(plan.Rows); i++ {
		if plan.Rows[i].DepartMinute < plan.Rows[i-1].DepartMinute {
			t.Fatalf("row %d departs before row %d", i, i-1)
		}
	}
}

func TestGeneratePlanNoPositiveWeightEdges(t *testing.T) {
	g := aviation.NewGraph()
	g.AddNode("AAA")
	g.AddNode("BBB")
	cfg := PlanConfig{TotalFlights: 10, StartHour: 6, EndHour: 22, CruiseSpeedKMH: 800}
	_, err := GeneratePlan(g, cfg, rand.Derive(4, "plan"))
	if err == nil {
		t.Fatal("expected an error when the graph has no positive-weight edges")
	}
}

func TestGeneratePlanDeterministic(t *testing.T) {
	g := buildTestGraph()
	cfg := PlanConfig{TotalFlights: 60, StartHour: 6, EndHour: 22, ConcentratePeakHours: true, CruiseSpeedKMH: 800, ExteriorProbability: 0.1, ExteriorDistanceKM: 1800}

	plan1, err := GeneratePlan(g, cfg, rand.Derive(99, "plan"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan2, err := GeneratePlan(g, cfg, rand.Derive(99, "plan"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan1.Rows) != len(plan2.Rows) {
		t.Fatalf("expected identical row counts across identical seeds, got %d vs %d", len(plan1.Rows), len(plan2.Rows))
	}
	for i := range plan1.Rows {
		if plan1.Rows[i] != plan2.Rows[i] {
			t.Fatalf("row %d differs between identically-seeded runs: %+v vs %+v", i, plan1.Rows[i], plan2.Rows[i])
		}
	}
}

func TestFlightIDZeroPads(t *testing.T) {
	id := flightID("AAA", "BBB", 7)
	if id != "AAABBB00007" {
		t.Fatalf("expected zero-padded id, got %s", id)
	}
}

func TestDurationMinutesPositive(t *testing.T) {
	if d := durationMinutes(0, 800); d < 1 {
		t.Fatalf("expected at least 1 minute duration even for zero distance, got %d", d)
	}
}

func TestDurationMinutesCeilsExactIntegerWithoutOvershooting(t *testing.T) {
	// 120km at 800km/h is exactly 9.0 minutes; a ceil must return 9, not 10.
	if d := durationMinutes(120, 800); d != 9 {
		t.Fatalf("expected an exact-integer duration to ceil to itself (9), got %d", d)
	}
}

func TestDurationMinutesCeilsFractional(t *testing.T) {
	// 111km at 800km/h is 8.325 minutes; must ceil up to 9.
	if d := durationMinutes(111, 800); d != 9 {
		t.Fatalf("expected a fractional duration to ceil up to 9, got %d", d)
	}
}
