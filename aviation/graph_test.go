package aviation

import (
	"math"
	"testing"

	aeromath "github.com/mmp/aerosim/math"
)

func TestNormalizeWeightsSumsToOne(t *testing.T) {
	g := NewGraph()
	g.AddPassengers("A", "B", 100)
	g.AddPassengers("B", "C", 300)
	g.AddPassengers("A", "C", 600)
	g.NormalizeWeights()

	sum := 0.0
	for _, e := range g.Edges() {
		sum += e.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("expected weights to sum to 1, got %v", sum)
	}
}

func TestBuildGraphFallsBackToCompleteGraph(t *testing.T) {
	positions := map[string]aeromath.LatLon{
		"A": {Lat: 0, Lon: 0},
		"B": {Lat: 0, Lon: 1},
		"C": {Lat: 1, Lon: 0},
	}
	g := BuildGraph(map[[2]string]float64{}, positions)

	if len(g.Edges()) != 3 {
		t.Fatalf("expected complete graph on 3 nodes to have 3 edges, got %d", len(g.Edges()))
	}
	sum := 0.0
	for _, e := range g.Edges() {
		sum += e.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("expected uniform fallback weights to sum to 1, got %v", sum)
	}
}

func TestShortestPathKM(t *testing.T) {
	g := NewGraph()
	g.AddPassengers("A", "B", 1)
	g.AddPassengers("B", "C", 1)
	g.AddPassengers("A", "C", 1)
	for _, e := range g.Edges() {
		switch edgeKey(e.U, e.V) {
		case edgeKey("A", "B"):
			e.DistanceKM = 100
		case edgeKey("B", "C"):
			e.DistanceKM = 100
		case edgeKey("A", "C"):
			e.DistanceKM = 500
		}
	}

	d, ok := g.ShortestPathKM("A", "C")
	if !ok {
		t.Fatal("expected a path from A to C")
	}
	if d != 200 {
		t.Fatalf("expected shortest path A->B->C to total 200, got %v", d)
	}
}

func TestShortestPathNoPath(t *testing.T) {
	g := NewGraph()
	g.AddNode("A")
	g.AddNode("B")
	if _, ok := g.ShortestPathKM("A", "B"); ok {
		t.Fatal("expected no path between disconnected nodes")
	}
}

func TestDeriveCapacitiesFromTrafficLowerBound(t *testing.T) {
	traffic := map[string]float64{"A": 0, "B": 100}
	caps := DeriveCapacitiesFromTraffic(traffic, 2, 10)
	if caps["A"] != 2 {
		t.Errorf("expected minimum traffic node to get cap_min=2, got %d", caps["A"])
	}
	if caps["B"] != 10 {
		t.Errorf("expected maximum traffic node to get cap_max=10, got %d", caps["B"])
	}
}
