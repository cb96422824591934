// sim/diversion.go

package sim

import (
	gomath "math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mmp/aerosim/aviation"
)

// pathResult caches one shortest-path query's outcome, including the
// not-found case, so a repeated miss doesn't re-run Dijkstra either.
type pathResult struct {
	km float64
	ok bool
}

// DiversionPlanner selects an alternative destination by graph distance
// when a flight's projected destination wait exceeds the configured
// threshold. Grounded on simulador_prototipo2.py's _redirigir_si_conviene.
// Shortest-path queries are cached by (from, to) via an LRU so repeated
// diversion checks against the same origin/destination pair don't re-run
// Dijkstra on every call.
type DiversionPlanner struct {
	graph          *aviation.Graph
	cruiseSpeedKMH float64
	cache          *lru.Cache[[2]string, pathResult]
}

// NewDiversionPlanner creates a planner over graph. cruiseSpeedKMH is the
// reference speed used to convert a candidate's distance into an estimated
// minutes-to-arrive figure -- the original always estimates via the
// medium-range type's cruise speed, regardless of the diverting flight's
// own aircraft type, so callers should pass that fixed reference speed
// rather than the flight's sampled cruise speed.
func NewDiversionPlanner(graph *aviation.Graph, cruiseSpeedKMH float64, cacheSize int) *DiversionPlanner {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, _ := lru.New[[2]string, pathResult](cacheSize)
	return &DiversionPlanner{graph: graph, cruiseSpeedKMH: cruiseSpeedKMH, cache: cache}
}

func (dp *DiversionPlanner) shortestPathKM(from, to string) (float64, bool) {
	key := [2]string{from, to}
	if v, ok := dp.cache.Get(key); ok {
		return v.km, v.ok
	}
	km, ok := dp.graph.ShortestPathKM(from, to)
	dp.cache.Add(key, pathResult{km: km, ok: ok})
	return km, ok
}

// Decision is the outcome of one diversion evaluation.
type Decision struct {
	FinalDestination string
	DelayMinutes     float64
	Diverted         bool
	DistanceKM       float64
}

// Evaluate scans every graph node other than destination, origin and
// Exterior for one with free capacity (per hasCapacity), and picks the one
// nearest destination by graph shortest-path distance. The diversion is
// accepted only if the estimated time to reach that candidate from origin
// beats waitEstimateMinutes and the candidate is reachable from origin
// within 1.3x the planned distance; otherwise the flight continues to its
// original destination.
func (dp *DiversionPlanner) Evaluate(destination, origin string, waitEstimateMinutes, plannedDistanceKM float64, hasCapacity func(string) bool) Decision {
	decision := Decision{FinalDestination: destination, DelayMinutes: waitEstimateMinutes, DistanceKM: plannedDistanceKM}

	bestCandidate := ""
	bestDistToDest := gomath.MaxFloat64
	for _, node := range dp.graph.Nodes() {
		if node == destination || node == origin || node == aviation.Exterior {
			continue
		}
		if !hasCapacity(node) {
			continue
		}
		d, ok := dp.shortestPathKM(destination, node)
		if !ok {
			continue
		}
		if d < bestDistToDest {
			bestDistToDest = d
			bestCandidate = node
		}
	}

	if bestCandidate == "" {
		return decision
	}

	distTotal, ok := dp.shortestPathKM(origin, bestCandidate)
	if !ok {
		// No route from the airborne origin to the candidate at all: it
		// cannot be reached, so it cannot relieve the wait. The original's
		// equivalent branch references a distance that was never computed
		// in this case; rather than translate that bug, an unreachable
		// candidate is simply not accepted.
		return decision
	}

	estimatedMinutes := (distTotal / dp.cruiseSpeedKMH) * 60
	if distTotal > plannedDistanceKM*1.3 {
		estimatedMinutes = waitEstimateMinutes + 1
	}

	if estimatedMinutes < decision.DelayMinutes {
		decision.FinalDestination = bestCandidate
		decision.DelayMinutes = estimatedMinutes
		decision.Diverted = true
		decision.DistanceKM = distTotal
	}
	return decision
}
