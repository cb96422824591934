// sim/plan.go

package sim

import (
	gomath "math"
	"sort"

	"github.com/mmp/aerosim/aviation"
	"github.com/mmp/aerosim/rand"
)

// PlanConfig parameterizes one day's worth of synthetic flight generation
// from a weighted route graph. Grounded on generacion_vuelos.py's
// ConfigVuelos.
type PlanConfig struct {
	TotalFlights int

	StartHour int
	EndHour   int
	// ConcentratePeakHours, when true, draws most departures from two
	// Gaussian peaks rather than uniformly across the day.
	ConcentratePeakHours bool

	CruiseSpeedKMH float64

	ExteriorProbability float64
	ExteriorDistanceKM  float64
}

// durationMinutes estimates a flight's scheduled duration at a fixed
// reference cruise speed (a planning-time figure, independent of the
// per-flight sampled speed the engine later simulates): ⌈distance / V · 60⌉,
// at least 1 minute. Grounded on _duracion_minutos's
// `max(1, int(math.ceil(...)))`. A non-positive speed returns 0.
func durationMinutes(distanceKM, cruiseSpeedKMH float64) int {
	if cruiseSpeedKMH <= 0 {
		return 0
	}
	minutes := (distanceKM / cruiseSpeedKMH) * 60
	d := int(gomath.Ceil(minutes))
	if d < 1 {
		d = 1
	}
	return d
}

// departureMinutes draws count departure minutes in [startHour*60,
// endHour*60). When concentrate is true, 70% are drawn from a Gaussian
// centered on one of two peak-hour windows (08:00, 18:00, sigma 60min) and
// the rest uniformly; every draw is clamped back into the day window.
// Grounded on _generar_minutos_salida.
func departureMinutes(rng *rand.Rand, count, startHour, endHour int, concentrate bool) []int {
	startMin := startHour * 60
	endMin := endHour * 60

	minutes := make([]int, count)
	peakCenters := []int{8, 18}
	const peakProbability = 0.7
	const peakSigma = 60.0

	for i := range minutes {
		var m int
		if concentrate && rng.Float64() < peakProbability {
			center := peakCenters[rng.Intn(len(peakCenters))]
			mu := float64(center * 60)
			m = int(mu + rng.NormFloat64()*peakSigma)
		} else {
			m = startMin + rng.Intn(endMin-startMin)
		}
		if m < startMin {
			m = startMin
		}
		if m > endMin-1 {
			m = endMin - 1
		}
		minutes[i] = m
	}
	return minutes
}

// allocateFlightsPerEdge distributes total flights across edges via a
// multinomial draw over their normalised weights. Grounded on
// _asignar_vuelos_por_ruta, reimplemented without a dedicated multinomial
// sampler: each flight independently picks one edge by the same weighted
// draw used for every other weighted choice in this package.
func allocateFlightsPerEdge(rng *rand.Rand, edges []*aviation.Edge, total int) []int {
	counts := make([]int, len(edges))
	for i := 0; i < total; i++ {
		edge, ok := rand.SampleWeighted(rng, edges, func(e *aviation.Edge) float64 { return e.Weight })
		if !ok {
			continue
		}
		for j, e := range edges {
			if e == edge {
				counts[j]++
				break
			}
		}
	}
	return counts
}

// GeneratePlan builds one day's FlightPlan from graph, following
// generar_plan_diario: flights are allocated per edge by route weight, each
// independently assigned a random direction and departure minute, and a
// fraction -- scaled by the origin airport's share of total graph traffic
// -- redirected to Exterior. rng should be a stream private to plan
// generation (see rand.Derive).
func GeneratePlan(graph *aviation.Graph, cfg PlanConfig, rng *rand.Rand) (aviation.FlightPlan, error) {
	edges := graph.Edges()
	positive := make([]*aviation.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Weight > 0 {
			positive = append(positive, e)
		}
	}
	if len(positive) == 0 {
		return aviation.FlightPlan{}, aviation.ErrNoPositiveWeightEdges
	}

	traffic := graph.TrafficByNode()
	trafficMax := 0.0
	for _, v := range traffic {
		if v > trafficMax {
			trafficMax = v
		}
	}
	if trafficMax <= 0 {
		trafficMax = 1.0
	}

	perEdge := allocateFlightsPerEdge(rng, positive, cfg.TotalFlights)
	departures := departureMinutes(rng, cfg.TotalFlights, cfg.StartHour, cfg.EndHour, cfg.ConcentratePeakHours)

	var rows []aviation.PlanRow
	idx := 0
	scheduleCursor := 0

	for i, e := range positive {
		n := perEdge[i]
		for k := 0; k < n; k++ {
			departMinute := departures[scheduleCursor]
			scheduleCursor++

			origin, destination := e.U, e.V
			if rng.Float64() < 0.5 {
				origin, destination = e.V, e.U
			}

			exterior := false
			distanceKM := e.DistanceKM
			plannedDestination := destination
			routeWeight := e.Weight

			trafficOrigin := traffic[origin]
			exteriorProbability := cfg.ExteriorProbability * (trafficOrigin / trafficMax)
			if exteriorProbability < 0 {
				exteriorProbability = 0
			}
			if exteriorProbability > 1 {
				exteriorProbability = 1
			}
			if rng.Float64() < exteriorProbability {
				exterior = true
				plannedDestination = aviation.Exterior
				distanceKM = cfg.ExteriorDistanceKM
				routeWeight = 0
			}

			idx++
			duration := durationMinutes(distanceKM, cfg.CruiseSpeedKMH)
			rows = append(rows, aviation.PlanRow{
				ID:              flightID(origin, plannedDestination, idx),
				Origin:          origin,
				Destination:     plannedDestination,
				DepartMinute:    departMinute,
				ArriveMinute:    departMinute + duration,
				DistanceKM:      distanceKM,
				DurationMinutes: duration,
				Exterior:        exterior,
				RouteWeight:     routeWeight,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DepartMinute < rows[j].DepartMinute })
	return aviation.FlightPlan{Rows: rows}, nil
}

func flightID(origin, destination string, idx int) string {
	digits := [5]byte{'0', '0', '0', '0', '0'}
	for i := 4; i >= 0 && idx > 0; i-- {
		digits[i] = byte('0' + idx%10)
		idx /= 10
	}
	return origin + destination + string(digits[:])
}
