// sim/wind.go

package sim

import (
	"github.com/mmp/aerosim/aviation"
	"github.com/mmp/aerosim/rand"
)

// windKey memoizes a wind draw per (airport, phase) -- the original resolves
// a fixed table label per altitude band but caches its random draws per the
// specific phase that asked, so two low-altitude phases at the same airport
// (e.g. takeoff and landing) can independently draw different labels.
type windKey struct {
	airport string
	phase   aviation.Phase
}

// WindOracle resolves a deterministic wind label for an (airport, phase)
// pair: a fixed favor/against table entry is used directly, otherwise a
// seeded pseudo-random draw is made and memoized. Grounded on
// simulador_prototipo2.py's _resolver_viento / _vientos_cache.
type WindOracle struct {
	cfg      Config
	airports aviation.AirportTable
	rng      *rand.Rand
	cache    map[windKey]aviation.WindLabel
}

// NewWindOracle creates a WindOracle backed by rng, which should be a
// stream private to this concern (see rand.Derive).
func NewWindOracle(cfg Config, airports aviation.AirportTable, rng *rand.Rand) *WindOracle {
	return &WindOracle{cfg: cfg, airports: airports, rng: rng, cache: make(map[windKey]aviation.WindLabel)}
}

// tableLabel returns the fixed label an airport's table supplies for the
// altitude band phase belongs to: cruise reads the high-altitude label,
// every other phase (taxi, takeoff, approach, landing) reads the
// low-altitude one.
func (w *WindOracle) tableLabel(airportID string, phase aviation.Phase) aviation.WindLabel {
	a, ok := w.airports[airportID]
	if !ok {
		return aviation.WindUnknown
	}
	if phase == aviation.PhaseCruise {
		return a.HighWind
	}
	return a.LowWind
}

// Resolve returns the wind label, speed multiplier and fuel multiplier for
// airportID at phase.
func (w *WindOracle) Resolve(airportID string, phase aviation.Phase) (aviation.WindLabel, float64, float64) {
	label := w.tableLabel(airportID, phase)
	if aviation.NeedsWindDraw(label) {
		key := windKey{airportID, phase}
		if cached, ok := w.cache[key]; ok {
			label = cached
		} else {
			label = w.draw()
			w.cache[key] = label
		}
	}
	return label, w.speedFactor(label), w.fuelFactor(label)
}

// draw samples a label from {favor: 0.3, against: 0.3, neutral: 0.4}.
func (w *WindOracle) draw() aviation.WindLabel {
	x := w.rng.Float64()
	switch {
	case x < 0.3:
		return aviation.WindFavor
	case x < 0.6:
		return aviation.WindAgainst
	default:
		return aviation.WindNeutral
	}
}

func (w *WindOracle) speedFactor(label aviation.WindLabel) float64 {
	switch label {
	case aviation.WindFavor:
		return w.cfg.WindSpeedFactorFavor
	case aviation.WindAgainst:
		return w.cfg.WindSpeedFactorAgainst
	default:
		return w.cfg.WindSpeedFactorNeutral
	}
}

func (w *WindOracle) fuelFactor(label aviation.WindLabel) float64 {
	switch label {
	case aviation.WindFavor:
		return w.cfg.FuelFactorFavor
	case aviation.WindAgainst:
		return w.cfg.FuelFactorAgainst
	default:
		return w.cfg.FuelFactorNeutral
	}
}
