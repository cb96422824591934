// sim/noise.go

package sim

import (
	"sort"

	"github.com/mmp/aerosim/rand"
)

// scheduleExternalNoise spawns one background process per top-N airport by
// traffic share, each repeatedly pulling in and releasing a burst of
// external-flight slots to simulate international traffic the network model
// doesn't otherwise represent. Grounded on simulador_prototipo2.py's
// _programar_ruido_exterior / _proceso_ruido_exterior.
func (e *Engine) scheduleExternalNoise(traffic map[string]float64) {
	type entry struct {
		id  string
		pax float64
	}
	entries := make([]entry, 0, len(traffic))
	for id, pax := range traffic {
		entries = append(entries, entry{id, pax})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pax != entries[j].pax {
			return entries[i].pax > entries[j].pax
		}
		return entries[i].id < entries[j].id
	})

	topN := e.cfg.ExteriorTopN
	if topN < 1 {
		topN = 1
	}
	if topN > len(entries) {
		topN = len(entries)
	}

	for _, ent := range entries[:topN] {
		airportID := ent.id
		e.clock.Spawn(0, func(p *Proc) { e.externalNoiseProcess(p, airportID) })
	}
}

// externalNoiseProcess is one airport's perpetual noise generator: it waits
// a random interval, pulls in a random burst of external arrivals (each
// logged individually), holds them for a random stay, then releases them,
// until the engine's horizon is reached.
func (e *Engine) externalNoiseProcess(p *Proc, airportID string) {
	res, ok := e.resources[airportID]
	if !ok {
		return
	}

	for {
		interval := randRange(e.noiseRand, e.cfg.ExteriorIntervalMin, e.cfg.ExteriorIntervalMax)
		p.Wait(interval)
		if p.Now() >= e.horizon {
			return
		}

		extra := int(randRange(e.noiseRand, float64(e.cfg.ExteriorNoiseMin), float64(e.cfg.ExteriorNoiseMax)))
		stay := randRange(e.noiseRand, e.cfg.ExteriorStayMin, e.cfg.ExteriorStayMax)

		// Only arrivals actually granted a slot (not downgraded to
		// capacity-refused) hold one; granted tracks that count so the
		// matching departure burst below releases exactly those slots and
		// never decrements occupancy a real flight's lease is holding.
		granted := 0
		for i := 0; i < extra; i++ {
			if res.AdjustExternal(p.Now(), 1, EventExternalArrival) {
				granted++
			}
		}
		if stay > 0 {
			p.Wait(stay)
		}
		for i := 0; i < granted; i++ {
			res.AdjustExternal(p.Now(), -1, EventExternalDeparture)
		}
	}
}

// randRange draws a float64 uniformly from [lo, hi]; if hi <= lo it returns
// lo.
func randRange(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
