// aviation/airport.go

package aviation

import (
	"fmt"

	"github.com/mmp/aerosim/math"
)

// WindLabel is a qualitative wind condition at an airport, for a given
// altitude band.
type WindLabel string

const (
	WindFavor   WindLabel = "favor"
	WindAgainst WindLabel = "against"
	WindNeutral WindLabel = "neutral"
	// WindUnknown marks an airport table entry that didn't supply a label,
	// triggering the wind oracle's seeded draw. It is never the result of
	// a draw itself.
	WindUnknown WindLabel = "unknown"
)

// Exterior is the reserved destination id denoting a flight that leaves
// the modelled network. It has no Airport entry and no resource.
const Exterior = "EXTERIOR"

// Airport is a static node in the network: an identifier, a position, a
// fixed capacity, and the two wind labels an airport table row may supply
// directly (an empty or WindNeutral/WindUnknown label tells the wind
// oracle to draw one instead).
type Airport struct {
	ID       string
	Location math.LatLon
	Capacity int
	LowWind  WindLabel
	HighWind WindLabel
}

// Validate checks the invariants Airport lifecycle requires at load time.
func (a Airport) Validate() error {
	if a.Capacity < 1 {
		return fmt.Errorf("%w: %s has capacity %d", ErrNonPositiveCapacity, a.ID, a.Capacity)
	}
	return nil
}

// AirportTable is the normalised, validated set of airports an engine run
// is built from, indexed by id.
type AirportTable map[string]Airport

// Validate checks every airport in the table.
func (t AirportTable) Validate() error {
	for _, a := range t {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NeedsWindDraw reports whether label should trigger the wind oracle's
// pseudo-random draw rather than being used directly. Any label other than
// favor/against counts as needing a draw -- an explicit "neutral" row in
// the input table is not trusted as a fixed value, matching how the
// original prototype treats it.
func NeedsWindDraw(label WindLabel) bool {
	return label != WindFavor && label != WindAgainst
}
