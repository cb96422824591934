// sim/daystate.go

package sim

import (
	"os"

	"github.com/brunoga/deep"
	"github.com/vmihailenco/msgpack/v5"
)

// DayState is the end-of-day occupancy snapshot one Engine hands to the
// next. Each simulated day runs on a fresh Engine with its own local clock
// starting at 0 -- only the occupancy carried in DayState and
// the RNG seed (mixed with the day index) connect one day's engine to the
// next.
type DayState struct {
	Day       int
	Occupancy map[string]int
}

// NextDayState derives the state the following day's Engine should start
// from: a deep copy of this day's final occupancy, so the next Engine never
// aliases this one's resource pool, paired with the next day index.
func (e *Engine) NextDayState() (DayState, error) {
	occ, err := deep.Copy(e.FinalOccupancy())
	if err != nil {
		return DayState{}, err
	}
	return DayState{Day: e.day + 1, Occupancy: occ}, nil
}

// SaveDayState writes state to path as msgpack, for multi-day runs split
// across separate OS processes.
func SaveDayState(path string, state DayState) error {
	b, err := msgpack.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadDayState reads a DayState previously written by SaveDayState.
func LoadDayState(path string) (DayState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return DayState{}, err
	}
	var state DayState
	if err := msgpack.Unmarshal(b, &state); err != nil {
		return DayState{}, err
	}
	return state, nil
}

// DaySeed mixes a base seed with a day index so every day's per-concern RNG
// streams are distinct yet reproducible.
func DaySeed(seed uint64, day int) uint64 {
	return seed + uint64(day)*0x9E3779B97F4A7C15
}
