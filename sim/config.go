// sim/config.go

package sim

import "github.com/mmp/aerosim/aviation"

// Config holds every tunable parameter spec §6 names. Defaults are grounded
// on the original prototype's ConfigSimulacion dataclass field values.
type Config struct {
	// Seed derives every per-concern RNG stream (see rand.Derive) and is
	// mixed with the day number for multi-day runs.
	Seed uint64

	StepMinutes float64

	WaitThresholdMinutes float64
	SeparationMinutes    float64

	WindSpeedFactorFavor   float64
	WindSpeedFactorAgainst float64
	WindSpeedFactorNeutral float64
	FuelFactorFavor        float64
	FuelFactorAgainst      float64
	FuelFactorNeutral      float64

	BoardingMinutes   float64
	TurnaroundMinutes float64

	InitialOccupancyMinFraction float64
	InitialOccupancyMaxFraction float64

	ExteriorTopN        int
	ExteriorNoiseMin    int
	ExteriorNoiseMax    int
	ExteriorIntervalMin float64
	ExteriorIntervalMax float64
	ExteriorStayMin     float64
	ExteriorStayMax     float64

	MinPhaseTaxiMinutes     float64
	MinPhaseTakeoffMinutes  float64
	MinPhaseCruiseMinutes   float64
	MinPhaseApproachMinutes float64
	MinPhaseLandingMinutes  float64

	AircraftTypeDistanceThresholdKM float64

	TaxiDistanceKM       float64
	TakeoffFraction      float64
	ApproachFraction     float64
	LandingFraction      float64
	MinLandingDistanceKM float64
	TaxiFuelFactor       float64

	ExteriorDistanceKM  float64
	ExteriorProbability float64

	// DayLengthMinutes is one simulated day's length. Horizon, if zero,
	// defaults to the plan's latest scheduled arrival plus 60 minutes, or to
	// DayLengthMinutes when the plan has no rows.
	DayLengthMinutes float64
	Horizon          float64

	ShortRangeAircraft  aviation.AircraftType
	MediumRangeAircraft aviation.AircraftType

	// DiversionCruiseSpeedKMH is the fixed reference speed the diversion
	// planner uses to estimate time-to-candidate, independent of the
	// diverting flight's own sampled cruise speed (the original always
	// estimates via the medium-range type).
	DiversionCruiseSpeedKMH float64
	DiversionCacheSize      int

	// CapacityMin/Max are cap_min/cap_max bounds for
	// aviation.DeriveCapacitiesFromTraffic. Neither the engine nor the CLI
	// reads them; an airport table without capacities fails validation.
	CapacityMin int
	CapacityMax int
}

// DefaultConfig returns the defaults grounded on ConfigSimulacion.
func DefaultConfig() Config {
	return Config{
		StepMinutes: 1,

		WaitThresholdMinutes: 45,
		SeparationMinutes:    3,

		WindSpeedFactorFavor:   1.05,
		WindSpeedFactorAgainst: 0.90,
		WindSpeedFactorNeutral: 1.00,
		FuelFactorFavor:        0.95,
		FuelFactorAgainst:      1.05,
		FuelFactorNeutral:      1.00,

		InitialOccupancyMinFraction: 0.05,
		InitialOccupancyMaxFraction: 0.35,

		ExteriorTopN:        15,
		ExteriorNoiseMin:    1,
		ExteriorNoiseMax:    3,
		ExteriorIntervalMin: 90,
		ExteriorIntervalMax: 240,
		ExteriorStayMin:     15,
		ExteriorStayMax:     45,

		MinPhaseTaxiMinutes:     3,
		MinPhaseTakeoffMinutes:  2,
		MinPhaseCruiseMinutes:   5,
		MinPhaseApproachMinutes: 4,
		MinPhaseLandingMinutes:  2,

		AircraftTypeDistanceThresholdKM: 700,

		TaxiDistanceKM:       4,
		TakeoffFraction:      0.08,
		ApproachFraction:     0.10,
		LandingFraction:      0.05,
		MinLandingDistanceKM: 5,
		TaxiFuelFactor:       0.35,

		ExteriorDistanceKM:  1800,
		ExteriorProbability: 0.05,

		DayLengthMinutes: 1440,

		ShortRangeAircraft:  aviation.ShortRange,
		MediumRangeAircraft: aviation.MediumRange,

		// 900 km/h matches the original's separate fixed
		// TIPO_MEDIO_RADIO.vel_cru_kmh field, distinct from the sampled
		// crucero_medio speed range used for actual cruise phases.
		DiversionCruiseSpeedKMH: 900.0,
		DiversionCacheSize:      256,

		CapacityMin: 2,
		CapacityMax: 20,
	}
}

// SelectAircraftType picks the configured short- or medium-range type for a
// planned distance, honoring a config override of the two fixed instances.
func (c Config) SelectAircraftType(distanceKM float64) aviation.AircraftType {
	if distanceKM <= c.AircraftTypeDistanceThresholdKM {
		return c.ShortRangeAircraft
	}
	return c.MediumRangeAircraft
}

// Option mutates a Config; ApplyOptions applies Options over a base Config
// (typically DefaultConfig) in order, and the result is passed to NewEngine.
type Option func(*Config)

func WithSeed(seed uint64) Option { return func(c *Config) { c.Seed = seed } }

func WithHorizon(minutes float64) Option { return func(c *Config) { c.Horizon = minutes } }

func WithDayLength(minutes float64) Option { return func(c *Config) { c.DayLengthMinutes = minutes } }

func WithWaitThreshold(minutes float64) Option {
	return func(c *Config) { c.WaitThresholdMinutes = minutes }
}

func WithSeparation(minutes float64) Option {
	return func(c *Config) { c.SeparationMinutes = minutes }
}

func WithExteriorPolicy(distanceKM, probability float64) Option {
	return func(c *Config) {
		c.ExteriorDistanceKM = distanceKM
		c.ExteriorProbability = probability
	}
}

func WithTurnaround(boardingMinutes, turnaroundMinutes float64) Option {
	return func(c *Config) {
		c.BoardingMinutes = boardingMinutes
		c.TurnaroundMinutes = turnaroundMinutes
	}
}

// ApplyOptions returns cfg with every opt applied in order.
func ApplyOptions(cfg Config, opts ...Option) Config {
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
