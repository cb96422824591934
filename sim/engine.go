// sim/engine.go

package sim

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/goforj/godump"

	"github.com/mmp/aerosim/aviation"
	"github.com/mmp/aerosim/log"
	"github.com/mmp/aerosim/rand"
)

// EngineOption configures an Engine beyond Config's tunables: sinks and
// initial occupancy overrides are per-run wiring concerns, not simulation
// parameters, so they're kept out of Config itself.
type EngineOption func(*Engine)

func WithRecordSink(s RecordSink) EngineOption { return func(e *Engine) { e.recordSink = s } }

func WithOccupancySink(s OccupancySink) EngineOption { return func(e *Engine) { e.occupancySink = s } }

func WithPhaseLogSink(s PhaseLogSink) EngineOption { return func(e *Engine) { e.phaseSink = s } }

func WithLogger(lg *log.Logger) EngineOption { return func(e *Engine) { e.lg = lg } }

// WithInitialOccupancy overrides the traffic-proportional random initial
// occupancy for specific airports, used to carry an end-of-day occupancy
// snapshot into the next day's Engine.
func WithInitialOccupancy(occ map[string]int) EngineOption {
	return func(e *Engine) { e.initialOccupancyOverride = occ }
}

// WithDay marks which day index (0-based) this Engine represents, used only
// to label NextDayState's result; it has no effect on simulation behavior
// beyond what the caller separately derives from it (e.g. a per-day RNG
// seed via DaySeed).
func WithDay(day int) EngineOption { return func(e *Engine) { e.day = day } }

// Engine is one day's (or one standalone run's) complete simulation state:
// the clock, every airport's capacity resource, the wind oracle, diversion
// planner and route-separation interlock, and the sinks flight outcomes are
// written to. Grounded on simulador_prototipo2.py's Simulador class.
type Engine struct {
	cfg      Config
	airports aviation.AirportTable
	graph    *aviation.Graph
	plan     aviation.FlightPlan

	clock           *Clock
	resources       map[string]*Resource
	wind            *WindOracle
	diversion       *DiversionPlanner
	routeSeparation *RouteSeparation

	flightRand *rand.Rand
	noiseRand  *rand.Rand
	setupRand  *rand.Rand

	recordSink    RecordSink
	occupancySink OccupancySink
	phaseSink     PhaseLogSink

	initialOccupancyOverride map[string]int

	lg      *log.Logger
	horizon float64
	ran     bool
	day     int
}

// NewEngine validates plan against airports, builds one capacity resource
// per airport, seeds every per-concern RNG stream from cfg.Seed, and wires
// the wind oracle, diversion planner and route-separation interlock over
// graph. It does not start the simulation; call Run for that.
func NewEngine(cfg Config, airports aviation.AirportTable, graph *aviation.Graph, plan aviation.FlightPlan, opts ...EngineOption) (*Engine, error) {
	if err := airports.Validate(); err != nil {
		return nil, err
	}
	if err := plan.Validate(airports); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		airports: airports,
		graph:    graph,
		plan:     plan,

		resources: make(map[string]*Resource),

		flightRand: rand.Derive(cfg.Seed, "flight"),
		noiseRand:  rand.Derive(cfg.Seed, "noise"),
		setupRand:  rand.Derive(cfg.Seed, "setup"),

		recordSink:    NewMemoryRecordSink(),
		occupancySink: NewMemoryOccupancySink(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.horizon = cfg.Horizon
	if e.horizon <= 0 {
		if len(plan.Rows) > 0 {
			maxArrive := 0
			for _, r := range plan.Rows {
				if r.ArriveMinute > maxArrive {
					maxArrive = r.ArriveMinute
				}
			}
			e.horizon = float64(maxArrive) + 60
		} else {
			e.horizon = cfg.DayLengthMinutes
		}
	}

	e.clock = NewClock(e.lg)

	traffic := graph.TrafficByNode()
	e.buildResources(traffic)

	e.wind = NewWindOracle(cfg, airports, rand.Derive(cfg.Seed, "wind"))
	e.diversion = NewDiversionPlanner(graph, cfg.DiversionCruiseSpeedKMH, cfg.DiversionCacheSize)
	e.routeSeparation = NewRouteSeparation(e.clock, cfg.SeparationMinutes)

	e.scheduleExternalNoise(traffic)

	return e, nil
}

// buildResources creates one Resource per airport, assigning each an
// initial occupancy that is either an explicit override or a random
// traffic-weighted fraction of capacity. Grounded on
// _inicializar_ocupacion. A hub seeded to initial occupancy == capacity
// can park a departing flight indefinitely, since Resource has no
// timeout on its FIFO wait queue; acceptable per §4.4's no-timeout rule.
func (e *Engine) buildResources(traffic map[string]float64) {
	totalTraffic := 0.0
	for _, v := range traffic {
		totalTraffic += v
	}
	if totalTraffic <= 0 {
		totalTraffic = 1.0
	}

	ids := make([]string, 0, len(e.airports))
	for id := range e.airports {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		airport := e.airports[id]
		var initial int
		if override, ok := e.initialOccupancyOverride[id]; ok {
			initial = override
		} else {
			share := traffic[id] / totalTraffic
			baseFraction := e.cfg.InitialOccupancyMinFraction +
				e.setupRand.Float64()*(e.cfg.InitialOccupancyMaxFraction-e.cfg.InitialOccupancyMinFraction)
			fraction := baseFraction + share*0.5
			if fraction > 1 {
				fraction = 1
			}
			initial = int(fraction*float64(airport.Capacity) + 0.5)
		}
		if initial < 0 {
			initial = 0
		}
		if initial > airport.Capacity {
			initial = airport.Capacity
		}

		emit := func(ev OccupancyEvent) {
			if e.occupancySink != nil {
				e.occupancySink.PutEvent(ev)
			}
		}
		e.resources[id] = NewResource(e.clock, id, airport.Capacity, initial, e.cfg.SeparationMinutes, emit)
	}
}

// SpawnFlight activates one plan row as a flight process. If row's
// scheduled departure is already in the past relative to the engine's
// current virtual time, the flight aborts immediately with a FlightRecord
// carrying FatalError set -- this one flight is lost, the engine continues.
func (e *Engine) SpawnFlight(row aviation.PlanRow) {
	if float64(row.DepartMinute) < e.clock.Now() {
		e.lg.Error("flight departure in the past", slog.String("flight", row.ID), slog.Float64("depart", float64(row.DepartMinute)), slog.Float64("now", e.clock.Now()))
		e.recordSink.PutRecord(FlightRecord{
			ID:                   row.ID,
			Origin:               row.Origin,
			ScheduledDestination: row.Destination,
			FinalDestination:     row.Destination,
			ScheduledDeparture:   float64(row.DepartMinute),
			FatalError:           fmt.Sprintf("%v", ErrDepartureInPast),
		})
		return
	}

	e.clock.Spawn(float64(row.DepartMinute), func(p *Proc) {
		defer e.recoverFlight(row)
		e.runFlight(p, row)
	})
}

// recoverFlight turns a panic inside one flight's process into a fatal
// FlightRecord and a dump of the engine's resource state, rather than
// letting it crash the whole run.
func (e *Engine) recoverFlight(row aviation.PlanRow) {
	if r := recover(); r != nil {
		e.lg.Error("flight process panicked", slog.String("flight", row.ID), slog.Any("panic", r))
		e.recordSink.PutRecord(FlightRecord{
			ID:                   row.ID,
			Origin:               row.Origin,
			ScheduledDestination: row.Destination,
			FinalDestination:     row.Destination,
			ScheduledDeparture:   float64(row.DepartMinute),
			FatalError:           fmt.Sprintf("%v", r),
		})
		godump.Dump(e.DumpState())
	}
}

// DumpState returns a snapshot of per-airport occupancy, for diagnostics.
func (e *Engine) DumpState() map[string]int {
	snapshot := make(map[string]int, len(e.resources))
	for id, res := range e.resources {
		snapshot[id] = res.Occupancy()
	}
	return snapshot
}

// Run spawns every plan row and drives the clock to the engine's horizon.
// It may be called at most once per Engine.
func (e *Engine) Run() error {
	if e.ran {
		return ErrEngineAlreadyRun
	}
	e.ran = true

	for _, row := range e.plan.Rows {
		e.SpawnFlight(row)
	}
	e.clock.Run(e.horizon)

	if e.recordSink != nil {
		if err := e.recordSink.Close(); err != nil {
			return fmt.Errorf("closing record sink: %w", err)
		}
	}
	if e.occupancySink != nil {
		if err := e.occupancySink.Close(); err != nil {
			return fmt.Errorf("closing occupancy sink: %w", err)
		}
	}
	if e.phaseSink != nil {
		if err := e.phaseSink.Close(); err != nil {
			return fmt.Errorf("closing phase log sink: %w", err)
		}
	}
	return nil
}

// FinalOccupancy returns each airport's occupancy (after Run: at clock
// shutdown), for carrying state into the next day's Engine. It is read
// directly from the resources, so it does not depend on which sinks are
// configured.
func (e *Engine) FinalOccupancy() map[string]int {
	return e.DumpState()
}

// Now returns the engine's current virtual time.
func (e *Engine) Now() float64 { return e.clock.Now() }

// Horizon returns the virtual time this engine's Run will stop at.
func (e *Engine) Horizon() float64 { return e.horizon }
