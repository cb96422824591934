// sim/batch.go

package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mmp/aerosim/aviation"
)

// BatchResult is one run's outcome within a batch.
type BatchResult struct {
	Seed    uint64
	Records []FlightRecord
	Events  []OccupancyEvent
}

// RunBatch runs n independent single-day simulations concurrently, each
// with its own Engine, its own seed (derived from baseSeed by index), and
// its own in-memory sinks -- no state is shared between runs. buildPlan is
// invoked once per run (with that run's derived seed) so callers whose plan
// generation itself depends on the seed (see GeneratePlan) get a distinct
// plan per run; a caller reusing one fixed plan across every run can ignore
// the seed argument.
func RunBatch(ctx context.Context, n int, baseSeed uint64, cfg Config, airports aviation.AirportTable, graph *aviation.Graph, buildPlan func(seed uint64) (aviation.FlightPlan, error)) ([]BatchResult, error) {
	results := make([]BatchResult, n)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			seed := baseSeed + uint64(i)
			runCfg := cfg
			runCfg.Seed = seed

			plan, err := buildPlan(seed)
			if err != nil {
				return err
			}

			recordSink := NewMemoryRecordSink()
			occupancySink := NewMemoryOccupancySink()

			engine, err := NewEngine(runCfg, airports, graph, plan,
				WithRecordSink(recordSink), WithOccupancySink(occupancySink))
			if err != nil {
				return err
			}
			if err := engine.Run(); err != nil {
				return err
			}

			results[i] = BatchResult{Seed: seed, Records: recordSink.Records, Events: occupancySink.Events}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
