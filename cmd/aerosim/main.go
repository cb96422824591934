// main.go

package main

// This file binds sim.Config's tunables to flags, loads airport and route
// tables from CSV, and drives one or more days of simulation to completion.

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/mmp/aerosim/aviation"
	"github.com/mmp/aerosim/log"
	aeromath "github.com/mmp/aerosim/math"
	"github.com/mmp/aerosim/rand"
	"github.com/mmp/aerosim/sim"
)

var (
	seed          = flag.Uint64("seed", 1234, "base RNG seed")
	days          = flag.Int("days", 1, "number of simulated days to run")
	horizon       = flag.Float64("horizon", 0, "simulation horizon in minutes (0: derive from plan or day length)")
	logLevel      = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir        = flag.String("logdir", "", "directory for rotating log files (default aerosim-logs)")
	airportsCSV   = flag.String("airports", "", "path to airports CSV (id,lat,lon,capacity,lowwind,highwind)")
	routesCSV     = flag.String("routes", "", "path to routes CSV (origin,destination,passengers_annual)")
	flightsPerDay = flag.Int("flights", 200, "total synthetic flights to generate per day")
	outRecords    = flag.String("out-records", "", "path to write flight records as JSON lines (default: keep them in memory and log only their count)")
	outEvents     = flag.String("out-events", "", "path to write occupancy events as JSON lines")
)

func main() {
	flag.Parse()

	lg := log.New(*logDir, *logLevel)

	airports, err := loadAirports(*airportsCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading airports: %v\n", err)
		os.Exit(1)
	}

	routePax, positions, err := loadRoutes(*routesCSV, airports)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading routes: %v\n", err)
		os.Exit(1)
	}
	graph := aviation.BuildGraph(routePax, positions)

	cfg := sim.DefaultConfig()
	cfg = sim.ApplyOptions(cfg, sim.WithSeed(*seed), sim.WithHorizon(*horizon))

	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	var occOverride map[string]int
	for day := 0; day < *days; day++ {
		daySeed := sim.DaySeed(*seed, day)
		dayCfg := cfg
		dayCfg.Seed = daySeed

		planRand := rand.Derive(daySeed, "plan")
		plan, err := sim.GeneratePlan(graph, sim.PlanConfig{
			TotalFlights:         *flightsPerDay,
			StartHour:            6,
			EndHour:              22,
			ConcentratePeakHours: true,
			CruiseSpeedKMH:       800,
			ExteriorProbability:  dayCfg.ExteriorProbability,
			ExteriorDistanceKM:   dayCfg.ExteriorDistanceKM,
		}, planRand)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generating plan for day %d: %v\n", day, err)
			os.Exit(1)
		}

		opts := []sim.EngineOption{sim.WithLogger(lg), sim.WithDay(day)}
		var recordSink *sim.MemoryRecordSink
		if *outRecords != "" {
			fileSink, err := sim.NewJSONLinesRecordSink(dayOutputPath(*outRecords, day), false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "opening record sink: %v\n", err)
				os.Exit(1)
			}
			opts = append(opts, sim.WithRecordSink(fileSink))
		} else {
			recordSink = sim.NewMemoryRecordSink()
			opts = append(opts, sim.WithRecordSink(recordSink))
		}
		if occOverride != nil {
			opts = append(opts, sim.WithInitialOccupancy(occOverride))
		}

		occupancySink := sim.NewMemoryOccupancySink()
		opts = append(opts, sim.WithOccupancySink(occupancySink))

		engine, err := sim.NewEngine(dayCfg, airports, graph, plan, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "building engine for day %d: %v\n", day, err)
			os.Exit(1)
		}

		if err := engine.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "running day %d: %v\n", day, err)
			os.Exit(1)
		}

		if interactive {
			fmt.Fprintf(os.Stdout, "day %d/%d complete (horizon %.0f min)\n", day+1, *days, engine.Horizon())
		}
		if recordSink != nil {
			lg.Info(fmt.Sprintf("day %d produced %d flight records", day, len(recordSink.Records)))
		}
		if *outEvents != "" {
			if err := writeEventsJSONLines(dayOutputPath(*outEvents, day), occupancySink.Events); err != nil {
				fmt.Fprintf(os.Stderr, "writing occupancy events for day %d: %v\n", day, err)
				os.Exit(1)
			}
		}

		next, err := engine.NextDayState()
		if err != nil {
			fmt.Fprintf(os.Stderr, "computing next-day state: %v\n", err)
			os.Exit(1)
		}
		occOverride = next.Occupancy
	}
}

// dayOutputPath appends a day suffix to base before its extension so a
// multi-day run doesn't overwrite one file per day.
func dayOutputPath(base string, day int) string {
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s.day%02d%s", strings.TrimSuffix(base, ext), day, ext)
}

// writeEventsJSONLines writes events to path, one JSON object per line.
func writeEventsJSONLines(path string, events []sim.OccupancyEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return w.Flush()
}

// loadAirports reads an airports CSV with header
// id,lat,lon,capacity,lowwind,highwind. An empty path returns an empty table
// (useful for tests that build one programmatically).
func loadAirports(path string) (aviation.AirportTable, error) {
	table := aviation.AirportTable{}
	if path == "" {
		return table, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return table, nil
	}

	for _, row := range rows[1:] {
		if len(row) < 6 {
			continue
		}
		lat, _ := strconv.ParseFloat(row[1], 64)
		lon, _ := strconv.ParseFloat(row[2], 64)
		capacity, _ := strconv.Atoi(row[3])
		table[row[0]] = aviation.Airport{
			ID:       row[0],
			Location: aeromath.LatLon{Lat: lat, Lon: lon},
			Capacity: capacity,
			LowWind:  aviation.WindLabel(row[4]),
			HighWind: aviation.WindLabel(row[5]),
		}
	}
	return table, table.Validate()
}

// loadRoutes reads a routes CSV with header origin,destination,passengers_annual
// and returns the route-passenger map and a position table derived from
// airports. An empty path returns an empty route map, letting BuildGraph
// fall back to a uniform complete graph.
func loadRoutes(path string, airports aviation.AirportTable) (map[[2]string]float64, map[string]aeromath.LatLon, error) {
	positions := make(map[string]aeromath.LatLon, len(airports))
	for id, a := range airports {
		positions[id] = a.Location
	}

	routePax := map[[2]string]float64{}
	if path == "" {
		return routePax, positions, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return routePax, positions, nil
	}

	for _, row := range rows[1:] {
		if len(row) < 3 {
			continue
		}
		pax, _ := strconv.ParseFloat(row[2], 64)
		routePax[[2]string{row[0], row[1]}] += pax
	}
	return routePax, positions, nil
}
