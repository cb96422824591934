// sim/flight.go

package sim

import (
	"log/slog"

	"github.com/mmp/aerosim/aviation"
)

// phaseSplit is the four-way distance split a planned distance divides
// into. Grounded on simulador_prototipo2.py's _segmentos_distancia.
type phaseSplit struct {
	Takeoff  float64
	Cruise   float64
	Approach float64
	Landing  float64
}

// splitDistance implements §4.4's phase distance split: takeoff and
// approach each get at least 1km, landing at least MinLandingDistanceKM;
// whatever remains is cruise. If the three terminal segments already
// exceed the planned distance, they're scaled down uniformly and cruise
// collapses to zero.
func splitDistance(cfg Config, distanceKM float64) phaseSplit {
	takeoff := max(1.0, distanceKM*cfg.TakeoffFraction)
	approach := max(1.0, distanceKM*cfg.ApproachFraction)
	landing := max(cfg.MinLandingDistanceKM, distanceKM*cfg.LandingFraction)

	rest := distanceKM - (takeoff + approach + landing)
	if rest < 0 {
		base := takeoff + approach + landing
		if base > 0 {
			scale := distanceKM / base
			takeoff *= scale
			approach *= scale
			landing *= scale
		}
		return phaseSplit{Takeoff: takeoff, Cruise: 0, Approach: approach, Landing: landing}
	}
	return phaseSplit{Takeoff: takeoff, Cruise: rest, Approach: approach, Landing: landing}
}

// phaseTimeMinutes converts a distance and speed into an elapsed time in
// minutes. Grounded on _tiempo_fase.
func phaseTimeMinutes(distanceKM, speedKMH float64) float64 {
	if speedKMH <= 0 {
		return 0
	}
	return (distanceKM / speedKMH) * 60
}

// fuelBurnLiters converts an elapsed duration and consumption rate into
// liters burned. Grounded on _combustible.
func fuelBurnLiters(durationMinutes, consumptionLPerH, factor float64) float64 {
	return (durationMinutes / 60) * consumptionLPerH * factor
}

// sampleSpeedKMH draws a speed uniformly from sr, or returns its fixed value
// if the range is degenerate (Min == Max, as approach speed is).
func (e *Engine) sampleSpeedKMH(sr aviation.SpeedRange) float64 {
	if sr.Max <= sr.Min {
		return sr.Min
	}
	return e.flightRand.Float64()*(sr.Max-sr.Min) + sr.Min
}

// logPhase appends a PhaseLogEntry if the engine was given a PhaseLogSink.
func (e *Engine) logPhase(row aviation.PlanRow, phase aviation.Phase, origin, scheduledDest, finalDest string, start, duration, distanceKM, speedKMH float64, wind aviation.WindLabel, fuelL float64, note string) {
	if e.phaseSink == nil {
		return
	}
	e.phaseSink.PutPhase(PhaseLogEntry{
		FlightID:             row.ID,
		Phase:                phase,
		Origin:               origin,
		ScheduledDestination: scheduledDest,
		FinalDestination:     finalDest,
		StartMinute:          start,
		EndMinute:            start + duration,
		DistanceKM:           distanceKM,
		SpeedKMH:             speedKMH,
		Wind:                 wind,
		FuelConsumedL:        fuelL,
		Note:                 note,
	})
}

// destinationWaitEstimate projects the minutes a flight would wait for a
// slot at destination if it proceeded there now: a FIFO-queue term plus, if
// the resource is already saturated, the time until that airport's next
// scheduled departure (a rough proxy for when a gate frees up). Grounded on
// _tiempo_espera_siguiente_salida's combination in _proceso_vuelo.
func (e *Engine) destinationWaitEstimate(destination string, now float64) float64 {
	res, ok := e.resources[destination]
	if !ok {
		return 0
	}
	capacity := res.Capacity()
	if capacity < 1 {
		capacity = 1
	}
	wait := (float64(res.QueueLen()) / float64(capacity)) * e.cfg.SeparationMinutes
	if res.Occupancy() >= res.Capacity() {
		if next, found := e.plan.NextDeparture(destination, now); found {
			wait += max(0, next-now)
		}
	}
	return wait
}

// hasFreeCapacity reports whether airportID has a resource with a free
// slot, used by the diversion planner's candidate scan.
func (e *Engine) hasFreeCapacity(airportID string) bool {
	res, ok := e.resources[airportID]
	return ok && res.Occupancy() < res.Capacity()
}

// runFlight drives one flight through the state machine of §4.4: queue,
// taxi, takeoff, cruise, an optional diversion decision, approach, and
// either landing or (for an Exterior destination) immediate completion.
// Grounded line-by-line on simulador_prototipo2.py's _proceso_vuelo.
func (e *Engine) runFlight(p *Proc, row aviation.PlanRow) {
	origin := row.Origin
	scheduledDestination := row.Destination
	departure := float64(row.DepartMinute)
	exterior := row.Exterior || scheduledDestination == aviation.Exterior

	plannedDistance := row.DistanceKM
	originalPlannedDistance := plannedDistance
	finalDestination := scheduledDestination

	aircraft := e.cfg.SelectAircraftType(plannedDistance)
	split := splitDistance(e.cfg, plannedDistance)

	var fuelConsumed float64
	var redirectionDelay float64
	diverted := false

	phaseMinutes := map[aviation.Phase]float64{}
	phaseKM := map[aviation.Phase]float64{}
	phaseSpeed := map[aviation.Phase]float64{}
	phaseWind := map[aviation.Phase]aviation.WindLabel{}

	///////////////////////////////////////////////////////////////////
	// Taxi + takeoff: both occupy the origin resource.

	originResource := e.resources[origin]
	originLease := originResource.Request(p, EventTaxiBegin, EventTakeoff)

	taxiWind, taxiSpeedFactor, _ := e.wind.Resolve(origin, aviation.PhaseTaxi)
	taxiSpeed := e.sampleSpeedKMH(aircraft.TaxiSpeed) * taxiSpeedFactor
	taxiDuration := max(e.cfg.MinPhaseTaxiMinutes, phaseTimeMinutes(e.cfg.TaxiDistanceKM, taxiSpeed))
	taxiFuel := fuelBurnLiters(taxiDuration, aircraft.ClimbFuelLPerH*e.cfg.TaxiFuelFactor, e.cfg.FuelFactorNeutral)
	fuelConsumed += taxiFuel
	phaseMinutes[aviation.PhaseTaxi], phaseKM[aviation.PhaseTaxi] = taxiDuration, e.cfg.TaxiDistanceKM
	phaseSpeed[aviation.PhaseTaxi], phaseWind[aviation.PhaseTaxi] = taxiSpeed, taxiWind
	taxiStart := p.Now()
	p.Wait(taxiDuration)
	e.logPhase(row, aviation.PhaseTaxi, origin, scheduledDestination, finalDestination, taxiStart, taxiDuration, e.cfg.TaxiDistanceKM, taxiSpeed, taxiWind, taxiFuel, "")

	originResource.RunwayWait(p)
	if e.cfg.BoardingMinutes > 0 {
		p.Wait(e.cfg.BoardingMinutes)
	}

	takeoffWind, takeoffSpeedFactor, takeoffFuelFactor := e.wind.Resolve(origin, aviation.PhaseTakeoff)
	takeoffSpeed := e.sampleSpeedKMH(aircraft.TakeoffSpeed) * takeoffSpeedFactor
	takeoffDuration := max(e.cfg.MinPhaseTakeoffMinutes, phaseTimeMinutes(split.Takeoff, takeoffSpeed))
	takeoffFuel := fuelBurnLiters(takeoffDuration, aircraft.ClimbFuelLPerH, takeoffFuelFactor)
	fuelConsumed += takeoffFuel
	phaseMinutes[aviation.PhaseTakeoff], phaseKM[aviation.PhaseTakeoff] = takeoffDuration, split.Takeoff
	phaseSpeed[aviation.PhaseTakeoff], phaseWind[aviation.PhaseTakeoff] = takeoffSpeed, takeoffWind
	takeoffStart := p.Now()
	p.Wait(takeoffDuration)
	e.logPhase(row, aviation.PhaseTakeoff, origin, scheduledDestination, finalDestination, takeoffStart, takeoffDuration, split.Takeoff, takeoffSpeed, takeoffWind, takeoffFuel, "")
	originLease.Release(p.Now())

	///////////////////////////////////////////////////////////////////
	// Cruise. Wind is resolved at origin's high-altitude label, per §4.4
	// step 6.

	cruiseWind, cruiseSpeedFactor, cruiseFuelFactor := e.wind.Resolve(origin, aviation.PhaseCruise)
	cruiseSpeed := max(1.0, e.sampleSpeedKMH(aircraft.CruiseSpeed)*cruiseSpeedFactor)
	cruiseDuration := max(e.cfg.MinPhaseCruiseMinutes, phaseTimeMinutes(split.Cruise, cruiseSpeed))
	cruiseFuel := fuelBurnLiters(cruiseDuration, aircraft.CruiseFuelLPerH, cruiseFuelFactor)
	fuelConsumed += cruiseFuel
	phaseMinutes[aviation.PhaseCruise], phaseKM[aviation.PhaseCruise] = cruiseDuration, split.Cruise
	phaseSpeed[aviation.PhaseCruise], phaseWind[aviation.PhaseCruise] = cruiseSpeed, cruiseWind
	cruiseStart := p.Now()
	p.Wait(cruiseDuration)
	e.logPhase(row, aviation.PhaseCruise, origin, scheduledDestination, finalDestination, cruiseStart, cruiseDuration, split.Cruise, cruiseSpeed, cruiseWind, cruiseFuel, "")

	///////////////////////////////////////////////////////////////////
	// Diversion decision: only for internal flights, once cruise ends.

	if !exterior {
		waitEstimate := e.destinationWaitEstimate(finalDestination, p.Now())
		if waitEstimate > e.cfg.WaitThresholdMinutes {
			decision := e.diversion.Evaluate(finalDestination, origin, waitEstimate, plannedDistance, e.hasFreeCapacity)
			if decision.Diverted {
				diverted = true
				redirectionDelay = decision.DelayMinutes
				finalDestination = decision.FinalDestination
				plannedDistance = decision.DistanceKM
				e.lg.Warn("flight diverted", slog.String("flight", row.ID), slog.String("from", scheduledDestination), slog.String("to", finalDestination))
			}
		}
	}

	// The recomputed split from (possibly) a new planned distance replaces
	// the whole four-way split, but only its approach and landing segments
	// are used going forward: the already-elapsed cruise time is not
	// revisited, and the fresh split's own cruise figure is discarded. This
	// mirrors the original's literal behavior and resolves spec's open
	// question on diversion time accounting.
	split = splitDistance(e.cfg, plannedDistance)

	///////////////////////////////////////////////////////////////////
	// Approach. Wind is resolved against the final (possibly diverted)
	// destination's low-altitude label -- the other open question spec
	// asks to be resolved explicitly.

	var approachWind aviation.WindLabel
	var approachSpeedFactor, approachFuelFactor float64
	if exterior {
		approachWind, approachSpeedFactor, approachFuelFactor = aviation.WindNeutral, e.cfg.WindSpeedFactorNeutral, e.cfg.FuelFactorNeutral
	} else {
		approachWind, approachSpeedFactor, approachFuelFactor = e.wind.Resolve(finalDestination, aviation.PhaseApproach)
	}
	approachSpeed := e.sampleSpeedKMH(aircraft.ApproachSpeed) * approachSpeedFactor
	approachDuration := max(e.cfg.MinPhaseApproachMinutes, phaseTimeMinutes(split.Approach, approachSpeed))
	approachFuel := fuelBurnLiters(approachDuration, aircraft.DescentFuelLPerH, approachFuelFactor)
	fuelConsumed += approachFuel
	phaseMinutes[aviation.PhaseApproach], phaseKM[aviation.PhaseApproach] = approachDuration, split.Approach
	phaseSpeed[aviation.PhaseApproach], phaseWind[aviation.PhaseApproach] = approachSpeed, approachWind
	approachStart := p.Now()
	p.Wait(approachDuration)
	e.logPhase(row, aviation.PhaseApproach, origin, scheduledDestination, finalDestination, approachStart, approachDuration, split.Approach, approachSpeed, approachWind, approachFuel, "")

	e.routeSeparation.Wait(p, origin, finalDestination)

	///////////////////////////////////////////////////////////////////
	// Landing (internal only) or immediate completion (Exterior).

	var queueWait float64

	if exterior {
		finalDestination = aviation.Exterior
	} else {
		destResource := e.resources[finalDestination]
		queueStart := p.Now()
		// The landing occupancy event fires here, at resource acquisition,
		// not after RunwayWait below -- the slot is held from acquisition
		// onward, matching the original's resource-hold semantics.
		destLease := destResource.Request(p, EventLanding, EventDepartDestination)
		queueWait = p.Now() - queueStart
		if queueWait > 0 {
			holdFuel := fuelBurnLiters(queueWait, aircraft.CruiseFuelLPerH, e.cfg.FuelFactorNeutral)
			fuelConsumed += holdFuel
			e.logPhase(row, aviation.PhaseQueueHold, origin, scheduledDestination, finalDestination, queueStart, queueWait, 0, 0, aviation.WindNeutral, holdFuel, "queue wait at destination runway")
		}

		destResource.RunwayWait(p)
		landingWind, landingSpeedFactor, landingFuelFactor := e.wind.Resolve(finalDestination, aviation.PhaseLanding)
		landingSpeed := e.sampleSpeedKMH(aircraft.LandingSpeed) * landingSpeedFactor
		landingDuration := max(e.cfg.MinPhaseLandingMinutes, phaseTimeMinutes(split.Landing, landingSpeed))
		landingFuel := fuelBurnLiters(landingDuration, aircraft.DescentFuelLPerH, landingFuelFactor)
		fuelConsumed += landingFuel
		phaseMinutes[aviation.PhaseLanding], phaseKM[aviation.PhaseLanding] = landingDuration, split.Landing
		phaseSpeed[aviation.PhaseLanding], phaseWind[aviation.PhaseLanding] = landingSpeed, landingWind
		landingStart := p.Now()
		p.Wait(landingDuration)
		e.logPhase(row, aviation.PhaseLanding, origin, scheduledDestination, finalDestination, landingStart, landingDuration, split.Landing, landingSpeed, landingWind, landingFuel, "")

		if e.cfg.TurnaroundMinutes > 0 {
			p.Wait(e.cfg.TurnaroundMinutes)
		}
		destLease.Release(p.Now())
	}

	///////////////////////////////////////////////////////////////////
	// Completion: append the FlightRecord.

	realArrival := p.Now()
	totalDelay := max(0, realArrival-departure-float64(row.DurationMinutes))

	e.recordSink.PutRecord(FlightRecord{
		ID:                      row.ID,
		Origin:                  origin,
		ScheduledDestination:    scheduledDestination,
		FinalDestination:        finalDestination,
		Diverted:                diverted,
		Exterior:                exterior,
		ScheduledDeparture:      departure,
		RealArrival:             realArrival,
		TotalDelayMinutes:       totalDelay,
		RedirectionDelayMinutes: redirectionDelay,
		FuelConsumedL:           fuelConsumed,
		FuelRemainingL:          max(0, aircraft.FuelCapacityL-fuelConsumed),
		AircraftType:            aircraft.Name,
		PhaseMinutes:            phaseMinutes,
		PhaseKM:                 phaseKM,
		PhaseSpeedKMH:           phaseSpeed,
		PhaseWind:               phaseWind,
		QueueWaitMinutes:        queueWait,
		PlannedDistanceKM:       originalPlannedDistance,
		RouteDistanceKM:         plannedDistance,
	})
}
