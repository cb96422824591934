// sim/errors.go

package sim

import "errors"

var (
	// ErrDepartureInPast marks a flight whose scheduled departure is
	// strictly before the engine's current virtual time at activation.
	// It is a runtime-fatal error: that one flight aborts, the engine
	// continues.
	ErrDepartureInPast = errors.New("flight activated with scheduled departure in the past")

	// ErrNoSuchAirport names the case of an airport id the engine has no
	// resource for (and that isn't Exterior). No engine path returns it:
	// NewEngine rejects such plans with aviation.ErrUnknownAirport.
	ErrNoSuchAirport = errors.New("no resource for airport")

	// ErrEngineAlreadyRun guards against reusing an Engine for a second Run.
	ErrEngineAlreadyRun = errors.New("engine has already run")
)
