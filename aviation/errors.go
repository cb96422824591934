// aviation/errors.go

package aviation

import "errors"

var (
	ErrUnknownAirport         = errors.New("unknown airport id")
	ErrNonPositiveCapacity    = errors.New("airport capacity must be >= 1")
	ErrSameOriginDestination  = errors.New("origin and destination must differ")
	ErrArrivalBeforeDeparture = errors.New("scheduled arrival must be after scheduled departure")
	ErrNoPositiveWeightEdges  = errors.New("no edges with positive weight")
)
