package tracking

import "errors"

// Sentinel errors returned by ingestion and estimation. Callers are expected
// to branch with errors.Is; StaleSample in particular is a normal, frequent
// outcome of out-of-order network delivery, not a fault.
var (
	ErrTripNotFound     = errors.New("tracking: trip not found")
	ErrInvalidTripState = errors.New("tracking: trip state does not permit this operation")
	ErrStaleSample      = errors.New("tracking: sample predates latest beyond clock-skew tolerance")
	ErrInvalidRoute     = errors.New("tracking: route has no waypoints")
)
