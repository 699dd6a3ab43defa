package nav

import "errors"

var (
	ErrEmptyPath           = errors.New("nav: path has no waypoints")
	ErrCyclicPath          = errors.New("nav: path revisits a waypoint")
	ErrNegativeDistance    = errors.New("nav: segment distance is negative")
	ErrMissingSegment      = errors.New("nav: non-terminal waypoint lacks distance to next")
	ErrTargetNotOnPath     = errors.New("nav: target artwork is not on this path")
	ErrNotYetArrived       = errors.New("nav: visitor is outside the arrival radius")
	ErrInvalidSessionState = errors.New("nav: session is no longer active")
)
