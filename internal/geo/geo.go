package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusM = 6371000.0

var (
	ErrInvalidCoordinate = errors.New("geo: coordinate out of range")
	ErrDegenerateInput   = errors.New("geo: identical coordinates have no bearing")
	ErrInvalidRadius     = errors.New("geo: radius must be positive")
)

// NewCoordinate builds an orb.Point from latitude and longitude in degrees.
// orb stores points as (lng, lat).
func NewCoordinate(lat, lng float64) (orb.Point, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return orb.Point{}, ErrInvalidCoordinate
	}
	return orb.Point{lng, lat}, nil
}

// Distance returns the haversine great-circle distance between a and b in meters.
func Distance(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lng1 := a.Lon() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	lng2 := b.Lon() * math.Pi / 180

	deltaLat := lat2 - lat1
	deltaLng := lng2 - lng1

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}

// Bearing returns the initial compass bearing in degrees from one point toward
// another, normalized to [0, 360). Equal points have no bearing.
func Bearing(from, to orb.Point) (float64, error) {
	if from == to {
		return 0, ErrDegenerateInput
	}

	lat1 := from.Lat() * math.Pi / 180
	lat2 := to.Lat() * math.Pi / 180
	deltaLng := (to.Lon() - from.Lon()) * math.Pi / 180

	y := math.Sin(deltaLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLng)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360), nil
}

// WithinRadius reports whether p lies within radiusMeters of center.
func WithinRadius(p, center orb.Point, radiusMeters float64) (bool, error) {
	if radiusMeters <= 0 {
		return false, ErrInvalidRadius
	}
	return Distance(p, center) <= radiusMeters, nil
}
