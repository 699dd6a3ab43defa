package nav

import (
	"fmt"

	"backend-artscope/internal/geo"

	"github.com/paulmach/orb"
)

// ResolvePath returns the route from the path's first waypoint through the
// waypoint linked to targetArtworkID. If the artwork is linked to more than
// one waypoint the earliest-sequenced one wins and a warning is returned.
func ResolvePath(path Path, targetArtworkID string) ([]Waypoint, []Warning, error) {
	if len(path.Waypoints) == 0 {
		return nil, nil, ErrEmptyPath
	}

	target := -1
	var warnings []Warning
	for i, wp := range path.Waypoints {
		if wp.ArtworkID != targetArtworkID || targetArtworkID == "" {
			continue
		}
		if target == -1 {
			target = i
			continue
		}
		warnings = append(warnings, Warning{
			Code:       "duplicate-artwork-link",
			WaypointID: wp.ID,
			Message:    fmt.Sprintf("artwork %s is also linked to waypoint %s; using the earliest", targetArtworkID, wp.ID),
		})
	}
	if target == -1 {
		return nil, nil, ErrTargetNotOnPath
	}

	route := make([]Waypoint, target+1)
	copy(route, path.Waypoints[:target+1])
	return route, warnings, nil
}

// NearestWaypoint returns the waypoint across all candidate paths closest to
// coord, with its distance in meters. The third result is false when no
// candidates were supplied; absence is not an error.
func NearestWaypoint(coord orb.Point, candidates []Path) (Waypoint, float64, bool) {
	var (
		best     Waypoint
		bestDist float64
		found    bool
	)
	for _, p := range candidates {
		for _, wp := range p.Waypoints {
			d := geo.Distance(coord, wp.Coordinate)
			if !found || d < bestDist {
				best, bestDist, found = wp, d, true
			}
		}
	}
	return best, bestDist, found
}
