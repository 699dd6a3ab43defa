package nav

import (
	"fmt"

	"backend-artscope/internal/geo"
)

// distanceToleranceFactor bounds how far a staff-measured segment distance
// may differ from the straight-line distance before it is flagged. Walked
// distance around walls and stairs legitimately exceeds the great-circle
// distance, so the factor is generous.
const distanceToleranceFactor = 10.0

// ValidatePath checks a path once, at authoring time, before persistence.
// Structural defects are errors; implausible distances are warnings unless
// the segment is negative. With overrideDistances set, staff suppresses the
// plausibility warnings (they measured around obstacles).
func ValidatePath(path Path, overrideDistances bool) (PathStats, []Warning, error) {
	if len(path.Waypoints) == 0 {
		return PathStats{}, nil, ErrEmptyPath
	}

	seen := make(map[string]struct{}, len(path.Waypoints))
	for _, wp := range path.Waypoints {
		if _, dup := seen[wp.ID]; dup {
			return PathStats{}, nil, ErrCyclicPath
		}
		seen[wp.ID] = struct{}{}
	}

	var stats PathStats
	var warnings []Warning
	for i, wp := range path.Waypoints {
		if wp.ArtworkID != "" {
			stats.ArtworkCount++
		}

		last := i == len(path.Waypoints)-1
		if last {
			if wp.DistanceToNextM != nil || wp.WalkSeconds != nil {
				warnings = append(warnings, Warning{
					Code:       "dangling-segment",
					WaypointID: wp.ID,
					Message:    "terminal waypoint carries distance or time to a next waypoint that does not exist",
				})
			}
			continue
		}

		if wp.DistanceToNextM == nil {
			return PathStats{}, nil, ErrMissingSegment
		}
		stored := *wp.DistanceToNextM
		if stored < 0 {
			return PathStats{}, nil, ErrNegativeDistance
		}
		stats.TotalDistanceM += stored

		if overrideDistances {
			continue
		}
		straight := geo.Distance(wp.Coordinate, path.Waypoints[i+1].Coordinate)
		if straight > 0 && (stored > straight*distanceToleranceFactor || stored*distanceToleranceFactor < straight) {
			warnings = append(warnings, Warning{
				Code:       "implausible-distance",
				WaypointID: wp.ID,
				Message:    fmt.Sprintf("stored segment distance %.1fm deviates from straight-line %.1fm by more than %vx", stored, straight, distanceToleranceFactor),
			})
		}
	}

	return stats, warnings, nil
}
