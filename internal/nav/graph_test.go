package nav

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

func floatPtr(v float64) *float64 { return &v }

// metersLat converts a northward offset in meters to degrees of latitude.
func metersLat(m float64) float64 { return m / 111194.93 }

func testPath() Path {
	return Path{
		ID:         "path-1",
		Name:       "Highlights Tour",
		Difficulty: DifficultyEasy,
		Waypoints: []Waypoint{
			{ID: "wp-a", Coordinate: orb.Point{0, 0}, SequenceOrder: 0, DistanceToNextM: floatPtr(10)},
			{ID: "wp-b", Coordinate: orb.Point{0, metersLat(10)}, SequenceOrder: 1, ArtworkID: "art-y", DistanceToNextM: floatPtr(15)},
			{ID: "wp-c", Coordinate: orb.Point{0, metersLat(25)}, SequenceOrder: 2, ArtworkID: "art-x"},
		},
	}
}

func TestResolvePathFullRoute(t *testing.T) {
	route, warnings, err := ResolvePath(testPath(), "art-x")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(route) != 3 {
		t.Fatalf("expected full route, got %d waypoints", len(route))
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if route[2].ID != "wp-c" {
		t.Fatalf("route must end at the target waypoint")
	}
}

func TestResolvePathMidRoute(t *testing.T) {
	route, _, err := ResolvePath(testPath(), "art-y")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(route) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(route))
	}
}

func TestResolvePathFirstWaypointTarget(t *testing.T) {
	path := testPath()
	path.Waypoints[0].ArtworkID = "art-first"
	route, _, err := ResolvePath(path, "art-first")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(route) != 1 {
		t.Fatalf("expected length-1 route, got %d", len(route))
	}
}

func TestResolvePathTargetMissing(t *testing.T) {
	if _, _, err := ResolvePath(testPath(), "art-unknown"); !errors.Is(err, ErrTargetNotOnPath) {
		t.Fatalf("expected ErrTargetNotOnPath, got %v", err)
	}
}

func TestResolvePathEmptyTarget(t *testing.T) {
	// an empty artwork id must never match unlinked waypoints
	if _, _, err := ResolvePath(testPath(), ""); !errors.Is(err, ErrTargetNotOnPath) {
		t.Fatalf("expected ErrTargetNotOnPath for empty target, got %v", err)
	}
}

func TestResolvePathDuplicateLinkWarns(t *testing.T) {
	path := testPath()
	path.Waypoints[0].ArtworkID = "art-x"
	route, warnings, err := ResolvePath(path, "art-x")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(route) != 1 || route[0].ID != "wp-a" {
		t.Fatalf("expected earliest-sequenced waypoint to win")
	}
	if len(warnings) != 1 || warnings[0].Code != "duplicate-artwork-link" {
		t.Fatalf("expected duplicate-link warning, got %v", warnings)
	}
}

func TestResolvePathEmpty(t *testing.T) {
	if _, _, err := ResolvePath(Path{ID: "p"}, "art-x"); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}

func TestNearestWaypoint(t *testing.T) {
	wp, dist, ok := NearestWaypoint(orb.Point{0, metersLat(11)}, []Path{testPath()})
	if !ok {
		t.Fatalf("expected a result")
	}
	if wp.ID != "wp-b" {
		t.Fatalf("expected wp-b nearest, got %s", wp.ID)
	}
	if dist < 0.5 || dist > 1.5 {
		t.Fatalf("unexpected distance %v", dist)
	}
}

func TestNearestWaypointNoCandidates(t *testing.T) {
	if _, _, ok := NearestWaypoint(orb.Point{0, 0}, nil); ok {
		t.Fatalf("expected no result for empty candidates")
	}
}
