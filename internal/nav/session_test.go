package nav

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestEndToEndNavigation(t *testing.T) {
	path := testPath()
	session, warnings, err := StartSession(path, "art-x", "visitor-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if session.Status != StatusActive || session.CurrentWaypoint().ID != "wp-a" {
		t.Fatalf("new session must be active at the first waypoint")
	}
	if session.CompletionPct != 0 {
		t.Fatalf("new session must start at 0%%")
	}

	// at A
	g, err := session.RecordPosition(path.Waypoints[0].Coordinate, DefaultArrivalRadiusM)
	if err != nil {
		t.Fatalf("record position: %v", err)
	}
	if !g.Arrived || g.DistanceM != 0 {
		t.Fatalf("expected arrival guidance at A, got %+v", g)
	}
	if err := session.ConfirmArrival(path.Waypoints[0].Coordinate, DefaultArrivalRadiusM); err != nil {
		t.Fatalf("confirm at A: %v", err)
	}
	if session.CurrentWaypoint().ID != "wp-b" {
		t.Fatalf("expected advance to B")
	}
	if math.Abs(session.CompletionPct-100.0/3) > 0.01 {
		t.Fatalf("expected 33.3%%, got %v", session.CompletionPct)
	}

	// at B
	if err := session.ConfirmArrival(path.Waypoints[1].Coordinate, DefaultArrivalRadiusM); err != nil {
		t.Fatalf("confirm at B: %v", err)
	}
	if session.CurrentWaypoint().ID != "wp-c" {
		t.Fatalf("expected advance to C")
	}
	if math.Abs(session.CompletionPct-200.0/3) > 0.01 {
		t.Fatalf("expected 66.7%%, got %v", session.CompletionPct)
	}

	// at C, terminal
	if err := session.ConfirmArrival(path.Waypoints[2].Coordinate, DefaultArrivalRadiusM); err != nil {
		t.Fatalf("confirm at C: %v", err)
	}
	if session.Status != StatusCompleted {
		t.Fatalf("expected completed session")
	}
	if session.CompletionPct != 100 {
		t.Fatalf("expected 100%%, got %v", session.CompletionPct)
	}
	if session.EndedAt.IsZero() {
		t.Fatalf("expected end timestamp")
	}
}

func TestConfirmArrivalTooFar(t *testing.T) {
	path := testPath()
	session, _, err := StartSession(path, "art-x", "visitor-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// ~10m north of A, well outside the 5m radius
	err = session.ConfirmArrival(orb.Point{0, metersLat(10)}, DefaultArrivalRadiusM)
	if !errors.Is(err, ErrNotYetArrived) {
		t.Fatalf("expected ErrNotYetArrived, got %v", err)
	}
	if session.CurrentWaypoint().ID != "wp-a" || session.CompletionPct != 0 || len(session.Visited) != 0 {
		t.Fatalf("failed confirmation must not change session state")
	}
}

func TestCompletionMonotonic(t *testing.T) {
	path := testPath()
	session, _, _ := StartSession(path, "art-x", "visitor-1")

	last := session.CompletionPct
	positions := []orb.Point{
		path.Waypoints[0].Coordinate,
		{0, metersLat(50)}, // too far, rejected
		path.Waypoints[1].Coordinate,
		path.Waypoints[2].Coordinate,
	}
	for _, p := range positions {
		_ = session.ConfirmArrival(p, DefaultArrivalRadiusM)
		if session.CompletionPct < last {
			t.Fatalf("completion decreased from %v to %v", last, session.CompletionPct)
		}
		last = session.CompletionPct
	}
}

func TestRecordPositionTerminalSession(t *testing.T) {
	session, _, _ := StartSession(testPath(), "art-x", "visitor-1")
	session.Abandon(ReasonExplicitExit)

	if _, err := session.RecordPosition(orb.Point{0, 0}, DefaultArrivalRadiusM); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("expected ErrInvalidSessionState")
	}
	if err := session.ConfirmArrival(orb.Point{0, 0}, DefaultArrivalRadiusM); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("expected ErrInvalidSessionState on confirm")
	}
}

func TestAbandonIdempotent(t *testing.T) {
	session, _, _ := StartSession(testPath(), "art-x", "visitor-1")

	status := session.Abandon(ReasonTimeout)
	if status != StatusAbandoned || session.AbandonReason != ReasonTimeout {
		t.Fatalf("expected abandoned with timeout reason")
	}
	ended := session.EndedAt

	status = session.Abandon(ReasonExplicitExit)
	if status != StatusAbandoned {
		t.Fatalf("second abandon must return the existing terminal state")
	}
	if session.AbandonReason != ReasonTimeout {
		t.Fatalf("second abandon must not overwrite the reason")
	}
	if !session.EndedAt.Equal(ended) {
		t.Fatalf("second abandon must not change the end timestamp")
	}
}

func TestAbandonAfterCompleteKeepsCompleted(t *testing.T) {
	path := testPath()
	session, _, _ := StartSession(path, "art-x", "visitor-1")
	for _, wp := range path.Waypoints {
		if err := session.ConfirmArrival(wp.Coordinate, DefaultArrivalRadiusM); err != nil {
			t.Fatalf("confirm: %v", err)
		}
	}

	if status := session.Abandon(ReasonTimeout); status != StatusCompleted {
		t.Fatalf("abandon on a completed session must keep it completed")
	}
}

func TestStartSessionUnknownTarget(t *testing.T) {
	if _, _, err := StartSession(testPath(), "art-unknown", "visitor-1"); !errors.Is(err, ErrTargetNotOnPath) {
		t.Fatalf("expected ErrTargetNotOnPath")
	}
}

func TestComputeGuidanceBearing(t *testing.T) {
	target := Waypoint{ID: "wp", Coordinate: orb.Point{0, metersLat(10)}}
	g := ComputeGuidance(orb.Point{0, 0}, target, DefaultArrivalRadiusM)
	if g.Arrived {
		t.Fatalf("10m away must not count as arrived")
	}
	if math.Abs(g.DistanceM-10) > 0.01 {
		t.Fatalf("unexpected distance %v", g.DistanceM)
	}
	if math.Abs(g.BearingDeg-0) > 0.5 {
		t.Fatalf("expected northward bearing, got %v", g.BearingDeg)
	}

	// exactly on target: arrived, bearing pinned to zero
	g = ComputeGuidance(target.Coordinate, target, DefaultArrivalRadiusM)
	if !g.Arrived || g.BearingDeg != 0 || g.DistanceM != 0 {
		t.Fatalf("unexpected on-target guidance %+v", g)
	}
}

func TestSummarize(t *testing.T) {
	path := testPath()
	session, _, _ := StartSession(path, "art-x", "visitor-1")
	_ = session.ConfirmArrival(path.Waypoints[0].Coordinate, DefaultArrivalRadiusM)
	session.Abandon(ReasonExplicitExit)

	sum := session.Summarize()
	if sum.Status != StatusAbandoned || sum.VisitedCount != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if math.Abs(sum.CompletionPct-100.0/3) > 0.01 {
		t.Fatalf("unexpected completion %v", sum.CompletionPct)
	}
}
