package nav

import (
	"time"

	"backend-artscope/internal/geo"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// StartSession resolves the route to the target artwork and opens an active
// session positioned at the path's first waypoint.
func StartSession(path Path, targetArtworkID, visitorRef string) (*Session, []Warning, error) {
	route, warnings, err := ResolvePath(path, targetArtworkID)
	if err != nil {
		return nil, nil, err
	}

	return &Session{
		ID:              uuid.NewString(),
		VisitorRef:      visitorRef,
		PathID:          path.ID,
		TargetArtworkID: targetArtworkID,
		Route:           route,
		CurrentIndex:    0,
		CompletionPct:   0,
		Status:          StatusActive,
		StartedAt:       time.Now(),
	}, warnings, nil
}

// ComputeGuidance returns live guidance from position toward target. Pure:
// callable on every position sample without touching session state. Bearing
// is zero when the position sits exactly on the target.
func ComputeGuidance(position orb.Point, target Waypoint, arrivalRadiusM float64) Guidance {
	bearing, err := geo.Bearing(position, target.Coordinate)
	if err != nil {
		bearing = 0
	}
	arrived, _ := geo.WithinRadius(position, target.Coordinate, arrivalRadiusM)
	return Guidance{
		DistanceM:  geo.Distance(position, target.Coordinate),
		BearingDeg: bearing,
		Arrived:    arrived,
	}
}

// RecordPosition computes guidance toward the current waypoint. It never
// advances progress; only ConfirmArrival does.
func (s *Session) RecordPosition(position orb.Point, arrivalRadiusM float64) (Guidance, error) {
	if s.terminal() {
		return Guidance{}, ErrInvalidSessionState
	}
	return ComputeGuidance(position, s.CurrentWaypoint(), arrivalRadiusM), nil
}

// ConfirmArrival verifies server-side that the visitor is within the arrival
// radius of the current waypoint, then advances the session. On the terminal
// waypoint of the route it completes the session.
func (s *Session) ConfirmArrival(position orb.Point, arrivalRadiusM float64) error {
	if s.terminal() {
		return ErrInvalidSessionState
	}

	current := s.CurrentWaypoint()
	ok, err := geo.WithinRadius(position, current.Coordinate, arrivalRadiusM)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotYetArrived
	}

	now := time.Now()
	s.Visited = append(s.Visited, Visit{WaypointID: current.ID, At: now})
	s.CompletionPct = float64(s.distinctVisited()) / float64(len(s.Route)) * 100

	if s.CurrentIndex == len(s.Route)-1 {
		s.Status = StatusCompleted
		s.EndedAt = now
		return nil
	}
	s.CurrentIndex++
	return nil
}

// Abandon finalizes an active session. Calling it on a session that is
// already terminal is a no-op returning the existing terminal status, so
// unreliable clients may deliver it more than once.
func (s *Session) Abandon(reason AbandonReason) Status {
	if s.terminal() {
		return s.Status
	}
	s.Status = StatusAbandoned
	s.AbandonReason = reason
	s.EndedAt = time.Now()
	return s.Status
}

// Summarize produces the session summary handed to analytics on finalization.
func (s *Session) Summarize() Summary {
	end := s.EndedAt
	if end.IsZero() {
		end = time.Now()
	}
	return Summary{
		SessionID:     s.ID,
		Status:        s.Status,
		DurationSec:   int64(end.Sub(s.StartedAt).Seconds()),
		VisitedCount:  s.distinctVisited(),
		CompletionPct: s.CompletionPct,
	}
}

func (s *Session) distinctVisited() int {
	seen := make(map[string]struct{}, len(s.Visited))
	for _, v := range s.Visited {
		seen[v.WaypointID] = struct{}{}
	}
	return len(seen)
}
