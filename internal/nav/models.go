package nav

import (
	"time"

	"github.com/paulmach/orb"
)

// DefaultArrivalRadiusM is the radius used to judge that a visitor has
// reached a waypoint. Indoor GPS is noisy, so arrival is only ever applied
// on an explicit, server-verified confirmation.
const DefaultArrivalRadiusM = 5.0

type Difficulty string

const (
	DifficultyEasy        Difficulty = "easy"
	DifficultyModerate    Difficulty = "moderate"
	DifficultyChallenging Difficulty = "challenging"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

type AbandonReason string

const (
	ReasonTimeout      AbandonReason = "timeout"
	ReasonExplicitExit AbandonReason = "explicit-exit"
	ReasonError        AbandonReason = "error"
)

// Waypoint is a staff-recorded checkpoint inside the museum. MediaHandle is
// an opaque reference into the media store; the engine never reads it.
type Waypoint struct {
	ID               string
	Coordinate       orb.Point
	FloorLevel       int
	RoomName         string
	ArtworkID        string
	SequenceOrder    int
	DistanceToNextM  *float64
	WalkSeconds      *int
	MediaHandle      string
	Title            string
	VoiceInstruction string
}

// Path is an ordered chain of waypoints. The slice order is authoritative;
// any stored next-waypoint relation is derived from it.
type Path struct {
	ID         string
	Name       string
	Difficulty Difficulty
	Waypoints  []Waypoint
}

type Visit struct {
	WaypointID string    `json:"waypoint_id"`
	At         time.Time `json:"at"`
}

// Session is one visitor's traversal of a route toward a target artwork.
// It is owned by a single client; the engine holds no shared state.
type Session struct {
	ID              string
	VisitorRef      string
	PathID          string
	TargetArtworkID string
	Route           []Waypoint
	CurrentIndex    int
	Visited         []Visit
	CompletionPct   float64
	Status          Status
	AbandonReason   AbandonReason
	StartedAt       time.Time
	EndedAt         time.Time
}

// Guidance is computed per position sample without mutating the session.
type Guidance struct {
	DistanceM  float64 `json:"distance_m"`
	BearingDeg float64 `json:"bearing_deg"`
	Arrived    bool    `json:"arrived"`
}

type Summary struct {
	SessionID     string  `json:"session_id"`
	Status        Status  `json:"status"`
	DurationSec   int64   `json:"duration_sec"`
	VisitedCount  int     `json:"visited_count"`
	CompletionPct float64 `json:"completion_pct"`
}

// Warning is advisory validator output; staff retains override authority.
type Warning struct {
	Code       string `json:"code"`
	WaypointID string `json:"waypoint_id,omitempty"`
	Message    string `json:"message"`
}

type PathStats struct {
	TotalDistanceM float64 `json:"total_distance_m"`
	ArtworkCount   int     `json:"artwork_count"`
}

// CurrentWaypoint returns the waypoint the visitor is being guided toward.
func (s *Session) CurrentWaypoint() Waypoint {
	return s.Route[s.CurrentIndex]
}

func (s *Session) terminal() bool {
	return s.Status != StatusActive
}
