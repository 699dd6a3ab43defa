package navigation

import (
	"time"

	"backend-artscope/internal/nav"
)

type StartRequest struct {
	VisitorRef      string `json:"visitor_ref"`
	PathID          string `json:"path_id"`
	TargetArtworkID string `json:"target_artwork_id"`
}

type PositionRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type AbandonRequest struct {
	Reason string `json:"reason"`
}

type WaypointView struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	RoomName         string  `json:"room_name"`
	FloorLevel       int     `json:"floor_level"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	MediaHandle      string  `json:"media_handle"`
	VoiceInstruction string  `json:"voice_instruction"`
}

// SessionView is the client-facing projection of a navigation session.
type SessionView struct {
	ID              string       `json:"id"`
	PathID          string       `json:"path_id"`
	TargetArtworkID string       `json:"target_artwork_id"`
	Status          nav.Status   `json:"status"`
	CurrentWaypoint WaypointView `json:"current_waypoint"`
	CompletionPct   float64      `json:"completion_pct"`
	VisitedCount    int          `json:"visited_count"`
	RouteLength     int          `json:"route_length"`
	StartedAt       time.Time    `json:"started_at"`
	EndedAt         *time.Time   `json:"ended_at,omitempty"`
}

func viewOf(s *nav.Session) SessionView {
	wp := s.Route[s.CurrentIndex]
	view := SessionView{
		ID:              s.ID,
		PathID:          s.PathID,
		TargetArtworkID: s.TargetArtworkID,
		Status:          s.Status,
		CurrentWaypoint: WaypointView{
			ID:               wp.ID,
			Title:            wp.Title,
			RoomName:         wp.RoomName,
			FloorLevel:       wp.FloorLevel,
			Lat:              wp.Coordinate.Lat(),
			Lng:              wp.Coordinate.Lon(),
			MediaHandle:      wp.MediaHandle,
			VoiceInstruction: wp.VoiceInstruction,
		},
		CompletionPct: s.CompletionPct,
		VisitedCount:  len(s.Visited),
		RouteLength:   len(s.Route),
		StartedAt:     s.StartedAt,
	}
	if !s.EndedAt.IsZero() {
		ended := s.EndedAt
		view.EndedAt = &ended
	}
	return view
}
