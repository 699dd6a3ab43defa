package waypoint

import "time"

// Waypoint is the staff-authored record backing nav.Waypoint. MediaHandle
// points into the media store; the backend never opens the clip itself.
type Waypoint struct {
	ID               string    `json:"id"`
	MuseumID         string    `json:"museum_id"`
	ArtworkID        string    `json:"artwork_id,omitempty"`
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	FloorLevel       int       `json:"floor_level"`
	RoomName         string    `json:"room_name"`
	Title            string    `json:"title"`
	VoiceInstruction string    `json:"voice_instruction"`
	SequenceOrder    int       `json:"sequence_order"`
	DistanceToNextM  *float64  `json:"distance_to_next_m,omitempty"`
	WalkSeconds      *int      `json:"walk_seconds,omitempty"`
	MediaHandle      string    `json:"media_handle"`
	Version          int       `json:"version"`
	IsActive         bool      `json:"is_active"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
}

type Path struct {
	ID                string    `json:"id"`
	MuseumID          string    `json:"museum_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Difficulty        string    `json:"difficulty"`
	WaypointIDs       []string  `json:"waypoint_ids"`
	TotalDistanceM    float64   `json:"total_distance_m"`
	ArtworkCount      int       `json:"artwork_count"`
	IsFeatured        bool      `json:"is_featured"`
	IsActive          bool      `json:"is_active"`
	UsageCount        int       `json:"usage_count"`
	AvgCompletionRate float64   `json:"avg_completion_rate"`
	CreatedAt         time.Time `json:"created_at"`
}

// PathRequest is the staff payload for creating or replacing a path.
type PathRequest struct {
	MuseumID          string   `json:"museum_id" validate:"required"`
	Name              string   `json:"name" validate:"required,max=255"`
	Description       string   `json:"description"`
	Difficulty        string   `json:"difficulty" validate:"omitempty,oneof=easy moderate challenging"`
	WaypointIDs       []string `json:"waypoint_ids" validate:"required,min=1,dive,required"`
	OverrideDistances bool     `json:"override_distances"`
	IsFeatured        bool     `json:"is_featured"`
}
