package analytics

import "time"

type InteractionKind string

const (
	KindView     InteractionKind = "view"
	KindListen   InteractionKind = "listen"
	KindNavigate InteractionKind = "navigate"
	KindShare    InteractionKind = "share"
)

type Interaction struct {
	ID          string          `json:"id"`
	MuseumID    string          `json:"museum_id"`
	ArtworkID   string          `json:"artwork_id"`
	VisitorRef  string          `json:"visitor_ref"`
	Kind        InteractionKind `json:"kind"`
	DurationSec int             `json:"duration_sec"`
	CreatedAt   time.Time       `json:"created_at"`
}

type PathUsage struct {
	PathID            string  `json:"path_id"`
	Name              string  `json:"name"`
	UsageCount        int     `json:"usage_count"`
	AvgCompletionRate float64 `json:"avg_completion_rate"`
}

type ArtworkPopularity struct {
	ArtworkID        string `json:"artwork_id"`
	Title            string `json:"title"`
	InteractionCount int    `json:"interaction_count"`
}

// MuseumAnalytics is the aggregate dashboard payload. It is recomputed from
// the session and interaction tables and cached for a short window.
type MuseumAnalytics struct {
	MuseumID          string              `json:"museum_id"`
	TotalSessions     int                 `json:"total_sessions"`
	CompletedSessions int                 `json:"completed_sessions"`
	AbandonedSessions int                 `json:"abandoned_sessions"`
	CompletionRate    float64             `json:"completion_rate"`
	AvgDurationSec    float64             `json:"avg_duration_sec"`
	TopPaths          []PathUsage         `json:"top_paths"`
	TopArtworks       []ArtworkPopularity `json:"top_artworks"`
	GeneratedAt       time.Time           `json:"generated_at"`
}
