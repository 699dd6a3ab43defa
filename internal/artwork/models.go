package artwork

import "time"

type Artwork struct {
	ID              string    `json:"id"`
	MuseumID        string    `json:"museum_id"`
	Title           string    `json:"title"`
	ArtistName      string    `json:"artist_name"`
	Description     string    `json:"description"`
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
	FloorLevel      int       `json:"floor_level"`
	RoomName        string    `json:"room_name"`
	GeofenceRadiusM float64   `json:"geofence_radius_m"`
	IsOnDisplay     bool      `json:"is_on_display"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GeofenceResult reports whether a visitor position unlocks an artwork.
type GeofenceResult struct {
	Allowed   bool    `json:"allowed"`
	DistanceM float64 `json:"distance_m"`
	Message   string  `json:"message"`
}
