package artwork

import (
	"context"
	"fmt"

	"backend-artscope/internal/db"
	"backend-artscope/internal/geo"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, input Artwork) (Artwork, error) {
	if _, err := geo.NewCoordinate(input.Lat, input.Lng); err != nil {
		return Artwork{}, err
	}
	input.ID = uuid.NewString()
	if input.GeofenceRadiusM <= 0 {
		input.GeofenceRadiusM = 50
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO artworks (id, museum_id, title, artist_name, description, location, floor_level, room_name, geofence_radius_m, is_on_display)
		VALUES ($1,$2,$3,$4,$5, ST_SetSRID(ST_MakePoint($6,$7), 4326)::geography, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, input.ID, input.MuseumID, input.Title, input.ArtistName, input.Description, input.Lng, input.Lat, input.FloorLevel, input.RoomName, input.GeofenceRadiusM, input.IsOnDisplay)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Artwork{}, err
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Artwork, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, museum_id, title, artist_name, description, ST_Y(location::geometry), ST_X(location::geometry),
		       floor_level, COALESCE(room_name,''), geofence_radius_m, is_on_display, created_at, updated_at
		FROM artworks WHERE id=$1
	`, id)
	var a Artwork
	if err := row.Scan(&a.ID, &a.MuseumID, &a.Title, &a.ArtistName, &a.Description, &a.Lat, &a.Lng, &a.FloorLevel, &a.RoomName, &a.GeofenceRadiusM, &a.IsOnDisplay, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Artwork{}, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Artwork) (Artwork, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return Artwork{}, err
	}
	if patch.Title != "" {
		a.Title = patch.Title
	}
	if patch.ArtistName != "" {
		a.ArtistName = patch.ArtistName
	}
	if patch.Description != "" {
		a.Description = patch.Description
	}
	if patch.Lat != 0 || patch.Lng != 0 {
		a.Lat = patch.Lat
		a.Lng = patch.Lng
	}
	if patch.FloorLevel != 0 {
		a.FloorLevel = patch.FloorLevel
	}
	if patch.RoomName != "" {
		a.RoomName = patch.RoomName
	}
	if patch.GeofenceRadiusM > 0 {
		a.GeofenceRadiusM = patch.GeofenceRadiusM
	}
	a.IsOnDisplay = patch.IsOnDisplay

	_, err = s.db.Exec(ctx, `
		UPDATE artworks
		SET title=$2, artist_name=$3, description=$4,
		    location=ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography,
		    floor_level=$7, room_name=$8, geofence_radius_m=$9, is_on_display=$10, updated_at=NOW()
		WHERE id=$1
	`, a.ID, a.Title, a.ArtistName, a.Description, a.Lng, a.Lat, a.FloorLevel, a.RoomName, a.GeofenceRadiusM, a.IsOnDisplay)
	if err != nil {
		return Artwork{}, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM artworks WHERE id=$1`, id)
	return err
}

func (s *Service) List(ctx context.Context, museumID string) ([]Artwork, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, museum_id, title, artist_name, description, ST_Y(location::geometry), ST_X(location::geometry),
		       floor_level, COALESCE(room_name,''), geofence_radius_m, is_on_display, created_at, updated_at
		FROM artworks WHERE museum_id=$1 AND is_on_display
		ORDER BY floor_level, room_name, title
	`, museumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artworks []Artwork
	for rows.Next() {
		var a Artwork
		if err := rows.Scan(&a.ID, &a.MuseumID, &a.Title, &a.ArtistName, &a.Description, &a.Lat, &a.Lng, &a.FloorLevel, &a.RoomName, &a.GeofenceRadiusM, &a.IsOnDisplay, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		artworks = append(artworks, a)
	}
	return artworks, nil
}

func (s *Service) Nearby(ctx context.Context, lat, lng, radiusM float64) ([]Artwork, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, museum_id, title, artist_name, description, ST_Y(location::geometry), ST_X(location::geometry),
		       floor_level, COALESCE(room_name,''), geofence_radius_m, is_on_display, created_at, updated_at
		FROM artworks
		WHERE is_on_display AND ST_DWithin(location, ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography, $3)
		ORDER BY location <-> ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography
	`, lng, lat, radiusM)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artworks []Artwork
	for rows.Next() {
		var a Artwork
		if err := rows.Scan(&a.ID, &a.MuseumID, &a.Title, &a.ArtistName, &a.Description, &a.Lat, &a.Lng, &a.FloorLevel, &a.RoomName, &a.GeofenceRadiusM, &a.IsOnDisplay, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		artworks = append(artworks, a)
	}
	return artworks, nil
}

// CheckGeofence verifies a visitor position against the artwork's unlock
// radius and produces the visitor-facing distance message.
func (s *Service) CheckGeofence(ctx context.Context, artworkID string, lat, lng float64) (GeofenceResult, error) {
	visitor, err := geo.NewCoordinate(lat, lng)
	if err != nil {
		return GeofenceResult{}, err
	}
	a, err := s.Get(ctx, artworkID)
	if err != nil {
		return GeofenceResult{}, err
	}
	target, err := geo.NewCoordinate(a.Lat, a.Lng)
	if err != nil {
		return GeofenceResult{}, err
	}

	dist := geo.Distance(visitor, target)
	allowed := dist <= a.GeofenceRadiusM
	msg := "Access granted"
	if !allowed {
		msg = distanceMessage(dist)
	}
	return GeofenceResult{Allowed: allowed, DistanceM: dist, Message: msg}, nil
}

func distanceMessage(distanceM float64) string {
	switch {
	case distanceM < 50:
		return "You're very close! Look around."
	case distanceM < 100:
		return "You're nearby. Walk a bit closer."
	case distanceM < 1000:
		return fmt.Sprintf("You're %dm away from the museum.", int(distanceM))
	default:
		return fmt.Sprintf("You're %.1fkm away from the museum.", distanceM/1000)
	}
}
