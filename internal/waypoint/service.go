package waypoint

import (
	"context"
	"encoding/json"
	"errors"

	"backend-artscope/internal/db"
	"backend-artscope/internal/geo"
	"backend-artscope/internal/nav"

	"github.com/google/uuid"
)

var ErrWaypointInUse = errors.New("waypoint is referenced by navigation sessions")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateWaypoint(ctx context.Context, input Waypoint) (Waypoint, error) {
	if _, err := geo.NewCoordinate(input.Lat, input.Lng); err != nil {
		return Waypoint{}, err
	}
	input.ID = uuid.NewString()
	input.Version = 1
	input.IsActive = true
	row := s.db.QueryRow(ctx, `
		INSERT INTO nav_waypoints (id, museum_id, artwork_id, location, floor_level, room_name, title, voice_instruction,
		                           sequence_order, distance_to_next_m, walk_seconds, media_handle, version, is_active, created_by)
		VALUES ($1,$2,NULLIF($3,''), ST_SetSRID(ST_MakePoint($4,$5), 4326)::geography, $6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING created_at
	`, input.ID, input.MuseumID, input.ArtworkID, input.Lng, input.Lat, input.FloorLevel, input.RoomName, input.Title,
		input.VoiceInstruction, input.SequenceOrder, input.DistanceToNextM, input.WalkSeconds, input.MediaHandle,
		input.Version, input.IsActive, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Waypoint{}, err
	}
	return input, nil
}

const waypointColumns = `
	id, museum_id, COALESCE(artwork_id::text,''), ST_Y(location::geometry), ST_X(location::geometry),
	floor_level, COALESCE(room_name,''), title, COALESCE(voice_instruction,''), sequence_order,
	distance_to_next_m, walk_seconds, COALESCE(media_handle,''), version, is_active, COALESCE(created_by::text,''), created_at`

func scanWaypoint(row interface{ Scan(...any) error }) (Waypoint, error) {
	var wp Waypoint
	err := row.Scan(&wp.ID, &wp.MuseumID, &wp.ArtworkID, &wp.Lat, &wp.Lng, &wp.FloorLevel, &wp.RoomName, &wp.Title,
		&wp.VoiceInstruction, &wp.SequenceOrder, &wp.DistanceToNextM, &wp.WalkSeconds, &wp.MediaHandle,
		&wp.Version, &wp.IsActive, &wp.CreatedBy, &wp.CreatedAt)
	return wp, err
}

func (s *Service) GetWaypoint(ctx context.Context, id string) (Waypoint, error) {
	row := s.db.QueryRow(ctx, `SELECT`+waypointColumns+` FROM nav_waypoints WHERE id=$1`, id)
	return scanWaypoint(row)
}

func (s *Service) ListWaypoints(ctx context.Context, museumID string) ([]Waypoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+waypointColumns+`
		FROM nav_waypoints WHERE museum_id=$1 AND is_active
		ORDER BY floor_level, sequence_order
	`, museumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waypoints []Waypoint
	for rows.Next() {
		wp, err := scanWaypoint(rows)
		if err != nil {
			return nil, err
		}
		waypoints = append(waypoints, wp)
	}
	return waypoints, nil
}

// referencedByActiveSession reports whether any in-progress visitor session
// is routed through the waypoint. Such waypoints must not mutate in place.
func (s *Service) referencedByActiveSession(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM nav_sessions
			WHERE status = 'active' AND route @> to_jsonb($1::text)
		)
	`, id).Scan(&ok)
	return ok, err
}

// UpdateWaypoint patches a waypoint. If an active session references it, the
// edit lands as a new version row and the old one is retired, so in-flight
// routes keep the coordinates they started with.
func (s *Service) UpdateWaypoint(ctx context.Context, id string, patch Waypoint) (Waypoint, error) {
	wp, err := s.GetWaypoint(ctx, id)
	if err != nil {
		return Waypoint{}, err
	}
	applyPatch(&wp, patch)
	if _, err := geo.NewCoordinate(wp.Lat, wp.Lng); err != nil {
		return Waypoint{}, err
	}

	referenced, err := s.referencedByActiveSession(ctx, id)
	if err != nil {
		return Waypoint{}, err
	}

	if referenced {
		next := wp
		next.ID = uuid.NewString()
		next.Version = wp.Version + 1
		row := s.db.QueryRow(ctx, `
			WITH retired AS (
				UPDATE nav_waypoints SET is_active=false WHERE id=$2
			)
			INSERT INTO nav_waypoints (id, museum_id, artwork_id, location, floor_level, room_name, title, voice_instruction,
			                           sequence_order, distance_to_next_m, walk_seconds, media_handle, version, is_active, created_by)
			VALUES ($1,$3,NULLIF($4,''), ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography, $7,$8,$9,$10,$11,$12,$13,$14,$15,true,NULLIF($16,''))
			RETURNING created_at
		`, next.ID, id, next.MuseumID, next.ArtworkID, next.Lng, next.Lat, next.FloorLevel, next.RoomName, next.Title,
			next.VoiceInstruction, next.SequenceOrder, next.DistanceToNextM, next.WalkSeconds, next.MediaHandle,
			next.Version, next.CreatedBy)
		if err := row.Scan(&next.CreatedAt); err != nil {
			return Waypoint{}, err
		}
		next.IsActive = true
		return next, nil
	}

	_, err = s.db.Exec(ctx, `
		UPDATE nav_waypoints
		SET artwork_id=NULLIF($2,''), location=ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography,
		    floor_level=$5, room_name=$6, title=$7, voice_instruction=$8, sequence_order=$9,
		    distance_to_next_m=$10, walk_seconds=$11, media_handle=$12
		WHERE id=$1
	`, wp.ID, wp.ArtworkID, wp.Lng, wp.Lat, wp.FloorLevel, wp.RoomName, wp.Title, wp.VoiceInstruction,
		wp.SequenceOrder, wp.DistanceToNextM, wp.WalkSeconds, wp.MediaHandle)
	if err != nil {
		return Waypoint{}, err
	}
	return wp, nil
}

func (s *Service) DeleteWaypoint(ctx context.Context, id string) error {
	var referenced bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM nav_sessions WHERE route @> to_jsonb($1::text))
	`, id).Scan(&referenced)
	if err != nil {
		return err
	}
	if referenced {
		return ErrWaypointInUse
	}
	_, err = s.db.Exec(ctx, `DELETE FROM nav_waypoints WHERE id=$1`, id)
	return err
}

// CreatePath validates the waypoint sequence through the navigation engine
// and persists the path with its derived totals. Validator warnings are
// returned to the staff client alongside the created path.
func (s *Service) CreatePath(ctx context.Context, req PathRequest) (Path, []nav.Warning, error) {
	navPath, err := s.buildNavPath(ctx, "", req.WaypointIDs)
	if err != nil {
		return Path{}, nil, err
	}
	stats, warnings, err := nav.ValidatePath(navPath, req.OverrideDistances)
	if err != nil {
		return Path{}, nil, err
	}

	if req.Difficulty == "" {
		req.Difficulty = string(nav.DifficultyEasy)
	}
	path := Path{
		ID:             uuid.NewString(),
		MuseumID:       req.MuseumID,
		Name:           req.Name,
		Description:    req.Description,
		Difficulty:     req.Difficulty,
		WaypointIDs:    req.WaypointIDs,
		TotalDistanceM: stats.TotalDistanceM,
		ArtworkCount:   stats.ArtworkCount,
		IsFeatured:     req.IsFeatured,
		IsActive:       true,
	}

	seq, err := json.Marshal(path.WaypointIDs)
	if err != nil {
		return Path{}, nil, err
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO nav_paths (id, museum_id, name, description, difficulty, waypoint_sequence, total_distance_m, artwork_count, is_featured, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at
	`, path.ID, path.MuseumID, path.Name, path.Description, path.Difficulty, seq, path.TotalDistanceM, path.ArtworkCount, path.IsFeatured, path.IsActive)
	if err := row.Scan(&path.CreatedAt); err != nil {
		return Path{}, nil, err
	}
	return path, warnings, nil
}

func (s *Service) UpdatePath(ctx context.Context, id string, req PathRequest) (Path, []nav.Warning, error) {
	path, err := s.GetPath(ctx, id)
	if err != nil {
		return Path{}, nil, err
	}

	navPath, err := s.buildNavPath(ctx, id, req.WaypointIDs)
	if err != nil {
		return Path{}, nil, err
	}
	stats, warnings, err := nav.ValidatePath(navPath, req.OverrideDistances)
	if err != nil {
		return Path{}, nil, err
	}

	if req.Name != "" {
		path.Name = req.Name
	}
	if req.Description != "" {
		path.Description = req.Description
	}
	if req.Difficulty != "" {
		path.Difficulty = req.Difficulty
	}
	path.WaypointIDs = req.WaypointIDs
	path.TotalDistanceM = stats.TotalDistanceM
	path.ArtworkCount = stats.ArtworkCount
	path.IsFeatured = req.IsFeatured

	seq, err := json.Marshal(path.WaypointIDs)
	if err != nil {
		return Path{}, nil, err
	}
	_, err = s.db.Exec(ctx, `
		UPDATE nav_paths
		SET name=$2, description=$3, difficulty=$4, waypoint_sequence=$5, total_distance_m=$6, artwork_count=$7, is_featured=$8, updated_at=NOW()
		WHERE id=$1
	`, path.ID, path.Name, path.Description, path.Difficulty, seq, path.TotalDistanceM, path.ArtworkCount, path.IsFeatured)
	if err != nil {
		return Path{}, nil, err
	}
	return path, warnings, nil
}

func (s *Service) GetPath(ctx context.Context, id string) (Path, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, museum_id, name, COALESCE(description,''), difficulty, waypoint_sequence,
		       total_distance_m, artwork_count, is_featured, is_active, usage_count, avg_completion_rate, created_at
		FROM nav_paths WHERE id=$1
	`, id)
	var p Path
	var seq []byte
	if err := row.Scan(&p.ID, &p.MuseumID, &p.Name, &p.Description, &p.Difficulty, &seq, &p.TotalDistanceM,
		&p.ArtworkCount, &p.IsFeatured, &p.IsActive, &p.UsageCount, &p.AvgCompletionRate, &p.CreatedAt); err != nil {
		return Path{}, err
	}
	if err := json.Unmarshal(seq, &p.WaypointIDs); err != nil {
		return Path{}, err
	}
	return p, nil
}

func (s *Service) ListPaths(ctx context.Context, museumID string) ([]Path, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, museum_id, name, COALESCE(description,''), difficulty, waypoint_sequence,
		       total_distance_m, artwork_count, is_featured, is_active, usage_count, avg_completion_rate, created_at
		FROM nav_paths WHERE museum_id=$1 AND is_active
		ORDER BY is_featured DESC, usage_count DESC
	`, museumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []Path
	for rows.Next() {
		var p Path
		var seq []byte
		if err := rows.Scan(&p.ID, &p.MuseumID, &p.Name, &p.Description, &p.Difficulty, &seq, &p.TotalDistanceM,
			&p.ArtworkCount, &p.IsFeatured, &p.IsActive, &p.UsageCount, &p.AvgCompletionRate, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(seq, &p.WaypointIDs); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// buildNavPath loads the waypoint rows for an ordered id list and assembles
// the engine's Path value, preserving the requested order.
func (s *Service) buildNavPath(ctx context.Context, pathID string, waypointIDs []string) (nav.Path, error) {
	if len(waypointIDs) == 0 {
		return nav.Path{ID: pathID}, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT`+waypointColumns+`
		FROM nav_waypoints WHERE id = ANY($1)
	`, waypointIDs)
	if err != nil {
		return nav.Path{}, err
	}
	defer rows.Close()

	byID := make(map[string]Waypoint, len(waypointIDs))
	for rows.Next() {
		wp, err := scanWaypoint(rows)
		if err != nil {
			return nav.Path{}, err
		}
		byID[wp.ID] = wp
	}

	navPath := nav.Path{ID: pathID, Waypoints: make([]nav.Waypoint, 0, len(waypointIDs))}
	for i, id := range waypointIDs {
		wp, ok := byID[id]
		if !ok {
			return nav.Path{}, errors.New("unknown waypoint " + id)
		}
		coord, err := geo.NewCoordinate(wp.Lat, wp.Lng)
		if err != nil {
			return nav.Path{}, err
		}
		navPath.Waypoints = append(navPath.Waypoints, nav.Waypoint{
			ID:               wp.ID,
			Coordinate:       coord,
			FloorLevel:       wp.FloorLevel,
			RoomName:         wp.RoomName,
			ArtworkID:        wp.ArtworkID,
			SequenceOrder:    i,
			DistanceToNextM:  wp.DistanceToNextM,
			WalkSeconds:      wp.WalkSeconds,
			MediaHandle:      wp.MediaHandle,
			Title:            wp.Title,
			VoiceInstruction: wp.VoiceInstruction,
		})
	}
	return navPath, nil
}

func applyPatch(wp *Waypoint, patch Waypoint) {
	if patch.ArtworkID != "" {
		wp.ArtworkID = patch.ArtworkID
	}
	if patch.Lat != 0 || patch.Lng != 0 {
		wp.Lat = patch.Lat
		wp.Lng = patch.Lng
	}
	if patch.FloorLevel != 0 {
		wp.FloorLevel = patch.FloorLevel
	}
	if patch.RoomName != "" {
		wp.RoomName = patch.RoomName
	}
	if patch.Title != "" {
		wp.Title = patch.Title
	}
	if patch.VoiceInstruction != "" {
		wp.VoiceInstruction = patch.VoiceInstruction
	}
	if patch.SequenceOrder != 0 {
		wp.SequenceOrder = patch.SequenceOrder
	}
	if patch.DistanceToNextM != nil {
		wp.DistanceToNextM = patch.DistanceToNextM
	}
	if patch.WalkSeconds != nil {
		wp.WalkSeconds = patch.WalkSeconds
	}
	if patch.MediaHandle != "" {
		wp.MediaHandle = patch.MediaHandle
	}
}
