package navigation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-artscope/internal/db"
	"backend-artscope/internal/geo"
	"backend-artscope/internal/nav"
	"backend-artscope/internal/stream"

	"github.com/patrickmn/go-cache"
)

var (
	ErrSessionNotFound = errors.New("navigation session not found")
	ErrNoWaypoints     = errors.New("museum has no active waypoints")
)

// Service drives visitor navigation sessions: it loads paths, runs the
// engine's state machine, persists every transition, and pushes live
// guidance to websocket followers through the hub.
type Service struct {
	db        db.Querier
	hub       *stream.Hub
	pathCache *cache.Cache
	radiusM   float64
}

func NewService(database db.Querier, hub *stream.Hub, arrivalRadiusM float64) *Service {
	if arrivalRadiusM <= 0 {
		arrivalRadiusM = nav.DefaultArrivalRadiusM
	}
	return &Service{
		db:        database,
		hub:       hub,
		pathCache: cache.New(5*time.Minute, 10*time.Minute),
		radiusM:   arrivalRadiusM,
	}
}

func (s *Service) StartSession(ctx context.Context, req StartRequest) (SessionView, []nav.Warning, error) {
	path, err := s.loadPath(ctx, req.PathID)
	if err != nil {
		return SessionView{}, nil, err
	}

	session, warnings, err := nav.StartSession(path, req.TargetArtworkID, req.VisitorRef)
	if err != nil {
		return SessionView{}, nil, err
	}

	route := make([]string, len(session.Route))
	for i, wp := range session.Route {
		route[i] = wp.ID
	}
	routeJSON, err := json.Marshal(route)
	if err != nil {
		return SessionView{}, nil, err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO nav_sessions (id, visitor_ref, path_id, target_artwork_id, route, current_index,
		                          visited, completion_pct, status, started_at, last_position_at)
		VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,'[]',$7,$8,$9,$9)
	`, session.ID, session.VisitorRef, session.PathID, session.TargetArtworkID, routeJSON,
		session.CurrentIndex, session.CompletionPct, string(session.Status), session.StartedAt)
	if err != nil {
		return SessionView{}, nil, err
	}
	return viewOf(session), warnings, nil
}

// RecordPosition computes guidance for a raw GPS sample. It never advances
// the route; arrival only happens through ConfirmArrival. The guidance is
// also fanned out to anyone streaming the session.
func (s *Service) RecordPosition(ctx context.Context, sessionID string, req PositionRequest) (nav.Guidance, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nav.Guidance{}, err
	}
	position, err := geo.NewCoordinate(req.Lat, req.Lng)
	if err != nil {
		return nav.Guidance{}, err
	}

	guidance, err := session.RecordPosition(position, s.radiusM)
	if err != nil {
		return nav.Guidance{}, err
	}

	_, err = s.db.Exec(ctx, `UPDATE nav_sessions SET last_position_at=NOW() WHERE id=$1`, sessionID)
	if err != nil {
		return nav.Guidance{}, err
	}

	if s.hub != nil {
		if payload, merr := json.Marshal(guidance); merr == nil {
			s.hub.Broadcast(sessionID, payload)
		}
	}
	return guidance, nil
}

// ConfirmArrival re-verifies the visitor's position server-side and, when it
// holds, advances the session and persists the new state. Completing the
// final waypoint finalizes the session and refreshes the path's aggregates.
func (s *Service) ConfirmArrival(ctx context.Context, sessionID string, req PositionRequest) (SessionView, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	position, err := geo.NewCoordinate(req.Lat, req.Lng)
	if err != nil {
		return SessionView{}, err
	}

	if err := session.ConfirmArrival(position, s.radiusM); err != nil {
		return SessionView{}, err
	}

	visitedJSON, err := json.Marshal(session.Visited)
	if err != nil {
		return SessionView{}, err
	}
	var endedAt *time.Time
	if !session.EndedAt.IsZero() {
		endedAt = &session.EndedAt
	}
	_, err = s.db.Exec(ctx, `
		UPDATE nav_sessions
		SET current_index=$2, visited=$3, completion_pct=$4, status=$5, ended_at=$6, last_position_at=NOW()
		WHERE id=$1
	`, sessionID, session.CurrentIndex, visitedJSON, session.CompletionPct, string(session.Status), endedAt)
	if err != nil {
		return SessionView{}, err
	}

	if session.Status != nav.StatusActive {
		if err := s.finalizePathAggregates(ctx, session.PathID); err != nil {
			return SessionView{}, err
		}
	}
	return viewOf(session), nil
}

// Abandon is idempotent: a session already terminal keeps its status, end
// timestamp, and reason, and no row is written.
func (s *Service) Abandon(ctx context.Context, sessionID string, reason nav.AbandonReason) (nav.Status, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.Status != nav.StatusActive {
		return session.Status, nil
	}

	status := session.Abandon(reason)
	_, err = s.db.Exec(ctx, `
		UPDATE nav_sessions SET status=$2, abandon_reason=$3, ended_at=$4 WHERE id=$1
	`, sessionID, string(status), string(session.AbandonReason), session.EndedAt)
	if err != nil {
		return "", err
	}
	if err := s.finalizePathAggregates(ctx, session.PathID); err != nil {
		return "", err
	}
	return status, nil
}

func (s *Service) Summary(ctx context.Context, sessionID string) (nav.Summary, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nav.Summary{}, err
	}
	return session.Summarize(), nil
}

func (s *Service) Session(ctx context.Context, sessionID string) (SessionView, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return viewOf(session), nil
}

// SweepInactive abandons sessions with no position update inside the window.
// Run periodically; each affected path has its aggregates recomputed once.
func (s *Service) SweepInactive(ctx context.Context, window time.Duration) (int, error) {
	cutoff := time.Now().Add(-window)
	rows, err := s.db.Query(ctx, `
		UPDATE nav_sessions
		SET status='abandoned', abandon_reason='timeout', ended_at=NOW()
		WHERE status='active' AND last_position_at < $1
		RETURNING path_id
	`, cutoff)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	swept := 0
	pathIDs := map[string]struct{}{}
	for rows.Next() {
		var pathID string
		if err := rows.Scan(&pathID); err != nil {
			return swept, err
		}
		pathIDs[pathID] = struct{}{}
		swept++
	}
	rows.Close()

	for pathID := range pathIDs {
		if err := s.finalizePathAggregates(ctx, pathID); err != nil {
			return swept, err
		}
	}
	return swept, nil
}

// finalizePathAggregates recomputes usage_count and avg_completion_rate from
// the finalized session rows. Recomputing instead of incrementing keeps the
// operation idempotent under retries and duplicate finalization.
func (s *Service) finalizePathAggregates(ctx context.Context, pathID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE nav_paths p
		SET usage_count = agg.total, avg_completion_rate = agg.avg_pct, updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS total, COALESCE(AVG(completion_pct), 0) AS avg_pct
			FROM nav_sessions
			WHERE path_id = $1 AND status IN ('completed','abandoned')
		) agg
		WHERE p.id = $1
	`, pathID)
	return err
}

// Nearest finds the closest active waypoint of a museum to a visitor
// position, for picking up navigation from wherever the visitor stands.
func (s *Service) Nearest(ctx context.Context, museumID string, lat, lng float64) (WaypointView, float64, error) {
	coord, err := geo.NewCoordinate(lat, lng)
	if err != nil {
		return WaypointView{}, 0, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, ST_Y(location::geometry), ST_X(location::geometry), floor_level, COALESCE(room_name,''),
		       COALESCE(artwork_id::text,''), sequence_order, distance_to_next_m, walk_seconds,
		       COALESCE(media_handle,''), title, COALESCE(voice_instruction,'')
		FROM nav_waypoints WHERE museum_id=$1 AND is_active
	`, museumID)
	if err != nil {
		return WaypointView{}, 0, err
	}
	defer rows.Close()

	var waypoints []nav.Waypoint
	for rows.Next() {
		var (
			wp   nav.Waypoint
			wlat float64
			wlng float64
		)
		err := rows.Scan(&wp.ID, &wlat, &wlng, &wp.FloorLevel, &wp.RoomName, &wp.ArtworkID,
			&wp.SequenceOrder, &wp.DistanceToNextM, &wp.WalkSeconds, &wp.MediaHandle,
			&wp.Title, &wp.VoiceInstruction)
		if err != nil {
			return WaypointView{}, 0, err
		}
		wp.Coordinate, err = geo.NewCoordinate(wlat, wlng)
		if err != nil {
			return WaypointView{}, 0, err
		}
		waypoints = append(waypoints, wp)
	}

	wp, dist, ok := nav.NearestWaypoint(coord, []nav.Path{{Waypoints: waypoints}})
	if !ok {
		return WaypointView{}, 0, ErrNoWaypoints
	}
	return WaypointView{
		ID:               wp.ID,
		Title:            wp.Title,
		RoomName:         wp.RoomName,
		FloorLevel:       wp.FloorLevel,
		Lat:              wp.Coordinate.Lat(),
		Lng:              wp.Coordinate.Lon(),
		MediaHandle:      wp.MediaHandle,
		VoiceInstruction: wp.VoiceInstruction,
	}, dist, nil
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (*nav.Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, visitor_ref, path_id, COALESCE(target_artwork_id::text,''), route, current_index,
		       visited, completion_pct, status, COALESCE(abandon_reason,''), started_at, ended_at
		FROM nav_sessions WHERE id=$1
	`, sessionID)

	var (
		session     nav.Session
		routeJSON   []byte
		visitedJSON []byte
		status      string
		reason      string
		endedAt     *time.Time
	)
	err := row.Scan(&session.ID, &session.VisitorRef, &session.PathID, &session.TargetArtworkID,
		&routeJSON, &session.CurrentIndex, &visitedJSON, &session.CompletionPct, &status,
		&reason, &session.StartedAt, &endedAt)
	if err != nil {
		return nil, err
	}
	session.Status = nav.Status(status)
	session.AbandonReason = nav.AbandonReason(reason)
	if endedAt != nil {
		session.EndedAt = *endedAt
	}

	var routeIDs []string
	if err := json.Unmarshal(routeJSON, &routeIDs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(visitedJSON, &session.Visited); err != nil {
		return nil, err
	}

	session.Route, err = s.loadRouteWaypoints(ctx, routeIDs)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// loadRouteWaypoints resolves a stored route back into engine waypoints,
// preserving the route order. Retired waypoint versions are still loadable
// so in-flight sessions keep the coordinates they started with.
func (s *Service) loadRouteWaypoints(ctx context.Context, routeIDs []string) ([]nav.Waypoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, ST_Y(location::geometry), ST_X(location::geometry), floor_level, COALESCE(room_name,''),
		       COALESCE(artwork_id::text,''), sequence_order, distance_to_next_m, walk_seconds,
		       COALESCE(media_handle,''), title, COALESCE(voice_instruction,'')
		FROM nav_waypoints WHERE id = ANY($1)
	`, routeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]nav.Waypoint, len(routeIDs))
	for rows.Next() {
		var (
			wp       nav.Waypoint
			lat, lng float64
		)
		err := rows.Scan(&wp.ID, &lat, &lng, &wp.FloorLevel, &wp.RoomName, &wp.ArtworkID,
			&wp.SequenceOrder, &wp.DistanceToNextM, &wp.WalkSeconds, &wp.MediaHandle,
			&wp.Title, &wp.VoiceInstruction)
		if err != nil {
			return nil, err
		}
		wp.Coordinate, err = geo.NewCoordinate(lat, lng)
		if err != nil {
			return nil, err
		}
		byID[wp.ID] = wp
	}

	route := make([]nav.Waypoint, 0, len(routeIDs))
	for _, id := range routeIDs {
		wp, ok := byID[id]
		if !ok {
			return nil, errors.New("route references unknown waypoint " + id)
		}
		route = append(route, wp)
	}
	return route, nil
}

// loadPath assembles the engine path for a stored nav_paths row, with a
// short-lived in-process cache since path definitions change rarely next to
// how often sessions start.
func (s *Service) loadPath(ctx context.Context, pathID string) (nav.Path, error) {
	if cached, ok := s.pathCache.Get(pathID); ok {
		return cached.(nav.Path), nil
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, name, difficulty, waypoint_sequence FROM nav_paths WHERE id=$1 AND is_active
	`, pathID)
	var (
		path       nav.Path
		difficulty string
		seqJSON    []byte
	)
	if err := row.Scan(&path.ID, &path.Name, &difficulty, &seqJSON); err != nil {
		return nav.Path{}, err
	}
	path.Difficulty = nav.Difficulty(difficulty)

	var waypointIDs []string
	if err := json.Unmarshal(seqJSON, &waypointIDs); err != nil {
		return nav.Path{}, err
	}
	waypoints, err := s.loadRouteWaypoints(ctx, waypointIDs)
	if err != nil {
		return nav.Path{}, err
	}
	path.Waypoints = waypoints

	s.pathCache.Set(pathID, path, cache.DefaultExpiration)
	return path, nil
}
