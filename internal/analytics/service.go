package analytics

import (
	"context"
	"encoding/json"
	"time"

	"backend-artscope/internal/db"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Service struct {
	db       db.Querier
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewService(database db.Querier, redisClient *redis.Client, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{db: database, redis: redisClient, cacheTTL: cacheTTL}
}

func (s *Service) LogInteraction(ctx context.Context, in Interaction) (Interaction, error) {
	in.ID = uuid.NewString()
	if in.Kind == "" {
		in.Kind = KindView
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO artwork_interactions (id, museum_id, artwork_id, visitor_ref, kind, duration_sec)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, in.ID, in.MuseumID, in.ArtworkID, in.VisitorRef, string(in.Kind), in.DurationSec)
	if err := row.Scan(&in.CreatedAt); err != nil {
		return Interaction{}, err
	}
	return in, nil
}

// MuseumAnalytics aggregates the museum dashboard. Results are cached in
// redis for cacheTTL so dashboard polling does not hammer the aggregate
// queries; the payload carries GeneratedAt so clients can see staleness.
func (s *Service) MuseumAnalytics(ctx context.Context, museumID string) (MuseumAnalytics, error) {
	key := cacheKey(museumID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var out MuseumAnalytics
			if err := json.Unmarshal(cached, &out); err == nil {
				return out, nil
			}
		}
	}

	out, err := s.computeAnalytics(ctx, museumID)
	if err != nil {
		return MuseumAnalytics{}, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(out); err == nil {
			s.redis.Set(ctx, key, payload, s.cacheTTL)
		}
	}
	return out, nil
}

func (s *Service) computeAnalytics(ctx context.Context, museumID string) (MuseumAnalytics, error) {
	out := MuseumAnalytics{MuseumID: museumID, GeneratedAt: time.Now()}

	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE s.status = 'completed'),
		       COUNT(*) FILTER (WHERE s.status = 'abandoned'),
		       COALESCE(AVG(EXTRACT(EPOCH FROM s.ended_at - s.started_at)) FILTER (WHERE s.ended_at IS NOT NULL), 0)
		FROM nav_sessions s
		JOIN nav_paths p ON p.id = s.path_id
		WHERE p.museum_id = $1
	`, museumID)
	err := row.Scan(&out.TotalSessions, &out.CompletedSessions, &out.AbandonedSessions, &out.AvgDurationSec)
	if err != nil {
		return MuseumAnalytics{}, err
	}
	finished := out.CompletedSessions + out.AbandonedSessions
	if finished > 0 {
		out.CompletionRate = float64(out.CompletedSessions) / float64(finished) * 100
	}

	out.TopPaths, err = s.topPaths(ctx, museumID)
	if err != nil {
		return MuseumAnalytics{}, err
	}
	out.TopArtworks, err = s.topArtworks(ctx, museumID)
	if err != nil {
		return MuseumAnalytics{}, err
	}
	return out, nil
}

func (s *Service) topPaths(ctx context.Context, museumID string) ([]PathUsage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, usage_count, avg_completion_rate
		FROM nav_paths
		WHERE museum_id = $1 AND is_active
		ORDER BY usage_count DESC
		LIMIT 5
	`, museumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []PathUsage
	for rows.Next() {
		var p PathUsage
		if err := rows.Scan(&p.PathID, &p.Name, &p.UsageCount, &p.AvgCompletionRate); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (s *Service) topArtworks(ctx context.Context, museumID string) ([]ArtworkPopularity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.title, COUNT(i.id)
		FROM artworks a
		JOIN artwork_interactions i ON i.artwork_id = a.id
		WHERE a.museum_id = $1
		GROUP BY a.id, a.title
		ORDER BY COUNT(i.id) DESC
		LIMIT 5
	`, museumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artworks []ArtworkPopularity
	for rows.Next() {
		var a ArtworkPopularity
		if err := rows.Scan(&a.ArtworkID, &a.Title, &a.InteractionCount); err != nil {
			return nil, err
		}
		artworks = append(artworks, a)
	}
	return artworks, nil
}

func cacheKey(museumID string) string {
	return "analytics:museum:" + museumID
}
