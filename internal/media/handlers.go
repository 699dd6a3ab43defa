package media

import (
	"context"
	"time"

	"backend-artscope/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Kinds of media attachable to waypoints and artworks. The handle returned
// on registration is what the rest of the system stores; nothing outside
// this package interprets it.
const (
	KindClip360   = "clip360"
	KindThumbnail = "thumbnail"
	KindVoice     = "voice"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Register(ctx context.Context, museumID, url, kind string) (string, error) {
	handle := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO media_objects (handle, museum_id, url, kind)
		VALUES ($1,$2,$3,$4)
	`, handle, museumID, url, kind)
	if err != nil {
		return "", err
	}
	return handle, nil
}

func (s *Service) Resolve(ctx context.Context, handle string) (string, string, error) {
	var url, kind string
	err := s.db.QueryRow(ctx, `
		SELECT url, kind FROM media_objects WHERE handle=$1
	`, handle).Scan(&url, &kind)
	if err != nil {
		return "", "", err
	}
	return url, kind, nil
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			MuseumID string `json:"museum_id"`
			FileName string `json:"file_name"`
			Kind     string `json:"kind"`
		}
		_ = c.BodyParser(&body)
		if body.FileName == "" {
			body.FileName = "upload"
		}
		if body.Kind == "" {
			body.Kind = KindClip360
		}
		url := "https://media.example/" + body.FileName
		handle, err := svc.Register(c.Context(), body.MuseumID, url, body.Kind)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"handle":     handle,
			"url":        url,
			"expires_at": time.Now().Add(15 * time.Minute),
		})
	})

	r.Get("/:handle", func(c *fiber.Ctx) error {
		url, kind, err := svc.Resolve(c.Context(), c.Params("handle"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "media not found")
		}
		return c.JSON(fiber.Map{"url": url, "kind": kind})
	})
}
