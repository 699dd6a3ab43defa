package server

import (
	"time"

	"backend-artscope/internal/analytics"
	"backend-artscope/internal/artwork"
	"backend-artscope/internal/auth"
	"backend-artscope/internal/config"
	"backend-artscope/internal/media"
	"backend-artscope/internal/navigation"
	"backend-artscope/internal/stream"
	"backend-artscope/internal/waypoint"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App        *fiber.App
	Cfg        config.Config
	DB         *pgxpool.Pool
	Redis      *redis.Client
	Stream     *stream.Hub
	Navigation *navigation.Service
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}
	s.Navigation = navigation.NewService(db, s.Stream, cfg.ArrivalRadiusM)

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	artwork.RegisterRoutes(s.App.Group("/artworks"), artwork.NewService(s.DB), jwtMiddleware)
	waypoint.RegisterRoutes(s.App.Group("/waypoints"), waypoint.NewService(s.DB), jwtMiddleware)
	waypoint.RegisterPathRoutes(s.App.Group("/paths"), waypoint.NewService(s.DB), jwtMiddleware)
	navigation.RegisterRoutes(s.App.Group("/navigation"), s.Navigation)
	analytics.RegisterRoutes(s.App.Group("/analytics"),
		analytics.NewService(s.DB, s.Redis, time.Duration(s.Cfg.AnalyticsCacheSec)*time.Second), jwtMiddleware)
	media.RegisterRoutes(s.App.Group("/media"), media.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
