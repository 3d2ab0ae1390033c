package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/activity"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/auth"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/cluster"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/config"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/media"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/recording"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/spot"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/stream"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/trip"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
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

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	activities := activity.NewService(s.DB)
	spots := spot.NewService(s.DB)
	trips := trip.NewService(s.DB)

	clusterCfg := cluster.DefaultConfig()
	clusterCfg.HasHome = s.Cfg.HasHome()
	clusterCfg.HomeLat = s.Cfg.HomeLat
	clusterCfg.HomeLng = s.Cfg.HomeLng
	if s.Cfg.HomeRadiusKm > 0 {
		clusterCfg.HomeRadiusKm = s.Cfg.HomeRadiusKm
	}
	engine := cluster.NewEngine(trips, activities, spots,
		cluster.NewRejectionStore(s.DB), nil, clusterCfg)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	activity.RegisterRoutes(s.App.Group("/activities"), activities, jwtMiddleware)
	spot.RegisterRoutes(s.App.Group("/spots"), spots, jwtMiddleware)
	trip.RegisterRoutes(s.App.Group("/trips"), trips, jwtMiddleware)
	cluster.RegisterRoutes(s.App.Group("/suggestions"), engine, jwtMiddleware)
	recording.RegisterRoutes(s.App.Group("/recording"),
		recording.NewService(s.DB, s.Stream, activities), jwtMiddleware)
	media.RegisterRoutes(s.App.Group("/media"),
		media.NewService(s.DB, s.Cfg.MediaBaseURL), activities, spots, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream", jwtMiddleware), s.Stream)
}
