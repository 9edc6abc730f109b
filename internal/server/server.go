// Package server contains the HTTP handlers for the publishing API.
package server

import (
	"context"
	"fmt"
	"time"

	"inkpost/internal/cache"
	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/featureflags"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/repository"
	"inkpost/internal/resolver"
	"inkpost/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "inkpost-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	featureFlags    *featureflags.Manager
	postService     *service.PostService
	userService     *service.UserService
	commentService  *service.CommentService
	taxonomyService *service.TaxonomyService
}

// NewServer connects to the database and Redis described by cfg, applies the
// schema and returns a ready server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if cfg.CacheEnabled {
		cache.InitRedis(cfg.RedisURL)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), nil)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil registry registers HTTP metrics on the default Prometheus registry.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, registry prometheus.Registerer) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("server requires a database")
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)
	postTagRepo := repository.NewPostTagRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	res := resolver.New(repository.NewLookup(userRepo, categoryRepo, tagRepo, postTagRepo))
	flags := featureflags.NewManager(cfg.FeatureFlags)

	server := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics(serviceName, registry),
		featureFlags:    flags,
		postService:     service.NewPostService(postRepo, res),
		userService:     service.NewUserService(userRepo, cfg.BcryptCost),
		commentService:  service.NewCommentService(commentRepo, res, flags),
		taxonomyService: service.NewTaxonomyService(categoryRepo, tagRepo),
	}

	return server, nil
}

// App builds the Fiber application on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: errorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// after requestid and context middleware
	app.Use(middleware.StructuredLogger())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/healthz", s.ReadinessCheck)
	app.Get("/health/live", s.LivenessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	posts := api.Group("/posts")
	posts.Post("/", s.SubmitPost)
	posts.Get("/", s.GetPosts)
	// specific /:id/:resource routes before generic /:id
	posts.Get("/:id/comments", s.GetThread)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)

	comments := api.Group("/comments")
	comments.Post("/", s.SubmitComment)
	comments.Delete("/:id", s.DeleteComment)

	users := api.Group("/users")
	users.Post("/", s.SubmitUser)
	users.Get("/:id", s.GetUser)

	categories := api.Group("/categories")
	categories.Post("/", s.CreateCategory)
	categories.Get("/", s.GetCategories)
	categories.Delete("/:id", s.DeleteCategory)

	tags := api.Group("/tags")
	tags.Post("/", s.CreateTag)
	tags.Get("/", s.GetTags)
	tags.Delete("/:id", s.DeleteTag)
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	return s.App().Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// the database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			firstErr = err
		}
	}
	if err := cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := database.Close(s.db); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database reachability. Redis is optional: when it is
// not configured the check reads "disabled" and does not affect the result.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"flags": s.featureFlags.Raw(),
		"time":  time.Now(),
	})
}

// errorHandler renders errors that escape handlers, including fiber's own
// routing errors, in the API's error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		code := models.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed:
			code = models.CodeValidation
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
	}
	return models.RespondWithError(c, models.HTTPStatus(err), err)
}
