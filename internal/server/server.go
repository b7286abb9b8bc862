// Package server contains the HTTP handlers for the gratitude API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gratitude/internal/cache"
	"gratitude/internal/config"
	"gratitude/internal/middleware"
	"gratitude/internal/models"
	"gratitude/internal/ratelimit"
	"gratitude/internal/repository"
	"gratitude/internal/service"
	"gratitude/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	limiter  ratelimit.Limiter
	memStore *ratelimit.MemoryStore

	userRepo repository.UserRepository

	feedService       *service.FeedService
	thanksService     *service.ThanksService
	engagementService *service.EngagementService
	commentService    *service.CommentService
	moderationService *service.ModerationService
	directoryService  *service.DirectoryService
	followService     *service.FollowService
	userService       *service.UserService
	uploadService     *service.UploadService
}

// NewServerWithDeps creates a Server from initialized dependencies.
// redisClient and store may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Store) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	thanksRepo := repository.NewThanksRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("gratitude-api"),
		userRepo:       userRepo,
	}

	if cfg.RateLimitBackend == config.RateLimitRedis && redisClient != nil {
		s.limiter = ratelimit.NewRedisStore(redisClient)
	} else {
		if cfg.RateLimitBackend == config.RateLimitRedis {
			middleware.Logger.Warn("redis rate limit backend requested without redis, using memory store")
		}
		s.memStore = ratelimit.NewMemoryStore()
		s.limiter = s.memStore
	}

	s.feedService = service.NewFeedService(thanksRepo, companyRepo, userRepo.IsAdmin)
	s.thanksService = service.NewThanksService(thanksRepo, companyRepo, userRepo, reportRepo)
	s.engagementService = service.NewEngagementService(likeRepo)
	s.commentService = service.NewCommentService(commentRepo, thanksRepo, s.limiter)
	s.moderationService = service.NewModerationService(thanksRepo, commentRepo, companyRepo, reportRepo, adminRepo, redisClient)
	s.directoryService = service.NewDirectoryService(companyRepo, userRepo, s.feedService, redisClient)
	s.followService = service.NewFollowService(followRepo, userRepo, companyRepo)
	s.userService = service.NewUserService(userRepo)
	s.uploadService = service.NewUploadService(store)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(middleware.TracingMiddleware())

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Coarse per-IP flood guard in front of the per-action limits.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitedError(time.Now().Add(time.Minute)))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Gratitude Metrics Dashboard",
	}))

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.limiter, ratelimit.ActionSignup, ratelimit.Signup), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.limiter, ratelimit.ActionLogin, ratelimit.Login), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Thanks
	thanks := api.Group("/thanks")
	thanks.Get("/", s.OptionalAuth(), s.ListThanks)
	thanks.Post("/", s.AuthRequired(),
		middleware.RateLimit(s.limiter, ratelimit.ActionThanksCreate, ratelimit.ThanksCreate), s.CreateThanks)
	thanks.Post("/:id/like", s.AuthRequired(),
		middleware.RateLimit(s.limiter, ratelimit.ActionLikeToggle, ratelimit.LikeToggle), s.ToggleLike)
	thanks.Get("/:id/comments", s.ListComments)
	thanks.Post("/:id/comments", s.AuthRequired(), s.CreateComment)
	thanks.Post("/:id/report", s.AuthRequired(), s.ReportThanks)
	thanks.Get("/:id", s.OptionalAuth(), s.GetThanks)
	thanks.Patch("/:id", s.AuthRequired(), s.UpdateThanks)
	thanks.Delete("/:id", s.AuthRequired(), s.DeleteThanks)

	// Companies
	companies := api.Group("/companies")
	companies.Get("/", s.ListCompanies)
	companies.Post("/", s.AuthRequired(), s.CreateCompany)
	companies.Get("/:slug/thanks", s.OptionalAuth(), s.ListCompanyThanks)
	companies.Get("/:slug/follow", s.OptionalAuth(), s.GetCompanyFollow)
	companies.Post("/:slug/follow", s.AuthRequired(), s.FollowCompany)
	companies.Delete("/:slug/follow", s.AuthRequired(), s.UnfollowCompany)
	companies.Get("/:slug", s.GetCompany)

	api.Post("/company-applications", s.ApplyCompany)
	api.Get("/search", s.OptionalAuth(), s.Search)

	top := api.Group("/top")
	top.Get("/companies", s.TopCompanies)
	top.Get("/users", s.TopUsers)

	// Users. A group-level Use on "/user" would also match "/users".
	api.Get("/user/profile", s.AuthRequired(), s.GetMyProfile)
	api.Patch("/user/profile", s.AuthRequired(), s.UpdateMyProfile)

	users := api.Group("/users")
	users.Get("/:userId/follow", s.OptionalAuth(), s.GetUserFollow)
	users.Post("/:userId/follow", s.AuthRequired(), s.FollowUser)
	users.Delete("/:userId/follow", s.AuthRequired(), s.UnfollowUser)
	users.Get("/:userId", s.GetUserProfile)

	api.Post("/uploads/presign", s.AuthRequired(), s.PresignUpload)
	api.Post("/uploads", s.AuthRequired(),
		middleware.RateLimit(s.limiter, ratelimit.ActionMediaUpload, ratelimit.MediaUpload), s.UploadMedia)
	api.Get("/media/*", s.GetMedia)

	// Admin
	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/stats", s.AdminStats)
	admin.Get("/queue", s.AdminQueue)
	admin.Get("/reports", s.AdminReports)
	admin.Patch("/reports/:id", s.AdminHandleReport)
	admin.Patch("/thanks/:id", s.moderate(service.EntityThanks))
	admin.Patch("/comments/:id", s.moderate(service.EntityComments))
	admin.Patch("/companies/:id", s.moderate(service.EntityCompanies))
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: when
// it is not configured the service degrades to in-process rate limiting and
// no caching, so only a configured but unreachable Redis fails readiness.
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

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// isRevoked reports whether a token id was revoked at logout. Without Redis
// nothing can be revoked.
func (s *Server) isRevoked(ctx context.Context, jti string) bool {
	if s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, cache.RevokedJTIKey(jti)).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "revocation check failed", slog.String("error", err.Error()))
		return false
	}
	return n > 0
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.JWTAuth(s.config.JWTSecret, s.isRevoked)
}

// OptionalAuth records the caller when a valid bearer token is present and
// otherwise lets the request through anonymously.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := middleware.BearerToken(c)
		if token == "" {
			return c.Next()
		}
		claims, err := middleware.ParseToken(s.config.JWTSecret, token)
		if err != nil || (claims.JTI != "" && s.isRevoked(c.UserContext(), claims.JTI)) {
			return c.Next()
		}
		middleware.SetUser(c, claims)
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
// The flag is read from the database on every request.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.UserID(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		admin, err := s.isAdmin(c, userID)
		if err != nil {
			return s.respondError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// NewApp builds the Fiber app with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Gratitude API",
		// multipart uploads carry up to a full video
		BodyLimit: int(storage.MaxVideoSize) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.memStore != nil {
		go s.memStore.RunSweeper(s.shutdownCtx, ratelimit.SweepInterval)
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
