// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"campushub/internal/bootstrap"
	"campushub/internal/config"
	"campushub/internal/featureflags"
	"campushub/internal/linkpreview"
	"campushub/internal/middleware"
	"campushub/internal/models"
	"campushub/internal/notifications"
	"campushub/internal/repository"
	"campushub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	jwtIssuer   = "campushub-api"
	jwtAudience = "campushub-client"
)

// wireableHub is implemented by every WebSocket hub that can be wired to
// Redis pub/sub and gracefully shut down.
type wireableHub interface {
	Name() string
	StartWiring(ctx context.Context, n *notifications.Notifier) error
	Shutdown(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	circleRepo     repository.CircleRepository
	timelineRepo   repository.TimelineRepository
	channelRepo    repository.ChannelRepository
	reactionRepo   repository.ReactionRepository
	dmRepo         repository.DMRepository
	courseRepo     repository.CourseRepository
	eventRepo      repository.EventRepository
	notifier       *notifications.Notifier
	hub            *notifications.RoomHub
	presence       *notifications.ConnectionManager
	hubs           []wireableHub // all hubs for wiring/shutdown iteration
	featureFlags   *featureflags.Manager
	circleService  *service.CircleService
	feedService    *service.FeedService
	postService    *service.PostService
	commentService *service.CommentService
	dmService      *service.DMService
	userService    *service.UserService
	eventService   *service.EventService
	courseService  *service.CourseService
	mediaService   *service.MediaService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedBuiltIns: true})
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	dmRepo := repository.NewDMRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("campushub-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		circleRepo:     circleRepo,
		timelineRepo:   timelineRepo,
		channelRepo:    channelRepo,
		reactionRepo:   reactionRepo,
		dmRepo:         dmRepo,
		courseRepo:     courseRepo,
		eventRepo:      eventRepo,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	previewTimeout := time.Duration(cfg.LinkPreviewTimeoutMS) * time.Millisecond
	previews := linkpreview.NewResolver(previewTimeout, middleware.Logger)

	server.userService = service.NewUserService(userRepo)
	server.circleService = service.NewCircleService(circleRepo, timelineRepo, userRepo)
	server.feedService = service.NewFeedService(postRepo, commentRepo, circleRepo, timelineRepo, userRepo)
	server.postService = service.NewPostService(
		postRepo, circleRepo, timelineRepo, channelRepo, reactionRepo,
		previews, server.featureFlags, server.isAdminByUserID)
	server.commentService = service.NewCommentService(commentRepo, postRepo, server.isAdminByUserID)
	server.dmService = service.NewDMService(dmRepo, userRepo)
	server.eventService = service.NewEventService(eventRepo, circleRepo)
	server.courseService = service.NewCourseService(courseRepo)
	server.mediaService = service.NewMediaService(cfg)

	// Initialize notifier and hub. The hub also works without Redis in
	// single-process mode; the notifier then becomes a no-op bridge.
	server.hub = notifications.NewRoomHub()
	server.hubs = []wireableHub{server.hub}
	server.presence = notifications.NewConnectionManager(redisClient, notifications.ConnectionManagerConfig{})
	server.hub.SetPresence(server.presence)
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Stored post attachments
	app.Static("/uploads", s.mediaService.UploadDir())

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "CampusHub Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// WebSocket ticket issuance
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/online", s.GetOnlineUsers)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUserProfile)

	// Community: feeds, posts, comments, reactions, follow, search
	community := protected.Group("/community")
	community.Get("/channels", s.GetChannels)
	community.Get("/api/users/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchUsers)
	community.Get("/api/user_tls", s.GetUserTimelines)
	community.Get("/api/circles/:id/tls/:tlId/posts", s.GetTimelinePosts)
	community.Post("/user/:id/follow", s.ToggleFollow)

	// Specific /posts/:id/:resource routes BEFORE generic /posts/:id
	communityPosts := community.Group("/posts")
	communityPosts.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreateChannelPost)
	communityPosts.Post("/:id/like", s.ToggleLike)
	communityPosts.Post("/:id/react", s.ToggleReaction)
	communityPosts.Get("/:id/comments", s.GetComments)
	communityPosts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	communityPosts.Delete("/:id/comments/:commentId", s.DeleteComment)
	communityPosts.Get("/:id", s.GetPost)
	communityPosts.Delete("/:id", s.DeletePost)
	community.Post("/comments/:id/like", s.ToggleCommentLike)
	community.Post("/circles/:id/posts", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreateCirclePost)

	// Feed selector goes last so the specific /community routes win.
	community.Get("/:feedType", s.GetFeed)

	// Circle routes
	circles := protected.Group("/circles")
	circles.Post("/create", s.CreateCircle)
	circles.Get("/", s.GetCircles)
	circles.Get("/mine", s.GetMyCircles)
	circles.Post("/:id/join", s.JoinCircle)
	circles.Post("/:id/leave", s.LeaveCircle)
	circles.Post("/:id/invite", s.InviteToCircle)
	circles.Get("/:id/members", s.GetCircleMembers)
	circles.Post("/:id/members/:userId/executive", s.PromoteExecutive)
	circles.Delete("/:id/members/:userId/executive", s.DemoteExecutive)
	circles.Put("/:id/executive/title", s.SetExecutiveTitle)
	circles.Post("/:id/private_tls", s.CreatePrivateTimeline)
	circles.Get("/:id/private_tls", s.GetCircleTimelines)
	circles.Delete("/:id/private_tls/:tlId", s.DeleteTimeline)
	circles.Post("/:id/events", s.CreateEvent)
	circles.Get("/:id/events", s.GetCircleEvents)
	circles.Put("/:id", s.UpdateCircle)
	circles.Get("/:id", s.GetCircle)

	// Event attendance
	protected.Post("/events/:id/attend", s.ToggleAttendance)

	// Course review routes
	courses := protected.Group("/courses")
	courses.Post("/", s.CreateCourse)
	courses.Get("/", s.GetCourses)
	courses.Get("/:id", s.GetCourse)

	// DM routes
	dm := protected.Group("/dm")
	dm.Get("/api/dms", s.GetConversations)
	dm.Get("/api/dms/:userId/messages", s.GetDMHistory)
	dm.Post("/api/dms/:userId/messages", middleware.RateLimit(
		s.redis, 15, time.Minute, "send_dm"), s.SendDM)

	// Websocket endpoint - protected by AuthRequired (ticket flow)
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/", s.WebsocketHandler())

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
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

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is considered required for full readiness in this app
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "CampusHub",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdminByUserID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws")

		// 1. Try WebSocket ticket first (short-lived, single-use)
		ticket := c.Query("ticket")
		if ticket != "" && s.redis != nil {
			key := fmt.Sprintf("ws_ticket:%s", ticket)
			userIDStr, err := s.redis.Get(c.Context(), key).Result()
			if err == nil {
				userID, parseErr := strconv.ParseUint(userIDStr, 10, 32)
				if parseErr == nil {
					// Delete ticket immediately (single-use)
					s.redis.Del(c.Context(), key)

					c.Locals("userID", uint(userID))
					ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
					c.SetUserContext(ctx)
					return c.Next()
				}
			}
			// If ticket was provided but invalid/expired, we fail if it's a WS path
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		// 2. Fall back to JWT (Bearer token or query param)
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Reject token in query param for WS routes (must use ticket)
		if tokenString == "" && !isWSPath {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		// Parse and validate token
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		// Extract claims
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		// Validate issuer and audience
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != jwtIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != jwtAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		// Extract user ID from subject claim
		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "CampusHub Community API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire all hubs to the Redis subscriber if available
	if s.notifier != nil {
		for _, h := range s.hubs {
			h := h
			go func() {
				if err := h.StartWiring(s.shutdownCtx, s.notifier); err != nil {
					log.Printf("failed to start %s wiring: %v", h.Name(), err)
				}
			}()
		}
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop all wiring goroutines
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Shutdown the HTTP/WS server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close WebSocket connections gracefully
	for _, h := range s.hubs {
		if err := h.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", h.Name(), err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
