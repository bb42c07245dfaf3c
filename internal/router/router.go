package router

import (
	"context"
	"time"

	"github.com/connectai/backend/internal/handlers"
	"github.com/connectai/backend/internal/middleware"
	"github.com/connectai/backend/internal/repositories"
	"github.com/connectai/backend/internal/services"
	"github.com/connectai/backend/internal/storage"
	"github.com/connectai/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Dependencies carries what SetupRoutes wires into the repositories and services.
type Dependencies struct {
	Config   *config.Config
	DB       *config.DB
	Log      *zap.Logger
	Uploader storage.Uploader
	// Verifier is nil when Firebase is not configured.
	Verifier services.IDTokenVerifier
}

// SetupMiddleware configures global Echo middleware. The rate limiter's
// idle visitors are swept until done is closed.
func SetupMiddleware(e *echo.Echo, log *zap.Logger, cfg *config.Config, done <-chan struct{}) {
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.Secure())

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(time.Minute, done)
	e.Use(limiter.RateLimit())

	if cfg.UploadDir != "" {
		e.Static("/uploads", cfg.UploadDir)
	}
	log.Info("global middleware configured")
}

// SetupRoutes builds the repositories and services and registers every route
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	log := deps.Log
	mongoDB := deps.DB.Mongo.Database(deps.Config.MongoDatabase)

	// --- Repositories ---
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(deps.DB.Postgres)
	conversationRepo := repositories.NewPostgresConversationRepository(deps.DB.Postgres)

	var denylist repositories.TokenDenylist = repositories.NoopTokenDenylist{}
	if deps.DB.Redis != nil {
		denylist = repositories.NewRedisTokenDenylist(deps.DB.Redis)
	} else {
		log.Warn("REDIS_ADDR not set, logout will not revoke tokens")
	}

	// --- Services ---
	relationshipService := services.NewRelationshipService(userRepo, notificationRepo, log)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, relationshipService, log)
	postService := services.NewPostService(postRepo, userRepo, savedPostRepo, notificationRepo, deps.Uploader, log)
	feedService := services.NewFeedService(userRepo, postRepo, savedPostRepo, deps.Config.FeedInterestWeight)
	userService := services.NewUserService(userRepo, deps.Uploader, log)
	messagingService := services.NewMessagingService(conversationRepo, userRepo, notificationRepo, log)
	authService := services.NewAuthService(userRepo, denylist, deps.Verifier, deps.Config.JWTSecret, deps.Config.JWTTTL, log)

	// Health check - always accessible
	stores := map[string]handlers.Pinger{
		"mongo": handlers.PingFunc(func(ctx context.Context) error {
			return deps.DB.Mongo.Ping(ctx, nil)
		}),
		"postgres": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := deps.DB.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if deps.DB.Redis != nil {
		stores["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return deps.DB.Redis.Ping(ctx).Err()
		})
	}
	e.GET("/health", handlers.HealthCheck(stores))

	// --- Unprotected routes for authentication ---
	var verifier middleware.IDTokenVerifier
	if deps.Verifier != nil {
		verifier = deps.Verifier
	}
	authHandler := handlers.NewAuthHandler(authService)
	authHandler.RegisterAuthRoutes(e.Group("/api/v1/auth"), verifier)
	log.Info("auth routes configured", zap.Bool("firebase", verifier != nil))

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(authService))
	authHandler.RegisterLogoutRoute(api)

	handlers.NewUserHandler(userService).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(relationshipService).RegisterFollowRoutes(api)
	handlers.NewFriendshipHandler(notificationService, relationshipService).RegisterFriendshipRoutes(api)
	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api)
	handlers.NewPostHandler(postService).RegisterPostRoutes(api)
	handlers.NewLikeHandler(postService).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(postService).RegisterCommentRoutes(api)
	handlers.NewSavedPostHandler(postService).RegisterSavedPostRoutes(api)
	handlers.NewFeedHandler(feedService).RegisterFeedRoutes(api)
	handlers.NewConversationHandler(messagingService).RegisterConversationRoutes(api)

	log.Info("all routes configured", zap.Int("routes", len(e.Routes())))
}
