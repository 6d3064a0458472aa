package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/myshagun/backend/internal/broker"
	"github.com/myshagun/backend/internal/config"
	"github.com/myshagun/backend/internal/database"
	"github.com/myshagun/backend/internal/handler"
	"github.com/myshagun/backend/internal/middleware"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/internal/service"
	"github.com/myshagun/backend/internal/storage"
	"github.com/myshagun/backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	redisClient, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	inbox := broker.NewBreakerInboxBroker(
		broker.NewRedisInboxBrokerFromClient(redisClient),
		broker.DefaultBreakerSettings,
	)

	photos, err := newPhotoStore(cfg.Photos)
	if err != nil {
		logger.Log.Fatal("Failed to initialize photo storage", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	convRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Services
	resolver := service.NewConversationResolver(convRepo)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	profileService := service.NewProfileService(profileRepo, likeRepo, photos)
	matchService := service.NewMatchService(repository.NewTransactor(db), profileRepo, likeRepo, resolver, inbox)
	chatService := service.NewChatService(profileRepo, convRepo, messageRepo, resolver, inbox)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.MetricsMiddleware(),
		middleware.SecurityHeadersMiddleware(),
		middleware.HSTSMiddleware(cfg.IsProduction()),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"inbox":  inbox.State().String(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if local, ok := photos.(*storage.LocalStore); ok {
		router.Static(storage.URLPrefix, local.Dir())
	}

	api := router.Group("")
	api.Use(rateLimiter.Middleware(), middleware.TimeoutMiddleware(cfg.RequestTimeout))
	handler.RegisterRoutes(api, handler.Handlers{
		Auth:    handler.NewAuthHandler(authService, cfg.IsProduction()),
		Profile: handler.NewProfileHandler(profileService, cfg.Photos.MaxSize),
		Chat:    handler.NewChatHandler(matchService, chatService),
	}, middleware.AuthMiddleware(cfg.JWTSecret))

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
			zap.String("photo_storage", cfg.Photos.Storage),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Log.Info("Shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Forced shutdown", zap.Error(err))
	}

	logger.Log.Info("Server stopped")
}

func newRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func newPhotoStore(cfg config.PhotoConfig) (storage.PhotoStore, error) {
	if cfg.Storage == config.PhotoStorageMinIO {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewMinIOStore(ctx, cfg)
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
}
