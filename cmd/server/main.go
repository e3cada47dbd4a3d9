package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/guildhall/arena/internal/cache"
	"github.com/guildhall/arena/internal/config"
	"github.com/guildhall/arena/internal/database"
	"github.com/guildhall/arena/internal/handler"
	"github.com/guildhall/arena/internal/jobs"
	"github.com/guildhall/arena/internal/middleware"
	"github.com/guildhall/arena/internal/repository"
	"github.com/guildhall/arena/internal/service"
	"github.com/guildhall/arena/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize cache; the API runs degraded without Redis
	var appCache cache.Cache = cache.NewNoop()
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedis(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Warn("redis unavailable, caching disabled", slog.String("error", err.Error()))
		} else {
			appCache = redisCache
			slog.Info("connected to redis", slog.String("addr", cfg.Redis.Addr))
		}
	}
	defer func() { _ = appCache.Close() }()

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	progressRepo := repository.NewMissionProgressRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	apiLogRepo := repository.NewAPILogRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService:      jwtService,
		TokenRepo:       tokenRepo,
		RefreshDuration: time.Duration(cfg.JWT.RefreshDays) * 24 * time.Hour,
	})

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
	})

	userService := service.NewUserService(service.UserServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
	})

	missionService := service.NewMissionService(service.MissionServiceConfig{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
		Cache:        appCache,
	})

	analyticsService := service.NewAnalyticsService(service.AnalyticsServiceConfig{
		AnalyticsRepo: analyticsRepo,
		ProgressRepo:  progressRepo,
		UserRepo:      userRepo,
		APILogRepo:    apiLogRepo,
		Cache:         appCache,
	})

	apiLogRecorder := service.NewAPILogRecorder(apiLogRepo, logger)
	apiLogRecorder.Start()
	defer apiLogRecorder.Stop()

	externalService := service.NewExternalService(service.ExternalServiceConfig{
		FetchTimeout:  cfg.External.FetchTimeout,
		GitHubBaseURL: cfg.External.GitHubBaseURL,
		MaxBatchURLs:  cfg.External.MaxBatchURLs,
		Recorder:      apiLogRecorder,
		Cache:         appCache,
	})

	// Background jobs
	tokenCleanup := jobs.NewTokenCleanup(tokenRepo, 1*time.Hour)
	tokenCleanup.Start()
	defer tokenCleanup.Stop()

	leaderboardWarmer := jobs.NewLeaderboardWarmer(analyticsService, 30*time.Second)
	leaderboardWarmer.Start()
	defer leaderboardWarmer.Stop()

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.Server.RateLimitRate,
		Window: time.Minute,
		Burst:  cfg.Server.RateLimitBurst,
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler()
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	missionHandler := handler.NewMissionHandler(missionService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	externalHandler := handler.NewExternalHandler(externalService)
	cacheHandler := handler.NewCacheHandler(appCache)

	// Create router and register routes
	mux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("GET /", healthHandler.Welcome)
	mux.HandleFunc("GET /ping", healthHandler.Ping)
	mux.HandleFunc("GET /v1/missions", missionHandler.Catalog)

	// Auth endpoints (public)
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/token", authHandler.Token)
	mux.HandleFunc("POST /v1/auth/refresh", authHandler.Refresh)

	// Auth endpoints (protected)
	authMiddleware := middleware.Auth(tokenService)
	adminMiddleware := func(h http.Handler) http.Handler {
		return authMiddleware(middleware.AdminAuth()(h))
	}
	mux.Handle("POST /v1/auth/logout", authMiddleware(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("POST /v1/auth/change-password", authMiddleware(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("GET /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me)))

	// User endpoints
	mux.Handle("GET /v1/users", authMiddleware(http.HandlerFunc(userHandler.List)))
	mux.Handle("GET /v1/users/{userId}", authMiddleware(http.HandlerFunc(userHandler.Get)))
	mux.Handle("PUT /v1/users/{userId}", authMiddleware(http.HandlerFunc(userHandler.Update)))
	mux.Handle("DELETE /v1/users/{userId}", adminMiddleware(http.HandlerFunc(userHandler.Delete)))

	// Mission endpoints
	mux.Handle("POST /v1/users/{userId}/missions/{missionId}/start", authMiddleware(http.HandlerFunc(missionHandler.Start)))
	mux.Handle("POST /v1/users/{userId}/missions/{missionId}/complete", authMiddleware(http.HandlerFunc(missionHandler.Complete)))
	mux.Handle("GET /v1/users/{userId}/missions", authMiddleware(http.HandlerFunc(missionHandler.Progress)))

	// Analytics endpoints
	mux.Handle("GET /v1/analytics/users", authMiddleware(http.HandlerFunc(analyticsHandler.UserStats)))
	mux.Handle("GET /v1/analytics/missions", authMiddleware(http.HandlerFunc(analyticsHandler.MissionStats)))
	mux.Handle("GET /v1/analytics/users/{userId}/performance", authMiddleware(http.HandlerFunc(analyticsHandler.UserPerformance)))
	mux.Handle("GET /v1/analytics/leaderboard", authMiddleware(http.HandlerFunc(analyticsHandler.Leaderboard)))
	mux.Handle("GET /v1/analytics/api-usage", authMiddleware(http.HandlerFunc(analyticsHandler.APIUsage)))

	// External proxy endpoints
	mux.Handle("GET /v1/external/fetch", authMiddleware(http.HandlerFunc(externalHandler.Fetch)))
	mux.Handle("POST /v1/external/fetch-multiple", authMiddleware(http.HandlerFunc(externalHandler.FetchMultiple)))
	mux.Handle("GET /v1/external/github/user/{username}", authMiddleware(http.HandlerFunc(externalHandler.GitHubUser)))

	// Admin cache endpoints
	mux.Handle("GET /v1/admin/cache/stats", adminMiddleware(http.HandlerFunc(cacheHandler.Stats)))
	mux.Handle("DELETE /v1/admin/cache", adminMiddleware(http.HandlerFunc(cacheHandler.Flush)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
