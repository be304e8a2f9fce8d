package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/cache"
	"github.com/dafibh/budgetly/budgetly-backend/internal/config"
	"github.com/dafibh/budgetly/budgetly-backend/internal/handler"
	"github.com/dafibh/budgetly/budgetly-backend/internal/middleware"
	"github.com/dafibh/budgetly/budgetly-backend/internal/repository/postgres"
	"github.com/dafibh/budgetly/budgetly-backend/internal/service"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/dafibh/budgetly/budgetly-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)

	clock := util.NewSystemClock(cfg.Timezone)
	log.Info().Str("timezone", cfg.Timezone.String()).Msg("Reference clock configured")

	// Spend aggregation, optionally cached
	spendOpts := []service.SpendOption{service.WithConcurrency(cfg.Aggregation.Concurrency)}
	if cfg.Aggregation.CacheTTL > 0 {
		spendCache := cache.NewLRU[decimal.Decimal](cfg.Aggregation.CacheSize, cfg.Aggregation.CacheTTL)
		spendOpts = append(spendOpts, service.WithSpendCache(spendCache))
	}
	spendService := service.NewSpendService(transactionRepo, spendOpts...)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var cacheWorker *service.SpendCacheWorker
	if cfg.Aggregation.CacheTTL > 0 {
		cacheWorker = service.NewSpendCacheWorker(spendService, log.Logger, service.DefaultCacheSweepInterval)
		cacheWorker.Start(workerCtx)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, workspaceRepo)
	profileService := service.NewProfileService(userRepo, workspaceRepo)
	transactionService := service.NewTransactionService(transactionRepo, spendService, clock)
	budgetService := service.NewBudgetService(budgetRepo, spendService, clock)
	dashboardService := service.NewDashboardService(transactionRepo, budgetRepo, spendService, clock)
	calendarService := service.NewCalendarService(budgetRepo)

	// Realtime updates
	hub := websocket.NewHub()
	transactionService.SetEventPublisher(hub)
	budgetService.SetEventPublisher(hub)

	// Create workspace provider adapter for auth middleware and websocket validator
	workspaceProvider := &workspaceProviderAdapter{authService: authService}

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, workspaceProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, workspaceProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create websocket token validator")
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, clock),
		Profile:     handler.NewProfileHandler(profileService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Budget:      handler.NewBudgetHandler(budgetService),
		Dashboard:   handler.NewDashboardHandler(dashboardService, calendarService, clock),
		Time:        handler.NewTimeHandler(clock),
		WebSocket:   handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	hub.Shutdown()
	rateLimiter.Stop()
	if cacheWorker != nil {
		cacheWorker.Stop()
	}

	log.Info().Msg("Server exited")
}

// workspaceProviderAdapter adapts AuthService to middleware.WorkspaceProvider
type workspaceProviderAdapter struct {
	authService *service.AuthService
}

// GetWorkspaceByAuth0ID implements middleware.WorkspaceProvider
func (a *workspaceProviderAdapter) GetWorkspaceByAuth0ID(auth0ID string) (int32, error) {
	workspace, err := a.authService.GetWorkspaceByAuth0ID(auth0ID)
	if err != nil {
		return 0, err
	}
	return workspace.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
