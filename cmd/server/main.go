package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	debtapp "github.com/debttrack/backend/internal/application/debt"
	identityapp "github.com/debttrack/backend/internal/application/identity"
	"github.com/debttrack/backend/internal/domain/debt"
	"github.com/debttrack/backend/internal/infrastructure/auth"
	"github.com/debttrack/backend/internal/infrastructure/cache"
	"github.com/debttrack/backend/internal/infrastructure/config"
	"github.com/debttrack/backend/internal/infrastructure/logger"
	"github.com/debttrack/backend/internal/infrastructure/persistence"
	"github.com/debttrack/backend/internal/interfaces/http/handler"
	"github.com/debttrack/backend/internal/interfaces/http/middleware"
	"github.com/debttrack/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		logger.Sync(log)
	}()

	log.Info("Starting DebtTrack backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// GORM logging goes through zap as well
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	debtRepo := persistence.NewGormDebtRepository(db.DB)
	stateRepo := persistence.NewGormDebtStateRepository(db.DB)

	// Redis-backed cache. A down Redis never blocks startup; reads fall
	// through to the database until the availability gate reopens.
	appCache := cache.NewRedisCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)

	// The terminal state id is data-driven: resolve it once from the seeded
	// reference rows before serving traffic.
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	terminalState, err := stateRepo.FindByName(bootCtx, debt.TerminalStateName)
	cancelBoot()
	if err != nil {
		log.Fatal("Failed to resolve terminal debt state; are migrations applied?",
			zap.String("state", debt.TerminalStateName),
			zap.Error(err),
		)
	}
	log.Info("Terminal debt state resolved",
		zap.Int64("state_id", terminalState.ID),
		zap.String("name", terminalState.Name),
	)

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	userService := identityapp.NewUserService(userRepo, jwtService, log)
	debtService := debtapp.NewDebtService(debtRepo, stateRepo, appCache, debtapp.DebtServiceConfig{
		CacheTTL:        cfg.Cache.TTL,
		TerminalStateID: terminalState.ID,
	}, log)

	// HTTP engine and middleware chain
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSystemHandler(db, appCache)).
		Register(handler.NewAuthHandler(userService)).
		Register(handler.NewDebtHandler(debtService))
	r.Setup()

	// Bare liveness probe outside the API group for load balancers
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
