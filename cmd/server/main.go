package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	auctionapp "github.com/auctionhouse/backend/internal/application/auction"
	identityapp "github.com/auctionhouse/backend/internal/application/identity"
	"github.com/auctionhouse/backend/internal/application/notification"
	paymentapp "github.com/auctionhouse/backend/internal/application/payment"
	"github.com/auctionhouse/backend/internal/infrastructure/auth"
	"github.com/auctionhouse/backend/internal/infrastructure/config"
	"github.com/auctionhouse/backend/internal/infrastructure/event"
	"github.com/auctionhouse/backend/internal/infrastructure/logger"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence"
	"github.com/auctionhouse/backend/internal/infrastructure/scheduler"
	"github.com/auctionhouse/backend/internal/infrastructure/storage"
	"github.com/auctionhouse/backend/internal/infrastructure/telemetry"
	"github.com/auctionhouse/backend/internal/interfaces/http/middleware"
	"github.com/auctionhouse/backend/internal/interfaces/http/router"

	handlerpkg "github.com/auctionhouse/backend/internal/interfaces/http/handler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("starting auction house backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLogLevel := gormlogger.Warn
	if cfg.App.Env == "development" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLogLevel))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()

	if cfg.Telemetry.Enabled {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.DBName); err != nil {
			return fmt.Errorf("failed to register database tracing: %w", err)
		}
	}

	auctionRepo := persistence.NewGormAuctionRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRequestRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("redis blacklist unavailable, falling back to in-memory token revocation", zap.Error(err))
			blacklist = auth.NewInMemoryTokenBlacklist()
		} else {
			defer func() { _ = redisBlacklist.Close() }()
			blacklist = redisBlacklist
		}
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Object storage
	var media storage.ObjectStorage
	if cfg.Storage.Provider == "s3" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure storage bucket: %w", err)
		}
		media = s3Storage
	} else {
		log.Warn("using stub object storage, uploads will not persist")
		media = storage.NewStubObjectStorage()
	}

	// Event bus and subscribers
	bus := event.NewInMemoryEventBus(log)
	notifier := notification.NewLogNotifier(log)
	bus.Subscribe(notification.NewAuctionEndedHandler(notifier, log), "AuctionEnded")
	bus.Subscribe(notification.NewPaymentResolvedHandler(notifier, log), "PaymentRequestApproved", "PaymentRequestRejected")
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := bus.Stop(stopCtx); err != nil {
			log.Error("failed to stop event bus", zap.Error(err))
		}
	}()

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.WithLogger(log))
	auctionService := auctionapp.NewService(auctionRepo, paymentRepo, userRepo, media,
		auctionapp.WithPublisher(bus),
		auctionapp.WithLogger(log),
		auctionapp.WithPresignTTL(cfg.Storage.PresignExpiration),
	)
	paymentService := paymentapp.NewService(paymentRepo, auctionRepo, userRepo, media,
		paymentapp.WithPublisher(bus),
		paymentapp.WithLogger(log),
		paymentapp.WithPresignTTL(cfg.Storage.PresignExpiration),
	)

	// Background auction clock: ends and starts auctions nobody is
	// currently reading
	clock := scheduler.NewAuctionClock(scheduler.AuctionClockConfig{
		Enabled:       cfg.Clock.Enabled,
		SweepInterval: cfg.Clock.SweepInterval,
		BatchSize:     cfg.Clock.BatchSize,
	}, auctionRepo, bus, log)
	if err := clock.Start(ctx); err != nil {
		return fmt.Errorf("failed to start auction clock: %w", err)
	}
	defer clock.Stop()

	// HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	r := router.NewRouter(engine, router.Handlers{
		Auth:    handlerpkg.NewAuthHandler(authService, log),
		Auction: handlerpkg.NewAuctionHandler(auctionService, log),
		Payment: handlerpkg.NewPaymentHandler(paymentService, log),
		Admin:   handlerpkg.NewAdminHandler(auctionService, paymentService, log),
		System:  handlerpkg.NewSystemHandler(db.DB),
	}, middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
