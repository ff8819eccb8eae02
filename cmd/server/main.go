package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/neighbourhood/backend/internal/application/atmview"
	appgeocoding "github.com/neighbourhood/backend/internal/application/geocoding"
	identityapp "github.com/neighbourhood/backend/internal/application/identity"
	"github.com/neighbourhood/backend/internal/application/ingestion"
	preferenceapp "github.com/neighbourhood/backend/internal/application/preference"
	"github.com/neighbourhood/backend/internal/application/recommendation"
	"github.com/neighbourhood/backend/internal/infrastructure/auth"
	"github.com/neighbourhood/backend/internal/infrastructure/cache"
	"github.com/neighbourhood/backend/internal/infrastructure/config"
	"github.com/neighbourhood/backend/internal/infrastructure/geocoder"
	"github.com/neighbourhood/backend/internal/infrastructure/logger"
	"github.com/neighbourhood/backend/internal/infrastructure/persistence"
	"github.com/neighbourhood/backend/internal/infrastructure/provider"
	"github.com/neighbourhood/backend/internal/infrastructure/scheduler"
	"github.com/neighbourhood/backend/internal/infrastructure/telemetry"
	"github.com/neighbourhood/backend/internal/interfaces/http/handler"
	"github.com/neighbourhood/backend/internal/interfaces/http/middleware"
	"github.com/neighbourhood/backend/internal/interfaces/http/router"

	_ "github.com/neighbourhood/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			ATM Status Backend API
//	@version		1.0
//	@description	Freshness-bounded ATM/ABM status mirror and preference-aware recommendation API for Jamaica

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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
		_ = log.Sync()
	}()

	log.Info("Starting ATM status backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers are no-ops unless enabled in config.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if cfg.Telemetry.ProfilingEnabled {
		tracerProvider.EnableSpanProfiles()
	}

	// Tee application logs into the OTLP exporter when enabled.
	if cfg.Telemetry.Enabled {
		bridge := loggerProvider.BridgeCore(cfg.Telemetry.ServiceName)
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, bridge)
		}))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 0)
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	atmRepo := persistence.NewGormATMRepository(db.DB)
	geocodeCacheRepo := persistence.NewGormGeocodingCacheRepository(db.DB)
	geocodeFailureRepo := persistence.NewGormGeocodingFailureRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	prefRepo := persistence.NewGormPreferenceRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Coordinate cache: memory, optional Redis, then PostgreSQL.
	var redisTier *cache.RedisCoordinateCache
	if cfg.Redis.Enabled {
		redisTier, err = cache.NewRedisCoordinateCache(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, continuing without the warm tier", zap.Error(err))
			redisTier = nil
		} else {
			defer func() {
				if err := redisTier.Close(); err != nil {
					log.Error("Error closing Redis", zap.Error(err))
				}
			}()
		}
	}
	coordCache := cache.NewTieredCoordinateCache(
		cache.NewInMemoryCoordinateCache(), redisTier, geocodeCacheRepo, log)

	ingestionMetrics, err := telemetry.NewIngestionMetrics()
	if err != nil {
		log.Warn("Failed to create ingestion metrics", zap.Error(err))
	} else {
		coordCache.SetMetrics(ingestionMetrics)
	}

	// External clients
	statusClient := provider.NewStatusClient(cfg.Provider)
	geocodeClient := geocoder.NewClient(cfg.Geocoder)

	// Ingestion pipeline
	resolver := appgeocoding.NewResolver(coordCache, geocodeFailureRepo, geocodeClient, log)
	reconciler := ingestion.NewReconciler(resolver, log)
	ingestionService := ingestion.NewService(statusClient, uow, reconciler, resolver, log)

	sched := scheduler.NewIngestionScheduler(ingestionService, cfg.Ingestion.Interval, log)
	if ingestionMetrics != nil {
		sched.SetMetrics(ingestionMetrics)
	}
	if cfg.Ingestion.Enabled {
		if err := sched.Start(ctx); err != nil {
			log.Fatal("Failed to start ingestion scheduler", zap.Error(err))
		}
		log.Info("Ingestion scheduler started", zap.Duration("interval", cfg.Ingestion.Interval))
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	atmService := atmview.NewService(atmRepo, log)
	recService := recommendation.NewService(atmRepo, prefRepo, recommendation.NewScorer(), log)
	prefService := preferenceapp.NewService(prefRepo, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)

	// HTTP engine and middleware stack
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Anonymous requests are welcome on read endpoints; a valid token
	// personalizes them.
	engine.Use(middleware.OptionalJWTMiddleware(jwtService))

	// Handlers
	jwtRequired := middleware.JWTAuthMiddleware(jwtService)
	atmHandler := handler.NewATMHandler(atmService, log)
	recHandler := handler.NewRecommendationHandler(recService, log)
	if ingestionMetrics != nil {
		recHandler.SetMetrics(ingestionMetrics)
	}
	prefHandler := handler.NewPreferenceHandler(prefService, jwtRequired, log)
	authHandler := handler.NewAuthHandler(authService, log)
	systemHandler := handler.NewSystemHandler(db, coordCache, sched, log)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(atmHandler).
		Register(recHandler).
		Register(prefHandler).
		Register(authHandler).
		Register(systemHandler)
	r.Setup()

	// Root-level health probe for load balancers, outside API versioning
	engine.GET("/health", systemHandler.Health)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, jwtRequired),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("Ingestion scheduler did not stop cleanly", zap.Error(err))
	}

	if err := profiler.Stop(); err != nil {
		log.Error("Profiler shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics shutdown failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Log export shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracing shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
