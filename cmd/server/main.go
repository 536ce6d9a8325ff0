package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	articleapp "github.com/mpvestiario/backend/internal/application/article"
	"github.com/mpvestiario/backend/internal/application/dashboard"
	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
	personnelapp "github.com/mpvestiario/backend/internal/application/personnel"
	"github.com/mpvestiario/backend/internal/infrastructure/config"
	"github.com/mpvestiario/backend/internal/infrastructure/event"
	"github.com/mpvestiario/backend/internal/infrastructure/logger"
	"github.com/mpvestiario/backend/internal/infrastructure/persistence"
	"github.com/mpvestiario/backend/internal/infrastructure/realtime"
	"github.com/mpvestiario/backend/internal/infrastructure/scheduler"
	"github.com/mpvestiario/backend/internal/infrastructure/storage"
	"github.com/mpvestiario/backend/internal/infrastructure/telemetry"
	"github.com/mpvestiario/backend/internal/interfaces/http/handler"
	"github.com/mpvestiario/backend/internal/interfaces/http/middleware"
	"github.com/mpvestiario/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog := logger.New(logCfg)

	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := logger.New(logCfg, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	defer func() { _ = log.Sync() }()

	log.Info("Starting MP Vestiario backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.Enabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter("mpvestiario")

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		TraceEnabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:   cfg.Telemetry.DBLogFullSQL,
		DBName:       cfg.Database.DBName,
	}, meter, log); err != nil {
		log.Warn("Database instrumentation failed", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.Object("pool", db.Stats()))

	// Repositories
	articleRepo := persistence.NewGormArticleRepository(db.DB)
	personRepo := persistence.NewGormPersonRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Realtime change feed
	notifier, usesRedis := realtime.NewNotifier(cfg.Redis, cfg.Realtime, log)
	log.Info("Change feed ready", zap.Bool("redis", usesRedis))

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(realtime.NewEventBridge(notifier, log))
	eventBus.Subscribe(ledgerapp.NewCriticalStockHandler(log))

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Services
	articleService := articleapp.NewArticleService(articleRepo, txScope)
	articleService.SetEventPublisher(eventBus)
	articleService.SetCriticalThreshold(cfg.Ledger.CriticalThreshold)

	var memoryPhotos *storage.MemoryPhotoStorage
	if cfg.Storage.Enabled() {
		photos, err := storage.NewS3PhotoStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure photo storage", zap.Error(err))
		}
		if err := photos.EnsureBucket(ctx); err != nil {
			log.Fatal("Photo bucket unavailable", zap.Error(err))
		}
		articleService.SetPhotoStorage(photos, cfg.Storage.PresignExpiration)
		log.Info("Photo storage: S3", zap.String("bucket", photos.Bucket()))
	} else {
		memoryPhotos = storage.NewMemoryPhotoStorage("http://localhost:" + cfg.App.Port + "/api/v1/photos")
		articleService.SetPhotoStorage(memoryPhotos, cfg.Storage.PresignExpiration)
		log.Warn("Photo storage: in memory, photos are lost on restart")
	}

	stockLedger := ledgerapp.NewStockLedger(txScope, assignmentRepo, movementRepo)
	stockLedger.SetEventPublisher(eventBus)
	stockLedger.SetMetrics(ledgerMetrics)
	stockLedger.SetCriticalThreshold(cfg.Ledger.CriticalThreshold)
	stockLedger.SetPhotoResolver(articleService.ResolvePhotoURL)

	personService := personnelapp.NewPersonService(personRepo, assignmentRepo)
	personService.SetEventPublisher(eventBus)

	dashboardService := dashboard.NewService(dashboardRepo, cfg.Ledger.CriticalThreshold)

	reconciler := ledgerapp.NewReconciler(articleRepo, assignmentRepo, movementRepo, log)
	reconciler.SetMetrics(ledgerMetrics)

	// Background work
	jobs := scheduler.New(log)
	if cfg.Ledger.ReconcileSchedule != "" {
		if err := jobs.Register(scheduler.ReconcileJobName, cfg.Ledger.ReconcileSchedule,
			cfg.Ledger.ReconcileTimeout, scheduler.NewReconcileJob(reconciler, log)); err != nil {
			log.Fatal("Invalid reconciliation schedule", zap.Error(err))
		}
	}
	jobs.Start()

	if cfg.Realtime.ListenEnabled {
		listener := realtime.NewPostgresListener(cfg.Database, cfg.Realtime, notifier, log)
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Change listener stopped", zap.Error(err))
			}
		}()
	}

	changeStream := handler.NewChangeStreamHandler(notifier,
		handler.WithStreamLogger(log),
		handler.WithStreamHeartbeat(cfg.Realtime.HeartbeatInterval),
		handler.WithStreamMaxClients(cfg.Realtime.MaxConnections),
	)
	if err := changeStream.Start(); err != nil {
		log.Fatal("Failed to start change stream", zap.Error(err))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.Middleware(log),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		middleware.SpanAttributes(),
		httpMetrics,
		middleware.Profiling(cfg.Telemetry.ProfilingEnabled, "/health", "/api/v1/changes"),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize),
	)
	if cfg.HTTP.RateLimitRequests > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.RunCleanup(ctx)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	handlers := router.Handlers{
		Health:         handler.NewHealthHandler(db, version),
		Assignments:    handler.NewAssignmentHandler(stockLedger),
		Articles:       handler.NewArticleHandler(articleService, stockLedger),
		People:         handler.NewPersonHandler(personService),
		Dashboard:      handler.NewDashboardHandler(dashboardService),
		Reconciliation: handler.NewReconciliationHandler(reconciler),
		Changes:        changeStream,
	}
	if memoryPhotos != nil {
		handlers.Photos = handler.NewPhotoHandler(memoryPhotos)
	}
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.Mount(engine, r, handlers)
	logRoutes(log, r)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Close streams first so Shutdown does not wait on them
	changeStream.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if err := notifier.Close(); err != nil {
		log.Warn("Failed to close change notifier", zap.Error(err))
	}
	if err := db.Close(log); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to stop profiler", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": logProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

func logRoutes(log *zap.Logger, r *router.Router) {
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}
	for _, route := range r.Routes() {
		log.Debug("Route", zap.String("method", route.Method), zap.String("path", route.Path),
			zap.String("handler", route.Handler[strings.LastIndex(route.Handler, ".")+1:]))
	}
}
