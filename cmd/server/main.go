package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/jakehq/jaketodo/internal/config"
	"github.com/jakehq/jaketodo/internal/database"
	"github.com/jakehq/jaketodo/internal/handlers"
	"github.com/jakehq/jaketodo/internal/logger"
	"github.com/jakehq/jaketodo/internal/middleware"
	"github.com/jakehq/jaketodo/internal/retention"
	"github.com/jakehq/jaketodo/internal/telemetry"
)

const serviceName = "jaketodo-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		// Sync errors on stderr are expected and harmless
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	otelActive := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				otelActive = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to the database and apply migrations
	db, err := database.New(cfg.DatabaseDriver, cfg.DatabaseDSN())
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
	}
	migrateCancel()
	zapLogger.Info("connected_to_database", zap.String("driver", cfg.DatabaseDriver))

	todoRepo := database.NewTodoRepository(db)

	// Optional rate limiting; an empty RATE_LIMIT disables it
	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit, cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_rate_limiter", zap.Error(err))
	}
	if rateLimitMW != nil {
		zapLogger.Info("rate_limiting_enabled", zap.String("rate", cfg.RateLimit))
	}

	todoHandler := handlers.NewTodoHandler(todoRepo, zapLogger)
	adminHandler := handlers.NewAdminHandler(todoRepo, zapLogger)
	healthChecker := handlers.NewHealthChecker(db)

	r := mux.NewRouter()

	// Middleware, outermost first
	if otelActive {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/health", healthChecker.HealthCheck).Methods("GET")

	openAPIPath := filepath.Join("api", "openapi", "openapi.yaml")
	handlers.NewOpenAPIHandler(openAPIPath).RegisterRoutes(r)

	// Authenticated routes
	todosRouter := r.PathPrefix("/todos").Subrouter()
	todosRouter.Use(middleware.BearerAuth(cfg.APIToken))
	if rateLimitMW != nil {
		todosRouter.Use(rateLimitMW)
	}
	todoHandler.RegisterRoutes(todosRouter)

	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.BearerAuth(cfg.APIToken))
	if rateLimitMW != nil {
		adminRouter.Use(rateLimitMW)
	}
	adminHandler.RegisterRoutes(adminRouter)

	// Preflight requests get a bare 204; CORS headers are already set
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Scheduled purge of soft-deleted todos
	if cfg.RetentionSchedule != "" {
		sweeper, err := retention.NewSweeper(cfg.RetentionSchedule, todoRepo, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_initialize_retention_sweeper", zap.Error(err))
		}
		sweeper.Start()
		defer sweeper.Stop()
		zapLogger.Info("retention_sweeper_started", zap.String("schedule", cfg.RetentionSchedule))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
