package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/auth"
	"github.com/basewatch/basewatch-engine/pkg/config"
	"github.com/basewatch/basewatch-engine/pkg/database"
	"github.com/basewatch/basewatch-engine/pkg/handlers"
	"github.com/basewatch/basewatch-engine/pkg/logging"
	"github.com/basewatch/basewatch-engine/pkg/metrics"
	"github.com/basewatch/basewatch-engine/pkg/middleware"
	"github.com/basewatch/basewatch-engine/pkg/repositories"
	"github.com/basewatch/basewatch-engine/pkg/retry"
	"github.com/basewatch/basewatch-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("port", cfg.Port),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// The database may still be coming up when the engine starts.
	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.URL(),
			MaxConnections: cfg.Database.MaxConnections,
			MinConnections: cfg.Database.MinConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories
	contractRepo := repositories.NewContractRepository(db)
	personRepo := repositories.NewPersonRepository(db)
	associationRepo := repositories.NewAssociationRepository(db)
	positionRepo := repositories.NewPositionRepository(db)
	conflictRepo := repositories.NewConflictRepository(db)
	watchedRepo := repositories.NewWatchedEntityRepository(db)
	alertRepo := repositories.NewAlertRepository(db)

	// Services
	detectorCfg, err := services.LoadDetectorConfig(cfg.Detector.ConfigPath)
	if err != nil {
		logger.Fatal("Failed to load detector config", zap.Error(err))
	}
	detector := services.NewPatternDetector(detectorCfg, logger)

	contractService := services.NewContractService(contractRepo, watchedRepo, alertRepo, m, logger)
	analysisService := services.NewAnalysisService(contractRepo, detector, m, logger)
	personService := services.NewPersonService(personRepo, associationRepo, positionRepo, contractRepo, logger)
	conflictService := services.NewConflictService(positionRepo, associationRepo, contractRepo, conflictRepo, m, logger)
	watchlistService := services.NewWatchlistService(watchedRepo, alertRepo, contractRepo, m, logger)
	explorer := services.NewConnectionExplorer(contractRepo, watchedRepo, logger)

	// API routes sit behind the auth middleware; health and metrics stay open.
	apiMux := http.NewServeMux()
	handlers.NewContractsHandler(contractService, logger).RegisterRoutes(apiMux)
	handlers.NewAnalysisHandler(analysisService, logger).RegisterRoutes(apiMux)
	handlers.NewPersonsHandler(personService, logger).RegisterRoutes(apiMux)
	handlers.NewConflictsHandler(conflictService, logger).RegisterRoutes(apiMux)
	handlers.NewWatchlistHandler(watchlistService, explorer, logger).RegisterRoutes(apiMux)

	authMiddleware := auth.NewMiddleware(auth.NewAuthService(cfg, logger), logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/api/", authMiddleware.RequireAuth(apiMux))

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting basewatch-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
	)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
