// Billboard Watch API server.
//
// Wires the storage, cache, and service layers together, starts the
// background scheduler, and serves the HTTP API with graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/urbansignal/billboard-watch/internal/analysis"
	"github.com/urbansignal/billboard-watch/internal/api"
	"github.com/urbansignal/billboard-watch/internal/cache"
	"github.com/urbansignal/billboard-watch/internal/catalog"
	"github.com/urbansignal/billboard-watch/internal/config"
	"github.com/urbansignal/billboard-watch/internal/repository"
	"github.com/urbansignal/billboard-watch/internal/service/accounts"
	"github.com/urbansignal/billboard-watch/internal/service/achievements"
	"github.com/urbansignal/billboard-watch/internal/service/leaderboard"
	"github.com/urbansignal/billboard-watch/internal/service/reports"
	"github.com/urbansignal/billboard-watch/internal/service/rewards"
	"github.com/urbansignal/billboard-watch/internal/service/scheduler"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if cfg.Server.Environment == "development" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to auto-migrate database schema")
		}
	} else {
		if err := db.Migrate(log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database migrations")
		}
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load achievement and reward catalog")
	}

	accountRepo := repository.NewAccountRepository(db)
	reportRepo := repository.NewReportRepository(db)
	countersRepo := repository.NewCountersRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)

	accountService := accounts.NewService(accountRepo)
	reportService := reports.NewService(reportRepo, countersRepo, accountService)
	achievementService := achievements.NewService(cat, achievementRepo, countersRepo, accountRepo, accountService)
	rewardService := rewards.NewService(cat, accountService, redemptionRepo)
	leaderboardService := leaderboard.NewService(
		accountRepo,
		countersRepo,
		achievementRepo,
		redisCache,
		time.Duration(cfg.Leaderboard.CacheTTL)*time.Second,
	)

	analysisClient := analysis.NewClient(&cfg.Analysis, log)
	simulator := analysis.NewSimulator(analysisClient, cfg.Analysis.SimulatorSeed)

	sched := scheduler.NewService(cfg, achievementService, countersRepo, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	handler := api.NewHandler(api.Dependencies{
		Accounts:     accountService,
		Reports:      reportService,
		Achievements: achievementService,
		Rewards:      rewardService,
		Leaderboard:  leaderboardService,
		Analyzer:     simulator,
		Surveyor:     simulator,
		UsageTracker: countersRepo,
		DBHealth:     db,
		CacheHealth:  redisCache,
	}, log)
	handler.RegisterRoutes(router)

	if cfg.Metrics.Prometheus.Enabled {
		startMetricsServer(&cfg.Metrics.Prometheus, log)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Msg("Server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// startMetricsServer exposes the Prometheus registry on its own port so
// the scrape endpoint stays off the public API surface.
func startMetricsServer(cfg *config.PrometheusConfig, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().
			Int("port", cfg.Port).
			Str("path", cfg.Path).
			Msg("Metrics server starting")

		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
}
