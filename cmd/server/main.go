package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/testnet-portfolio-panel/internal/api"
	"github.com/ndewijer/testnet-portfolio-panel/internal/binance"
	"github.com/ndewijer/testnet-portfolio-panel/internal/config"
	"github.com/ndewijer/testnet-portfolio-panel/internal/database"
	"github.com/ndewijer/testnet-portfolio-panel/internal/logger"
	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
	"github.com/ndewijer/testnet-portfolio-panel/internal/scheduler"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
	"github.com/ndewijer/testnet-portfolio-panel/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLog := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(appLog)

	appLog.Info().Str("version", version.Version).Msg("Starting portfolio panel")

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	applied, err := database.Migrate(context.Background(), db)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Failed to migrate database")
	}

	appLog.Info().
		Str("path", cfg.Database.Path).
		Int("migrations_applied", applied).
		Msg("Connected to database")

	// Create repositories
	historyRepo := repository.NewHistoryRepository(db)

	// Create services
	broadcaster := service.NewBroadcaster()
	systemService := service.NewSystemService(db, cfg.Database.Path)
	historyService := service.NewHistoryService(historyRepo)
	valuationService := service.NewValuationService(
		historyRepo,
		broadcaster,
		cfg.History.ReferenceCurrency,
		cfg.History.MinInterval,
		appLog,
	)
	exchange := binance.NewClient(cfg.Exchange)
	snapshotService := service.NewSnapshotService(exchange, valuationService)

	// Background jobs
	sched := scheduler.New(appLog)
	if err := sched.AddJob(cfg.History.SamplerSchedule, scheduler.NewSnapshotJob(snapshotService, appLog)); err != nil {
		appLog.Fatal().Err(err).Str("schedule", cfg.History.SamplerSchedule).Msg("Invalid sampler schedule")
	}
	if cfg.History.RetentionDays > 0 {
		pruneJob := scheduler.NewPruneJob(historyService, cfg.History.RetentionDays, appLog)
		if err := sched.AddJob(cfg.History.PruneSchedule, pruneJob); err != nil {
			appLog.Fatal().Err(err).Str("schedule", cfg.History.PruneSchedule).Msg("Invalid prune schedule")
		}
	}
	sched.Start()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		History:     historyService,
		Snapshot:    snapshotService,
		Valuation:   valuationService,
		Broadcaster: broadcaster,
	}, cfg, appLog)

	// Create HTTP server. WriteTimeout is left unset because the stream
	// endpoint holds its connection open.
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLog.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let an in-flight sample finish before the database closes.
	sched.Stop()

	appLog.Info().Msg("Server exited")
}
