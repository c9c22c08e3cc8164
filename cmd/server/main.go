package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/config"
	"github.com/rtagency/mocktest-backend/internal/database"
	"github.com/rtagency/mocktest-backend/internal/handler"
	"github.com/rtagency/mocktest-backend/internal/logger"
	"github.com/rtagency/mocktest-backend/internal/repository"
	"github.com/rtagency/mocktest-backend/internal/router"
	"github.com/rtagency/mocktest-backend/internal/service"
	"github.com/rtagency/mocktest-backend/internal/session"
	"github.com/rtagency/mocktest-backend/internal/validator"
	"github.com/rtagency/mocktest-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting MockTest Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	packRepo := repository.NewPackRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	checkpointRepo := repository.NewCheckpointRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)
	issueRepo := repository.NewIssueRepository(pool)

	// ─── Initialize Session Persistence ───────────────────────────────
	// Checkpoints go to Redis first and drain to Postgres through the
	// checkpoint worker. Results go through the Redis queue with a direct
	// Postgres fallback when the push fails.
	checkpointStore := session.NewRedisCheckpointStore(rdb, checkpointRepo, log)
	resultSink := worker.NewQueueResultSink(rdb, resultRepo, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService)
	adminService := service.NewAdminService(adminRepo, statsRepo, authService)
	catalogService := service.NewCatalogService(packRepo, testRepo, questionRepo, rdb, log)
	attemptService := service.NewAttemptService(
		catalogService,
		testRepo,
		packRepo,
		questionRepo,
		purchaseRepo,
		checkpointStore,
		resultSink,
		rdb,
		log,
	)
	paymentService := service.NewPaymentService(purchaseRepo, packRepo, cfg, log)
	resultService := service.NewResultService(resultRepo, questionRepo, testRepo)
	settingService := service.NewSettingService(settingRepo)
	issueService := service.NewIssueService(issueRepo, testRepo, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService, adminService),
		Portal:       handler.NewPortalHandler(catalogService, attemptService),
		Payment:      handler.NewPaymentHandler(paymentService),
		Result:       handler.NewResultHandler(resultService),
		AdminCatalog: handler.NewAdminCatalogHandler(catalogService, adminService, resultService),
		Setting:      handler.NewSettingHandler(settingService),
		Issue:        handler.NewIssueHandler(issueService),
		WS:           handler.NewWSHandler(attemptService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	checkpointWorker := worker.NewCheckpointWorker(checkpointRepo, rdb, log)
	resultWorker := worker.NewResultWorker(resultRepo, rdb, log)

	go checkpointWorker.Start(workerCtx)
	go resultWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Checkpoint live attempts so candidates can resume after restart.
	attemptService.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
