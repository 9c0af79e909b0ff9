package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/coney-counter/coney-counter-api/internal/caching"
	"github.com/coney-counter/coney-counter-api/internal/config"
	"github.com/coney-counter/coney-counter-api/internal/database"
	"github.com/coney-counter/coney-counter-api/internal/handlers"
	"github.com/coney-counter/coney-counter-api/internal/locking"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/notifier"
	"github.com/coney-counter/coney-counter-api/internal/ocr"
	"github.com/coney-counter/coney-counter-api/internal/ratelimit"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/coney-counter/coney-counter-api/internal/storage"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load Configuration
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel)

	// Connect to Database
	db := database.Connect(cfg)

	redisClient, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	if redisClient == nil {
		logger.Info("REDIS_URL not set, using in-process cache and locks")
	}
	cache := caching.NewCacheRedis(redisClient, true)

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	var discord notifier.Notifier = notifier.Noop{}
	if n, err := notifier.NewDiscordNotifier(cfg); err != nil {
		logger.WithError(err).Warn("Discord notifier not initialized")
	} else {
		discord = n
	}
	mailer := notifier.NewMailer(cfg)
	if !mailer.Configured() {
		logger.Info("SMTP not configured, approval emails are disabled")
	}

	// Initialize Services
	boards := services.NewLeaderboardService(db, cache, cfg.LeaderboardCacheTTL, cfg.LeaderboardLimit, logger)
	progress := services.NewProgressService(db, discord, boards, logger)
	clickerService := services.NewClickerService(db, locking.New(redisClient), logger)
	export := services.NewExportService(db)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db, logger)
	h := &handlers.Handlers{
		Profile:         handlers.NewProfileHandler(db, authHandler, logger),
		ConeyLogs:       handlers.NewConeyLogHandler(db, authHandler, progress, logger),
		Achievement:     handlers.NewAchievementHandler(db, authHandler, progress, logger),
		Leaderboard:     handlers.NewLeaderboardHandler(authHandler, boards, logger),
		Clicker:         handlers.NewClickerHandler(authHandler, clickerService, logger),
		Receipts:        handlers.NewReceiptHandler(authHandler, ocr.NewClient(cfg), store, ratelimit.New(redisClient, cfg.ReceiptScansPerMinute), logger),
		APIKeys:         handlers.NewAPIKeyHandler(db, authHandler, logger),
		Admin:           handlers.NewAdminHandler(db, authHandler, discord, mailer, boards, export, logger),
		MaxReceiptBytes: cfg.MaxReceiptBytes,
	}
	if local, ok := store.(*storage.LocalStore); ok {
		h.UploadsDir = local.Dir()
	}

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, authHandler, h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := boards.Warm(gctx); err != nil {
			logging.LogError(logger, "main", "main", "warm leaderboards", nil, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}

	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logging.LogError(logger, "main", "main", "close storage", nil, err)
		}
	}
	if redisClient != nil {
		redisClient.Close()
	}
}
