// Command api is the Dickerchen API server.
//
// Usage:
//
//	dickerchen-api
//	API_PORT=3001 dickerchen-api

// @title Dickerchen API
// @version 1.0.0
// @description Push-up challenge backend: users, daily logs, leaderboard, calendar, and Web Push motivation notifications.
// @host localhost:3001
// @BasePath /
// @schemes http https
// @contact.name Dickerchen
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/dickerchen-app/dickerchen/internal/activity"
	"github.com/dickerchen-app/dickerchen/internal/api"
	"github.com/dickerchen-app/dickerchen/internal/api/handler"
	"github.com/dickerchen-app/dickerchen/internal/cache"
	"github.com/dickerchen-app/dickerchen/internal/config"
	"github.com/dickerchen-app/dickerchen/internal/db"
	"github.com/dickerchen-app/dickerchen/internal/maintenance"
	"github.com/dickerchen-app/dickerchen/internal/notify"
	"github.com/dickerchen-app/dickerchen/internal/push"

	_ "github.com/dickerchen-app/dickerchen/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Apply schema migrations
	if err := pool.Migrate(ctx); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Data access
	repo := activity.NewRepo(pool.Pool, cfg.Timezone)
	history := activity.NewHistoryStore(pool.Pool)
	subs := push.NewSubscriptionStore(pool.Pool)

	// Push delivery and the notification engine (if VAPID is configured)
	sender := push.NewSender(subs, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject, logger)
	var engine *notify.Engine
	var smart *notify.SmartNotifier
	if sender != nil {
		opts := notify.DefaultOptions()
		opts.DailyGoal = cfg.DailyGoal
		opts.AfternoonThreshold = cfg.AfternoonThreshold
		opts.EveningBandMin = cfg.EveningBandMin
		opts.EveningBandMax = cfg.EveningBandMax
		opts.CloseToGoalGap = cfg.CloseToGoalGap
		engine = notify.NewEngine(notify.Deps{
			Repo:    repo,
			History: history,
			Sender:  sender,
			Logger:  logger,
		}, loc, opts)
		smart = notify.NewSmartNotifier(repo, sender, nil, loc, cfg.DailyGoal, cfg.CloseRaceGap, logger)

		go engine.StartWorker(ctx, cfg.NotifyInterval)
	} else {
		logger.Info("Notifications disabled (no VAPID keys)")
	}

	// Start maintenance tickers (history purge, stale subscription sweep)
	go maintenance.Start(ctx, history, subs, maintenance.DefaultConfig(), logger)

	// Create router
	h := handler.New(pool.Pool, appCache, cfg, repo, subs, sender, engine, smart)
	router := api.NewRouter(h, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Dickerchen API",
			"addr", addr,
			"environment", cfg.Environment,
			"timezone", cfg.Timezone,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
