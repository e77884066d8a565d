// Package maintenance runs periodic background tasks as Go tickers.
// All scheduled cleanup is driven from Go since the API is already a
// persistent, long-running service.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/dickerchen-app/dickerchen/internal/activity"
	"github.com/dickerchen-app/dickerchen/internal/push"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	HistoryInterval time.Duration // Purge old notification history
	SubsInterval    time.Duration // Drop stale push subscriptions

	HistoryRetention time.Duration
	SubsRetention    time.Duration
}

// DefaultConfig returns sensible production defaults. History beyond seven
// days no longer affects quota or repeat checks.
func DefaultConfig() Config {
	return Config{
		HistoryInterval:  1 * time.Hour,
		SubsInterval:     12 * time.Hour,
		HistoryRetention: 7 * 24 * time.Hour,
		SubsRetention:    90 * 24 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, history *activity.HistoryStore, subs *push.SubscriptionStore, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"history", cfg.HistoryInterval,
		"subscriptions", cfg.SubsInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.HistoryInterval > 0 {
		t := time.NewTicker(cfg.HistoryInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeHistory(ctx, history, cfg.HistoryRetention, logger) })
	}

	if cfg.SubsInterval > 0 {
		t := time.NewTicker(cfg.SubsInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { dropStaleSubs(ctx, subs, cfg.SubsRetention, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce executes every maintenance task a single time (admin CLI).
func RunOnce(ctx context.Context, history *activity.HistoryStore, subs *push.SubscriptionStore, cfg Config, logger *slog.Logger) {
	purgeHistory(ctx, history, cfg.HistoryRetention, logger)
	dropStaleSubs(ctx, subs, cfg.SubsRetention, logger)
}

func purgeHistory(ctx context.Context, history *activity.HistoryStore, retention time.Duration, logger *slog.Logger) {
	n, err := history.Purge(ctx, retention)
	if err != nil {
		logger.Warn("Cleanup: failed to purge notification history", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Cleanup: purged notification history", "count", n)
	}
}

func dropStaleSubs(ctx context.Context, subs *push.SubscriptionStore, retention time.Duration, logger *slog.Logger) {
	n, err := subs.DeleteStale(ctx, retention)
	if err != nil {
		logger.Warn("Cleanup: failed to drop stale subscriptions", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Cleanup: dropped stale subscriptions", "count", n)
	}
}
