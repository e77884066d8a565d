// Command admin is the Dickerchen operations CLI.
//
// Usage:
//
//	dickerchen-admin migrate
//	dickerchen-admin notify afternoon
//	dickerchen-admin seed-demo
//	dickerchen-admin cleanup
//	dickerchen-admin vapid-keygen
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dickerchen-app/dickerchen/internal/activity"
	"github.com/dickerchen-app/dickerchen/internal/config"
	"github.com/dickerchen-app/dickerchen/internal/db"
	"github.com/dickerchen-app/dickerchen/internal/maintenance"
	"github.com/dickerchen-app/dickerchen/internal/notify"
	"github.com/dickerchen-app/dickerchen/internal/push"
	"github.com/dickerchen-app/dickerchen/internal/seed"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "dickerchen-admin",
		Short: "Dickerchen operations CLI",
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(notifyCmd())
	root.AddCommand(seedDemoCmd())
	root.AddCommand(cleanupCmd())
	root.AddCommand(vapidKeygenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				start := time.Now()
				if err := pool.Migrate(ctx); err != nil {
					return err
				}
				logger.Info("Migrations applied", "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// notify command
// --------------------------------------------------------------------------

func notifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify [morning|afternoon|evening]",
		Short: "Run one notification cycle for a time slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, ok := notify.ParseSlot(args[0])
			if !ok {
				return fmt.Errorf("unknown time slot %q", args[0])
			}
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				subs := push.NewSubscriptionStore(pool.Pool)
				sender := push.NewSender(subs, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject, logger)
				if sender == nil {
					return fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY are required")
				}

				opts := notify.DefaultOptions()
				opts.DailyGoal = cfg.DailyGoal
				opts.AfternoonThreshold = cfg.AfternoonThreshold
				opts.EveningBandMin = cfg.EveningBandMin
				opts.EveningBandMax = cfg.EveningBandMax
				opts.CloseToGoalGap = cfg.CloseToGoalGap
				engine := notify.NewEngine(notify.Deps{
					Repo:    activity.NewRepo(pool.Pool, cfg.Timezone),
					History: activity.NewHistoryStore(pool.Pool),
					Sender:  sender,
					Logger:  logger,
				}, cfg.Location(), opts)

				start := time.Now()
				report, err := engine.RunCycle(ctx, slot)
				if err != nil {
					return err
				}
				logger.Info("Cycle finished",
					"slot", report.Slot, "gated", report.Gated,
					"selected", report.Selected, "sent", report.Sent, "failed", report.Failed,
					"goal_sent", report.GoalSent,
					"duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// seed-demo command
// --------------------------------------------------------------------------

func seedDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Insert demo users with generated activity history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := pool.Migrate(ctx); err != nil {
					return err
				}
				start := time.Now()
				result, err := seed.Demo(ctx, pool.Pool, time.Now().In(cfg.Location()), logger)
				if err != nil {
					return err
				}
				logger.Info("Demo seed finished",
					"duration", time.Since(start).Round(time.Second), "summary", result.Summary())
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// cleanup command
// --------------------------------------------------------------------------

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Purge old notification history and stale subscriptions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				history := activity.NewHistoryStore(pool.Pool)
				subs := push.NewSubscriptionStore(pool.Pool)
				maintenance.RunOnce(ctx, history, subs, maintenance.DefaultConfig(), logger)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// vapid-keygen command
// --------------------------------------------------------------------------

func vapidKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid-keygen",
		Short: "Generate a fresh VAPID key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			private, public, err := push.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", public, private)
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// withPool handles config loading, DB connection, and context cancellation.
func withPool(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
