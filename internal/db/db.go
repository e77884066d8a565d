// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dickerchen-app/dickerchen/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and the
// notification engine use. Prepared statements eliminate parse overhead on
// every request.
//
// All per-day aggregation takes the local calendar date as $-parameters
// (date string plus IANA zone name) so the Berlin-day boundary lives in one
// place: the caller's clock.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Users
		"list_users":  "SELECT id, name FROM users ORDER BY id",
		"create_user": "INSERT INTO users (name) VALUES ($1) RETURNING id, name",
		"user_name":   "SELECT name FROM users WHERE id = $1",

		// Pushup entries
		"insert_pushup": "INSERT INTO pushups (user_id, count, timestamp) VALUES ($1, $2, $3) RETURNING id, user_id, count, timestamp",
		"pushup_owner":  "SELECT user_id FROM pushups WHERE id = $1",
		"delete_pushup": "DELETE FROM pushups WHERE id = $1 RETURNING id, user_id, count, timestamp",

		// Per-day log and totals
		"day_log": `
			SELECT id, user_id, count, timestamp
			FROM pushups
			WHERE user_id = $1 AND (timestamp AT TIME ZONE $3)::date = $2::date
			ORDER BY timestamp ASC`,
		"lifetime_total": "SELECT COALESCE(SUM(count), 0) FROM pushups WHERE user_id = $1",
		"first_entry":    "SELECT MIN((timestamp AT TIME ZONE $2)::date) FROM pushups WHERE user_id = $1",
		"month_totals": `
			SELECT (timestamp AT TIME ZONE $4)::date AS day, SUM(count) AS total
			FROM pushups
			WHERE user_id = $1
			  AND (timestamp AT TIME ZONE $4)::date >= $2::date
			  AND (timestamp AT TIME ZONE $4)::date <= $3::date
			GROUP BY day
			ORDER BY day`,

		// Notification engine: activity facts
		"users_with_totals": `
			SELECT
				u.id,
				u.name,
				COALESCE(SUM(p.count) FILTER (WHERE (p.timestamp AT TIME ZONE $2)::date = $1::date), 0) AS today_total,
				COALESCE(SUM(p.count), 0) AS total_all_time,
				MIN((p.timestamp AT TIME ZONE $2)::date) AS first_entry
			FROM users u
			LEFT JOIN pushups p ON p.user_id = u.id
			GROUP BY u.id, u.name
			HAVING COALESCE(SUM(p.count), 0) > 0`,
		"users_close_to_goal": `
			SELECT id, name, today_total, total_all_time, first_entry
			FROM (
				SELECT
					u.id,
					u.name,
					COALESCE(SUM(p.count) FILTER (WHERE (p.timestamp AT TIME ZONE $2)::date = $1::date), 0) AS today_total,
					COALESCE(SUM(p.count), 0) AS total_all_time,
					MIN((p.timestamp AT TIME ZONE $2)::date) AS first_entry
				FROM users u
				LEFT JOIN pushups p ON p.user_id = u.id
				GROUP BY u.id, u.name
			) t
			WHERE today_total > 0 AND today_total < $3 AND $3 - today_total <= $4`,
		"today_standings": `
			SELECT
				u.id,
				u.name,
				COALESCE(SUM(p.count) FILTER (WHERE (p.timestamp AT TIME ZONE $2)::date = $1::date), 0) AS today_total,
				MIN(p.timestamp) FILTER (WHERE (p.timestamp AT TIME ZONE $2)::date = $1::date) AS first_today
			FROM users u
			LEFT JOIN pushups p ON p.user_id = u.id
			GROUP BY u.id, u.name
			ORDER BY today_total DESC, first_today ASC NULLS LAST`,

		// Notification history
		"notify_count_sent":  "SELECT COUNT(*) FROM notification_log WHERE user_id = $1 AND sent_on = $2::date AND time_slot = $3",
		"notify_bodies_sent": "SELECT body FROM notification_log WHERE user_id = $1 AND sent_on = $2::date",
		"notify_record":      "INSERT INTO notification_log (user_id, sent_on, time_slot, body, sent_at) VALUES ($1, $2::date, $3, $4, $5)",

		// Push subscriptions
		"subs_for_user": "SELECT endpoint, p256dh, auth FROM push_subscriptions WHERE user_id = $1",
		"subs_all":      "SELECT user_id, endpoint, p256dh, auth FROM push_subscriptions ORDER BY user_id",
		"subs_upsert": `
			INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (user_id)
			DO UPDATE SET
				endpoint = EXCLUDED.endpoint,
				p256dh = EXCLUDED.p256dh,
				auth = EXCLUDED.auth,
				updated_at = NOW()`,
		"subs_delete_endpoint": "DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2",
		"subs_evict_endpoint":  "DELETE FROM push_subscriptions WHERE endpoint = $1 AND user_id != $2",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
