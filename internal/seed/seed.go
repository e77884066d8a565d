// Package seed fills an empty database with demo users and a few weeks of
// activity, enough to exercise the leaderboard, calendar, and every
// notification category.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Result summarizes what a demo seed inserted.
type Result struct {
	Users   int
	Entries int
}

func (r Result) Summary() string {
	return fmt.Sprintf("users=%d entries=%d", r.Users, r.Entries)
}

// demoUser shapes one seeded profile. Days controls how far back the history
// reaches so the engine sees new, casual, active, and advanced users.
type demoUser struct {
	name     string
	days     int
	perDay   int // average daily volume
	variance int
}

var demoUsers = []demoUser{
	{name: "Ana", days: 45, perDay: 80, variance: 40},   // often short of the goal
	{name: "Leo", days: 60, perDay: 110, variance: 30},  // usually hits it
	{name: "Mia", days: 3, perDay: 30, variance: 20},    // fresh account
	{name: "Jonas", days: 90, perDay: 95, variance: 50}, // big lifetime total
	{name: "Pauline", days: 20, perDay: 45, variance: 25},
}

// Demo inserts the demo users with generated history. Existing rows are left
// alone; names that already exist are skipped.
func Demo(ctx context.Context, pool *pgxpool.Pool, now time.Time, logger *slog.Logger) (Result, error) {
	var res Result
	for _, du := range demoUsers {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM users WHERE name = $1)", du.name).Scan(&exists)
		if err != nil {
			return res, fmt.Errorf("check user %s: %w", du.name, err)
		}
		if exists {
			logger.Info("demo user exists, skipping", "name", du.name)
			continue
		}

		var userID int64
		err = pool.QueryRow(ctx,
			"INSERT INTO users (name) VALUES ($1) RETURNING id", du.name).Scan(&userID)
		if err != nil {
			return res, fmt.Errorf("insert user %s: %w", du.name, err)
		}
		res.Users++

		n, err := seedEntries(ctx, pool, userID, du, now)
		if err != nil {
			return res, fmt.Errorf("seed entries for %s: %w", du.name, err)
		}
		res.Entries += n
		logger.Info("seeded demo user", "name", du.name, "entries", n)
	}
	return res, nil
}

// seedEntries writes a day-by-day history, splitting each day's volume into
// two to four sets the way people actually log.
func seedEntries(ctx context.Context, pool *pgxpool.Pool, userID int64, du demoUser, now time.Time) (int, error) {
	inserted := 0
	for d := du.days; d >= 1; d-- {
		day := now.AddDate(0, 0, -d)
		total := du.perDay - du.variance/2 + rand.IntN(du.variance+1)
		if total <= 0 {
			continue // rest day
		}

		sets := 2 + rand.IntN(3)
		for s := 0; s < sets; s++ {
			count := total / sets
			if s == sets-1 {
				count = total - count*(sets-1)
			}
			if count <= 0 {
				continue
			}
			at := time.Date(day.Year(), day.Month(), day.Day(),
				8+rand.IntN(12), rand.IntN(60), 0, 0, day.Location())
			_, err := pool.Exec(ctx,
				"INSERT INTO pushups (user_id, count, timestamp) VALUES ($1, $2, $3)",
				userID, count, at.UTC())
			if err != nil {
				return inserted, err
			}
			inserted++
		}
	}
	return inserted, nil
}
