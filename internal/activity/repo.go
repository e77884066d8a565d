// Package activity is the pgx-backed store for users, pushup entries, and
// the aggregate facts the notification engine decides on. All calendar
// grouping happens in the configured timezone; timestamps are stored UTC.
package activity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dickerchen-app/dickerchen/internal/notify"
)

// Repo exposes activity queries over a shared pgx pool. Implements
// notify.ActivityRepository and notify.StandingsSource.
type Repo struct {
	pool *pgxpool.Pool
	tz   string
}

// NewRepo creates a repository grouping days in the given IANA zone.
func NewRepo(pool *pgxpool.Pool, tz string) *Repo {
	return &Repo{pool: pool, tz: tz}
}

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

// UserRow is a registered user.
type UserRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListUsers returns all registered users.
func (r *Repo) ListUsers(ctx context.Context) ([]UserRow, error) {
	rows, err := r.pool.Query(ctx, "list_users")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []UserRow
	for rows.Next() {
		var u UserRow
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser registers a new user.
func (r *Repo) CreateUser(ctx context.Context, name string) (UserRow, error) {
	var u UserRow
	if err := r.pool.QueryRow(ctx, "create_user", name).Scan(&u.ID, &u.Name); err != nil {
		return UserRow{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UserName returns the display name for an id.
func (r *Repo) UserName(ctx context.Context, userID int64) (string, error) {
	var name string
	if err := r.pool.QueryRow(ctx, "user_name", userID).Scan(&name); err != nil {
		return "", fmt.Errorf("user name: %w", err)
	}
	return name, nil
}

// --------------------------------------------------------------------------
// Pushup entries
// --------------------------------------------------------------------------

// Entry is one logged set of pushups.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// InsertEntry logs a set of pushups at the given instant.
func (r *Repo) InsertEntry(ctx context.Context, userID int64, count int, at time.Time) (Entry, error) {
	var e Entry
	err := r.pool.QueryRow(ctx, "insert_pushup", userID, count, at).
		Scan(&e.ID, &e.UserID, &e.Count, &e.Timestamp)
	if err != nil {
		return Entry{}, fmt.Errorf("insert pushup: %w", err)
	}
	return e, nil
}

// EntryOwner returns who logged an entry. Missing entries surface as
// pgx.ErrNoRows.
func (r *Repo) EntryOwner(ctx context.Context, entryID int64) (int64, error) {
	var owner int64
	if err := r.pool.QueryRow(ctx, "pushup_owner", entryID).Scan(&owner); err != nil {
		return 0, err
	}
	return owner, nil
}

// DeleteEntry removes an entry and returns what was deleted.
func (r *Repo) DeleteEntry(ctx context.Context, entryID int64) (Entry, error) {
	var e Entry
	err := r.pool.QueryRow(ctx, "delete_pushup", entryID).
		Scan(&e.ID, &e.UserID, &e.Count, &e.Timestamp)
	if err != nil {
		return Entry{}, fmt.Errorf("delete pushup: %w", err)
	}
	return e, nil
}

// DayLog returns a user's entries for one local date, earliest first,
// plus the day's total.
func (r *Repo) DayLog(ctx context.Context, userID int64, localDate string) ([]Entry, int, error) {
	rows, err := r.pool.Query(ctx, "day_log", userID, localDate, r.tz)
	if err != nil {
		return nil, 0, fmt.Errorf("day log: %w", err)
	}
	defer rows.Close()

	var (
		entries []Entry
		total   int
	)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Count, &e.Timestamp); err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
		total += e.Count
	}
	return entries, total, rows.Err()
}

// LifetimeTotal returns the sum of all counts a user ever logged.
func (r *Repo) LifetimeTotal(ctx context.Context, userID int64) (int, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, "lifetime_total", userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("lifetime total: %w", err)
	}
	return int(total), nil
}

// FirstEntryDate returns the local date of a user's earliest entry, nil if
// they never logged one.
func (r *Repo) FirstEntryDate(ctx context.Context, userID int64) (*time.Time, error) {
	var first *time.Time
	if err := r.pool.QueryRow(ctx, "first_entry", userID, r.tz).Scan(&first); err != nil {
		return nil, fmt.Errorf("first entry: %w", err)
	}
	return first, nil
}

// DayTotal is one calendar day's sum.
type DayTotal struct {
	Date  time.Time `json:"date"`
	Total int       `json:"total"`
}

// MonthTotals returns the per-day sums for a user between two local dates
// inclusive.
func (r *Repo) MonthTotals(ctx context.Context, userID int64, startDate, endDate string) ([]DayTotal, error) {
	rows, err := r.pool.Query(ctx, "month_totals", userID, startDate, endDate, r.tz)
	if err != nil {
		return nil, fmt.Errorf("month totals: %w", err)
	}
	defer rows.Close()

	var days []DayTotal
	for rows.Next() {
		var d DayTotal
		var total int64
		if err := rows.Scan(&d.Date, &total); err != nil {
			return nil, fmt.Errorf("scan day total: %w", err)
		}
		d.Total = int(total)
		days = append(days, d)
	}
	return days, rows.Err()
}

// --------------------------------------------------------------------------
// Notification engine queries
// --------------------------------------------------------------------------

// UsersWithTotals returns every lifetime-active user with today's total,
// the all-time total, and the first activity date.
func (r *Repo) UsersWithTotals(ctx context.Context, localDate string) ([]notify.User, error) {
	rows, err := r.pool.Query(ctx, "users_with_totals", localDate, r.tz)
	if err != nil {
		return nil, fmt.Errorf("users with totals: %w", err)
	}
	defer rows.Close()

	var users []notify.User
	for rows.Next() {
		u, err := scanUserFacts(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UsersCloseToGoal returns users who logged something today, are still
// short of the goal, and are within gap of reaching it.
func (r *Repo) UsersCloseToGoal(ctx context.Context, localDate string, goal, gap int) ([]notify.User, error) {
	rows, err := r.pool.Query(ctx, "users_close_to_goal", localDate, r.tz, goal, gap)
	if err != nil {
		return nil, fmt.Errorf("users close to goal: %w", err)
	}
	defer rows.Close()

	var users []notify.User
	for rows.Next() {
		u, err := scanUserFacts(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUserFacts(scan func(...any) error) (notify.User, error) {
	var (
		u         notify.User
		today     int64
		lifetime  int64
		firstDate *time.Time
	)
	if err := scan(&u.ID, &u.Name, &today, &lifetime, &firstDate); err != nil {
		return notify.User{}, fmt.Errorf("scan user facts: %w", err)
	}
	u.TodayTotal = int(today)
	u.TotalAllTime = int(lifetime)
	u.FirstActivity = firstDate
	return u, nil
}

// TodayStandings returns today's totals for every user, highest first.
func (r *Repo) TodayStandings(ctx context.Context, localDate string) ([]notify.Standing, error) {
	rows, err := r.pool.Query(ctx, "today_standings", localDate, r.tz)
	if err != nil {
		return nil, fmt.Errorf("today standings: %w", err)
	}
	defer rows.Close()

	var standings []notify.Standing
	for rows.Next() {
		var (
			s     notify.Standing
			total int64
			first *time.Time
		)
		if err := rows.Scan(&s.UserID, &s.Name, &total, &first); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		s.Total = int(total)
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

// --------------------------------------------------------------------------
// Leaderboard
// --------------------------------------------------------------------------

// LeaderboardRow is one user's daily-leaderboard entry.
type LeaderboardRow struct {
	ID                    int64      `json:"id"`
	Name                  string     `json:"name"`
	Total                 int        `json:"total"`
	HasReachedGoal        bool       `json:"hasReachedGoal"`
	GoalReachedAt         *time.Time `json:"goalReachedAt"`
	CurrentTotalReachedAt *time.Time `json:"currentTotalReachedAt"`
}

// LeaderboardToday computes the daily leaderboard: goal achievers first,
// ordered by when they reached the goal; everyone else by total, ties by
// who logged first.
func (r *Repo) LeaderboardToday(ctx context.Context, localDate string, goal int) ([]LeaderboardRow, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	board := make([]LeaderboardRow, 0, len(users))
	for _, u := range users {
		entries, _, err := r.DayLog(ctx, u.ID, localDate)
		if err != nil {
			return nil, err
		}

		row := LeaderboardRow{ID: u.ID, Name: u.Name}
		for _, e := range entries {
			row.Total += e.Count
			if row.CurrentTotalReachedAt == nil {
				ts := e.Timestamp
				row.CurrentTotalReachedAt = &ts
			}
			if row.Total >= goal && row.GoalReachedAt == nil {
				ts := e.Timestamp
				row.GoalReachedAt = &ts
			}
		}
		row.HasReachedGoal = row.Total >= goal
		board = append(board, row)
	}

	sort.SliceStable(board, func(i, j int) bool {
		a, b := board[i], board[j]
		switch {
		case a.HasReachedGoal && b.HasReachedGoal:
			return a.GoalReachedAt.Before(*b.GoalReachedAt)
		case a.HasReachedGoal != b.HasReachedGoal:
			return a.HasReachedGoal
		case a.Total != b.Total:
			return a.Total > b.Total
		case a.CurrentTotalReachedAt != nil && b.CurrentTotalReachedAt != nil:
			return a.CurrentTotalReachedAt.Before(*b.CurrentTotalReachedAt)
		default:
			return a.CurrentTotalReachedAt != nil
		}
	})
	return board, nil
}

// --------------------------------------------------------------------------
// Yearly potential
// --------------------------------------------------------------------------

// Potential reports how a user tracks against the goal pace since their
// first entry, projected over a year.
type Potential struct {
	Remaining          int `json:"remaining"`
	DaysSinceFirst     int `json:"daysSinceFirst"`
	YearlyPotential    int `json:"yearlyPotential"`
	ActualTotal        int `json:"actualTotal"`
	TheoreticalMaximum int `json:"theoreticalMaximum"`
	Deficit            int `json:"deficit"`
}

// YearlyPotential computes the pace projection. Returns (nil, nil) when the
// user has no entries yet.
func (r *Repo) YearlyPotential(ctx context.Context, userID int64, now time.Time, goal int) (*Potential, error) {
	first, err := r.FirstEntryDate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}

	total, err := r.LifetimeTotal(ctx, userID)
	if err != nil {
		return nil, err
	}

	// +1 so today counts as a full day of opportunity.
	days := int(now.Sub(*first).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	theoretical := days * goal
	deficit := theoretical - total
	yearly := 365*goal - deficit

	return &Potential{
		Remaining:          yearly - total,
		DaysSinceFirst:     days,
		YearlyPotential:    yearly,
		ActualTotal:        total,
		TheoreticalMaximum: theoretical,
		Deficit:            deficit,
	}, nil
}
