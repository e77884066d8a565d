// Package notify decides who gets nudged toward the daily pushup goal and
// what the nudge says.
//
// Cycle: gate on send window → select eligible users per time slot →
// classify → compose → jittered concurrent dispatch → record history.
// Collaborators (activity queries, send history, push delivery) are
// injected interfaces so the decision logic stays testable with in-memory
// fakes and a pinned clock.
package notify

import (
	"context"
	"time"
)

// dateLayout is the local calendar date format used as history and
// aggregation key.
const dateLayout = "2006-01-02"

// --------------------------------------------------------------------------
// Time slots
// --------------------------------------------------------------------------

// TimeSlot labels one notification pass of the day.
type TimeSlot string

const (
	SlotMorning     TimeSlot = "morning"
	SlotAfternoon   TimeSlot = "afternoon"
	SlotEvening     TimeSlot = "evening"
	SlotCloseToGoal TimeSlot = "closeToGoal"
	SlotSpecial     TimeSlot = "special"
)

// ParseSlot validates an externally supplied slot label. Only the three
// regular slots are valid trigger targets; closeToGoal and special passes
// are scheduled internally.
func ParseSlot(s string) (TimeSlot, bool) {
	switch TimeSlot(s) {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return TimeSlot(s), true
	}
	return "", false
}

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

// Category is the behavioral bucket a user falls into, recomputed per
// decision cycle.
type Category string

const (
	CategoryNew      Category = "new"
	CategoryCasual   Category = "casual"
	CategoryActive   Category = "active"
	CategoryAdvanced Category = "advanced"
)

// --------------------------------------------------------------------------
// Domain types
// --------------------------------------------------------------------------

// User carries the derived activity facts the engine decides on. The
// totals are recomputed from the activity repository on every query and
// never stored.
type User struct {
	ID            int64
	Name          string
	TodayTotal    int
	TotalAllTime  int
	FirstActivity *time.Time // local date of earliest entry, nil if none
}

// Standing is one row of today's leaderboard, used by smart notifications.
type Standing struct {
	UserID int64
	Name   string
	Total  int
}

// --------------------------------------------------------------------------
// Collaborator interfaces
// --------------------------------------------------------------------------

// ActivityRepository exposes the aggregate queries the engine needs.
// localDate is a calendar date string in the engine's timezone.
type ActivityRepository interface {
	UsersWithTotals(ctx context.Context, localDate string) ([]User, error)
	UsersCloseToGoal(ctx context.Context, localDate string, goal, gap int) ([]User, error)
}

// HistoryStore records what has already been sent, enforcing per-slot
// quotas and the avoid-repeat preference. Writes are append-only.
type HistoryStore interface {
	CountSentToday(ctx context.Context, userID int64, localDate string, slot TimeSlot) (int, error)
	BodiesSentToday(ctx context.Context, userID int64, localDate string) (map[string]bool, error)
	Record(ctx context.Context, userID int64, localDate string, slot TimeSlot, body string, sentAt time.Time) error
}

// Sender delivers a notification to all of a user's registered push
// endpoints. A nil error means at least one endpoint accepted the push.
type Sender interface {
	Send(ctx context.Context, userID int64, title, body string) error
}

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options are the engine tunables. Thresholds are configuration, not law.
type Options struct {
	DailyGoal          int
	AfternoonThreshold int           // afternoon slot: today_total < threshold
	EveningBandMin     int           // evening slot: band lower bound
	EveningBandMax     int           // evening slot: band upper bound
	CloseToGoalGap     int           // supplementary pass: goal - today_total <= gap
	SendHourStart      int           // first local hour sends are allowed, inclusive
	SendHourEnd        int           // last local hour sends are allowed, inclusive
	BatchMin           int           // batch size lower bound per cycle
	BatchMax           int           // batch size upper bound per cycle
	Jitter             time.Duration // per-user delay window, regular pass
	GoalJitter         time.Duration // per-user delay window, close-to-goal pass
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		DailyGoal:          100,
		AfternoonThreshold: 50,
		EveningBandMin:     40,
		EveningBandMax:     90,
		CloseToGoalGap:     20,
		SendHourStart:      8,
		SendHourEnd:        19,
		BatchMin:           3,
		BatchMax:           10,
		Jitter:             30 * time.Second,
		GoalJitter:         20 * time.Second,
	}
}

// Report summarizes one completed cycle.
type Report struct {
	Slot         TimeSlot `json:"slot"`
	Gated        bool     `json:"gated"` // outside the send window, nothing attempted
	Selected     int      `json:"selected"`
	Sent         int      `json:"sent"`
	Failed       int      `json:"failed"`
	GoalSelected int      `json:"goal_selected"`
	GoalSent     int      `json:"goal_sent"`
	GoalFailed   int      `json:"goal_failed"`
}
