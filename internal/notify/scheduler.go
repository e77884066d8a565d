package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Engine runs notification cycles. One instance serves the whole process;
// concurrent cycles are tolerated because history writes are append-only
// and quotas are re-checked at selection time.
type Engine struct {
	repo    ActivityRepository
	history HistoryStore
	sender  Sender
	clock   Clock
	rand    Rand
	loc     *time.Location
	opts    Options
	log     *slog.Logger
}

// Deps bundles the engine's collaborators. Clock, Rand and Logger may be
// nil, in which case system defaults are used.
type Deps struct {
	Repo    ActivityRepository
	History HistoryStore
	Sender  Sender
	Clock   Clock
	Rand    Rand
	Logger  *slog.Logger
}

// NewEngine creates an engine operating in the given timezone.
func NewEngine(deps Deps, loc *time.Location, opts Options) *Engine {
	e := &Engine{
		repo:    deps.Repo,
		history: deps.History,
		sender:  deps.Sender,
		clock:   deps.Clock,
		rand:    deps.Rand,
		loc:     loc,
		opts:    opts,
		log:     deps.Logger,
	}
	if e.clock == nil {
		e.clock = systemClock{}
	}
	if e.rand == nil {
		e.rand = systemRand{}
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	return e
}

// LocalDate formats an instant as the engine's local calendar date.
func (e *Engine) LocalDate(t time.Time) string {
	return t.In(e.loc).Format(dateLayout)
}

// RunCycle executes one full notification cycle for a slot: gate, select,
// dispatch with jitter, then (for afternoon/evening) the supplementary
// close-to-goal pass. The call returns only after every scheduled send has
// settled. Repository errors abort the cycle; individual send failures do
// not.
func (e *Engine) RunCycle(ctx context.Context, slot TimeSlot) (Report, error) {
	rep := Report{Slot: slot}

	now := e.clock.Now().In(e.loc)
	if h := now.Hour(); h < e.opts.SendHourStart || h > e.opts.SendHourEnd {
		rep.Gated = true
		e.log.Info("notification cycle gated", "slot", slot, "hour", h)
		return rep, nil
	}

	localDate := now.Format(dateLayout)

	users, err := e.selectCandidates(ctx, slot, localDate, now)
	if err != nil {
		return rep, fmt.Errorf("select candidates: %w", err)
	}
	rep.Selected = len(users)
	e.log.Info("notification cycle selected", "slot", slot, "count", len(users))

	rep.Sent, rep.Failed = e.dispatch(ctx, users, slot, localDate, now, TitleFor(slot), e.opts.Jitter)

	// Supplementary pass: users within reach of the goal get one extra
	// encouragement in the second half of the day.
	if slot == SlotAfternoon || slot == SlotEvening {
		goalUsers, err := e.repo.UsersCloseToGoal(ctx, localDate, e.opts.DailyGoal, e.opts.CloseToGoalGap)
		if err != nil {
			return rep, fmt.Errorf("close-to-goal cohort: %w", err)
		}
		goalUsers, err = e.filterGoalQuota(ctx, goalUsers, localDate)
		if err != nil {
			return rep, fmt.Errorf("close-to-goal quota: %w", err)
		}
		rep.GoalSelected = len(goalUsers)
		rep.GoalSent, rep.GoalFailed = e.dispatch(ctx, goalUsers, SlotCloseToGoal, localDate, now, "Fast geschafft! 🎯", e.opts.GoalJitter)
	}

	e.log.Info("notification cycle completed",
		"slot", slot, "sent", rep.Sent, "failed", rep.Failed,
		"goal_sent", rep.GoalSent, "goal_failed", rep.GoalFailed)
	return rep, nil
}

// filterGoalQuota drops users who already got a close-to-goal push today.
// A user stuck inside the gap would otherwise be re-pushed on every
// afternoon and evening cycle.
func (e *Engine) filterGoalQuota(ctx context.Context, users []User, localDate string) ([]User, error) {
	var out []User
	for _, u := range users {
		sent, err := e.history.CountSentToday(ctx, u.ID, localDate, SlotCloseToGoal)
		if err != nil {
			return nil, fmt.Errorf("count sent today: %w", err)
		}
		if sent >= MaxGoalPerDay {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// dispatch fans out sends for a batch of users, each delayed by a random
// jitter within the window, and waits for all of them to settle. One user's
// failure never blocks another's send. Successful deliveries are recorded
// in the history store under the given slot.
func (e *Engine) dispatch(ctx context.Context, users []User, slot TimeSlot, localDate string, now time.Time, title string, jitter time.Duration) (sent, failed int) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, u := range users {
		var delay time.Duration
		if jitter > 0 {
			delay = time.Duration(e.rand.IntN(int(jitter)))
		}

		wg.Add(1)
		go func(u User, delay time.Duration) {
			defer wg.Done()

			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return
				}
			}

			ok := e.sendOne(ctx, u, slot, localDate, now, title)
			mu.Lock()
			if ok {
				sent++
			} else {
				failed++
			}
			mu.Unlock()
		}(u, delay)
	}

	wg.Wait()
	return sent, failed
}

// sendOne runs one user's compose → send → record sequence. Returns true
// on confirmed delivery.
func (e *Engine) sendOne(ctx context.Context, u User, slot TimeSlot, localDate string, now time.Time, title string) bool {
	body, err := e.Compose(ctx, u, slot, localDate, now)
	if err != nil {
		e.log.Warn("compose failed", "user_id", u.ID, "slot", slot, "error", err)
		return false
	}

	if err := e.sender.Send(ctx, u.ID, title, body); err != nil {
		e.log.Warn("send failed", "user_id", u.ID, "slot", slot, "error", err)
		return false
	}

	if err := e.history.Record(ctx, u.ID, localDate, slot, body, e.clock.Now()); err != nil {
		// The push went out; an unrecorded send merely risks a slight
		// quota overshoot next cycle.
		e.log.Warn("record notification failed", "user_id", u.ID, "slot", slot, "error", err)
	}

	e.log.Info("notification sent", "user_id", u.ID, "name", u.Name, "slot", slot, "category", Classify(u, now))
	return true
}

// SlotForHour maps a local hour to the slot a periodic trigger should run.
func SlotForHour(hour int) TimeSlot {
	switch {
	case hour >= 9 && hour <= 12:
		return SlotMorning
	case hour >= 17 && hour <= 19:
		return SlotEvening
	default:
		return SlotAfternoon
	}
}

// StartWorker runs notification cycles on a fixed period, deriving the
// slot from the local hour. Cycles outside the send window gate themselves.
// Blocks until ctx is cancelled. Intended to be called with `go`.
func (e *Engine) StartWorker(ctx context.Context, interval time.Duration) {
	e.log.Info("Notification worker started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			slot := SlotForHour(e.clock.Now().In(e.loc).Hour())
			if _, err := e.RunCycle(ctx, slot); err != nil {
				e.log.Error("notification cycle error", "slot", slot, "error", err)
			}
		case <-ctx.Done():
			e.log.Info("Notification worker stopped")
			return
		}
	}
}
