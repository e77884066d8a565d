package notify

import (
	"context"
	"fmt"
	"time"
)

// slotFilter returns the progress criterion for a slot. Unrecognized slot
// labels fall back to the afternoon rule.
func (o Options) slotFilter(slot TimeSlot) func(todayTotal int) bool {
	switch slot {
	case SlotMorning:
		return func(t int) bool { return t == 0 }
	case SlotEvening:
		return func(t int) bool { return t >= o.EveningBandMin && t <= o.EveningBandMax }
	default:
		return func(t int) bool { return t < o.AfternoonThreshold }
	}
}

// selectCandidates picks the users to contact this cycle: lifetime-active
// users matching the slot's progress filter whose per-slot quota is not yet
// exhausted, shuffled and truncated to a random batch size. An empty result
// is not an error.
func (e *Engine) selectCandidates(ctx context.Context, slot TimeSlot, localDate string, now time.Time) ([]User, error) {
	users, err := e.repo.UsersWithTotals(ctx, localDate)
	if err != nil {
		return nil, fmt.Errorf("list users with totals: %w", err)
	}

	match := e.opts.slotFilter(slot)

	var pool []User
	for _, u := range users {
		if u.TotalAllTime <= 0 || !match(u.TodayTotal) {
			continue
		}
		sent, err := e.history.CountSentToday(ctx, u.ID, localDate, slot)
		if err != nil {
			return nil, fmt.Errorf("count sent today: %w", err)
		}
		if sent >= MaxPerSlot(Classify(u, now)) {
			continue
		}
		pool = append(pool, u)
	}

	// No deterministic priority: shuffle so a large pool does not always
	// favor the same users.
	e.rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	batch := e.opts.BatchMin + e.rand.IntN(e.opts.BatchMax-e.opts.BatchMin+1)
	if len(pool) > batch {
		pool = pool[:batch]
	}
	return pool, nil
}
