package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// StandingsSource returns today's leaderboard, highest total first, ties
// broken by who got there earlier.
type StandingsSource interface {
	TodayStandings(ctx context.Context, localDate string) ([]Standing, error)
}

const smartTitle = "Dickerchen Challenge! 💪"

// SmartNotifier reacts to freshly logged entries with competitive nudges:
// early-bird, leadership change, close race, and lazy reminders. Each type
// fires at most once per local day (leadership changes once per leader).
type SmartNotifier struct {
	standings StandingsSource
	sender    Sender
	clock     Clock
	loc       *time.Location
	goal      int
	raceGap   int
	log       *slog.Logger

	mu       sync.Mutex
	lastSent map[string]string // cooldown key -> local date
}

// NewSmartNotifier wires a smart notifier. Clock may be nil for the system
// clock.
func NewSmartNotifier(standings StandingsSource, sender Sender, clock Clock, loc *time.Location, goal, raceGap int, log *slog.Logger) *SmartNotifier {
	if clock == nil {
		clock = systemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &SmartNotifier{
		standings: standings,
		sender:    sender,
		clock:     clock,
		loc:       loc,
		goal:      goal,
		raceGap:   raceGap,
		log:       log,
		lastSent:  make(map[string]string),
	}
}

type smartPush struct {
	kind     string
	targets  []int64
	body     string
	cooldown string
}

// EntryLogged evaluates the smart rules after userID logged a new entry.
// Delivery failures are logged and swallowed; the entry insert must never
// fail because of a notification.
func (s *SmartNotifier) EntryLogged(ctx context.Context, userID int64) {
	now := s.clock.Now().In(s.loc)
	localDate := now.Format(dateLayout)
	hour := now.Hour()

	rows, err := s.standings.TodayStandings(ctx, localDate)
	if err != nil {
		s.log.Warn("smart notification standings failed", "error", err)
		return
	}

	var trigger *Standing
	for i := range rows {
		if rows[i].UserID == userID {
			trigger = &rows[i]
			break
		}
	}
	if trigger == nil {
		return
	}

	var pushes []smartPush

	// Early bird: first to the full goal before 10h taunts everyone still
	// short of it.
	if hour >= 5 && hour <= 9 && trigger.Total >= s.goal {
		var behind []int64
		for _, r := range rows {
			if r.UserID != userID && r.Total < s.goal {
				behind = append(behind, r.UserID)
			}
		}
		if len(behind) > 0 {
			pushes = append(pushes, smartPush{
				kind:     "early_bird",
				targets:  behind,
				body:     fmt.Sprintf("🌅 Wow! %s hat schon um %d Uhr die vollen %d erreicht! Bist du der nächste? 💪", trigger.Name, hour, s.goal),
				cooldown: "early_bird",
			})
		}
	}

	// Leadership change: the trigger user just passed second place.
	if len(rows) >= 2 && rows[0].UserID == userID && trigger.Total > rows[1].Total && trigger.Total > 0 {
		var others []int64
		for _, r := range rows {
			if r.UserID != userID {
				others = append(others, r.UserID)
			}
		}
		pushes = append(pushes, smartPush{
			kind:     "leadership_change",
			targets:  others,
			body:     fmt.Sprintf("👑 %s hat die Führung übernommen mit %d Dicken! Schnell, hol dir den ersten Platz zurück! 🏃‍♂️", trigger.Name, trigger.Total),
			cooldown: fmt.Sprintf("leadership_change_%d", userID),
		})
	}

	// Close race: second place is within striking distance of the leader.
	if len(rows) >= 2 {
		leader, second := rows[0], rows[1]
		if gap := leader.Total - second.Total; gap <= s.raceGap && leader.Total > 50 {
			pushes = append(pushes, smartPush{
				kind:     "close_race",
				targets:  []int64{second.UserID},
				body:     fmt.Sprintf("🔥 Nur noch %d Dicke bis zum ersten Platz! %s ist in Reichweite! 🎯", gap, leader.Name),
				cooldown: "close_race",
			})
		}
	}

	// Lazy reminder: past noon, people still at zero hear about the leader.
	if hour >= 12 {
		var lazy []int64
		for _, r := range rows {
			if r.Total == 0 {
				lazy = append(lazy, r.UserID)
			}
		}
		if len(lazy) > 0 && rows[0].Total > 0 {
			top := rows[0]
			pushes = append(pushes, smartPush{
				kind:     "lazy_reminder",
				targets:  lazy,
				body:     fmt.Sprintf("😴 %s ist schon bei %d Dicken und du pennst noch? Zeit aufzuwachen! ⏰", top.Name, top.Total),
				cooldown: "lazy_reminder",
			})
		}
	}

	for _, p := range pushes {
		if !s.claim(p.cooldown, localDate) {
			continue
		}
		for _, target := range p.targets {
			if err := s.sender.Send(ctx, target, smartTitle, p.body); err != nil {
				s.log.Warn("smart notification send failed", "type", p.kind, "user_id", target, "error", err)
				continue
			}
			s.log.Info("smart notification sent", "type", p.kind, "user_id", target)
		}
	}
}

// claim marks a cooldown key as used for the day. Returns false when the
// key already fired today.
func (s *SmartNotifier) claim(key, localDate string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSent[key] == localDate {
		return false
	}
	s.lastSent[key] = localDate
	return true
}
