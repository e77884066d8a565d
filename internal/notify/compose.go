package notify

import (
	"context"
	"fmt"
	"time"
)

// bodyFn renders one candidate message body from live user data.
// remaining is how much is still missing to the daily goal.
type bodyFn func(u User, remaining int) string

// messageSets holds the candidate bodies per (category, slot). Every set
// has at least two candidates so the avoid-repeat preference has room to
// work.
var messageSets = map[Category]map[TimeSlot][]bodyFn{
	CategoryNew: {
		SlotMorning: {
			func(u User, _ int) string { return fmt.Sprintf("Guten Morgen %s! Start in den Tag mit deinen Dicken! 🌅", u.Name) },
			func(u User, _ int) string { return fmt.Sprintf("%s, der Tag beginnt - Zeit für Push-ups! 💪", u.Name) },
		},
		SlotAfternoon: {
			func(u User, _ int) string { return fmt.Sprintf("Hey %s! Nachmittag ist Push-up Zeit! 🏋️‍♂️", u.Name) },
			func(u User, _ int) string { return fmt.Sprintf("%s, mach deine Dicken bevor der Tag vorbei ist! 🔥", u.Name) },
		},
		SlotEvening: {
			func(u User, _ int) string { return fmt.Sprintf("Noch schnell %s! Ein paar Dicken vor dem Feierabend! ⚡", u.Name) },
			func(u User, _ int) string { return fmt.Sprintf("%s, Abendroutine: Push-ups nicht vergessen! 🌙", u.Name) },
		},
		SlotCloseToGoal: {
			func(u User, r int) string { return fmt.Sprintf("Fast am Ziel %s! Nur noch %d Dicken! 🎯", u.Name, r) },
			func(u User, r int) string { return fmt.Sprintf("%s, die letzten %d schaffst du locker! 💪", u.Name, r) },
		},
	},
	CategoryCasual: {
		SlotMorning: {
			func(u User, _ int) string { return fmt.Sprintf("Morgen %s! Deine täglichen Dicken warten! 🌞", u.Name) },
			func(u User, _ int) string { return fmt.Sprintf("%s, beginne den Tag stark mit Push-ups! 💪", u.Name) },
		},
		SlotAfternoon: {
			func(u User, _ int) string { return fmt.Sprintf("Hey %s! Zeit für deine Push-up Challenge! 🏆", u.Name) },
			func(u User, _ int) string { return fmt.Sprintf("%s, nachmittags Push-ups machen glücklich! 😊", u.Name) },
		},
		SlotEvening: {
			func(u User, _ int) string { return fmt.Sprintf("%s, der Tag neigt sich - Dicken-Time! 🌅", u.Name) },
			func(u User, _ int) string { return fmt.Sprintf("Abend-Reminder %s: Push-ups! 💪", u.Name) },
		},
		SlotCloseToGoal: {
			func(u User, r int) string { return fmt.Sprintf("%s, nur noch %d bis zum Tagesziel! 🎯", u.Name, r) },
			func(u User, r int) string { return fmt.Sprintf("So nah dran %s! %d Dicken fehlen noch! 🔥", u.Name, r) },
		},
	},
	CategoryActive: {
		SlotMorning: {
			func(u User, _ int) string { return fmt.Sprintf("Guten Morgen %s! Du schaffst das heute wieder! 🚀", u.Name) },
			func(u User, _ int) string { return fmt.Sprintf("%s, starte durch mit deinen Dicken! 🔥", u.Name) },
		},
		SlotAfternoon: {
			func(u User, _ int) string { return fmt.Sprintf("Hey %s! Du bist bei %d - weiter so! 💪", u.Name, u.TodayTotal) },
			func(u User, _ int) string { return fmt.Sprintf("%s, du machst das super! Mehr Dicken? 🏋️‍♂️", u.Name) },
		},
		SlotEvening: {
			func(u User, r int) string { return fmt.Sprintf("Fast geschafft %s! Nur noch %d bis zum Ziel! 🎯", u.Name, r) },
			func(u User, _ int) string { return fmt.Sprintf("%s, du bist so nah dran! Gib alles! ⚡", u.Name) },
		},
		SlotCloseToGoal: {
			func(u User, r int) string { return fmt.Sprintf("%s, %d Dicken trennen dich vom Ziel! 🎯", u.Name, r) },
			func(u User, r int) string { return fmt.Sprintf("Endspurt %s! Die letzten %d! 🚀", u.Name, r) },
		},
	},
	CategoryAdvanced: {
		SlotMorning: {
			func(u User, _ int) string { return fmt.Sprintf("Morgen Champion %s! Bereit für neue Rekorde? 🏆", u.Name) },
			func(u User, _ int) string { return fmt.Sprintf("%s, du weißt wie's geht - los geht's! 💪", u.Name) },
		},
		SlotAfternoon: {
			func(u User, _ int) string { return fmt.Sprintf("Hey %s! Bei %d Dicken - machst du weiter? 🔥", u.Name, u.TodayTotal) },
			func(u User, _ int) string { return fmt.Sprintf("%s, du bist eine Push-up Maschine! 🔥", u.Name) },
		},
		SlotEvening: {
			func(u User, _ int) string { return fmt.Sprintf("Wow %s! %d Dicken heute - Wahnsinn! 🏆", u.Name, u.TodayTotal) },
			func(u User, _ int) string { return fmt.Sprintf("%s, du dominierst! Mehr als 100? 🚀", u.Name) },
		},
		SlotCloseToGoal: {
			func(u User, r int) string { return fmt.Sprintf("Champion %s, nur noch %d bis zur 100! 🎯", u.Name, r) },
			func(u User, r int) string { return fmt.Sprintf("%s, %d fehlen - für dich ein Klacks! 🏆", u.Name, r) },
		},
	},
}

// TitleFor returns the notification title for a slot. Independent of
// category; unknown slots get the app-branded default.
func TitleFor(slot TimeSlot) string {
	switch slot {
	case SlotMorning:
		return "Guten Morgen! 🌅"
	case SlotAfternoon:
		return "Dickerchen Erinnerung! 💪"
	case SlotEvening:
		return "Letzte Chance! 🌙"
	default:
		return "Dickerchen! 💪"
	}
}

// Compose picks a message body for the user and slot, preferring candidates
// not yet sent to this user today. Once every candidate has been used,
// repeats are acceptable rather than sending nothing.
func (e *Engine) Compose(ctx context.Context, u User, slot TimeSlot, localDate string, now time.Time) (string, error) {
	category := Classify(u, now)

	set := messageSets[category][slot]
	if len(set) == 0 {
		set = messageSets[CategoryCasual][slot]
	}
	if len(set) == 0 {
		return "", fmt.Errorf("no message templates for slot %q", slot)
	}

	remaining := e.opts.DailyGoal - u.TodayTotal
	if remaining < 0 {
		remaining = 0
	}

	candidates := make([]string, 0, len(set))
	for _, render := range set {
		candidates = append(candidates, render(u, remaining))
	}

	used, err := e.history.BodiesSentToday(ctx, u.ID, localDate)
	if err != nil {
		return "", fmt.Errorf("bodies sent today: %w", err)
	}

	fresh := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !used[c] {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		fresh = candidates
	}

	return fresh[e.rand.IntN(len(fresh))], nil
}
