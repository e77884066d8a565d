package notify

import "time"

// Classify derives a user's behavioral category from their activity facts.
// Pure function of the inputs; first match wins.
func Classify(u User, now time.Time) Category {
	days := 0
	if u.FirstActivity != nil {
		if d := int(now.Sub(*u.FirstActivity).Hours() / 24); d > 0 {
			days = d
		}
	}

	switch {
	case days < 7:
		return CategoryNew
	case u.TotalAllTime > 1000:
		return CategoryAdvanced
	case u.TodayTotal > 50:
		return CategoryActive
	default:
		return CategoryCasual
	}
}

// MaxGoalPerDay caps the close-to-goal nudge at one per user per day,
// regardless of category.
const MaxGoalPerDay = 1

// MaxPerSlot is the per-slot daily send cap for a category. Less engaged
// users get rarer nudging.
func MaxPerSlot(c Category) int {
	switch c {
	case CategoryActive:
		return 2
	case CategoryAdvanced:
		return 3
	default:
		return 1
	}
}
