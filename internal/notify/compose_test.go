package notify

import (
	"context"
	"strings"
	"testing"
	"time"
)

func composeEngine(hist *fakeHistory, r Rand) *Engine {
	return NewEngine(Deps{
		Repo:    &fakeRepo{},
		History: hist,
		Sender:  &fakeSender{},
		Rand:    r,
	}, time.UTC, DefaultOptions())
}

func TestComposeMentionsUser(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	u := User{ID: 1, Name: "Jonas", TodayTotal: 10, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)}
	e := composeEngine(newFakeHistory(), fixedRand{})

	for _, slot := range []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening, SlotCloseToGoal} {
		body, err := e.Compose(context.Background(), u, slot, now.Format(dateLayout), now)
		if err != nil {
			t.Fatalf("%s: %v", slot, err)
		}
		if !strings.Contains(body, "Jonas") {
			t.Errorf("%s: body %q does not mention the user", slot, body)
		}
	}
}

func TestComposeUsesRemainingToGoal(t *testing.T) {
	now := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
	u := User{ID: 1, Name: "Ana", TodayTotal: 92, TotalAllTime: 500, FirstActivity: daysAgo(now, 30)}
	e := composeEngine(newFakeHistory(), fixedRand{})

	body, err := e.Compose(context.Background(), u, SlotCloseToGoal, now.Format(dateLayout), now)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "8") {
		t.Errorf("body %q does not mention the 8 missing reps", body)
	}
}

func TestComposeAvoidsRepeats(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	localDate := now.Format(dateLayout)
	u := User{ID: 1, Name: "Ana", TodayTotal: 10, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)}

	hist := newFakeHistory()
	e := composeEngine(hist, fixedRand{})

	first, err := e.Compose(context.Background(), u, SlotAfternoon, localDate, now)
	if err != nil {
		t.Fatal(err)
	}
	if err := hist.Record(context.Background(), u.ID, localDate, SlotAfternoon, first, now); err != nil {
		t.Fatal(err)
	}

	second, err := e.Compose(context.Background(), u, SlotAfternoon, localDate, now)
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Errorf("second compose repeated %q although an alternative existed", first)
	}
}

func TestComposeFallsBackWhenAllUsed(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	localDate := now.Format(dateLayout)
	u := User{ID: 1, Name: "Ana", TodayTotal: 10, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)}

	hist := newFakeHistory()
	e := composeEngine(hist, fixedRand{})

	// Burn through every candidate for the slot.
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		body, err := e.Compose(context.Background(), u, SlotAfternoon, localDate, now)
		if err != nil {
			t.Fatal(err)
		}
		seen[body] = true
		if err := hist.Record(context.Background(), u.ID, localDate, SlotAfternoon, body, now); err != nil {
			t.Fatal(err)
		}
	}
	if len(seen) < 2 {
		t.Fatalf("expected at least two distinct candidates, saw %d", len(seen))
	}

	// Everything used: composing again must still produce a message.
	body, err := e.Compose(context.Background(), u, SlotAfternoon, localDate, now)
	if err != nil {
		t.Fatalf("compose with exhausted candidates: %v", err)
	}
	if !seen[body] {
		t.Errorf("fallback body %q is not one of the known candidates", body)
	}
}

func TestTitleFor(t *testing.T) {
	tests := []struct {
		slot TimeSlot
		want string
	}{
		{SlotMorning, "Guten Morgen! 🌅"},
		{SlotAfternoon, "Dickerchen Erinnerung! 💪"},
		{SlotEvening, "Letzte Chance! 🌙"},
		{SlotSpecial, "Dickerchen! 💪"},
		{TimeSlot("whatever"), "Dickerchen! 💪"},
	}
	for _, tt := range tests {
		if got := TitleFor(tt.slot); got != tt.want {
			t.Errorf("TitleFor(%q) = %q, want %q", tt.slot, got, tt.want)
		}
	}
}
