package notify

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestSelectCandidatesSlotFilters(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	localDate := now.Format(dateLayout)

	users := []User{
		{ID: 1, Name: "zero", TodayTotal: 0, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)},
		{ID: 2, Name: "forty", TodayTotal: 40, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)},
		{ID: 3, Name: "fifty", TodayTotal: 50, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)},
		{ID: 4, Name: "ninety", TodayTotal: 90, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)},
		{ID: 5, Name: "done", TodayTotal: 120, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)},
	}

	tests := []struct {
		slot TimeSlot
		want []int64
	}{
		{SlotMorning, []int64{1}},
		{SlotAfternoon, []int64{1, 2}},     // today < 50
		{SlotEvening, []int64{2, 3, 4}},    // 40..90 inclusive
		{TimeSlot("bogus"), []int64{1, 2}}, // falls back to the afternoon rule
	}

	for _, tt := range tests {
		e := testEngine(&fakeRepo{users: users}, newFakeHistory(), &fakeSender{}, fixedClock{now})
		got, err := e.selectCandidates(context.Background(), tt.slot, localDate, now)
		if err != nil {
			t.Fatalf("%s: %v", tt.slot, err)
		}
		ids := make([]int64, 0, len(got))
		for _, u := range got {
			ids = append(ids, u.ID)
		}
		if fmt.Sprint(ids) != fmt.Sprint(tt.want) {
			t.Errorf("%s: selected %v, want %v", tt.slot, ids, tt.want)
		}
	}
}

func TestSelectCandidatesSkipsLifetimeInactive(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	users := []User{
		{ID: 1, Name: "ghost", TodayTotal: 0, TotalAllTime: 0, FirstActivity: nil},
		{ID: 2, Name: "real", TodayTotal: 0, TotalAllTime: 10, FirstActivity: daysAgo(now, 2)},
	}
	e := testEngine(&fakeRepo{users: users}, newFakeHistory(), &fakeSender{}, fixedClock{now})

	got, err := e.selectCandidates(context.Background(), SlotMorning, now.Format(dateLayout), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("selected %v, want only user 2", got)
	}
}

func TestSelectCandidatesEnforcesQuota(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	localDate := now.Format(dateLayout)

	// Casual cap is 1, active cap is 2.
	casual := User{ID: 1, Name: "casual", TodayTotal: 10, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)}
	active := User{ID: 2, Name: "active", TodayTotal: 51, TotalAllTime: 300, FirstActivity: daysAgo(now, 30)}

	hist := newFakeHistory()
	hist.counts["1/evening"] = 1
	hist.counts["2/evening"] = 1

	users := []User{casual, active}
	// Shift totals into the evening band so both pass the slot filter.
	users[0].TodayTotal = 45
	users[1].TodayTotal = 60

	e := testEngine(&fakeRepo{users: users}, hist, &fakeSender{}, fixedClock{now})
	got, err := e.selectCandidates(context.Background(), SlotEvening, localDate, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("selected %v, want only the active user with quota left", got)
	}

	// A second recorded send exhausts the active quota too.
	hist.counts["2/evening"] = 2
	got, err = e.selectCandidates(context.Background(), SlotEvening, localDate, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("selected %v, want nobody", got)
	}
}

func TestSelectCandidatesBatchBounds(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	var users []User
	for i := int64(1); i <= 25; i++ {
		users = append(users, User{ID: i, Name: fmt.Sprintf("u%d", i), TodayTotal: 0, TotalAllTime: 100, FirstActivity: daysAgo(now, 30)})
	}

	opts := DefaultOptions()
	opts.Jitter = 0
	for _, roll := range []int{0, 3, 7} {
		e := NewEngine(Deps{
			Repo:    &fakeRepo{users: users},
			History: newFakeHistory(),
			Sender:  &fakeSender{},
			Clock:   fixedClock{now},
			Rand:    fixedRand{n: roll},
		}, time.UTC, opts)

		got, err := e.selectCandidates(context.Background(), SlotMorning, now.Format(dateLayout), now)
		if err != nil {
			t.Fatal(err)
		}
		want := opts.BatchMin + roll
		if len(got) != want {
			t.Errorf("roll %d: batch size = %d, want %d", roll, len(got), want)
		}
		if len(got) > opts.BatchMax {
			t.Errorf("roll %d: batch %d exceeds maximum %d", roll, len(got), opts.BatchMax)
		}
	}
}
