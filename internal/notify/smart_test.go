package notify

import (
	"context"
	"strings"
	"testing"
	"time"
)

type fakeStandings struct {
	rows []Standing
	err  error
}

func (f *fakeStandings) TodayStandings(ctx context.Context, localDate string) ([]Standing, error) {
	return f.rows, f.err
}

func newSmart(rows []Standing, sender *fakeSender, now time.Time) *SmartNotifier {
	return NewSmartNotifier(&fakeStandings{rows: rows}, sender, fixedClock{now}, time.UTC, 100, 20, nil)
}

func TestSmartEarlyBird(t *testing.T) {
	now := time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC)
	rows := []Standing{
		{UserID: 1, Name: "Leo", Total: 105},
		{UserID: 2, Name: "Ana", Total: 20},
		{UserID: 3, Name: "Mia", Total: 0},
	}
	sender := &fakeSender{}
	s := newSmart(rows, sender, now)

	s.EntryLogged(context.Background(), 1)

	// Everyone short of the goal hears about it, the early bird does not.
	if len(sender.sentTo(1)) != 0 {
		t.Error("trigger user was notified about their own feat")
	}
	for _, id := range []int64{2, 3} {
		got := sender.sentTo(id)
		if len(got) == 0 {
			t.Errorf("user %d received nothing", id)
			continue
		}
		if !strings.Contains(got[0].body, "Leo") {
			t.Errorf("user %d: body %q does not name the early bird", id, got[0].body)
		}
	}
}

func TestSmartEarlyBirdOutsideMorning(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	rows := []Standing{
		{UserID: 1, Name: "Leo", Total: 105},
		{UserID: 2, Name: "Ana", Total: 20},
	}
	sender := &fakeSender{}
	s := newSmart(rows, sender, now)

	s.EntryLogged(context.Background(), 1)

	for _, p := range sender.sent {
		if strings.Contains(p.body, "🌅") {
			t.Errorf("early bird fired at 10h: %q", p.body)
		}
	}
}

func TestSmartCloseRace(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	rows := []Standing{
		{UserID: 1, Name: "Leo", Total: 80},
		{UserID: 2, Name: "Ana", Total: 65},
	}
	sender := &fakeSender{}
	s := newSmart(rows, sender, now)

	s.EntryLogged(context.Background(), 2)

	got := sender.sentTo(2)
	if len(got) != 1 {
		t.Fatalf("second place received %d pushes, want 1", len(got))
	}
	if !strings.Contains(got[0].body, "15") || !strings.Contains(got[0].body, "Leo") {
		t.Errorf("body %q should name the leader and the 15 rep gap", got[0].body)
	}
	if len(sender.sentTo(1)) != 0 {
		t.Error("leader was nudged about the race")
	}
}

func TestSmartCloseRaceWideGapSilent(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	rows := []Standing{
		{UserID: 1, Name: "Leo", Total: 90},
		{UserID: 2, Name: "Ana", Total: 40},
	}
	sender := &fakeSender{}
	s := newSmart(rows, sender, now)

	s.EntryLogged(context.Background(), 2)

	if got := sender.sentTo(2); len(got) != 0 {
		t.Errorf("50 rep gap still produced a close race push: %v", got)
	}
}

func TestSmartLeadershipChange(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	rows := []Standing{
		{UserID: 2, Name: "Ana", Total: 70},
		{UserID: 1, Name: "Leo", Total: 60},
	}
	sender := &fakeSender{}
	s := newSmart(rows, sender, now)

	s.EntryLogged(context.Background(), 2)

	got := sender.sentTo(1)
	if len(got) == 0 {
		t.Fatal("dethroned leader received nothing")
	}
	var found bool
	for _, p := range got {
		if strings.Contains(p.body, "Führung") && strings.Contains(p.body, "Ana") {
			found = true
		}
	}
	if !found {
		t.Errorf("no leadership push naming Ana among %v", got)
	}
	if len(sender.sentTo(2)) != 0 {
		t.Error("new leader was notified about their own takeover")
	}
}

func TestSmartLazyReminder(t *testing.T) {
	now := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	rows := []Standing{
		{UserID: 1, Name: "Leo", Total: 40},
		{UserID: 9, Name: "Jonas", Total: 30},
		{UserID: 2, Name: "Ana", Total: 0},
		{UserID: 3, Name: "Mia", Total: 0},
	}
	sender := &fakeSender{}
	s := newSmart(rows, sender, now)

	s.EntryLogged(context.Background(), 9)

	for _, id := range []int64{2, 3} {
		got := sender.sentTo(id)
		if len(got) != 1 {
			t.Errorf("idle user %d received %d pushes, want 1", id, len(got))
			continue
		}
		if !strings.Contains(got[0].body, "Leo") {
			t.Errorf("body %q does not name the leader", got[0].body)
		}
	}
}

func TestSmartLazyReminderBeforeNoonSilent(t *testing.T) {
	now := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)
	rows := []Standing{
		{UserID: 1, Name: "Leo", Total: 40},
		{UserID: 9, Name: "Jonas", Total: 30},
		{UserID: 2, Name: "Ana", Total: 0},
	}
	sender := &fakeSender{}
	s := newSmart(rows, sender, now)

	s.EntryLogged(context.Background(), 9)

	if got := sender.sentTo(2); len(got) != 0 {
		t.Errorf("lazy reminder fired before noon: %v", got)
	}
}

func TestSmartCooldownOncePerDay(t *testing.T) {
	now := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	rows := []Standing{
		{UserID: 1, Name: "Leo", Total: 40},
		{UserID: 9, Name: "Jonas", Total: 30},
		{UserID: 2, Name: "Ana", Total: 0},
	}
	sender := &fakeSender{}
	s := newSmart(rows, sender, now)

	s.EntryLogged(context.Background(), 9)
	s.EntryLogged(context.Background(), 9)

	if got := sender.sentTo(2); len(got) != 1 {
		t.Errorf("lazy reminder fired %d times in one day, want 1", len(got))
	}
}

func TestSmartUnknownTriggerIgnored(t *testing.T) {
	now := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	rows := []Standing{{UserID: 1, Name: "Leo", Total: 40}}
	sender := &fakeSender{}
	s := newSmart(rows, sender, now)

	s.EntryLogged(context.Background(), 99)

	if len(sender.sent) != 0 {
		t.Errorf("unknown trigger produced %d pushes", len(sender.sent))
	}
}
