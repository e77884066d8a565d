package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Fakes shared by the engine tests
// --------------------------------------------------------------------------

type fakeRepo struct {
	users     []User
	goalUsers []User
	err       error
}

func (f *fakeRepo) UsersWithTotals(ctx context.Context, localDate string) ([]User, error) {
	return f.users, f.err
}

func (f *fakeRepo) UsersCloseToGoal(ctx context.Context, localDate string, goal, gap int) ([]User, error) {
	return f.goalUsers, f.err
}

type recordedSend struct {
	userID int64
	slot   TimeSlot
	body   string
}

type fakeHistory struct {
	mu       sync.Mutex
	counts   map[string]int            // "userID/slot" -> sends today
	bodies   map[int64]map[string]bool // userID -> bodies already sent today
	records  []recordedSend
	countErr error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		counts: make(map[string]int),
		bodies: make(map[int64]map[string]bool),
	}
}

func (f *fakeHistory) CountSentToday(ctx context.Context, userID int64, localDate string, slot TimeSlot) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[fmt.Sprintf("%d/%s", userID, slot)], f.countErr
}

func (f *fakeHistory) BodiesSentToday(ctx context.Context, userID int64, localDate string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.bodies[userID]))
	for b := range f.bodies[userID] {
		out[b] = true
	}
	return out, nil
}

func (f *fakeHistory) Record(ctx context.Context, userID int64, localDate string, slot TimeSlot, body string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[fmt.Sprintf("%d/%s", userID, slot)]++
	if f.bodies[userID] == nil {
		f.bodies[userID] = make(map[string]bool)
	}
	f.bodies[userID][body] = true
	f.records = append(f.records, recordedSend{userID: userID, slot: slot, body: body})
	return nil
}

type sentPush struct {
	userID int64
	title  string
	body   string
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentPush
	failFor map[int64]bool
}

func (f *fakeSender) Send(ctx context.Context, userID int64, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[userID] {
		return errors.New("endpoint gone")
	}
	f.sent = append(f.sent, sentPush{userID: userID, title: title, body: body})
	return nil
}

func (f *fakeSender) sentTo(userID int64) []sentPush {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentPush
	for _, p := range f.sent {
		if p.userID == userID {
			out = append(out, p)
		}
	}
	return out
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fixedRand pins every random decision: IntN returns the configured value
// capped at n-1, Shuffle keeps order.
type fixedRand struct{ n int }

func (r fixedRand) IntN(n int) int {
	if r.n >= n {
		return n - 1
	}
	return r.n
}

func (r fixedRand) Shuffle(n int, swap func(i, j int)) {}

func daysAgo(now time.Time, d int) *time.Time {
	t := now.AddDate(0, 0, -d)
	return &t
}

func testEngine(repo *fakeRepo, hist *fakeHistory, sender *fakeSender, clock Clock) *Engine {
	opts := DefaultOptions()
	opts.Jitter = 0
	opts.GoalJitter = 0
	return NewEngine(Deps{
		Repo:    repo,
		History: hist,
		Sender:  sender,
		Clock:   clock,
		Rand:    fixedRand{},
	}, time.UTC, opts)
}

// --------------------------------------------------------------------------
// RunCycle
// --------------------------------------------------------------------------

func TestRunCycleGatedOutsideSendWindow(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		hour  int
		gated bool
	}{
		{hour: 7, gated: true},
		{hour: 8, gated: false},
		{hour: 19, gated: false},
		{hour: 20, gated: true},
		{hour: 0, gated: true},
	}

	for _, tt := range tests {
		repo := &fakeRepo{}
		sender := &fakeSender{}
		e := testEngine(repo, newFakeHistory(), sender, fixedClock{day.Add(time.Duration(tt.hour) * time.Hour)})

		rep, err := e.RunCycle(context.Background(), SlotAfternoon)
		if err != nil {
			t.Fatalf("hour %d: unexpected error: %v", tt.hour, err)
		}
		if rep.Gated != tt.gated {
			t.Errorf("hour %d: gated = %v, want %v", tt.hour, rep.Gated, tt.gated)
		}
		if tt.gated && len(sender.sent) != 0 {
			t.Errorf("hour %d: gated cycle sent %d pushes", tt.hour, len(sender.sent))
		}
	}
}

func TestRunCycleMorningScenario(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := &fakeRepo{users: []User{
		{ID: 1, Name: "Ana", TodayTotal: 20, TotalAllTime: 1500, FirstActivity: daysAgo(now, 400)},
		{ID: 2, Name: "Leo", TodayTotal: 0, TotalAllTime: 10, FirstActivity: daysAgo(now, 2)},
		{ID: 3, Name: "Mia", TodayTotal: 0, TotalAllTime: 0, FirstActivity: nil},
	}}
	sender := &fakeSender{}
	hist := newFakeHistory()
	e := testEngine(repo, hist, sender, fixedClock{now})

	rep, err := e.RunCycle(context.Background(), SlotMorning)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	// Only Leo qualifies: Ana already trained today, Mia has no lifetime
	// entries at all.
	if rep.Selected != 1 || rep.Sent != 1 || rep.Failed != 0 {
		t.Fatalf("report = %+v, want selected=1 sent=1 failed=0", rep)
	}
	got := sender.sentTo(2)
	if len(got) != 1 {
		t.Fatalf("Leo received %d pushes, want 1", len(got))
	}
	if got[0].title != "Guten Morgen! 🌅" {
		t.Errorf("title = %q", got[0].title)
	}
	if !strings.Contains(got[0].body, "Leo") {
		t.Errorf("body %q does not mention the user", got[0].body)
	}
	if len(hist.records) != 1 || hist.records[0].slot != SlotMorning {
		t.Errorf("history records = %+v, want one morning record", hist.records)
	}
	if len(sender.sentTo(1))+len(sender.sentTo(3)) != 0 {
		t.Error("ineligible users were contacted")
	}
}

func TestRunCycleRepoErrorAborts(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	repo := &fakeRepo{err: errors.New("connection refused")}
	sender := &fakeSender{}
	e := testEngine(repo, newFakeHistory(), sender, fixedClock{now})

	if _, err := e.RunCycle(context.Background(), SlotAfternoon); err == nil {
		t.Fatal("expected error from failing repository")
	}
	if len(sender.sent) != 0 {
		t.Errorf("aborted cycle still sent %d pushes", len(sender.sent))
	}
}

func TestRunCycleSendFailureNotRecorded(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	repo := &fakeRepo{users: []User{
		{ID: 1, Name: "Ana", TodayTotal: 10, TotalAllTime: 500, FirstActivity: daysAgo(now, 30)},
		{ID: 2, Name: "Leo", TodayTotal: 20, TotalAllTime: 600, FirstActivity: daysAgo(now, 30)},
	}}
	sender := &fakeSender{failFor: map[int64]bool{1: true}}
	hist := newFakeHistory()
	e := testEngine(repo, hist, sender, fixedClock{now})

	rep, err := e.RunCycle(context.Background(), SlotAfternoon)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if rep.Sent != 1 || rep.Failed != 1 {
		t.Fatalf("report = %+v, want sent=1 failed=1", rep)
	}
	// Ana's failed push must not burn her quota; Leo's send is recorded.
	if len(hist.records) != 1 || hist.records[0].userID != 2 {
		t.Errorf("history records = %+v, want only user 2", hist.records)
	}
}

func TestRunCycleCloseToGoalPass(t *testing.T) {
	now := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		goalUsers: []User{
			{ID: 7, Name: "Pauline", TodayTotal: 85, TotalAllTime: 900, FirstActivity: daysAgo(now, 20)},
		},
	}
	sender := &fakeSender{}
	hist := newFakeHistory()
	e := testEngine(repo, hist, sender, fixedClock{now})

	rep, err := e.RunCycle(context.Background(), SlotEvening)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if rep.GoalSelected != 1 || rep.GoalSent != 1 {
		t.Fatalf("report = %+v, want goal_selected=1 goal_sent=1", rep)
	}
	got := sender.sentTo(7)
	if len(got) != 1 {
		t.Fatalf("Pauline received %d pushes, want 1", len(got))
	}
	if got[0].title != "Fast geschafft! 🎯" {
		t.Errorf("title = %q", got[0].title)
	}
	if !strings.Contains(got[0].body, "15") {
		t.Errorf("body %q does not mention the 15 missing reps", got[0].body)
	}
	if len(hist.records) != 1 || hist.records[0].slot != SlotCloseToGoal {
		t.Errorf("history records = %+v, want one closeToGoal record", hist.records)
	}
}

func TestRunCycleCloseToGoalOncePerDay(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		goalUsers: []User{
			{ID: 7, Name: "Pauline", TodayTotal: 85, TotalAllTime: 900, FirstActivity: daysAgo(now, 20)},
		},
	}
	sender := &fakeSender{}
	hist := newFakeHistory()
	e := testEngine(repo, hist, sender, fixedClock{now})

	// Pauline stays inside the gap all afternoon; three consecutive cycles
	// must still push her only once.
	for i := 0; i < 3; i++ {
		rep, err := e.RunCycle(context.Background(), SlotAfternoon)
		if err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		wantSent := 0
		if i == 0 {
			wantSent = 1
		}
		if rep.GoalSelected != wantSent || rep.GoalSent != wantSent {
			t.Fatalf("cycle %d: report = %+v, want goal_selected=%d goal_sent=%d", i, rep, wantSent, wantSent)
		}
	}
	if got := sender.sentTo(7); len(got) != 1 {
		t.Errorf("Pauline received %d pushes across three cycles, want 1", len(got))
	}
	if n := hist.counts["7/closeToGoal"]; n != 1 {
		t.Errorf("closeToGoal sends recorded today = %d, want 1", n)
	}
}

func TestRunCycleMorningHasNoGoalPass(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		goalUsers: []User{{ID: 7, Name: "Pauline", TodayTotal: 85, TotalAllTime: 900, FirstActivity: daysAgo(now, 20)}},
	}
	sender := &fakeSender{}
	e := testEngine(repo, newFakeHistory(), sender, fixedClock{now})

	rep, err := e.RunCycle(context.Background(), SlotMorning)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if rep.GoalSelected != 0 || len(sender.sent) != 0 {
		t.Errorf("morning cycle ran the close-to-goal pass: %+v", rep)
	}
}

// --------------------------------------------------------------------------
// SlotForHour
// --------------------------------------------------------------------------

func TestSlotForHour(t *testing.T) {
	tests := []struct {
		hour int
		want TimeSlot
	}{
		{8, SlotAfternoon},
		{9, SlotMorning},
		{12, SlotMorning},
		{13, SlotAfternoon},
		{16, SlotAfternoon},
		{17, SlotEvening},
		{19, SlotEvening},
		{20, SlotAfternoon},
	}
	for _, tt := range tests {
		if got := SlotForHour(tt.hour); got != tt.want {
			t.Errorf("SlotForHour(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}
