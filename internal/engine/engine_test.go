package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/gametrack/gametrack/internal/config"
	"github.com/gametrack/gametrack/internal/models"
)

type fakeSnapshotter struct {
	titles []string
	err    error
}

func (s *fakeSnapshotter) Titles() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.titles, nil
}

func (s *fakeSnapshotter) Source() string    { return "fake" }
func (s *fakeSnapshotter) IsAvailable() bool { return true }
func (s *fakeSnapshotter) Close() error      { return nil }

type finalizeCall struct {
	displayName string
	shared      bool
	start       time.Time
	end         time.Time
}

type fakeFinalizer struct {
	calls   []finalizeCall
	seconds float64
	record  bool
}

func (f *fakeFinalizer) Finalize(displayName string, shared bool, start, end time.Time) (float64, bool) {
	f.calls = append(f.calls, finalizeCall{displayName, shared, start, end})
	if !f.record {
		return 0, false
	}
	return f.seconds, true
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Catalog.BrowserHosts = []string{"Google Chrome"}
	cfg.Catalog.ExcludedTitles = []string{"gametrack"}
	return cfg
}

func newTestEngine(t *testing.T, entities []*models.TrackedEntity, snap *fakeSnapshotter, fin *fakeFinalizer, at time.Time) *Engine {
	t.Helper()
	e, err := New(testConfig(), entities, snap, fin, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	e.now = func() time.Time { return at }
	// reseed the day tracking with the fake clock
	e.totalDay = at
	return e
}

func checkInvariant(t *testing.T, entities []*models.TrackedEntity) {
	t.Helper()
	for _, e := range entities {
		if e.Active != (e.SessionStart != nil) {
			t.Errorf("%s: Active = %v but SessionStart = %v", e.DisplayName, e.Active, e.SessionStart)
		}
	}
}

func TestNewRequiresEntities(t *testing.T) {
	_, err := New(testConfig(), nil, &fakeSnapshotter{}, &fakeFinalizer{}, nil)
	if err != ErrNoEntities {
		t.Errorf("New() error = %v, want ErrNoEntities", err)
	}
}

func TestBrowserHostedTitleDoesNotStartNonBrowserGame(t *testing.T) {
	entities := []*models.TrackedEntity{
		{DisplayName: "Foo", MatchToken: "Foo"},
	}
	snap := &fakeSnapshotter{titles: []string{"Foo - Google Chrome"}}
	e := newTestEngine(t, entities, snap, &fakeFinalizer{}, time.Now())

	playing := e.Tick()
	if len(playing) != 0 {
		t.Errorf("Tick() returned %d playing, want 0", len(playing))
	}
	if entities[0].Active {
		t.Error("entity went active on a browser-hosted title")
	}
	checkInvariant(t, entities)
}

func TestBrowserGameStartsInsideBrowser(t *testing.T) {
	entities := []*models.TrackedEntity{
		{DisplayName: "Foo", MatchToken: "Foo", AllowInBrowserHost: true},
	}
	snap := &fakeSnapshotter{titles: []string{"Foo - Google Chrome"}}
	now := time.Date(2026, 8, 30, 20, 0, 0, 0, time.Local)
	e := newTestEngine(t, entities, snap, &fakeFinalizer{}, now)

	playing := e.Tick()
	if len(playing) != 1 {
		t.Fatalf("Tick() returned %d playing, want 1", len(playing))
	}
	if !entities[0].Active || entities[0].SessionStart == nil {
		t.Fatal("entity did not transition to playing")
	}
	if !entities[0].SessionStart.Equal(now) {
		t.Errorf("SessionStart = %v, want %v", entities[0].SessionStart, now)
	}
	checkInvariant(t, entities)
}

func TestSessionEndsWhenTitleDisappears(t *testing.T) {
	entities := []*models.TrackedEntity{
		{DisplayName: "Foo", MatchToken: "Foo"},
	}
	snap := &fakeSnapshotter{titles: []string{"Foo"}}
	fin := &fakeFinalizer{seconds: 360, record: true}

	start := time.Date(2026, 8, 30, 20, 0, 0, 0, time.Local)
	e := newTestEngine(t, entities, snap, fin, start)

	e.Tick()
	if !entities[0].Active {
		t.Fatal("entity did not start playing")
	}

	// six minutes later the window is gone
	end := start.Add(6 * time.Minute)
	e.now = func() time.Time { return end }
	snap.titles = nil

	playing := e.Tick()
	if len(playing) != 0 {
		t.Errorf("Tick() returned %d playing, want 0", len(playing))
	}
	if len(fin.calls) != 1 {
		t.Fatalf("Finalize called %d times, want 1", len(fin.calls))
	}
	call := fin.calls[0]
	if call.displayName != "Foo" || call.shared {
		t.Errorf("Finalize call = %+v", call)
	}
	if got := call.end.Sub(call.start); got != 6*time.Minute {
		t.Errorf("session duration = %v, want 6m", got)
	}
	if got := e.TodayTotalSeconds(); got != 360 {
		t.Errorf("TodayTotalSeconds() = %v, want 360", got)
	}
	checkInvariant(t, entities)
}

func TestContinuedSessionIsNoOp(t *testing.T) {
	entities := []*models.TrackedEntity{
		{DisplayName: "Foo", MatchToken: "Foo"},
	}
	snap := &fakeSnapshotter{titles: []string{"Foo"}}
	fin := &fakeFinalizer{}

	start := time.Date(2026, 8, 30, 20, 0, 0, 0, time.Local)
	e := newTestEngine(t, entities, snap, fin, start)

	e.Tick()
	firstStart := *entities[0].SessionStart

	e.now = func() time.Time { return start.Add(time.Minute) }
	e.Tick()

	if len(fin.calls) != 0 {
		t.Errorf("Finalize called %d times on a continued session", len(fin.calls))
	}
	if !entities[0].SessionStart.Equal(firstStart) {
		t.Error("SessionStart changed while the session continued")
	}
}

func TestExcludedTitlesNeverMatch(t *testing.T) {
	entities := []*models.TrackedEntity{
		{DisplayName: "gametrack", MatchToken: "gametrack"},
	}
	snap := &fakeSnapshotter{titles: []string{"gametrack"}}
	e := newTestEngine(t, entities, snap, &fakeFinalizer{}, time.Now())

	if playing := e.Tick(); len(playing) != 0 {
		t.Error("engine detected its own excluded window title")
	}
}

func TestSnapshotFailureKeepsSessionsAlive(t *testing.T) {
	entities := []*models.TrackedEntity{
		{DisplayName: "Foo", MatchToken: "Foo"},
	}
	snap := &fakeSnapshotter{titles: []string{"Foo"}}
	fin := &fakeFinalizer{}
	e := newTestEngine(t, entities, snap, fin, time.Now())

	e.Tick()
	if !entities[0].Active {
		t.Fatal("entity did not start playing")
	}

	snap.err = fmt.Errorf("enumeration failed")
	playing := e.Tick()

	if len(playing) != 1 {
		t.Errorf("Tick() returned %d playing after failed snapshot, want 1", len(playing))
	}
	if !entities[0].Active {
		t.Error("entity force-ended on a single failed snapshot")
	}
	if len(fin.calls) != 0 {
		t.Errorf("Finalize called %d times on a failed snapshot", len(fin.calls))
	}
}

func TestDegradedAfterConsecutiveFailures(t *testing.T) {
	entities := []*models.TrackedEntity{
		{DisplayName: "Foo", MatchToken: "Foo"},
	}
	snap := &fakeSnapshotter{err: fmt.Errorf("enumeration failed")}
	e := newTestEngine(t, entities, snap, &fakeFinalizer{}, time.Now())

	for i := 0; i < 4; i++ {
		e.Tick()
		if e.Degraded() {
			t.Fatalf("Degraded() = true after %d failures", i+1)
		}
	}

	e.Tick()
	if !e.Degraded() {
		t.Error("Degraded() = false after 5 consecutive failures")
	}

	// one good snapshot clears the signal
	snap.err = nil
	e.Tick()
	if e.Degraded() {
		t.Error("Degraded() = true after a successful snapshot")
	}
}

func TestShutdownDrainsPlayingEntities(t *testing.T) {
	entities := []*models.TrackedEntity{
		{DisplayName: "Foo", MatchToken: "Foo"},
		{DisplayName: "Bar", MatchToken: "Bar"},
		{DisplayName: "Baz", MatchToken: "Baz"},
	}
	snap := &fakeSnapshotter{titles: []string{"Foo", "Bar"}}
	fin := &fakeFinalizer{}
	e := newTestEngine(t, entities, snap, fin, time.Now())

	e.Tick()
	e.Shutdown()

	if len(fin.calls) != 2 {
		t.Fatalf("Finalize called %d times on shutdown, want 2", len(fin.calls))
	}
	checkInvariant(t, entities)

	// a second shutdown finds nothing playing
	e.Shutdown()
	if len(fin.calls) != 2 {
		t.Errorf("Finalize called %d times after double shutdown, want 2", len(fin.calls))
	}
}

func TestTodayTotalSeededFromHistory(t *testing.T) {
	now := time.Date(2026, 8, 30, 20, 0, 0, 0, time.Local)
	history := []models.SessionRecord{
		{
			Sequence:    1,
			Start:       models.FormatTime(now.Add(-2 * time.Hour)),
			End:         models.FormatTime(now.Add(-90 * time.Minute)),
			DisplayName: "Foo",
		},
		{
			Sequence:    2,
			Start:       models.FormatTime(now.AddDate(0, 0, -1)),
			End:         models.FormatTime(now.AddDate(0, 0, -1).Add(time.Hour)),
			DisplayName: "Foo",
		},
	}

	entities := []*models.TrackedEntity{
		{DisplayName: "Foo", MatchToken: "Foo"},
	}
	e, err := New(testConfig(), entities, &fakeSnapshotter{}, &fakeFinalizer{}, history)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	e.now = func() time.Time { return now }
	e.totalDay = now
	e.completedToday = 1800 // yesterday's record must not be included

	if got := e.TodayTotalSeconds(); got != 1800 {
		t.Errorf("TodayTotalSeconds() = %v, want 1800", got)
	}
}

func TestStatusIsConsistent(t *testing.T) {
	entities := []*models.TrackedEntity{
		{DisplayName: "Foo", MatchToken: "Foo"},
	}
	snap := &fakeSnapshotter{titles: []string{"Foo"}}
	start := time.Date(2026, 8, 30, 20, 0, 0, 0, time.Local)
	e := newTestEngine(t, entities, snap, &fakeFinalizer{}, start)

	e.Tick()
	e.now = func() time.Time { return start.Add(2 * time.Minute) }

	status := e.Status()
	if len(status.Playing) != 1 {
		t.Fatalf("Status().Playing has %d entries, want 1", len(status.Playing))
	}
	if status.TodayTotalSeconds != 120 {
		t.Errorf("Status().TodayTotalSeconds = %v, want 120", status.TodayTotalSeconds)
	}
	if status.Degraded {
		t.Error("Status().Degraded = true, want false")
	}
	if got := status.Playing[0].Elapsed(e.now()); got != 2*time.Minute {
		t.Errorf("Elapsed() = %v, want 2m", got)
	}
}
