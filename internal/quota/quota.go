// Package quota enforces a personal daily play-time budget. It is separate
// from title detection: the countdown runs while the user says they are
// playing, accumulates across process restarts through a small state file,
// and resets when the calendar day changes.
package quota

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/gametrack/gametrack/internal/aggregate"
)

// EventKind identifies a one-shot threshold crossing.
type EventKind int

const (
	// HalfRemaining fires when remaining time drops to half the budget.
	HalfRemaining EventKind = iota
	// TimeExceeded fires when remaining time reaches zero.
	TimeExceeded
)

// Event is emitted once per threshold per day. The presentation layer
// decides how to surface it; the timer owns no UI.
type Event struct {
	Kind      EventKind
	Remaining time.Duration
}

// State is the persisted quota state. Elapsed time and the warning flags
// only carry over within the same calendar day.
type State struct {
	DayStart       time.Time `json:"day_start"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	HalfWarned     bool      `json:"half_warned"`
	EndWarned      bool      `json:"end_warned"`
}

// LoadState reads the state file. A missing or unreadable file, or a state
// from a different day, yields a fresh state for now's day.
func LoadState(path string, now time.Time) State {
	fresh := State{DayStart: now}

	data, err := os.ReadFile(path)
	if err != nil {
		return fresh
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fresh
	}

	if !aggregate.SameDay(s.DayStart, now) {
		return fresh
	}

	return s
}

// SaveState writes the state file, creating parent directories as needed.
func SaveState(path string, s State) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "failed to create quota state directory")
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode quota state")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write quota state")
	}
	return nil
}

// Timer counts an active play period against the daily budget. Run is the
// only writer of state; Elapsed and Remaining are read concurrently by
// display code through the same lock.
type Timer struct {
	limit     time.Duration
	statePath string
	interval  time.Duration
	events    chan Event
	now       func() time.Time

	mu    sync.Mutex
	state State
}

// NewTimer loads persisted state and prepares a countdown against limit.
func NewTimer(limit time.Duration, statePath string, interval time.Duration) *Timer {
	t := &Timer{
		limit:     limit,
		statePath: statePath,
		interval:  interval,
		events:    make(chan Event, 2),
		now:       time.Now,
	}
	t.state = LoadState(statePath, t.now())
	return t
}

// Events delivers threshold crossings. Each kind fires at most once per day.
func (t *Timer) Events() <-chan Event {
	return t.events
}

// Elapsed returns the accumulated play time for today, excluding any run in
// progress. Safe to call while Run is counting.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Timer) elapsedLocked() time.Duration {
	return time.Duration(t.state.ElapsedSeconds * float64(time.Second))
}

// Remaining returns the budget left given extra already-running time. Safe
// to call while Run is counting.
func (t *Timer) Remaining(running time.Duration) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked(running)
}

func (t *Timer) remainingLocked(running time.Duration) time.Duration {
	return t.limit - t.elapsedLocked() - running
}

// Run counts one play period until ctx is cancelled, then returns its start
// and end. When shared is true the period is off the clock: nothing
// accumulates, nothing persists, no warnings fire.
func (t *Timer) Run(ctx context.Context, shared bool) (start, end time.Time, err error) {
	start = t.now()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if shared {
				continue
			}
			t.checkThresholds(t.now().Sub(start))
		}
	}

	end = t.now()

	if shared {
		return start, end, nil
	}

	t.mu.Lock()
	t.state.ElapsedSeconds += end.Sub(start).Seconds()
	snapshot := t.state
	t.mu.Unlock()

	if saveErr := SaveState(t.statePath, snapshot); saveErr != nil {
		return start, end, saveErr
	}
	return start, end, nil
}

// checkThresholds fires each warning at most once, gated by its persisted
// flag so a restart within the same day does not re-warn.
func (t *Timer) checkThresholds(running time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.remainingLocked(running)

	if remaining <= t.limit/2 && !t.state.HalfWarned {
		t.state.HalfWarned = true
		t.emit(Event{Kind: HalfRemaining, Remaining: remaining})
	}

	if remaining <= 0 && !t.state.EndWarned {
		t.state.EndWarned = true
		t.emit(Event{Kind: TimeExceeded, Remaining: remaining})
	}
}

// emit never blocks the countdown; if nobody is draining the channel the
// event is dropped.
func (t *Timer) emit(ev Event) {
	select {
	case t.events <- ev:
	default:
	}
}
