// Package engine reconciles tracked game state against window-title
// snapshots. One goroutine drives Tick at a fixed cadence and is the only
// writer of entity state; status reads happen concurrently through the same
// lock so play state is always observed as a consistent pair.
package engine

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gametrack/gametrack/internal/aggregate"
	"github.com/gametrack/gametrack/internal/config"
	"github.com/gametrack/gametrack/internal/match"
	"github.com/gametrack/gametrack/internal/models"
	"github.com/gametrack/gametrack/pkg/window"
)

// ErrNoEntities is returned when the catalog yields nothing to track.
var ErrNoEntities = errors.New("catalog contains no trackable entities")

// Finalizer closes out a finished session, returning the recorded seconds
// and whether a durable record was written.
type Finalizer interface {
	Finalize(displayName string, shared bool, start, end time.Time) (float64, bool)
}

// Status is a read-only view of the engine for display code.
type Status struct {
	Playing           []models.EntityStatus `json:"playing"`
	TodayTotalSeconds float64               `json:"today_total_seconds"`
	Degraded          bool                  `json:"degraded"`
}

// Engine is the per-tick reconciliation state machine.
type Engine struct {
	mu        sync.RWMutex
	entities  []*models.TrackedEntity
	hosts     []string
	excluded  map[string]struct{}
	snap      window.Snapshotter
	finalizer Finalizer
	now       func() time.Time

	// consecutive snapshot failures; at or past the threshold the engine
	// reports itself degraded
	snapFailures      int
	degradedThreshold int

	// seconds of completed sessions recorded on totalDay's calendar day
	completedToday float64
	totalDay       time.Time
}

// endedSession is a playing entity that went idle this tick, captured so the
// durable append can run outside the lock.
type endedSession struct {
	displayName string
	shared      bool
	start       time.Time
	end         time.Time
}

// New builds an engine over a fixed catalog. history seeds today's total so
// a restart does not forget sessions recorded earlier in the day.
func New(cfg *config.Config, entities []*models.TrackedEntity, snap window.Snapshotter, fin Finalizer, history []models.SessionRecord) (*Engine, error) {
	if len(entities) == 0 {
		return nil, ErrNoEntities
	}

	excluded := make(map[string]struct{}, len(cfg.Catalog.ExcludedTitles))
	for _, title := range cfg.Catalog.ExcludedTitles {
		excluded[title] = struct{}{}
	}

	e := &Engine{
		entities:          entities,
		hosts:             cfg.Catalog.BrowserHosts,
		excluded:          excluded,
		snap:              snap,
		finalizer:         fin,
		now:               time.Now,
		degradedThreshold: cfg.Monitor.DegradedThreshold,
	}

	now := e.now()
	e.completedToday = aggregate.CompletedToday(history, now)
	e.totalDay = now

	return e, nil
}

// Tick runs one reconciliation pass and returns the entities playing after
// it. Nothing escapes Tick: snapshot and sink failures are absorbed into
// the degraded signal and the error log.
func (e *Engine) Tick() []models.EntityStatus {
	titles, err := e.snap.Titles()
	if err != nil {
		// A failed enumeration is not evidence that games stopped.
		// Leave every entity as it was and count the failure.
		log.Printf("window snapshot failed: %v", err)
		e.mu.Lock()
		e.snapFailures++
		playing := e.playingLocked()
		e.mu.Unlock()
		return playing
	}

	titles = e.filterExcluded(titles)
	now := e.now()

	var ended []endedSession

	e.mu.Lock()
	e.snapFailures = 0
	e.rollDayLocked(now)

	for _, entity := range e.entities {
		detected := match.Detected(entity, titles, e.hosts)

		switch {
		case detected && !entity.Active:
			entity.StartSession(now)
			log.Printf("%s: session started", entity.DisplayName)

		case !detected && entity.Active:
			start, ok := entity.EndSession()
			if !ok {
				continue
			}
			ended = append(ended, endedSession{
				displayName: entity.DisplayName,
				shared:      entity.AllowSharedSession,
				start:       start,
				end:         now,
			})
		}
	}

	playing := e.playingLocked()
	e.mu.Unlock()

	// Appends may block on the durable sink; keep them off the lock so
	// status reads stay responsive.
	e.finalizeAll(ended)

	return playing
}

// finalizeAll records ended sessions and folds recorded seconds back into
// today's total.
func (e *Engine) finalizeAll(ended []endedSession) {
	for _, s := range ended {
		seconds, recorded := e.finalizer.Finalize(s.displayName, s.shared, s.start, s.end)
		if !recorded {
			continue
		}
		e.mu.Lock()
		e.rollDayLocked(s.end)
		e.completedToday += seconds
		e.mu.Unlock()
	}
}

// Shutdown finalizes every playing entity exactly once. Safe to call more
// than once; later calls find nothing playing.
func (e *Engine) Shutdown() {
	now := e.now()
	var ended []endedSession

	e.mu.Lock()
	for _, entity := range e.entities {
		if !entity.Active {
			continue
		}
		start, ok := entity.EndSession()
		if !ok {
			continue
		}
		ended = append(ended, endedSession{
			displayName: entity.DisplayName,
			shared:      entity.AllowSharedSession,
			start:       start,
			end:         now,
		})
	}
	e.mu.Unlock()

	e.finalizeAll(ended)
}

// Playing returns a copy of the currently playing entities.
func (e *Engine) Playing() []models.EntityStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.playingLocked()
}

// TodayTotalSeconds returns today's play time: completed sessions recorded
// today plus the elapsed time of every running session. Read-only; safe at
// any cadence alongside the tick loop.
func (e *Engine) TodayTotalSeconds() float64 {
	now := e.now()

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.todayTotalLocked(now)
}

// Degraded reports whether window enumeration has failed enough consecutive
// times that the engine's view of the desktop cannot be trusted.
func (e *Engine) Degraded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapFailures >= e.degradedThreshold
}

// Status returns everything display code needs in one consistent read.
func (e *Engine) Status() Status {
	now := e.now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	return Status{
		Playing:           e.playingLocked(),
		TodayTotalSeconds: e.todayTotalLocked(now),
		Degraded:          e.snapFailures >= e.degradedThreshold,
	}
}

// todayTotalLocked sums the completed-today counter (when still on today's
// day) with every running session. Callers hold at least a read lock.
func (e *Engine) todayTotalLocked(now time.Time) float64 {
	var total float64
	if aggregate.SameDay(e.totalDay, now) {
		total = e.completedToday
	}
	return total + aggregate.InProgress(e.entities, now)
}

// playingLocked copies the playing set. Callers hold at least a read lock.
func (e *Engine) playingLocked() []models.EntityStatus {
	var playing []models.EntityStatus
	for _, entity := range e.entities {
		if entity.Active && entity.SessionStart != nil {
			playing = append(playing, models.EntityStatus{
				DisplayName:  entity.DisplayName,
				SessionStart: *entity.SessionStart,
			})
		}
	}
	return playing
}

// rollDayLocked resets the completed-today sum on the first write after a
// day change. Callers hold the write lock.
func (e *Engine) rollDayLocked(now time.Time) {
	if !aggregate.SameDay(e.totalDay, now) {
		e.completedToday = 0
		e.totalDay = now
	}
}

// filterExcluded drops titles on the exclusion list (our own windows, known
// system chrome) before matching.
func (e *Engine) filterExcluded(titles []string) []string {
	if len(e.excluded) == 0 {
		return titles
	}
	filtered := titles[:0:0]
	for _, title := range titles {
		if _, ok := e.excluded[title]; !ok {
			filtered = append(filtered, title)
		}
	}
	return filtered
}
