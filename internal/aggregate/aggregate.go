// Package aggregate reconstructs "time spent today" from the session history
// plus any sessions still in progress. The full scan runs once at startup;
// afterwards the engine maintains the total incrementally.
package aggregate

import (
	"log"
	"time"

	"github.com/gametrack/gametrack/internal/models"
)

// SameDay reports whether two timestamps fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CompletedToday sums the durations of records whose start falls on now's
// calendar day. Malformed records are logged and skipped; history written by
// other tools must not take the monitor down.
func CompletedToday(records []models.SessionRecord, now time.Time) float64 {
	var total float64
	for i := range records {
		start, err := records[i].StartTime()
		if err != nil {
			log.Printf("skipping record %d: %v", records[i].Sequence, err)
			continue
		}
		if !SameDay(start, now) {
			continue
		}
		d, err := records[i].Duration()
		if err != nil {
			log.Printf("skipping record %d: %v", records[i].Sequence, err)
			continue
		}
		total += d.Seconds()
	}
	return total
}

// InProgress sums the elapsed seconds of every session still open. Callers
// that share entities across goroutines must hold their own lock.
func InProgress(entities []*models.TrackedEntity, now time.Time) float64 {
	var total float64
	for _, e := range entities {
		if e.Active && e.SessionStart != nil {
			total += now.Sub(*e.SessionStart).Seconds()
		}
	}
	return total
}

// TodayTotal returns today's play time in seconds: all completed sessions
// that started today plus the elapsed time of every session in progress.
//
// A session that started yesterday and is still open counts in full; day
// boundaries are not tracked mid-session.
func TodayTotal(records []models.SessionRecord, entities []*models.TrackedEntity, now time.Time) float64 {
	return CompletedToday(records, now) + InProgress(entities, now)
}
