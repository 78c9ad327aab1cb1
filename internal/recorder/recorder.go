// Package recorder turns finished sessions into durable records. It owns the
// recording policy: shared sessions are never written, sessions under the
// minimum duration are discarded, everything else gets exactly one append
// with the next sequence number.
package recorder

import (
	"log"
	"time"

	"github.com/gametrack/gametrack/internal/models"
)

// Sink is the durable append-only store for session records.
type Sink interface {
	// Count returns the number of records already stored.
	Count() (int64, error)

	// Append stores one record. Implementations must never mutate or
	// reorder previously stored records.
	Append(record *models.SessionRecord) error
}

// ErrorStore receives operational failures that should survive the process,
// with enough context to re-enter a lost session by hand.
type ErrorStore interface {
	CreateErrorLog(errorLog *models.ErrorLog) error
}

// Recorder applies the recording policy for completed sessions.
type Recorder struct {
	sink           Sink
	errs           ErrorStore
	minPlaySeconds float64
}

// New creates a recorder recording only sessions of at least minPlaySeconds.
// errs may be nil when durable error logging is not available (for example
// before the database is up).
func New(sink Sink, errs ErrorStore, minPlaySeconds float64) *Recorder {
	return &Recorder{
		sink:           sink,
		errs:           errs,
		minPlaySeconds: minPlaySeconds,
	}
}

// Finalize closes a session for the named game and applies the recording
// policy. It returns the recorded duration in seconds and whether a record
// was written. Sink failures are logged and swallowed: a dropped record is
// reported data loss, never a crash.
func (r *Recorder) Finalize(displayName string, shared bool, start, end time.Time) (float64, bool) {
	if shared {
		log.Printf("%s: shared session, not recorded", displayName)
		return 0, false
	}

	playSeconds := end.Sub(start).Seconds()
	if playSeconds < r.minPlaySeconds {
		log.Printf("%s: played under %.0f minutes, not recorded", displayName, r.minPlaySeconds/60)
		return 0, false
	}

	count, err := r.sink.Count()
	if err != nil {
		r.reportLost(displayName, start, end, err)
		return 0, false
	}

	record := &models.SessionRecord{
		Sequence:      count + 1,
		Start:         models.FormatTime(start),
		End:           models.FormatTime(end),
		DisplayName:   displayName,
		SharedSession: shared,
	}

	if err := r.sink.Append(record); err != nil {
		r.reportLost(displayName, start, end, err)
		return 0, false
	}

	duration := end.Sub(start).Seconds()
	log.Printf("%s: recorded session #%d (%.0fs)", displayName, record.Sequence, duration)
	return duration, true
}

// reportLost logs a session that could not be persisted. The log line
// carries the full record so it can be re-entered manually.
func (r *Recorder) reportLost(displayName string, start, end time.Time, err error) {
	log.Printf("lost session for %s (%s - %s): %v",
		displayName, models.FormatTime(start), models.FormatTime(end), err)

	if r.errs == nil {
		return
	}

	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		ErrorMsg: "lost session for " + displayName +
			" (" + models.FormatTime(start) + " - " + models.FormatTime(end) + "): " + err.Error(),
	}
	if dbErr := r.errs.CreateErrorLog(errorLog); dbErr != nil {
		log.Printf("failed to store error log: %v (original error: %v)", dbErr, err)
	}
}
