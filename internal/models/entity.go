package models

import "time"

// TrackedEntity is one row of the game catalog: an immutable matching rule
// plus the mutable play state the engine drives through its tick loop.
type TrackedEntity struct {
	// DisplayName is the user-facing label and the name written into
	// session records on completion.
	DisplayName string

	// MatchToken must appear as a substring of an observed window title
	// for the entity to be considered detected.
	MatchToken string

	// AllowInBrowserHost keeps a match valid even when the title also
	// looks like a browser window. Without it a token that shows up inside
	// a browser tab title is rejected.
	AllowInBrowserHost bool

	// AllowSharedSession marks sessions as off the clock: they are never
	// persisted regardless of duration.
	AllowSharedSession bool

	// Mutable play state. Active and SessionStart are set and cleared
	// together, only by the engine.
	Active       bool
	SessionStart *time.Time
}

// StartSession marks the entity as playing since now.
func (e *TrackedEntity) StartSession(now time.Time) {
	start := now
	e.Active = true
	e.SessionStart = &start
}

// EndSession clears the play state and returns the session start.
// The second return is false if the entity was not playing.
func (e *TrackedEntity) EndSession() (time.Time, bool) {
	if !e.Active || e.SessionStart == nil {
		e.Active = false
		e.SessionStart = nil
		return time.Time{}, false
	}
	start := *e.SessionStart
	e.Active = false
	e.SessionStart = nil
	return start, true
}

// EntityStatus is a read-only copy of an entity's play state, safe to hand
// to display code while the engine keeps mutating the original.
type EntityStatus struct {
	DisplayName  string    `json:"display_name"`
	SessionStart time.Time `json:"session_start"`
}

// Elapsed returns how long the session has been running as of now.
func (s EntityStatus) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.SessionStart)
}
