package models

import (
	"fmt"
	"time"
)

// TimeLayout is the wire format for session timestamps: local time, second
// precision, no timezone offset. The same layout is used for storage and
// round-trip parsing.
const TimeLayout = "2006/01/02 15:04:05"

// SessionRecord is one completed play session. The table is append-only:
// records are never updated or deleted by this program.
type SessionRecord struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Sequence      int64  `gorm:"not null;uniqueIndex" json:"sequence"`
	Start         string `gorm:"not null" json:"start"`
	End           string `gorm:"not null" json:"end"`
	DisplayName   string `gorm:"not null;index" json:"display_name"`
	SharedSession bool   `gorm:"not null;default:false" json:"shared_session"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// FormatTime renders a timestamp in the wire format.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTime parses a wire-format timestamp in local time.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// StartTime parses the record's start timestamp.
func (r *SessionRecord) StartTime() (time.Time, error) {
	return ParseTime(r.Start)
}

// EndTime parses the record's end timestamp.
func (r *SessionRecord) EndTime() (time.Time, error) {
	return ParseTime(r.End)
}

// Duration returns end minus start, or an error if either timestamp is
// malformed or the interval is not positive.
func (r *SessionRecord) Duration() (time.Duration, error) {
	start, err := r.StartTime()
	if err != nil {
		return 0, err
	}
	end, err := r.EndTime()
	if err != nil {
		return 0, err
	}
	d := end.Sub(start)
	if d <= 0 {
		return 0, fmt.Errorf("record %d: end %q is not after start %q", r.Sequence, r.End, r.Start)
	}
	return d, nil
}
