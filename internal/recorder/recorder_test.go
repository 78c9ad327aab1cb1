package recorder

import (
	"fmt"
	"testing"
	"time"

	"github.com/gametrack/gametrack/internal/models"
)

type fakeSink struct {
	records   []*models.SessionRecord
	countErr  error
	appendErr error
}

func (s *fakeSink) Count() (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return int64(len(s.records)), nil
}

func (s *fakeSink) Append(record *models.SessionRecord) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append(s.records, record)
	return nil
}

func TestFinalizeRecordsQualifyingSession(t *testing.T) {
	sink := &fakeSink{}
	rec := New(sink, nil, 300)

	end := time.Date(2026, 8, 30, 21, 0, 0, 0, time.Local)
	start := end.Add(-6 * time.Minute)

	seconds, recorded := rec.Finalize("Foo", false, start, end)
	if !recorded {
		t.Fatal("Finalize() recorded = false, want true")
	}
	if seconds != 360 {
		t.Errorf("Finalize() seconds = %v, want 360", seconds)
	}
	if len(sink.records) != 1 {
		t.Fatalf("sink has %d records, want 1", len(sink.records))
	}

	got := sink.records[0]
	if got.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", got.Sequence)
	}
	if got.Start != "2026/08/30 20:54:00" || got.End != "2026/08/30 21:00:00" {
		t.Errorf("timestamps = %q - %q", got.Start, got.End)
	}
	if got.DisplayName != "Foo" || got.SharedSession {
		t.Errorf("record = %+v", got)
	}
}

func TestFinalizeSkipsShortSession(t *testing.T) {
	sink := &fakeSink{}
	rec := New(sink, nil, 300)

	end := time.Now()
	start := end.Add(-3 * time.Minute)

	seconds, recorded := rec.Finalize("Foo", false, start, end)
	if recorded || seconds != 0 {
		t.Errorf("Finalize() = (%v, %v), want (0, false)", seconds, recorded)
	}
	if len(sink.records) != 0 {
		t.Errorf("sink has %d records, want 0", len(sink.records))
	}
}

func TestFinalizeThresholdBoundary(t *testing.T) {
	end := time.Now()

	tests := []struct {
		name     string
		length   time.Duration
		recorded bool
	}{
		{"One second under", 299 * time.Second, false},
		{"Exactly at threshold", 300 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			rec := New(sink, nil, 300)

			_, recorded := rec.Finalize("Foo", false, end.Add(-tt.length), end)
			if recorded != tt.recorded {
				t.Errorf("Finalize() recorded = %v, want %v", recorded, tt.recorded)
			}
		})
	}
}

func TestFinalizeSkipsSharedSession(t *testing.T) {
	sink := &fakeSink{}
	rec := New(sink, nil, 300)

	end := time.Now()
	start := end.Add(-2 * time.Hour)

	seconds, recorded := rec.Finalize("Foo", true, start, end)
	if recorded || seconds != 0 {
		t.Errorf("Finalize() = (%v, %v), want (0, false)", seconds, recorded)
	}
	if len(sink.records) != 0 {
		t.Errorf("sink has %d records, want 0", len(sink.records))
	}
}

func TestFinalizeSequenceIncrements(t *testing.T) {
	sink := &fakeSink{}
	rec := New(sink, nil, 300)

	end := time.Now()
	for i := 1; i <= 3; i++ {
		start := end.Add(-10 * time.Minute)
		if _, recorded := rec.Finalize("Foo", false, start, end); !recorded {
			t.Fatalf("session %d not recorded", i)
		}
	}

	for i, r := range sink.records {
		if r.Sequence != int64(i+1) {
			t.Errorf("record %d Sequence = %d, want %d", i, r.Sequence, i+1)
		}
	}
}

func TestFinalizeSinkFailureIsSwallowed(t *testing.T) {
	sink := &fakeSink{appendErr: fmt.Errorf("sheet unavailable")}
	rec := New(sink, nil, 300)

	end := time.Now()
	start := end.Add(-10 * time.Minute)

	seconds, recorded := rec.Finalize("Foo", false, start, end)
	if recorded || seconds != 0 {
		t.Errorf("Finalize() = (%v, %v), want (0, false) on sink failure", seconds, recorded)
	}
}

func TestFinalizeCountFailureIsSwallowed(t *testing.T) {
	sink := &fakeSink{countErr: fmt.Errorf("sheet unavailable")}
	rec := New(sink, nil, 300)

	end := time.Now()
	start := end.Add(-10 * time.Minute)

	if _, recorded := rec.Finalize("Foo", false, start, end); recorded {
		t.Error("Finalize() recorded = true, want false on count failure")
	}
	if len(sink.records) != 0 {
		t.Errorf("sink has %d records, want 0", len(sink.records))
	}
}
