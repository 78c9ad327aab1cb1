package utils

import (
	"fmt"
	"time"
)

func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds > 3600 {
		return fmt.Sprintf("%dh", int64(seconds/3600))
	}
	return fmt.Sprintf("%dm", int64(seconds/60))
}

// FormatElapsed renders a duration as "1h23m45s", dropping leading zero
// units.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// FormatCountdown renders remaining time as "HH:MM:SS", clamping at zero.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
