// Package wmctrl enumerates window titles by shelling out to wmctrl. It is
// the fallback when a native X connection is not available.
package wmctrl

import (
	"fmt"
	"os/exec"
	"strings"
)

// Snapshotter implements window.Snapshotter via the wmctrl command
type Snapshotter struct {
	hasWmctrl bool
}

// NewSnapshotter creates a new wmctrl-based snapshotter
func NewSnapshotter() *Snapshotter {
	s := &Snapshotter{}
	_, err := exec.LookPath("wmctrl")
	s.hasWmctrl = err == nil
	return s
}

// Source returns "wmctrl"
func (s *Snapshotter) Source() string {
	return "wmctrl"
}

// IsAvailable checks if wmctrl is installed
func (s *Snapshotter) IsAvailable() bool {
	return s.hasWmctrl
}

// Close is a no-op; each snapshot is its own process invocation
func (s *Snapshotter) Close() error {
	return nil
}

// Titles runs `wmctrl -l` and extracts the title column from each line.
func (s *Snapshotter) Titles() ([]string, error) {
	if !s.hasWmctrl {
		return nil, fmt.Errorf("wmctrl not available in PATH")
	}

	output, err := exec.Command("wmctrl", "-l").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute wmctrl: %w", err)
	}

	return parseListing(string(output)), nil
}

// parseListing extracts titles from wmctrl -l output. Each line is
// "<window id> <desktop> <host> <title...>"; the title may contain spaces,
// including consecutive ones, and must come through verbatim.
func parseListing(output string) []string {
	var titles []string
	for _, line := range strings.Split(output, "\n") {
		if title, ok := splitTitle(line); ok {
			titles = append(titles, title)
		}
	}
	return titles
}

// splitTitle skips the window id, desktop and host columns and returns the
// rest of the line as the title, preserving its internal whitespace.
func splitTitle(line string) (string, bool) {
	rest := line
	for i := 0; i < 3; i++ {
		rest = strings.TrimLeft(rest, " \t")
		cut := strings.IndexAny(rest, " \t")
		if cut < 0 {
			return "", false
		}
		rest = rest[cut:]
	}
	title := strings.TrimLeft(rest, " \t")
	return title, title != ""
}
