// Package match decides whether observed window titles count as evidence of
// a tracked game being active. Matching is a plain substring check over
// human-visible titles; it never inspects processes.
package match

import (
	"strings"

	"github.com/gametrack/gametrack/internal/models"
)

// BrowserHosted reports whether a title also looks like a browser window,
// i.e. contains any configured browser host name.
func BrowserHosted(title string, browserHosts []string) bool {
	for _, host := range browserHosts {
		if strings.Contains(title, host) {
			return true
		}
	}
	return false
}

// Title reports whether a single observed title matches the entity.
//
// A browser game matches wherever its token appears, hosted or native. A
// non-browser game is rejected when the title also resembles a browser
// window, so a game name showing up inside a browser tab title is not
// credited as play time.
func Title(e *models.TrackedEntity, title string, browserHosts []string) bool {
	if !strings.Contains(title, e.MatchToken) {
		return false
	}

	if e.AllowInBrowserHost {
		return true
	}

	return !BrowserHosted(title, browserHosts)
}

// Detected reports whether any title in the snapshot matches the entity.
func Detected(e *models.TrackedEntity, titles []string, browserHosts []string) bool {
	for _, title := range titles {
		if Title(e, title, browserHosts) {
			return true
		}
	}
	return false
}
