package detector

import (
	"fmt"
	"os"

	"github.com/gametrack/gametrack/pkg/integrations/wmctrl"
	"github.com/gametrack/gametrack/pkg/integrations/x11"
	"github.com/gametrack/gametrack/pkg/window"
)

// New picks a window snapshotter for the current system: a native X
// connection when a display is reachable, wmctrl otherwise.
func New() (window.Snapshotter, error) {
	if os.Getenv("DISPLAY") != "" {
		snap, err := x11.NewSnapshotter()
		if err == nil {
			return snap, nil
		}
	}

	snap := wmctrl.NewSnapshotter()
	if snap.IsAvailable() {
		return snap, nil
	}

	return nil, fmt.Errorf("no window enumeration available (X display or wmctrl required)")
}
