package window

// Snapshotter enumerates the titles of all currently visible windows. One
// call is one atomic snapshot; the engine matches against the whole set.
type Snapshotter interface {
	// Titles returns the titles of all visible windows. Untitled windows
	// are omitted. Order is not significant.
	Titles() ([]string, error)

	// Source returns a short name for the enumeration mechanism
	// ("x11", "wmctrl").
	Source() string

	// IsAvailable checks if this snapshotter can run on the current system
	IsAvailable() bool

	// Close cleans up any resources used by the snapshotter
	Close() error
}
