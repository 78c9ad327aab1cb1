package detector

import (
	"testing"
)

func TestNew(t *testing.T) {
	snap, err := New()
	if err != nil {
		t.Skipf("no window enumeration available: %v", err)
	}
	defer snap.Close()

	if snap.Source() == "" {
		t.Error("Source() is empty")
	}
	t.Logf("Selected snapshotter: %s", snap.Source())
}
