package window

import "testing"

type MockSnapshotter struct {
	titles     []string
	titlesErr  error
	source     string
	available  bool
	closeError error
}

func (m *MockSnapshotter) Titles() ([]string, error) {
	return m.titles, m.titlesErr
}

func (m *MockSnapshotter) Source() string {
	return m.source
}

func (m *MockSnapshotter) IsAvailable() bool {
	return m.available
}

func (m *MockSnapshotter) Close() error {
	return m.closeError
}

func TestMockSnapshotter(t *testing.T) {
	var _ Snapshotter = (*MockSnapshotter)(nil)

	mock := &MockSnapshotter{
		titles:    []string{"Foo", "Terminal"},
		source:    "mock",
		available: true,
	}

	titles, err := mock.Titles()
	if err != nil {
		t.Errorf("Titles() error: %v", err)
	}
	if len(titles) != 2 {
		t.Errorf("Titles() returned %d titles, want 2", len(titles))
	}

	if !mock.IsAvailable() {
		t.Error("IsAvailable() = false, want true")
	}

	if mock.Source() != "mock" {
		t.Errorf("Source() = %s, want mock", mock.Source())
	}

	if err := mock.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
