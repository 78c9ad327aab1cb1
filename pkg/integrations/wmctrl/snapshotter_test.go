package wmctrl

import (
	"testing"
)

func TestParseListing(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name: "Typical listing",
			output: "0x03000003  0 host Foo\n" +
				"0x03800004  0 host Inbox - Google Chrome\n" +
				"0x04000005 -1 host Desktop\n",
			want: []string{"Foo", "Inbox - Google Chrome", "Desktop"},
		},
		{
			name:   "Title with spaces",
			output: "0x03000003  1 host ELDEN RING (TM)\n",
			want:   []string{"ELDEN RING (TM)"},
		},
		{
			name:   "Consecutive spaces inside title preserved",
			output: "0x03000003  1 host STAR WARS  Battlefront II\n",
			want:   []string{"STAR WARS  Battlefront II"},
		},
		{
			name:   "Empty output",
			output: "",
			want:   nil,
		},
		{
			name:   "Short line skipped",
			output: "0x03000003  0\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseListing(tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("parseListing() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("title %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewSnapshotter(t *testing.T) {
	s := NewSnapshotter()
	if s == nil {
		t.Fatal("NewSnapshotter() returned nil")
	}
	if s.Source() != "wmctrl" {
		t.Errorf("Source() = %s, want wmctrl", s.Source())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}
