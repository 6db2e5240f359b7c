package theme

import (
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		filled             int
	}{
		{0, 10, 20, 0},
		{5, 10, 20, 10},
		{10, 10, 20, 20},
		{12, 10, 20, 20},
		{1, 3, 9, 3},
	}
	for _, tt := range tests {
		got := ProgressBar(tt.done, tt.total, tt.width)
		if n := strings.Count(got, "█"); n != tt.filled {
			t.Errorf("ProgressBar(%d, %d, %d) filled = %d, want %d", tt.done, tt.total, tt.width, n, tt.filled)
		}
		if n := strings.Count(got, "░"); n != tt.width-tt.filled {
			t.Errorf("ProgressBar(%d, %d, %d) empty = %d, want %d", tt.done, tt.total, tt.width, n, tt.width-tt.filled)
		}
	}
}

func TestProgressBar_EmptyTotal(t *testing.T) {
	if got := ProgressBar(3, 0, 10); got != "" {
		t.Errorf("ProgressBar with zero total = %q, want empty", got)
	}
}
