package tokenizer

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   \n", 0},
		{"one", 1},
		{"you are calm and safe", 6},
		{"one two three", 4},
	}
	for _, tt := range tests {
		if got := Estimate(tt.in); got != tt.want {
			t.Errorf("Estimate(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEstimateMessages(t *testing.T) {
	if got := EstimateMessages("one two three", "", "one"); got != 5 {
		t.Errorf("EstimateMessages = %d, want 5", got)
	}
}
