package services

import "testing"

func TestScorePercentage(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		possible int
		want     float64
	}{
		{"zero possible scores", 0, 0, 0},
		{"zero score", 0, 10, 0},
		{"perfect score", 10, 10, 100},
		{"partial score", 3, 4, 75},
		{"rounds to two decimals", 1, 3, 33.33},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScorePercentage(tc.score, tc.possible)
			if got != tc.want {
				t.Errorf("ScorePercentage(%d, %d) = %v, want %v", tc.score, tc.possible, got, tc.want)
			}
		})
	}
}

func TestAttendancePercentage(t *testing.T) {
	tests := []struct {
		name     string
		attended int
		total    int
		want     float64
	}{
		{"no sessions held", 0, 0, 0},
		{"missed everything", 0, 5, 0},
		{"full attendance", 5, 5, 100},
		{"two of three", 2, 3, 66.67},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AttendancePercentage(tc.attended, tc.total)
			if got != tc.want {
				t.Errorf("AttendancePercentage(%d, %d) = %v, want %v", tc.attended, tc.total, got, tc.want)
			}
		})
	}
}
