package services

import "testing"

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name      string
		isCorrect bool
		timeLimit int
		timeSpent float64
		want      int
	}{
		{"incorrect scores zero", false, 30, 1, 0},
		{"incorrect untimed scores zero", false, 0, 1, 0},
		{"untimed correct gets base", true, 0, 42.5, 500},
		{"negative limit treated as untimed", true, -10, 1, 500},
		{"instant answer gets full bonus", true, 30, 0, 1000},
		{"half time gets half bonus", true, 30, 15, 750},
		{"full time gets base only", true, 30, 30, 500},
		{"over time still gets base", true, 30, 45, 500},
		{"negative spent clamps to full bonus", true, 30, -5, 1000},
		{"rounding to nearest point", true, 3, 1, 833},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeScore(tt.isCorrect, tt.timeLimit, tt.timeSpent)
			if got != tt.want {
				t.Errorf("computeScore(%v, %d, %v) = %d, want %d",
					tt.isCorrect, tt.timeLimit, tt.timeSpent, got, tt.want)
			}
		})
	}
}
