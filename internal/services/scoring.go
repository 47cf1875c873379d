package services

import "math"

const (
	// baseScore is awarded for any correct answer; the same amount again is
	// the maximum speed bonus.
	baseScore  = 500
	speedBonus = 500
)

// computeScore returns the points for one answer. Incorrect answers score
// zero. Untimed questions award the flat base. Timed questions add a bonus
// that decays linearly with the fraction of the allowance spent; answering
// after the allowance still earns the base.
func computeScore(isCorrect bool, timeLimit int, timeSpent float64) int {
	if !isCorrect {
		return 0
	}
	if timeLimit <= 0 {
		return baseScore
	}

	remaining := (float64(timeLimit) - timeSpent) / float64(timeLimit)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > 1 {
		remaining = 1
	}

	return int(math.Round(baseScore + speedBonus*remaining))
}
