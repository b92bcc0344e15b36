package services

import (
	"math"

	"sports-match-system/models"
)

// Match reward constants. Fixed per finalized match; the values are stamped
// onto the match row at result recording so a later constant change cannot
// alter an already-analyzed match.
const (
	MatchWinnerXp = 100
	MatchWinnerRp = 20
	MatchLoserXp  = 25
)

// RpAccuracyThreshold is the minimum accuracy for a challenge attempt to pay
// out RP. Below it the attempt earns XP only.
const RpAccuracyThreshold = 0.80

// DifficultyMultiplier returns the XP multiplier for a challenge difficulty.
// Unknown difficulties fall back to 1.0.
func DifficultyMultiplier(difficulty string) float64 {
	switch difficulty {
	case models.DifficultyEasy:
		return 1.0
	case models.DifficultyMedium:
		return 1.5
	case models.DifficultyHard:
		return 2.0
	default:
		return 1.0
	}
}

// ComputeChallengeReward calculates the XP and RP earned by an attempt.
// XP scales with accuracy and difficulty; RP is all-or-nothing on the
// accuracy threshold. A zero maxValue earns nothing.
func ComputeChallengeReward(baseXp, baseRp int, difficulty string, scoreValue, maxValue int) (xp int, rp int) {
	if maxValue == 0 {
		return 0, 0
	}
	accuracy := float64(scoreValue) / float64(maxValue)
	xp = int(math.Round(float64(baseXp) * accuracy * DifficultyMultiplier(difficulty)))
	if accuracy >= RpAccuracyThreshold {
		rp = baseRp
	}
	return xp, rp
}
