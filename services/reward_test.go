package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDifficultyMultiplier(t *testing.T) {
	tests := []struct {
		difficulty string
		want       float64
	}{
		{"easy", 1.0},
		{"medium", 1.5},
		{"hard", 2.0},
		{"nightmare", 1.0},
		{"", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.difficulty, func(t *testing.T) {
			assert.Equal(t, tt.want, DifficultyMultiplier(tt.difficulty))
		})
	}
}

func TestComputeChallengeReward(t *testing.T) {
	tests := []struct {
		name       string
		baseXp     int
		baseRp     int
		difficulty string
		score      int
		max        int
		wantXp     int
		wantRp     int
	}{
		{"perfect medium", 100, 10, "medium", 10, 10, 150, 10},
		{"80 percent medium earns rp", 100, 10, "medium", 8, 10, 120, 10},
		{"below threshold no rp", 100, 10, "medium", 7, 10, 105, 0},
		{"perfect hard doubles xp", 100, 10, "hard", 10, 10, 200, 10},
		{"easy partial", 100, 10, "easy", 5, 10, 50, 0},
		{"zero max earns nothing", 100, 10, "easy", 0, 0, 0, 0},
		{"unknown difficulty falls back to 1x", 100, 10, "weird", 10, 10, 100, 10},
		{"zero score", 100, 10, "easy", 0, 10, 0, 0},
		{"rounding", 50, 5, "medium", 7, 10, 53, 0}, // 50 * 0.7 * 1.5 = 52.5 rounds to 53
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xp, rp := ComputeChallengeReward(tt.baseXp, tt.baseRp, tt.difficulty, tt.score, tt.max)
			assert.Equal(t, tt.wantXp, xp, "xp")
			assert.Equal(t, tt.wantRp, rp, "rp")
		})
	}
}
