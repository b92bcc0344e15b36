package models

import "time"

// Challenge difficulties and their reward multipliers (see services.DifficultyMultiplier).
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Tracked shot types. Attempts for these also feed the made/attempted
// counters on PlayerStats.
const (
	ChallengeTypeThreePoint = "three_point"
	ChallengeTypeFreeThrow  = "free_throw"
	ChallengeTypeGeneric    = "generic"
)

// Challenge is a skill drill definition (e.g., "Hit 10 three-pointers").
type Challenge struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SportID     string `gorm:"index;not null" json:"sport_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Type        string `gorm:"type:varchar(24);default:'generic'" json:"type"`
	Difficulty  string `gorm:"type:varchar(16);default:'easy'" json:"difficulty"`
	BaseXp      int    `gorm:"default:0" json:"base_xp"`
	BaseRp      int    `gorm:"default:0" json:"base_rp"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Timestamps
}

// ChallengeAttempt is an immutable record of a single attempt. Multiple
// attempts per (user, challenge) are allowed; none are ever mutated.
type ChallengeAttempt struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ChallengeID string    `gorm:"index;not null" json:"challenge_id"`
	UserID      string    `gorm:"index;not null" json:"user_id"`
	ScoreValue  int       `json:"score_value"`
	MaxValue    int       `json:"max_value"`
	XpEarned    int       `json:"xp_earned"`
	RpEarned    int       `json:"rp_earned"`
	CompletedAt time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

// Accuracy returns the attempt's score ratio (0 when max_value is 0).
func (a *ChallengeAttempt) Accuracy() float64 {
	if a.MaxValue == 0 {
		return 0
	}
	return float64(a.ScoreValue) / float64(a.MaxValue)
}
