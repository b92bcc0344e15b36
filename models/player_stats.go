package models

import (
	"time"

	"gorm.io/gorm"
)

// PlayerStats is the per-user, per-sport aggregate counter row (denormalized
// for performance). Created lazily on the first stat-changing event and only
// ever mutated additively.
type PlayerStats struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  string `gorm:"uniqueIndex:idx_player_sport;not null" json:"user_id"`
	SportID string `gorm:"uniqueIndex:idx_player_sport;not null" json:"sport_id"`

	TotalXp     int64 `gorm:"default:0" json:"total_xp"`
	TotalRp     int64 `gorm:"default:0" json:"total_rp"`     // lifetime earned, never decreases
	AvailableRp int64 `gorm:"default:0" json:"available_rp"` // spendable balance

	MatchesPlayed       int64 `gorm:"default:0" json:"matches_played"`
	MatchesWon          int64 `gorm:"default:0" json:"matches_won"`
	MatchesLost         int64 `gorm:"default:0" json:"matches_lost"`
	ChallengesCompleted int64 `gorm:"default:0" json:"challenges_completed"`
	TotalPointsScored   int64 `gorm:"default:0" json:"total_points_scored"`

	ThreePointersMade      int64 `gorm:"default:0" json:"three_pointers_made"`
	ThreePointersAttempted int64 `gorm:"default:0" json:"three_pointers_attempted"`
	FreeThrowsMade         int64 `gorm:"default:0" json:"free_throws_made"`
	FreeThrowsAttempted    int64 `gorm:"default:0" json:"free_throws_attempted"`

	UsersInvited int64 `gorm:"default:0" json:"users_invited"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
