package models

import "time"

// Match statuses. A match is terminal once declined, cancelled, completed or
// disputed; completed means the result was mutually agreed and rewards were
// finalized (awaiting_agreement covers the window between the analyzed result
// and mutual agreement).
const (
	MatchStatusPending           = "pending"
	MatchStatusAccepted          = "accepted"
	MatchStatusDeclined          = "declined"
	MatchStatusCancelled         = "cancelled"
	MatchStatusInProgress        = "in_progress"
	MatchStatusAnalyzing         = "analyzing"
	MatchStatusAwaitingAgreement = "awaiting_agreement"
	MatchStatusCompleted         = "completed"
	MatchStatusDisputed          = "disputed"
)

// Match records a single 1v1 video-verified contest. Player1 is always the
// challenger; the ordering is fixed at creation.
type Match struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Player1ID string `gorm:"index;not null" json:"player1_id"`
	Player2ID string `gorm:"index;not null" json:"player2_id"`
	VenueID   string `gorm:"index;not null" json:"venue_id"`
	SportID   string `gorm:"index;not null" json:"sport_id"`

	Status string `gorm:"type:varchar(24);default:'pending';index" json:"status"`

	Player1Score *int    `json:"player1_score,omitempty"`
	Player2Score *int    `json:"player2_score,omitempty"`
	WinnerID     *string `json:"winner_id,omitempty"` // nil = draw or no result yet

	Player1Agreed bool `gorm:"default:false" json:"player1_agreed"`
	Player2Agreed bool `gorm:"default:false" json:"player2_agreed"`

	// Single-writer recording lock. When set, must equal one of the players.
	RecordingBy        *string    `gorm:"index" json:"recording_by,omitempty"`
	RecordingStartedAt *time.Time `json:"recording_started_at,omitempty"`

	VideoURL *string `json:"video_url,omitempty"`

	// Provisional reward amounts, fixed at RecordResult, paid out at finalize.
	WinnerXp int `gorm:"default:0" json:"winner_xp"`
	WinnerRp int `gorm:"default:0" json:"winner_rp"`
	LoserXp  int `gorm:"default:0" json:"loser_xp"`

	DisputeReason  *string    `json:"dispute_reason,omitempty"`
	DisputeDetails *string    `json:"dispute_details,omitempty"`
	DisputedBy     *string    `json:"disputed_by,omitempty"`
	DisputedAt     *time.Time `json:"disputed_at,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Timestamps
}

// IsParticipant reports whether userID is one of the two players.
func (m *Match) IsParticipant(userID string) bool {
	return userID == m.Player1ID || userID == m.Player2ID
}

// Opponent returns the other player's id.
func (m *Match) Opponent(userID string) string {
	if userID == m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}

// IsActive reports whether the match still blocks a new challenge between
// the same pair.
func (m *Match) IsActive() bool {
	switch m.Status {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusInProgress:
		return true
	}
	return false
}

// HasScores reports whether a score pair has been recorded.
func (m *Match) HasScores() bool {
	return m.Player1Score != nil && m.Player2Score != nil
}
