// Package store holds the persistence interfaces the engines run against.
// The GORM implementation backs production; the in-memory implementation
// backs tests and satisfies the exact same contracts.
package store

import (
	"time"

	"sports-match-system/models"
)

// StatDelta is an additive change to a PlayerStats row. Rp credits both
// total_rp and available_rp; spending goes through SpendRp instead.
type StatDelta struct {
	Xp int64
	Rp int64

	MatchesPlayed int64
	MatchesWon    int64
	MatchesLost   int64
	PointsScored  int64

	ChallengesCompleted int64

	ThreePointersMade      int64
	ThreePointersAttempted int64
	FreeThrowsMade         int64
	FreeThrowsAttempted    int64

	UsersInvited int64
}

type MatchStore interface {
	Create(m *models.Match) error
	Get(id string) (*models.Match, error)
	// FindActiveBetween returns a non-terminal match between the unordered
	// pair, or nil when none exists.
	FindActiveBetween(userA, userB string) (*models.Match, error)
	// WithMatchLock loads the match under an exclusive row lock, applies fn,
	// and persists the mutated row iff fn returns nil. Concurrent callers on
	// the same match serialize here.
	WithMatchLock(id string, fn func(*models.Match) error) (*models.Match, error)
	ListForUser(userID string, limit int) ([]models.Match, error)
	ListByStatus(status string, limit int) ([]models.Match, error)
	// ExpirePending cancels pending matches created before the cutoff.
	ExpirePending(cutoff time.Time) (int64, error)
	// ReleaseStaleRecording frees recording locks held since before the
	// cutoff on matches that never got a video attached.
	ReleaseStaleRecording(cutoff time.Time) (int64, error)
}

type StatStore interface {
	// Get returns the row for (userID, sportID), or a zero-valued stats
	// struct when none exists yet.
	Get(userID, sportID string) (*models.PlayerStats, error)
	// Apply upserts the row and increments every counter named in the delta
	// as one atomic operation, returning the updated row.
	Apply(userID, sportID string, d StatDelta) (*models.PlayerStats, error)
	// SpendRp deducts amount from available_rp only, failing with
	// INSUFFICIENT_RP unless the balance covers it.
	SpendRp(userID, sportID string, amount int64) error
}

type CatalogStore interface {
	// ActiveItems returns active items for the sport plus universal
	// (nil-sport) items.
	ActiveItems(sportID string) ([]models.AvatarItem, error)
	GetItem(id string) (*models.AvatarItem, error)
	UnlockedItemIDs(userID string) (map[string]bool, error)
	HasUnlock(userID, itemID string) (bool, error)
	// InsertUnlock records the unlock. Returns false (and no error) when a
	// record for (user, item) already exists — duplicate inserts are no-ops.
	InsertUnlock(rec *models.UnlockRecord) (bool, error)
	ListUnlocks(userID string) ([]models.UnlockRecord, error)
	UnlocksSince(userID string, since time.Time) ([]models.UnlockRecord, error)
}

type ChallengeStore interface {
	GetChallenge(id string) (*models.Challenge, error)
	ActiveChallenges(sportID string) ([]models.Challenge, error)
	InsertAttempt(a *models.ChallengeAttempt) error
	AttemptsForUser(userID string, limit int) ([]models.ChallengeAttempt, error)
}
