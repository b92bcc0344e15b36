package services

import (
	"fmt"
	"log"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"
	"sports-match-system/store"
)

// ChallengeService records solo skill-drill attempts and pays their rewards.
type ChallengeService struct {
	Challenges store.ChallengeStore
	Stats      store.StatStore
	Unlocks    *UnlockService
}

func NewChallengeService(challenges store.ChallengeStore, stats store.StatStore, unlocks *UnlockService) *ChallengeService {
	return &ChallengeService{Challenges: challenges, Stats: stats, Unlocks: unlocks}
}

// AttemptResult is what a recorded attempt returns to the caller.
type AttemptResult struct {
	Attempt       *models.ChallengeAttempt `json:"attempt"`
	XpEarned      int                      `json:"xp_earned"`
	RpEarned      int                      `json:"rp_earned"`
	NewTotalXp    int64                    `json:"new_total_xp"`
	NewTotalRp    int64                    `json:"new_total_rp"`
	NewlyUnlocked []models.UnlockedItem    `json:"newly_unlocked,omitempty"`
	Message       string                   `json:"message"`
}

// RecordAttempt stores an immutable attempt row, credits XP/RP and shot
// counters, then runs the unlock check. Attempts are append-only; repeating
// a challenge simply adds another row.
func (s *ChallengeService) RecordAttempt(userID, challengeID string, scoreValue, maxValue int) (*AttemptResult, error) {
	if scoreValue < 0 || maxValue < 0 || scoreValue > maxValue {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "score_value must be between 0 and max_value")
	}

	challenge, err := s.Challenges.GetChallenge(challengeID)
	if err != nil {
		return nil, err
	}

	xp, rp := ComputeChallengeReward(challenge.BaseXp, challenge.BaseRp, challenge.Difficulty, scoreValue, maxValue)

	attempt := &models.ChallengeAttempt{
		ChallengeID: challengeID,
		UserID:      userID,
		ScoreValue:  scoreValue,
		MaxValue:    maxValue,
		XpEarned:    xp,
		RpEarned:    rp,
	}
	if err := s.Challenges.InsertAttempt(attempt); err != nil {
		return nil, err
	}

	delta := store.StatDelta{
		Xp:                  int64(xp),
		Rp:                  int64(rp),
		ChallengesCompleted: 1,
	}
	switch challenge.Type {
	case models.ChallengeTypeThreePoint:
		delta.ThreePointersMade = int64(scoreValue)
		delta.ThreePointersAttempted = int64(maxValue)
	case models.ChallengeTypeFreeThrow:
		delta.FreeThrowsMade = int64(scoreValue)
		delta.FreeThrowsAttempted = int64(maxValue)
	}

	stats, err := s.Stats.Apply(userID, challenge.SportID, delta)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to credit attempt rewards", err)
	}

	unlocked, err := s.Unlocks.CheckAndUnlockEligible(userID, challenge.SportID)
	if err != nil {
		// Attempt and stats are already committed; unlocks catch up on the
		// next stat-changing event.
		log.Printf("❌ Unlock check failed for %s after challenge %s: %v", userID, challengeID, err)
	}

	return &AttemptResult{
		Attempt:       attempt,
		XpEarned:      xp,
		RpEarned:      rp,
		NewTotalXp:    stats.TotalXp,
		NewTotalRp:    stats.TotalRp,
		NewlyUnlocked: unlocked,
		Message:       attemptMessage(challenge, scoreValue, maxValue, xp, rp),
	}, nil
}

func attemptMessage(ch *models.Challenge, score, max, xp, rp int) string {
	if rp > 0 {
		return fmt.Sprintf("%s: %d/%d. Earned %d XP and %d RP!", ch.Name, score, max, xp, rp)
	}
	return fmt.Sprintf("%s: %d/%d. Earned %d XP", ch.Name, score, max, xp)
}

// ActiveChallenges lists the sport's available drills.
func (s *ChallengeService) ActiveChallenges(sportID string) ([]models.Challenge, error) {
	return s.Challenges.ActiveChallenges(sportID)
}

// History returns the user's recent attempts, newest first.
func (s *ChallengeService) History(userID string, limit int) ([]models.ChallengeAttempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Challenges.AttemptsForUser(userID, limit)
}

// BestAttempt returns the user's highest-accuracy attempt for a challenge,
// or nil when none exist.
func (s *ChallengeService) BestAttempt(userID, challengeID string) (*models.ChallengeAttempt, error) {
	attempts, err := s.Challenges.AttemptsForUser(userID, 0)
	if err != nil {
		return nil, err
	}
	var best *models.ChallengeAttempt
	for i := range attempts {
		a := &attempts[i]
		if a.ChallengeID != challengeID {
			continue
		}
		if best == nil || a.Accuracy() > best.Accuracy() {
			best = a
		}
	}
	return best, nil
}
