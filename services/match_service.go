package services

import (
	"log"
	"time"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"
	"sports-match-system/store"

	"github.com/google/uuid"
)

// MatchService drives the 1v1 match lifecycle: challenge, acceptance, the
// recording lock, result recording, and the two-party agreement that
// finalizes rewards. Every state transition on an existing match runs inside
// WithMatchLock so concurrent requests on the same match serialize.
type MatchService struct {
	Matches store.MatchStore
	Stats   store.StatStore
	Unlocks *UnlockService
}

func NewMatchService(matches store.MatchStore, stats store.StatStore, unlocks *UnlockService) *MatchService {
	return &MatchService{Matches: matches, Stats: stats, Unlocks: unlocks}
}

// Create issues a challenge from challengerID to opponentID. Self-challenges
// and duplicate active challenges between the same pair are rejected.
func (s *MatchService) Create(challengerID, opponentID, venueID, sportID string) (*models.Match, error) {
	if challengerID == opponentID {
		return nil, apperrors.New(apperrors.CodeSelfChallenge, "you cannot challenge yourself")
	}
	if opponentID == "" || venueID == "" || sportID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "opponent_id, venue_id and sport_id are required")
	}

	existing, err := s.Matches.FindActiveBetween(challengerID, opponentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.CodeDuplicateActiveChallenge,
			"an active match between these players already exists")
	}

	m := &models.Match{
		ID:        uuid.NewString(),
		Player1ID: challengerID,
		Player2ID: opponentID,
		VenueID:   venueID,
		SportID:   sportID,
		Status:    models.MatchStatusPending,
	}
	if err := s.Matches.Create(m); err != nil {
		return nil, err
	}
	log.Printf("🏀 Match %s created: %s vs %s", m.ID, challengerID, opponentID)
	return m, nil
}

// Respond lets the challenged player accept or decline a pending match. Only
// player2 may respond; the challenger uses Cancel instead.
func (s *MatchService) Respond(matchID, userID string, accept bool) (*models.Match, error) {
	return s.Matches.WithMatchLock(matchID, func(m *models.Match) error {
		if userID != m.Player2ID {
			return apperrors.New(apperrors.CodeNotAuthorized, "only the challenged player can respond")
		}
		if m.Status != models.MatchStatusPending {
			return apperrors.New(apperrors.CodeInvalidState, "match is no longer pending")
		}
		if accept {
			m.Status = models.MatchStatusAccepted
		} else {
			m.Status = models.MatchStatusDeclined
		}
		return nil
	})
}

// Cancel withdraws a pending challenge. Challenger only.
func (s *MatchService) Cancel(matchID, userID string) (*models.Match, error) {
	return s.Matches.WithMatchLock(matchID, func(m *models.Match) error {
		if userID != m.Player1ID {
			return apperrors.New(apperrors.CodeNotAuthorized, "only the challenger can cancel")
		}
		if m.Status != models.MatchStatusPending {
			return apperrors.New(apperrors.CodeInvalidState, "match is no longer pending")
		}
		m.Status = models.MatchStatusCancelled
		return nil
	})
}

// AcquireRecordingLock claims the single-recorder slot. The first claim moves
// accepted to in_progress; re-claiming your own lock is idempotent; claiming
// a lock someone else holds fails. A lock that was released without an upload
// leaves the match in_progress with recording_by unset, and a participant may
// claim it again.
func (s *MatchService) AcquireRecordingLock(matchID, userID string) (*models.Match, string, error) {
	var message string
	m, err := s.Matches.WithMatchLock(matchID, func(m *models.Match) error {
		if !m.IsParticipant(userID) {
			return apperrors.New(apperrors.CodeNotAuthorized, "not a participant in this match")
		}
		switch m.Status {
		case models.MatchStatusAccepted:
			now := time.Now()
			m.Status = models.MatchStatusInProgress
			m.RecordingBy = &userID
			m.RecordingStartedAt = &now
			m.StartedAt = &now
			message = "You are recording this match"
			return nil
		case models.MatchStatusInProgress:
			if m.RecordingBy != nil {
				if *m.RecordingBy == userID {
					message = "You are recording this match"
					return nil
				}
				return apperrors.New(apperrors.CodeLockHeldByOther, "the other player is already recording")
			}
			// lock was released mid-match; let a participant pick it back up
			now := time.Now()
			m.RecordingBy = &userID
			m.RecordingStartedAt = &now
			message = "You are recording this match"
			return nil
		default:
			return apperrors.New(apperrors.CodeInvalidState, "match is not ready for recording")
		}
	})
	return m, message, err
}

// ReleaseRecordingLock gives up the recording slot without uploading. Holder
// only, and impossible once a video is attached.
func (s *MatchService) ReleaseRecordingLock(matchID, userID string) (*models.Match, error) {
	return s.Matches.WithMatchLock(matchID, func(m *models.Match) error {
		if m.RecordingBy == nil || *m.RecordingBy != userID {
			return apperrors.New(apperrors.CodeNotAuthorized, "you do not hold the recording lock")
		}
		if m.VideoURL != nil {
			return apperrors.New(apperrors.CodeAlreadyUploaded, "video already uploaded")
		}
		m.Status = models.MatchStatusAccepted
		m.RecordingBy = nil
		m.RecordingStartedAt = nil
		return nil
	})
}

// AttachVideo stores the uploaded video URL and hands the match to analysis.
// Holder only, in_progress only.
func (s *MatchService) AttachVideo(matchID, userID, videoURL string) (*models.Match, error) {
	if videoURL == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "video_url is required")
	}
	return s.Matches.WithMatchLock(matchID, func(m *models.Match) error {
		if m.RecordingBy == nil || *m.RecordingBy != userID {
			return apperrors.New(apperrors.CodeNotAuthorized, "you do not hold the recording lock")
		}
		if m.Status != models.MatchStatusInProgress {
			return apperrors.New(apperrors.CodeInvalidState, "match is not being recorded")
		}
		if m.VideoURL != nil {
			return apperrors.New(apperrors.CodeAlreadyUploaded, "video already uploaded")
		}
		m.VideoURL = &videoURL
		m.Status = models.MatchStatusAnalyzing
		return nil
	})
}

// RecordResult writes the analyzed score pair and moves the match to
// awaiting_agreement. The winner is the strictly higher scorer; equal scores
// leave winner_id nil (a draw). Provisional reward amounts are stamped here
// and paid at finalization.
func (s *MatchService) RecordResult(matchID string, player1Score, player2Score int) (*models.Match, error) {
	if player1Score < 0 || player2Score < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "scores must be non-negative")
	}
	return s.Matches.WithMatchLock(matchID, func(m *models.Match) error {
		if m.Status != models.MatchStatusAnalyzing {
			return apperrors.New(apperrors.CodeInvalidState, "match is not awaiting analysis")
		}
		m.Player1Score = &player1Score
		m.Player2Score = &player2Score
		switch {
		case player1Score > player2Score:
			m.WinnerID = &m.Player1ID
		case player2Score > player1Score:
			m.WinnerID = &m.Player2ID
		default:
			m.WinnerID = nil
		}
		m.WinnerXp = MatchWinnerXp
		m.WinnerRp = MatchWinnerRp
		m.LoserXp = MatchLoserXp
		m.Player1Agreed = false
		m.Player2Agreed = false
		m.Status = models.MatchStatusAwaitingAgreement
		return nil
	})
}

// AgreeResult records the caller's verdict on the analyzed result. When the
// second participant agrees, the match finalizes exactly once: status goes
// completed, both players' stats are credited, and newly unlocked items for
// the caller come back. A disagreement moves the match to disputed with no
// rewards paid.
func (s *MatchService) AgreeResult(matchID, userID string, agree bool) (*models.Match, []models.UnlockedItem, error) {
	finalized := false
	m, err := s.Matches.WithMatchLock(matchID, func(m *models.Match) error {
		if !m.IsParticipant(userID) {
			return apperrors.New(apperrors.CodeNotAuthorized, "not a participant in this match")
		}
		if m.Status != models.MatchStatusAwaitingAgreement {
			return apperrors.New(apperrors.CodeInvalidState, "match result is not awaiting agreement")
		}
		if !m.HasScores() {
			return apperrors.New(apperrors.CodeNoScoreYet, "no analyzed score to agree on")
		}
		if !agree {
			now := time.Now()
			reason := "result_rejected"
			m.Status = models.MatchStatusDisputed
			m.DisputeReason = &reason
			m.DisputedBy = &userID
			m.DisputedAt = &now
			return nil
		}
		if userID == m.Player1ID {
			m.Player1Agreed = true
		} else {
			m.Player2Agreed = true
		}
		if m.Player1Agreed && m.Player2Agreed {
			now := time.Now()
			m.Status = models.MatchStatusCompleted
			m.CompletedAt = &now
			finalized = true
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !finalized {
		return m, nil, nil
	}

	// Finalization committed; stat credits and unlock checks are best-effort
	// from here, logged but never unwound.
	callerUnlocks := s.payoutAndUnlock(m, userID)
	return m, callerUnlocks, nil
}

// payoutAndUnlock credits both players for a completed match and runs the
// unlock check for each, returning the caller's newly unlocked items.
func (s *MatchService) payoutAndUnlock(m *models.Match, callerID string) []models.UnlockedItem {
	deltas := matchStatDeltas(m)
	var callerUnlocks []models.UnlockedItem
	for playerID, delta := range deltas {
		if _, err := s.Stats.Apply(playerID, m.SportID, delta); err != nil {
			log.Printf("❌ Failed to apply match %s stats for %s: %v", m.ID, playerID, err)
			continue
		}
		unlocked, err := s.Unlocks.CheckAndUnlockEligible(playerID, m.SportID)
		if err != nil {
			log.Printf("❌ Unlock check failed for %s after match %s: %v", playerID, m.ID, err)
			continue
		}
		if playerID == callerID {
			callerUnlocks = unlocked
		}
	}
	log.Printf("✅ Match %s finalized, rewards paid", m.ID)
	return callerUnlocks
}

// matchStatDeltas computes both players' stat credits for a finalized match.
// A draw pays participation XP to both with no win/loss counted.
func matchStatDeltas(m *models.Match) map[string]store.StatDelta {
	p1 := store.StatDelta{MatchesPlayed: 1, PointsScored: int64(*m.Player1Score)}
	p2 := store.StatDelta{MatchesPlayed: 1, PointsScored: int64(*m.Player2Score)}

	switch {
	case m.WinnerID != nil && *m.WinnerID == m.Player1ID:
		p1.Xp, p1.Rp, p1.MatchesWon = int64(m.WinnerXp), int64(m.WinnerRp), 1
		p2.Xp, p2.MatchesLost = int64(m.LoserXp), 1
	case m.WinnerID != nil && *m.WinnerID == m.Player2ID:
		p2.Xp, p2.Rp, p2.MatchesWon = int64(m.WinnerXp), int64(m.WinnerRp), 1
		p1.Xp, p1.MatchesLost = int64(m.LoserXp), 1
	default:
		p1.Xp = int64(m.LoserXp)
		p2.Xp = int64(m.LoserXp)
	}

	return map[string]store.StatDelta{
		m.Player1ID: p1,
		m.Player2ID: p2,
	}
}

// Dispute flags the match for manual review with a caller-supplied reason.
// Allowed from awaiting_agreement or analyzing (e.g., a bad analysis run).
func (s *MatchService) Dispute(matchID, userID, reason, details string) (*models.Match, error) {
	if reason == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "reason is required")
	}
	return s.Matches.WithMatchLock(matchID, func(m *models.Match) error {
		if !m.IsParticipant(userID) {
			return apperrors.New(apperrors.CodeNotAuthorized, "not a participant in this match")
		}
		switch m.Status {
		case models.MatchStatusAnalyzing, models.MatchStatusAwaitingAgreement:
		default:
			return apperrors.New(apperrors.CodeInvalidState, "match cannot be disputed in its current state")
		}
		now := time.Now()
		m.Status = models.MatchStatusDisputed
		m.DisputeReason = &reason
		m.DisputedBy = &userID
		m.DisputedAt = &now
		if details != "" {
			m.DisputeDetails = &details
		}
		return nil
	})
}

// Get returns a match visible to one of its participants.
func (s *MatchService) Get(matchID, userID string) (*models.Match, error) {
	m, err := s.Matches.Get(matchID)
	if err != nil {
		return nil, err
	}
	if !m.IsParticipant(userID) {
		return nil, apperrors.New(apperrors.CodeNotAuthorized, "not a participant in this match")
	}
	return m, nil
}

// ListForUser returns the user's recent matches, newest first.
func (s *MatchService) ListForUser(userID string, limit int) ([]models.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Matches.ListForUser(userID, limit)
}
