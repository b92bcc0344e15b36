package services

import (
	"sync"
	"testing"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"
	"sports-match-system/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSport = "basketball"

func newMatchFixture(t *testing.T) (*MatchService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	unlocks := NewUnlockService(mem.Catalog, mem.Stats)
	return NewMatchService(mem.Matches, mem.Stats, unlocks), mem
}

// advanceToAnalyzing walks a fresh match through accept, recording and video
// upload so tests can start from the analyzing state.
func advanceToAnalyzing(t *testing.T, svc *MatchService) *models.Match {
	t.Helper()
	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)
	_, err = svc.Respond(m.ID, "p2", true)
	require.NoError(t, err)
	_, _, err = svc.AcquireRecordingLock(m.ID, "p1")
	require.NoError(t, err)
	m, err = svc.AttachVideo(m.ID, "p1", "https://cdn.example.com/video.mp4")
	require.NoError(t, err)
	return m
}

func TestCreateMatch(t *testing.T) {
	svc, _ := newMatchFixture(t)

	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPending, m.Status)
	assert.Equal(t, "p1", m.Player1ID)
	assert.Equal(t, "p2", m.Player2ID)
}

func TestCreateMatchSelfChallenge(t *testing.T) {
	svc, _ := newMatchFixture(t)
	_, err := svc.Create("p1", "p1", "venue1", testSport)
	assert.True(t, apperrors.Is(err, apperrors.CodeSelfChallenge))
}

func TestCreateMatchDuplicatePair(t *testing.T) {
	svc, _ := newMatchFixture(t)

	_, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)

	// same pair in either order is blocked while the first match is active
	_, err = svc.Create("p2", "p1", "venue1", testSport)
	assert.True(t, apperrors.Is(err, apperrors.CodeDuplicateActiveChallenge))
}

func TestCreateMatchAllowedAfterDecline(t *testing.T) {
	svc, _ := newMatchFixture(t)

	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)
	_, err = svc.Respond(m.ID, "p2", false)
	require.NoError(t, err)

	_, err = svc.Create("p1", "p2", "venue1", testSport)
	assert.NoError(t, err)
}

func TestRespondOnlyChallengedPlayer(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)

	_, err = svc.Respond(m.ID, "p1", true)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotAuthorized))

	updated, err := svc.Respond(m.ID, "p2", true)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAccepted, updated.Status)

	// already answered
	_, err = svc.Respond(m.ID, "p2", true)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
}

func TestCancelOnlyChallengerWhilePending(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)

	_, err = svc.Cancel(m.ID, "p2")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotAuthorized))

	updated, err := svc.Cancel(m.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCancelled, updated.Status)
}

func TestRecordingLock(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)
	_, err = svc.Respond(m.ID, "p2", true)
	require.NoError(t, err)

	updated, msg, err := svc.AcquireRecordingLock(m.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, updated.Status)
	assert.Equal(t, "p1", *updated.RecordingBy)
	assert.Equal(t, "You are recording this match", msg)

	// idempotent for the holder
	_, msg, err = svc.AcquireRecordingLock(m.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, "You are recording this match", msg)

	// blocked for the opponent
	_, _, err = svc.AcquireRecordingLock(m.ID, "p2")
	assert.True(t, apperrors.Is(err, apperrors.CodeLockHeldByOther))

	// outsiders never get in
	_, _, err = svc.AcquireRecordingLock(m.ID, "p3")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotAuthorized))
}

func TestRecordingLockConcurrentAcquire(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)
	_, err = svc.Respond(m.ID, "p2", true)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, player := range []string{"p1", "p2"} {
		wg.Add(1)
		go func(i int, player string) {
			defer wg.Done()
			_, _, errs[i] = svc.AcquireRecordingLock(m.ID, player)
		}(i, player)
	}
	wg.Wait()

	// exactly one wins
	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, apperrors.Is(err, apperrors.CodeLockHeldByOther))
		}
	}
	assert.Equal(t, 1, winners)
}

func TestReleaseRecordingLock(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)
	_, err = svc.Respond(m.ID, "p2", true)
	require.NoError(t, err)
	_, _, err = svc.AcquireRecordingLock(m.ID, "p1")
	require.NoError(t, err)

	// only the holder can release
	_, err = svc.ReleaseRecordingLock(m.ID, "p2")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotAuthorized))

	updated, err := svc.ReleaseRecordingLock(m.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAccepted, updated.Status)
	assert.Nil(t, updated.RecordingBy)

	// either participant may claim the freed slot
	updated, _, err = svc.AcquireRecordingLock(m.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, "p2", *updated.RecordingBy)
}

func TestReleaseAfterUploadRejected(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m := advanceToAnalyzing(t, svc)

	_, err := svc.ReleaseRecordingLock(m.ID, "p1")
	assert.True(t, apperrors.Is(err, apperrors.CodeAlreadyUploaded))
}

func TestAttachVideoHolderOnly(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)
	_, err = svc.Respond(m.ID, "p2", true)
	require.NoError(t, err)
	_, _, err = svc.AcquireRecordingLock(m.ID, "p1")
	require.NoError(t, err)

	_, err = svc.AttachVideo(m.ID, "p2", "https://cdn.example.com/video.mp4")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotAuthorized))

	updated, err := svc.AttachVideo(m.ID, "p1", "https://cdn.example.com/video.mp4")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAnalyzing, updated.Status)

	_, err = svc.AttachVideo(m.ID, "p1", "https://cdn.example.com/again.mp4")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
}

func TestRecordResult(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m := advanceToAnalyzing(t, svc)

	updated, err := svc.RecordResult(m.ID, 21, 15)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAwaitingAgreement, updated.Status)
	assert.Equal(t, 21, *updated.Player1Score)
	assert.Equal(t, 15, *updated.Player2Score)
	assert.Equal(t, "p1", *updated.WinnerID)
	assert.Equal(t, MatchWinnerXp, updated.WinnerXp)
	assert.Equal(t, MatchWinnerRp, updated.WinnerRp)
	assert.Equal(t, MatchLoserXp, updated.LoserXp)

	// result can only be recorded from analyzing
	_, err = svc.RecordResult(m.ID, 21, 15)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
}

func TestRecordResultDrawLeavesNoWinner(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m := advanceToAnalyzing(t, svc)

	updated, err := svc.RecordResult(m.ID, 15, 15)
	require.NoError(t, err)
	assert.Nil(t, updated.WinnerID)
}

func TestAgreeResultFinalizesOnceBothAgree(t *testing.T) {
	svc, mem := newMatchFixture(t)
	m := advanceToAnalyzing(t, svc)
	_, err := svc.RecordResult(m.ID, 21, 15)
	require.NoError(t, err)

	updated, unlocked, err := svc.AgreeResult(m.ID, "p1", true)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAwaitingAgreement, updated.Status)
	assert.Nil(t, unlocked)

	// nothing paid until both agree
	stats, err := mem.Stats.Get("p1", testSport)
	require.NoError(t, err)
	assert.Zero(t, stats.MatchesPlayed)

	updated, _, err = svc.AgreeResult(m.ID, "p2", true)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	winner, err := mem.Stats.Get("p1", testSport)
	require.NoError(t, err)
	assert.Equal(t, int64(1), winner.MatchesPlayed)
	assert.Equal(t, int64(1), winner.MatchesWon)
	assert.Equal(t, int64(MatchWinnerXp), winner.TotalXp)
	assert.Equal(t, int64(MatchWinnerRp), winner.TotalRp)
	assert.Equal(t, int64(21), winner.TotalPointsScored)

	loser, err := mem.Stats.Get("p2", testSport)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loser.MatchesPlayed)
	assert.Equal(t, int64(1), loser.MatchesLost)
	assert.Equal(t, int64(MatchLoserXp), loser.TotalXp)
	assert.Zero(t, loser.TotalRp)
	assert.Equal(t, int64(15), loser.TotalPointsScored)

	// completed is terminal
	_, _, err = svc.AgreeResult(m.ID, "p1", true)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
}

func TestAgreeResultDrawPaysParticipationOnly(t *testing.T) {
	svc, mem := newMatchFixture(t)
	m := advanceToAnalyzing(t, svc)
	_, err := svc.RecordResult(m.ID, 15, 15)
	require.NoError(t, err)

	_, _, err = svc.AgreeResult(m.ID, "p1", true)
	require.NoError(t, err)
	_, _, err = svc.AgreeResult(m.ID, "p2", true)
	require.NoError(t, err)

	for _, player := range []string{"p1", "p2"} {
		stats, err := mem.Stats.Get(player, testSport)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.MatchesPlayed, player)
		assert.Zero(t, stats.MatchesWon, player)
		assert.Zero(t, stats.MatchesLost, player)
		assert.Equal(t, int64(MatchLoserXp), stats.TotalXp, player)
		assert.Zero(t, stats.TotalRp, player)
	}
}

func TestAgreeResultRejectionDisputes(t *testing.T) {
	svc, mem := newMatchFixture(t)
	m := advanceToAnalyzing(t, svc)
	_, err := svc.RecordResult(m.ID, 21, 15)
	require.NoError(t, err)

	updated, unlocked, err := svc.AgreeResult(m.ID, "p2", false)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusDisputed, updated.Status)
	assert.Equal(t, "p2", *updated.DisputedBy)
	assert.Nil(t, unlocked)

	// no rewards on a disputed match
	stats, err := mem.Stats.Get("p1", testSport)
	require.NoError(t, err)
	assert.Zero(t, stats.MatchesPlayed)
	assert.Zero(t, stats.TotalXp)
}

func TestAgreeResultUnlocksItems(t *testing.T) {
	svc, mem := newMatchFixture(t)

	headband := mem.Catalog.AddItem(models.AvatarItem{
		Name: "Rookie Headband", ItemType: "headband", IsActive: true,
		RequiredMatches: int64p(1),
	})

	m := advanceToAnalyzing(t, svc)
	_, err := svc.RecordResult(m.ID, 21, 15)
	require.NoError(t, err)
	_, _, err = svc.AgreeResult(m.ID, "p1", true)
	require.NoError(t, err)

	_, unlocked, err := svc.AgreeResult(m.ID, "p2", true)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, headband.ID, unlocked[0].ID)

	// the other player got theirs too
	has, err := mem.Catalog.HasUnlock("p1", headband.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestDispute(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m := advanceToAnalyzing(t, svc)

	updated, err := svc.Dispute(m.ID, "p2", "wrong_score", "scoreboard shows 19-15")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusDisputed, updated.Status)
	assert.Equal(t, "wrong_score", *updated.DisputeReason)

	_, err = svc.Dispute(m.ID, "p2", "wrong_score", "")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
}

func TestGetMatchParticipantsOnly(t *testing.T) {
	svc, _ := newMatchFixture(t)
	m, err := svc.Create("p1", "p2", "venue1", testSport)
	require.NoError(t, err)

	_, err = svc.Get(m.ID, "p3")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotAuthorized))

	got, err := svc.Get(m.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}
