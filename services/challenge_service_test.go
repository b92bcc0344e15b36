package services

import (
	"testing"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"
	"sports-match-system/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChallengeFixture(t *testing.T) (*ChallengeService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	unlocks := NewUnlockService(mem.Catalog, mem.Stats)
	return NewChallengeService(mem.Challenges, mem.Stats, unlocks), mem
}

func TestRecordAttempt(t *testing.T) {
	svc, mem := newChallengeFixture(t)
	ch := mem.Challenges.AddChallenge(models.Challenge{
		SportID: testSport, Name: "Three Point Contest",
		Type: models.ChallengeTypeThreePoint, Difficulty: models.DifficultyMedium,
		BaseXp: 100, BaseRp: 10, IsActive: true,
	})

	result, err := svc.RecordAttempt("u1", ch.ID, 8, 10)
	require.NoError(t, err)
	assert.Equal(t, 120, result.XpEarned)
	assert.Equal(t, 10, result.RpEarned)
	assert.Equal(t, int64(120), result.NewTotalXp)
	assert.Equal(t, int64(10), result.NewTotalRp)

	stats, err := mem.Stats.Get("u1", testSport)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ChallengesCompleted)
	assert.Equal(t, int64(8), stats.ThreePointersMade)
	assert.Equal(t, int64(10), stats.ThreePointersAttempted)
}

func TestRecordAttemptNoRpBelowThreshold(t *testing.T) {
	svc, mem := newChallengeFixture(t)
	ch := mem.Challenges.AddChallenge(models.Challenge{
		SportID: testSport, Name: "Free Throw Drill",
		Type: models.ChallengeTypeFreeThrow, Difficulty: models.DifficultyEasy,
		BaseXp: 50, BaseRp: 5, IsActive: true,
	})

	result, err := svc.RecordAttempt("u1", ch.ID, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, 35, result.XpEarned)
	assert.Zero(t, result.RpEarned)

	stats, err := mem.Stats.Get("u1", testSport)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.FreeThrowsMade)
	assert.Equal(t, int64(10), stats.FreeThrowsAttempted)
	assert.Zero(t, stats.TotalRp)
}

func TestRecordAttemptGenericSkipsShotCounters(t *testing.T) {
	svc, mem := newChallengeFixture(t)
	ch := mem.Challenges.AddChallenge(models.Challenge{
		SportID: testSport, Name: "Dribble Course",
		Type: models.ChallengeTypeGeneric, Difficulty: models.DifficultyHard,
		BaseXp: 80, BaseRp: 8, IsActive: true,
	})

	_, err := svc.RecordAttempt("u1", ch.ID, 10, 10)
	require.NoError(t, err)

	stats, err := mem.Stats.Get("u1", testSport)
	require.NoError(t, err)
	assert.Zero(t, stats.ThreePointersAttempted)
	assert.Zero(t, stats.FreeThrowsAttempted)
	assert.Equal(t, int64(160), stats.TotalXp)
}

func TestRecordAttemptValidation(t *testing.T) {
	svc, mem := newChallengeFixture(t)
	ch := mem.Challenges.AddChallenge(models.Challenge{
		SportID: testSport, Name: "Three Point Contest",
		Difficulty: models.DifficultyEasy, BaseXp: 100, BaseRp: 10, IsActive: true,
	})

	_, err := svc.RecordAttempt("u1", "missing", 5, 10)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = svc.RecordAttempt("u1", ch.ID, 11, 10)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))

	_, err = svc.RecordAttempt("u1", ch.ID, -1, 10)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

func TestRecordAttemptImmutableHistory(t *testing.T) {
	svc, mem := newChallengeFixture(t)
	ch := mem.Challenges.AddChallenge(models.Challenge{
		SportID: testSport, Name: "Three Point Contest",
		Difficulty: models.DifficultyEasy, BaseXp: 100, BaseRp: 10, IsActive: true,
	})

	_, err := svc.RecordAttempt("u1", ch.ID, 5, 10)
	require.NoError(t, err)
	_, err = svc.RecordAttempt("u1", ch.ID, 9, 10)
	require.NoError(t, err)

	history, err := svc.History("u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// newest first
	assert.Equal(t, 9, history[0].ScoreValue)
	assert.Equal(t, 5, history[1].ScoreValue)

	best, err := svc.BestAttempt("u1", ch.ID)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 9, best.ScoreValue)

	stats, err := mem.Stats.Get("u1", testSport)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ChallengesCompleted)
}

func TestRecordAttemptTriggersUnlock(t *testing.T) {
	svc, mem := newChallengeFixture(t)
	wristband := mem.Catalog.AddItem(models.AvatarItem{
		Name: "Gym Rat Wristband", ItemType: "wristband", IsActive: true,
		RequiredChallenges: int64p(2),
	})
	ch := mem.Challenges.AddChallenge(models.Challenge{
		SportID: testSport, Name: "Three Point Contest",
		Difficulty: models.DifficultyEasy, BaseXp: 100, BaseRp: 10, IsActive: true,
	})

	result, err := svc.RecordAttempt("u1", ch.ID, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, result.NewlyUnlocked)

	result, err = svc.RecordAttempt("u1", ch.ID, 5, 10)
	require.NoError(t, err)
	require.Len(t, result.NewlyUnlocked, 1)
	assert.Equal(t, wristband.ID, result.NewlyUnlocked[0].ID)
}
