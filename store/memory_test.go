package store

import (
	"testing"
	"time"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyIsAdditive(t *testing.T) {
	mem := NewMemory()

	st, err := mem.Stats.Apply("u1", "basketball", StatDelta{Xp: 100, Rp: 20, MatchesPlayed: 1, MatchesWon: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(100), st.TotalXp)
	assert.Equal(t, int64(20), st.TotalRp)
	assert.Equal(t, int64(20), st.AvailableRp)

	st, err = mem.Stats.Apply("u1", "basketball", StatDelta{Xp: 25, MatchesPlayed: 1, MatchesLost: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(125), st.TotalXp)
	assert.Equal(t, int64(2), st.MatchesPlayed)
	assert.Equal(t, int64(1), st.MatchesWon)
	assert.Equal(t, int64(1), st.MatchesLost)
}

func TestGetAbsentStatsIsZeroValued(t *testing.T) {
	mem := NewMemory()
	st, err := mem.Stats.Get("nobody", "basketball")
	require.NoError(t, err)
	assert.Equal(t, "nobody", st.UserID)
	assert.Zero(t, st.TotalXp)
	assert.Zero(t, st.MatchesPlayed)
}

func TestSpendRpGuardsBalance(t *testing.T) {
	mem := NewMemory()
	_, err := mem.Stats.Apply("u1", "basketball", StatDelta{Rp: 100})
	require.NoError(t, err)

	err = mem.Stats.SpendRp("u1", "basketball", 150)
	assert.True(t, apperrors.Is(err, apperrors.CodeInsufficientRp))

	require.NoError(t, mem.Stats.SpendRp("u1", "basketball", 60))
	err = mem.Stats.SpendRp("u1", "basketball", 60)
	assert.True(t, apperrors.Is(err, apperrors.CodeInsufficientRp))

	st, err := mem.Stats.Get("u1", "basketball")
	require.NoError(t, err)
	assert.Equal(t, int64(40), st.AvailableRp)
	assert.Equal(t, int64(100), st.TotalRp)
}

func TestInsertUnlockDuplicateIsNoOp(t *testing.T) {
	mem := NewMemory()

	inserted, err := mem.Catalog.InsertUnlock(&models.UnlockRecord{
		UserID: "u1", ItemID: "item1", UnlockedVia: models.UnlockViaAchievement,
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = mem.Catalog.InsertUnlock(&models.UnlockRecord{
		UserID: "u1", ItemID: "item1", UnlockedVia: models.UnlockViaPurchase,
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	recs, err := mem.Catalog.ListUnlocks("u1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.UnlockViaAchievement, recs[0].UnlockedVia)
}

func TestActiveItemsFiltersSport(t *testing.T) {
	mem := NewMemory()
	hoops := "basketball"
	tennis := "tennis"

	mem.Catalog.AddItem(models.AvatarItem{Name: "Universal Cap", ItemType: "hat", IsActive: true})
	mem.Catalog.AddItem(models.AvatarItem{Name: "Hoops Jersey", ItemType: "jersey", IsActive: true, SportID: &hoops})
	mem.Catalog.AddItem(models.AvatarItem{Name: "Tennis Visor", ItemType: "hat", IsActive: true, SportID: &tennis})
	mem.Catalog.AddItem(models.AvatarItem{Name: "Retired Item", ItemType: "hat", IsActive: false})

	items, err := mem.Catalog.ActiveItems(hoops)
	require.NoError(t, err)
	require.Len(t, items, 2)
	names := []string{items[0].Name, items[1].Name}
	assert.Contains(t, names, "Universal Cap")
	assert.Contains(t, names, "Hoops Jersey")
}

func TestFindActiveBetweenUnorderedPair(t *testing.T) {
	mem := NewMemory()
	m := &models.Match{Player1ID: "a", Player2ID: "b", VenueID: "v", SportID: "s"}
	require.NoError(t, mem.Matches.Create(m))

	found, err := mem.Matches.FindActiveBetween("b", "a")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, m.ID, found.ID)

	// terminal states no longer block
	_, err = mem.Matches.WithMatchLock(m.ID, func(mm *models.Match) error {
		mm.Status = models.MatchStatusDeclined
		return nil
	})
	require.NoError(t, err)

	found, err = mem.Matches.FindActiveBetween("a", "b")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestWithMatchLockRollsBackOnError(t *testing.T) {
	mem := NewMemory()
	m := &models.Match{Player1ID: "a", Player2ID: "b", VenueID: "v", SportID: "s"}
	require.NoError(t, mem.Matches.Create(m))

	_, err := mem.Matches.WithMatchLock(m.ID, func(mm *models.Match) error {
		mm.Status = models.MatchStatusCancelled
		return apperrors.New(apperrors.CodeInvalidState, "nope")
	})
	require.Error(t, err)

	got, err := mem.Matches.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPending, got.Status)
}

func TestExpirePending(t *testing.T) {
	mem := NewMemory()
	m := &models.Match{Player1ID: "a", Player2ID: "b", VenueID: "v", SportID: "s"}
	require.NoError(t, mem.Matches.Create(m))

	// nothing old enough yet
	n, err := mem.Matches.ExpirePending(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = mem.Matches.ExpirePending(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := mem.Matches.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCancelled, got.Status)
}

func TestReleaseStaleRecording(t *testing.T) {
	mem := NewMemory()
	m := &models.Match{Player1ID: "a", Player2ID: "b", VenueID: "v", SportID: "s"}
	require.NoError(t, mem.Matches.Create(m))

	started := time.Now().Add(-2 * time.Hour)
	holder := "a"
	_, err := mem.Matches.WithMatchLock(m.ID, func(mm *models.Match) error {
		mm.Status = models.MatchStatusInProgress
		mm.RecordingBy = &holder
		mm.RecordingStartedAt = &started
		return nil
	})
	require.NoError(t, err)

	n, err := mem.Matches.ReleaseStaleRecording(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := mem.Matches.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAccepted, got.Status)
	assert.Nil(t, got.RecordingBy)
}
