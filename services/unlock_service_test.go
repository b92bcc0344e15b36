package services

import (
	"testing"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"
	"sports-match-system/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func newUnlockFixture(t *testing.T) (*UnlockService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewUnlockService(mem.Catalog, mem.Stats), mem
}

func TestCanUnlockItem(t *testing.T) {
	tests := []struct {
		name  string
		item  models.AvatarItem
		stats models.PlayerStats
		want  bool
	}{
		{
			name: "default item always unlockable",
			item: models.AvatarItem{IsDefault: true},
			want: true,
		},
		{
			name: "purchase-only item never satisfies achievement check",
			item: models.AvatarItem{RpCost: int64p(100)},
			want: false,
		},
		{
			name:  "single requirement met",
			item:  models.AvatarItem{RequiredMatches: int64p(5)},
			stats: models.PlayerStats{MatchesPlayed: 5},
			want:  true,
		},
		{
			name:  "single requirement unmet",
			item:  models.AvatarItem{RequiredMatches: int64p(5)},
			stats: models.PlayerStats{MatchesPlayed: 4},
			want:  false,
		},
		{
			name:  "all requirements must hold",
			item:  models.AvatarItem{RequiredMatches: int64p(25), RequiredXp: int64p(2500)},
			stats: models.PlayerStats{MatchesPlayed: 30, TotalXp: 2000},
			want:  false,
		},
		{
			name:  "combined requirements met",
			item:  models.AvatarItem{RequiredMatches: int64p(25), RequiredXp: int64p(2500)},
			stats: models.PlayerStats{MatchesPlayed: 25, TotalXp: 2500},
			want:  true,
		},
		{
			name:  "invite requirement",
			item:  models.AvatarItem{RequiredInvites: int64p(5)},
			stats: models.PlayerStats{UsersInvited: 7},
			want:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanUnlockItem(&tt.item, &tt.stats))
		})
	}
}

func TestCheckAndUnlockEligible(t *testing.T) {
	svc, mem := newUnlockFixture(t)

	item := mem.Catalog.AddItem(models.AvatarItem{
		Name: "Rookie Headband", ItemType: "headband", IsActive: true,
		RequiredMatches: int64p(1),
	})
	mem.Catalog.AddItem(models.AvatarItem{
		Name: "Classic Jersey", ItemType: "jersey", IsActive: true, IsDefault: true,
	})
	mem.Catalog.AddItem(models.AvatarItem{
		Name: "Veteran Jersey", ItemType: "jersey", IsActive: true,
		RequiredMatches: int64p(25),
	})

	_, err := mem.Stats.Apply("u1", "basketball", store.StatDelta{MatchesPlayed: 1})
	require.NoError(t, err)

	unlocked, err := svc.CheckAndUnlockEligible("u1", "basketball")
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, item.ID, unlocked[0].ID)

	// re-check is a no-op
	unlocked, err = svc.CheckAndUnlockEligible("u1", "basketball")
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestUnlockItemPurchase(t *testing.T) {
	svc, mem := newUnlockFixture(t)

	chain := mem.Catalog.AddItem(models.AvatarItem{
		Name: "Gold Chain", ItemType: "accessory", IsActive: true, RpCost: int64p(200),
	})

	_, err := svc.UnlockItem("u1", chain.ID, models.UnlockViaPurchase, "basketball")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInsufficientRp))

	_, err = mem.Stats.Apply("u1", "basketball", store.StatDelta{Rp: 250})
	require.NoError(t, err)

	item, err := svc.UnlockItem("u1", chain.ID, models.UnlockViaPurchase, "basketball")
	require.NoError(t, err)
	assert.Equal(t, "Gold Chain", item.Name)

	stats, err := mem.Stats.Get("u1", "basketball")
	require.NoError(t, err)
	assert.Equal(t, int64(50), stats.AvailableRp, "available rp spent")
	assert.Equal(t, int64(250), stats.TotalRp, "lifetime rp untouched")

	_, err = svc.UnlockItem("u1", chain.ID, models.UnlockViaPurchase, "basketball")
	assert.True(t, apperrors.Is(err, apperrors.CodeAlreadyUnlocked))
}

func TestUnlockItemNotPurchasable(t *testing.T) {
	svc, mem := newUnlockFixture(t)

	item := mem.Catalog.AddItem(models.AvatarItem{
		Name: "Rookie Headband", ItemType: "headband", IsActive: true,
		RequiredMatches: int64p(1),
	})

	_, err := svc.UnlockItem("u1", item.ID, models.UnlockViaPurchase, "basketball")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotPurchasable))

	_, err = svc.UnlockItem("u1", item.ID, models.UnlockViaAchievement, "basketball")
	assert.True(t, apperrors.Is(err, apperrors.CodeRequirementsNotMet))
}

func TestUnlockItemNotFound(t *testing.T) {
	svc, _ := newUnlockFixture(t)
	_, err := svc.UnlockItem("u1", "missing", models.UnlockViaAchievement, "basketball")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestRequirementLabel(t *testing.T) {
	tests := []struct {
		name string
		item models.AvatarItem
		want string
	}{
		{"default", models.AvatarItem{IsDefault: true}, "Default item"},
		{"matches only", models.AvatarItem{RequiredMatches: int64p(5)}, "5 matches"},
		{"purchase", models.AvatarItem{RpCost: int64p(200)}, "200 RP"},
		{
			"combined in fixed order",
			models.AvatarItem{RequiredMatches: int64p(25), RequiredXp: int64p(2500)},
			"25 matches + 2500 XP",
		},
		{
			"all four",
			models.AvatarItem{
				RequiredMatches:    int64p(10),
				RequiredChallenges: int64p(20),
				RequiredInvites:    int64p(3),
				RequiredXp:         int64p(1000),
			},
			"10 matches + 20 challenges + 3 invites + 1000 XP",
		},
		{"nothing declared", models.AvatarItem{}, "Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequirementLabel(&tt.item))
		})
	}
}

func TestProgressReporting(t *testing.T) {
	svc, mem := newUnlockFixture(t)

	mem.Catalog.AddItem(models.AvatarItem{
		Name: "Veteran Jersey", ItemType: "jersey", IsActive: true,
		RequiredMatches: int64p(25), RequiredXp: int64p(2500),
	})
	_, err := mem.Stats.Apply("u1", "basketball", store.StatDelta{MatchesPlayed: 10, Xp: 900})
	require.NoError(t, err)

	progress, err := svc.Progress("u1", "basketball")
	require.NoError(t, err)
	require.Len(t, progress, 1)

	p := progress[0]
	assert.False(t, p.Unlocked)
	assert.Equal(t, "25 matches + 2500 XP", p.Requirement)
	require.Len(t, p.Parts, 2)
	assert.Equal(t, RequirementPart{"matches", 10, 25}, p.Parts[0])
	assert.Equal(t, RequirementPart{"xp", 900, 2500}, p.Parts[1])
}
