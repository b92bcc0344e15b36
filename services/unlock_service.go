package services

import (
	"fmt"
	"log"
	"strings"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"
	"sports-match-system/store"
)

// UnlockService owns the avatar item catalog: eligibility evaluation,
// achievement auto-unlocks, RP purchases, and progress reporting.
type UnlockService struct {
	Catalog store.CatalogStore
	Stats   store.StatStore
}

func NewUnlockService(catalog store.CatalogStore, stats store.StatStore) *UnlockService {
	return &UnlockService{Catalog: catalog, Stats: stats}
}

// CanUnlockItem evaluates the item's requirement predicate against the stats
// row. Default items are always unlockable; every declared requirement must
// be met (AND semantics). Purchase-only items never satisfy this.
func CanUnlockItem(item *models.AvatarItem, stats *models.PlayerStats) bool {
	if item.IsDefault {
		return true
	}
	if !item.HasRequirements() {
		return false
	}
	if item.RequiredMatches != nil && stats.MatchesPlayed < *item.RequiredMatches {
		return false
	}
	if item.RequiredChallenges != nil && stats.ChallengesCompleted < *item.RequiredChallenges {
		return false
	}
	if item.RequiredInvites != nil && stats.UsersInvited < *item.RequiredInvites {
		return false
	}
	if item.RequiredXp != nil && stats.TotalXp < *item.RequiredXp {
		return false
	}
	return true
}

// CheckAndUnlockEligible scans the active catalog for the sport and unlocks
// every requirement item the user now qualifies for. Already-unlocked and
// default items are skipped. Called after any stat-changing event.
func (s *UnlockService) CheckAndUnlockEligible(userID, sportID string) ([]models.UnlockedItem, error) {
	stats, err := s.Stats.Get(userID, sportID)
	if err != nil {
		return nil, err
	}
	items, err := s.Catalog.ActiveItems(sportID)
	if err != nil {
		return nil, err
	}
	owned, err := s.Catalog.UnlockedItemIDs(userID)
	if err != nil {
		return nil, err
	}

	var unlocked []models.UnlockedItem
	for i := range items {
		item := &items[i]
		if owned[item.ID] || item.IsDefault || !item.HasRequirements() {
			continue
		}
		if !CanUnlockItem(item, stats) {
			continue
		}
		inserted, err := s.Catalog.InsertUnlock(&models.UnlockRecord{
			UserID:      userID,
			ItemID:      item.ID,
			UnlockedVia: models.UnlockViaAchievement,
		})
		if err != nil {
			log.Printf("❌ Failed to record unlock of %s for user %s: %v", item.ID, userID, err)
			continue
		}
		if inserted {
			log.Printf("🏆 User %s unlocked %s (%s)", userID, item.Name, item.ItemType)
			unlocked = append(unlocked, models.UnlockedItem{
				ID: item.ID, Name: item.Name, ItemType: item.ItemType,
			})
		}
	}
	return unlocked, nil
}

// UnlockItem unlocks one specific item for the user, via either the
// achievement path (requirements re-checked) or the purchase path (RP
// deducted first). Default items unlock unconditionally.
func (s *UnlockService) UnlockItem(userID, itemID, via, sportID string) (*models.UnlockedItem, error) {
	item, err := s.Catalog.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	has, err := s.Catalog.HasUnlock(userID, itemID)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, apperrors.New(apperrors.CodeAlreadyUnlocked, "item already unlocked")
	}

	switch {
	case item.IsDefault:
		via = models.UnlockViaDefault
	case via == models.UnlockViaPurchase:
		if item.RpCost == nil {
			return nil, apperrors.New(apperrors.CodeNotPurchasable, "item cannot be purchased")
		}
		if err := s.Stats.SpendRp(userID, sportID, *item.RpCost); err != nil {
			return nil, err
		}
	default:
		stats, err := s.Stats.Get(userID, sportID)
		if err != nil {
			return nil, err
		}
		if !CanUnlockItem(item, stats) {
			return nil, apperrors.New(apperrors.CodeRequirementsNotMet, "unlock requirements not met")
		}
		via = models.UnlockViaAchievement
	}

	inserted, err := s.Catalog.InsertUnlock(&models.UnlockRecord{
		UserID:      userID,
		ItemID:      itemID,
		UnlockedVia: via,
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, apperrors.New(apperrors.CodeAlreadyUnlocked, "item already unlocked")
	}
	return &models.UnlockedItem{ID: item.ID, Name: item.Name, ItemType: item.ItemType}, nil
}

// ItemProgress describes how far a user is toward one item.
type ItemProgress struct {
	Item        models.AvatarItem `json:"item"`
	Unlocked    bool              `json:"unlocked"`
	Requirement string            `json:"requirement"`
	Parts       []RequirementPart `json:"parts,omitempty"`
}

// RequirementPart is one requirement dimension with current progress.
type RequirementPart struct {
	Name     string `json:"name"`
	Current  int64  `json:"current"`
	Required int64  `json:"required"`
}

// Progress reports the user's standing against every active item for the
// sport, with a human-readable requirement label per item.
func (s *UnlockService) Progress(userID, sportID string) ([]ItemProgress, error) {
	stats, err := s.Stats.Get(userID, sportID)
	if err != nil {
		return nil, err
	}
	items, err := s.Catalog.ActiveItems(sportID)
	if err != nil {
		return nil, err
	}
	owned, err := s.Catalog.UnlockedItemIDs(userID)
	if err != nil {
		return nil, err
	}

	out := make([]ItemProgress, 0, len(items))
	for _, item := range items {
		p := ItemProgress{
			Item:        item,
			Unlocked:    owned[item.ID],
			Requirement: RequirementLabel(&item),
		}
		if item.RequiredMatches != nil {
			p.Parts = append(p.Parts, RequirementPart{"matches", stats.MatchesPlayed, *item.RequiredMatches})
		}
		if item.RequiredChallenges != nil {
			p.Parts = append(p.Parts, RequirementPart{"challenges", stats.ChallengesCompleted, *item.RequiredChallenges})
		}
		if item.RequiredInvites != nil {
			p.Parts = append(p.Parts, RequirementPart{"invites", stats.UsersInvited, *item.RequiredInvites})
		}
		if item.RequiredXp != nil {
			p.Parts = append(p.Parts, RequirementPart{"xp", stats.TotalXp, *item.RequiredXp})
		}
		out = append(out, p)
	}
	return out, nil
}

// RequirementLabel renders an item's unlock condition for display, e.g.
// "25 matches + 2500 XP" or "200 RP".
func RequirementLabel(item *models.AvatarItem) string {
	if item.IsDefault {
		return "Default item"
	}
	if item.HasRequirements() {
		var parts []string
		if item.RequiredMatches != nil {
			parts = append(parts, fmt.Sprintf("%d matches", *item.RequiredMatches))
		}
		if item.RequiredChallenges != nil {
			parts = append(parts, fmt.Sprintf("%d challenges", *item.RequiredChallenges))
		}
		if item.RequiredInvites != nil {
			parts = append(parts, fmt.Sprintf("%d invites", *item.RequiredInvites))
		}
		if item.RequiredXp != nil {
			parts = append(parts, fmt.Sprintf("%d XP", *item.RequiredXp))
		}
		return strings.Join(parts, " + ")
	}
	if item.RpCost != nil {
		return fmt.Sprintf("%d RP", *item.RpCost)
	}
	return "Unavailable"
}

// ListUnlocked returns the user's unlocked items joined with catalog data.
func (s *UnlockService) ListUnlocked(userID, sportID string) ([]models.AvatarItem, error) {
	owned, err := s.Catalog.UnlockedItemIDs(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.Catalog.ActiveItems(sportID)
	if err != nil {
		return nil, err
	}
	out := make([]models.AvatarItem, 0, len(owned))
	for _, item := range items {
		if owned[item.ID] {
			out = append(out, item)
		}
	}
	return out, nil
}
