package services

import (
	"errors"
	"log"
	"time"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"
	"sports-match-system/store"

	"gorm.io/gorm"
)

// PlayerService handles player profile reads, default-item bootstrap, and
// the invite flow that feeds the usersInvited stat.
type PlayerService struct {
	DB      *gorm.DB
	Catalog store.CatalogStore
	Stats   store.StatStore
	Unlocks *UnlockService
}

func NewPlayerService(db *gorm.DB, catalog store.CatalogStore, stats store.StatStore, unlocks *UnlockService) *PlayerService {
	return &PlayerService{DB: db, Catalog: catalog, Stats: stats, Unlocks: unlocks}
}

// EnsureDefaultItems grants every default catalog item the user does not own
// yet. Safe to call on every login; duplicate grants are no-ops.
func (s *PlayerService) EnsureDefaultItems(userID, sportID string) error {
	items, err := s.Catalog.ActiveItems(sportID)
	if err != nil {
		return err
	}
	for i := range items {
		if !items[i].IsDefault {
			continue
		}
		if _, err := s.Catalog.InsertUnlock(&models.UnlockRecord{
			UserID:      userID,
			ItemID:      items[i].ID,
			UnlockedVia: models.UnlockViaDefault,
		}); err != nil {
			return err
		}
	}
	return nil
}

// GetPlayer looks up a profile snapshot by external user id.
func (s *PlayerService) GetPlayer(externalUserID string) (*models.Player, error) {
	var p models.Player
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "player not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchPlayers matches usernames by prefix for the challenge picker.
func (s *PlayerService) SearchPlayers(query string, limit int) ([]models.Player, error) {
	if query == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var players []models.Player
	err := s.DB.
		Where("username ILIKE ?", query+"%").
		Order("username ASC").
		Limit(limit).
		Find(&players).Error
	return players, err
}

// RecordInvite stores the invite edge when a new user signs up through an
// invite code. Each invitee can be credited to at most one inviter.
func (s *PlayerService) RecordInvite(inviterID, inviteeID, sportID, code string) (*models.Invite, error) {
	if inviterID == inviteeID {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "cannot invite yourself")
	}
	inv := &models.Invite{
		InviterID:      inviterID,
		InviteeID:      inviteeID,
		SportID:        sportID,
		InviteCodeUsed: code,
	}
	if err := s.DB.Create(inv).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "invitee already credited to an inviter", err)
	}
	return inv, nil
}

// CreditInvite marks the invite credited once the invitee completes
// onboarding, bumps the inviter's usersInvited counter, and runs the unlock
// check. Idempotent per invite row.
func (s *PlayerService) CreditInvite(inviteID string) ([]models.UnlockedItem, error) {
	var inv models.Invite
	err := s.DB.First(&inv, "id = ?", inviteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "invite not found")
	}
	if err != nil {
		return nil, err
	}
	if inv.Credited {
		return nil, nil
	}

	now := time.Now()
	res := s.DB.Model(&models.Invite{}).
		Where("id = ? AND credited = false", inviteID).
		Updates(map[string]interface{}{"credited": true, "credited_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// lost the race to a concurrent credit
		return nil, nil
	}

	if _, err := s.Stats.Apply(inv.InviterID, inv.SportID, store.StatDelta{UsersInvited: 1}); err != nil {
		log.Printf("❌ Failed to credit invite %s to %s: %v", inviteID, inv.InviterID, err)
		return nil, err
	}
	unlocked, err := s.Unlocks.CheckAndUnlockEligible(inv.InviterID, inv.SportID)
	if err != nil {
		log.Printf("❌ Unlock check failed for inviter %s: %v", inv.InviterID, err)
		return nil, nil
	}
	return unlocked, nil
}

// StatsFor returns the caller-visible stats row (zero-valued when absent).
func (s *PlayerService) StatsFor(userID, sportID string) (*models.PlayerStats, error) {
	return s.Stats.Get(userID, sportID)
}
