package store

import (
	"errors"
	"time"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm bundles the Postgres-backed implementation of every store interface.
type Gorm struct {
	Matches    *GormMatches
	Stats      *GormStats
	Catalog    *GormCatalog
	Challenges *GormChallenges
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{
		Matches:    &GormMatches{DB: db},
		Stats:      &GormStats{DB: db},
		Catalog:    &GormCatalog{DB: db},
		Challenges: &GormChallenges{DB: db},
	}
}

var activeMatchStatuses = []string{
	models.MatchStatusPending,
	models.MatchStatusAccepted,
	models.MatchStatusInProgress,
}

// GormMatches implements MatchStore.
type GormMatches struct {
	DB *gorm.DB
}

func (s *GormMatches) Create(m *models.Match) error {
	return s.DB.Create(m).Error
}

func (s *GormMatches) Get(id string) (*models.Match, error) {
	var m models.Match
	if err := s.DB.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "match not found")
		}
		return nil, err
	}
	return &m, nil
}

func (s *GormMatches) FindActiveBetween(userA, userB string) (*models.Match, error) {
	var m models.Match
	err := s.DB.
		Where("((player1_id = ? AND player2_id = ?) OR (player1_id = ? AND player2_id = ?))",
			userA, userB, userB, userA).
		Where("status IN ?", activeMatchStatuses).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *GormMatches) WithMatchLock(id string, fn func(*models.Match) error) (*models.Match, error) {
	var out *models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var m models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "match not found")
			}
			return err
		}
		if err := fn(&m); err != nil {
			return err
		}
		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		out = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormMatches) ListForUser(userID string, limit int) ([]models.Match, error) {
	var matches []models.Match
	err := s.DB.
		Where("player1_id = ? OR player2_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&matches).Error
	return matches, err
}

func (s *GormMatches) ListByStatus(status string, limit int) ([]models.Match, error) {
	var matches []models.Match
	err := s.DB.
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&matches).Error
	return matches, err
}

func (s *GormMatches) ExpirePending(cutoff time.Time) (int64, error) {
	res := s.DB.Model(&models.Match{}).
		Where("status = ? AND created_at < ?", models.MatchStatusPending, cutoff).
		Update("status", models.MatchStatusCancelled)
	return res.RowsAffected, res.Error
}

func (s *GormMatches) ReleaseStaleRecording(cutoff time.Time) (int64, error) {
	res := s.DB.Model(&models.Match{}).
		Where("status = ? AND video_url IS NULL AND recording_started_at < ?",
			models.MatchStatusInProgress, cutoff).
		Updates(map[string]interface{}{
			"status":               models.MatchStatusAccepted,
			"recording_by":         nil,
			"recording_started_at": nil,
		})
	return res.RowsAffected, res.Error
}

// GormStats implements StatStore.
type GormStats struct {
	DB *gorm.DB
}

func (s *GormStats) Get(userID, sportID string) (*models.PlayerStats, error) {
	var st models.PlayerStats
	err := s.DB.Where("user_id = ? AND sport_id = ?", userID, sportID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Lazily created — absent means all-zero.
		return &models.PlayerStats{UserID: userID, SportID: sportID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *GormStats) Apply(userID, sportID string, d StatDelta) (*models.PlayerStats, error) {
	row := models.PlayerStats{
		UserID:                 userID,
		SportID:                sportID,
		TotalXp:                d.Xp,
		TotalRp:                d.Rp,
		AvailableRp:            d.Rp,
		MatchesPlayed:          d.MatchesPlayed,
		MatchesWon:             d.MatchesWon,
		MatchesLost:            d.MatchesLost,
		ChallengesCompleted:    d.ChallengesCompleted,
		TotalPointsScored:      d.PointsScored,
		ThreePointersMade:      d.ThreePointersMade,
		ThreePointersAttempted: d.ThreePointersAttempted,
		FreeThrowsMade:         d.FreeThrowsMade,
		FreeThrowsAttempted:    d.FreeThrowsAttempted,
		UsersInvited:           d.UsersInvited,
	}

	// Additive upsert: one statement, no read-modify-write window.
	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "sport_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_xp":                 gorm.Expr("player_stats.total_xp + EXCLUDED.total_xp"),
			"total_rp":                 gorm.Expr("player_stats.total_rp + EXCLUDED.total_rp"),
			"available_rp":             gorm.Expr("player_stats.available_rp + EXCLUDED.available_rp"),
			"matches_played":           gorm.Expr("player_stats.matches_played + EXCLUDED.matches_played"),
			"matches_won":              gorm.Expr("player_stats.matches_won + EXCLUDED.matches_won"),
			"matches_lost":             gorm.Expr("player_stats.matches_lost + EXCLUDED.matches_lost"),
			"challenges_completed":     gorm.Expr("player_stats.challenges_completed + EXCLUDED.challenges_completed"),
			"total_points_scored":      gorm.Expr("player_stats.total_points_scored + EXCLUDED.total_points_scored"),
			"three_pointers_made":      gorm.Expr("player_stats.three_pointers_made + EXCLUDED.three_pointers_made"),
			"three_pointers_attempted": gorm.Expr("player_stats.three_pointers_attempted + EXCLUDED.three_pointers_attempted"),
			"free_throws_made":         gorm.Expr("player_stats.free_throws_made + EXCLUDED.free_throws_made"),
			"free_throws_attempted":    gorm.Expr("player_stats.free_throws_attempted + EXCLUDED.free_throws_attempted"),
			"users_invited":            gorm.Expr("player_stats.users_invited + EXCLUDED.users_invited"),
			"updated_at":               gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	return s.Get(userID, sportID)
}

func (s *GormStats) SpendRp(userID, sportID string, amount int64) error {
	res := s.DB.Model(&models.PlayerStats{}).
		Where("user_id = ? AND sport_id = ? AND available_rp >= ?", userID, sportID, amount).
		Update("available_rp", gorm.Expr("available_rp - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeInsufficientRp, "not enough reward points")
	}
	return nil
}

// GormCatalog implements CatalogStore.
type GormCatalog struct {
	DB *gorm.DB
}

func (s *GormCatalog) ActiveItems(sportID string) ([]models.AvatarItem, error) {
	var items []models.AvatarItem
	err := s.DB.
		Where("is_active = ?", true).
		Where("sport_id IS NULL OR sport_id = ?", sportID).
		Find(&items).Error
	return items, err
}

func (s *GormCatalog) GetItem(id string) (*models.AvatarItem, error) {
	var item models.AvatarItem
	if err := s.DB.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (s *GormCatalog) UnlockedItemIDs(userID string) (map[string]bool, error) {
	var ids []string
	err := s.DB.Model(&models.UnlockRecord{}).
		Where("user_id = ?", userID).
		Pluck("item_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *GormCatalog) HasUnlock(userID, itemID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.UnlockRecord{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormCatalog) InsertUnlock(rec *models.UnlockRecord) (bool, error) {
	// The unique (user_id, item_id) index makes duplicates a silent no-op.
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoNothing: true,
	}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormCatalog) ListUnlocks(userID string) ([]models.UnlockRecord, error) {
	var recs []models.UnlockRecord
	err := s.DB.
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&recs).Error
	return recs, err
}

func (s *GormCatalog) UnlocksSince(userID string, since time.Time) ([]models.UnlockRecord, error) {
	var recs []models.UnlockRecord
	err := s.DB.
		Where("user_id = ? AND unlocked_at > ?", userID, since).
		Order("unlocked_at ASC").
		Find(&recs).Error
	return recs, err
}

// SeedCatalog inserts the default item catalog when the table is empty.
func (s *GormCatalog) SeedCatalog() error {
	var count int64
	if err := s.DB.Model(&models.AvatarItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	items := make([]models.AvatarItem, len(models.DefaultCatalog))
	copy(items, models.DefaultCatalog)
	return s.DB.Create(&items).Error
}

// GormChallenges implements ChallengeStore.
type GormChallenges struct {
	DB *gorm.DB
}

func (s *GormChallenges) GetChallenge(id string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.First(&ch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "challenge not found")
		}
		return nil, err
	}
	return &ch, nil
}

func (s *GormChallenges) ActiveChallenges(sportID string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.DB.
		Where("sport_id = ? AND is_active = ?", sportID, true).
		Order("created_at ASC").
		Find(&challenges).Error
	return challenges, err
}

func (s *GormChallenges) InsertAttempt(a *models.ChallengeAttempt) error {
	return s.DB.Create(a).Error
}

func (s *GormChallenges) AttemptsForUser(userID string, limit int) ([]models.ChallengeAttempt, error) {
	var attempts []models.ChallengeAttempt
	err := s.DB.
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
