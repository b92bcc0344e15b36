package store

import (
	"sort"
	"sync"
	"time"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"

	"github.com/google/uuid"
)

// Memory bundles an in-process implementation of every store interface, used
// by tests. One mutex serializes everything, which also gives WithMatchLock
// the same exclusivity the row lock gives in Postgres.
type Memory struct {
	Matches    *MemoryMatches
	Stats      *MemoryStats
	Catalog    *MemoryCatalog
	Challenges *MemoryChallenges
}

func NewMemory() *Memory {
	core := &memoryCore{
		matches: make(map[string]*models.Match),
		stats:   make(map[string]*models.PlayerStats),
		items:   make(map[string]*models.AvatarItem),
		unlocks: make(map[string]*models.UnlockRecord),
		defs:    make(map[string]*models.Challenge),
	}
	return &Memory{
		Matches:    &MemoryMatches{core},
		Stats:      &MemoryStats{core},
		Catalog:    &MemoryCatalog{core},
		Challenges: &MemoryChallenges{core},
	}
}

type memoryCore struct {
	mu       sync.Mutex
	matches  map[string]*models.Match
	stats    map[string]*models.PlayerStats // key: userID|sportID
	items    map[string]*models.AvatarItem
	unlocks  map[string]*models.UnlockRecord // key: userID|itemID
	defs     map[string]*models.Challenge
	attempts []*models.ChallengeAttempt
}

func statKey(userID, sportID string) string { return userID + "|" + sportID }

func copyMatch(m *models.Match) *models.Match {
	c := *m
	return &c
}

// MemoryMatches implements MatchStore.
type MemoryMatches struct{ c *memoryCore }

func (s *MemoryMatches) Create(m *models.Match) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = models.MatchStatusPending
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.c.matches[m.ID] = copyMatch(m)
	return nil
}

func (s *MemoryMatches) Get(id string) (*models.Match, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	m, ok := s.c.matches[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "match not found")
	}
	return copyMatch(m), nil
}

func (s *MemoryMatches) FindActiveBetween(userA, userB string) (*models.Match, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	for _, m := range s.c.matches {
		samePair := (m.Player1ID == userA && m.Player2ID == userB) ||
			(m.Player1ID == userB && m.Player2ID == userA)
		if samePair && m.IsActive() {
			return copyMatch(m), nil
		}
	}
	return nil, nil
}

func (s *MemoryMatches) WithMatchLock(id string, fn func(*models.Match) error) (*models.Match, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	m, ok := s.c.matches[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "match not found")
	}
	work := copyMatch(m)
	if err := fn(work); err != nil {
		return nil, err
	}
	work.UpdatedAt = time.Now()
	s.c.matches[id] = work
	return copyMatch(work), nil
}

func (s *MemoryMatches) ListForUser(userID string, limit int) ([]models.Match, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	var out []models.Match
	for _, m := range s.c.matches {
		if m.Player1ID == userID || m.Player2ID == userID {
			out = append(out, *copyMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryMatches) ListByStatus(status string, limit int) ([]models.Match, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	var out []models.Match
	for _, m := range s.c.matches {
		if m.Status == status {
			out = append(out, *copyMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryMatches) ExpirePending(cutoff time.Time) (int64, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	var n int64
	for _, m := range s.c.matches {
		if m.Status == models.MatchStatusPending && m.CreatedAt.Before(cutoff) {
			m.Status = models.MatchStatusCancelled
			m.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (s *MemoryMatches) ReleaseStaleRecording(cutoff time.Time) (int64, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	var n int64
	for _, m := range s.c.matches {
		if m.Status == models.MatchStatusInProgress && m.VideoURL == nil &&
			m.RecordingStartedAt != nil && m.RecordingStartedAt.Before(cutoff) {
			m.Status = models.MatchStatusAccepted
			m.RecordingBy = nil
			m.RecordingStartedAt = nil
			m.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

// MemoryStats implements StatStore.
type MemoryStats struct{ c *memoryCore }

func (s *MemoryStats) Get(userID, sportID string) (*models.PlayerStats, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if st, ok := s.c.stats[statKey(userID, sportID)]; ok {
		c := *st
		return &c, nil
	}
	return &models.PlayerStats{UserID: userID, SportID: sportID}, nil
}

func (s *MemoryStats) Apply(userID, sportID string, d StatDelta) (*models.PlayerStats, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	key := statKey(userID, sportID)
	st, ok := s.c.stats[key]
	if !ok {
		st = &models.PlayerStats{ID: uuid.NewString(), UserID: userID, SportID: sportID}
		st.CreatedAt = time.Now()
		s.c.stats[key] = st
	}
	st.TotalXp += d.Xp
	st.TotalRp += d.Rp
	st.AvailableRp += d.Rp
	st.MatchesPlayed += d.MatchesPlayed
	st.MatchesWon += d.MatchesWon
	st.MatchesLost += d.MatchesLost
	st.ChallengesCompleted += d.ChallengesCompleted
	st.TotalPointsScored += d.PointsScored
	st.ThreePointersMade += d.ThreePointersMade
	st.ThreePointersAttempted += d.ThreePointersAttempted
	st.FreeThrowsMade += d.FreeThrowsMade
	st.FreeThrowsAttempted += d.FreeThrowsAttempted
	st.UsersInvited += d.UsersInvited
	st.UpdatedAt = time.Now()
	c := *st
	return &c, nil
}

func (s *MemoryStats) SpendRp(userID, sportID string, amount int64) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	st, ok := s.c.stats[statKey(userID, sportID)]
	if !ok || st.AvailableRp < amount {
		return apperrors.New(apperrors.CodeInsufficientRp, "not enough reward points")
	}
	st.AvailableRp -= amount
	st.UpdatedAt = time.Now()
	return nil
}

// MemoryCatalog implements CatalogStore.
type MemoryCatalog struct{ c *memoryCore }

// AddItem registers a catalog item, generating an id when absent.
func (s *MemoryCatalog) AddItem(item models.AvatarItem) *models.AvatarItem {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	s.c.items[item.ID] = &item
	return &item
}

func (s *MemoryCatalog) ActiveItems(sportID string) ([]models.AvatarItem, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	var out []models.AvatarItem
	for _, it := range s.c.items {
		if !it.IsActive {
			continue
		}
		if it.SportID != nil && *it.SportID != sportID {
			continue
		}
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryCatalog) GetItem(id string) (*models.AvatarItem, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	it, ok := s.c.items[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "item not found")
	}
	c := *it
	return &c, nil
}

func (s *MemoryCatalog) UnlockedItemIDs(userID string) (map[string]bool, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	set := make(map[string]bool)
	for _, rec := range s.c.unlocks {
		if rec.UserID == userID {
			set[rec.ItemID] = true
		}
	}
	return set, nil
}

func (s *MemoryCatalog) HasUnlock(userID, itemID string) (bool, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	_, ok := s.c.unlocks[userID+"|"+itemID]
	return ok, nil
}

func (s *MemoryCatalog) InsertUnlock(rec *models.UnlockRecord) (bool, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	key := rec.UserID + "|" + rec.ItemID
	if _, exists := s.c.unlocks[key]; exists {
		return false, nil
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.UnlockedAt.IsZero() {
		rec.UnlockedAt = time.Now()
	}
	c := *rec
	s.c.unlocks[key] = &c
	return true, nil
}

func (s *MemoryCatalog) ListUnlocks(userID string) ([]models.UnlockRecord, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	var out []models.UnlockRecord
	for _, rec := range s.c.unlocks {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnlockedAt.After(out[j].UnlockedAt) })
	return out, nil
}

func (s *MemoryCatalog) UnlocksSince(userID string, since time.Time) ([]models.UnlockRecord, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	var out []models.UnlockRecord
	for _, rec := range s.c.unlocks {
		if rec.UserID == userID && rec.UnlockedAt.After(since) {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnlockedAt.Before(out[j].UnlockedAt) })
	return out, nil
}

// MemoryChallenges implements ChallengeStore.
type MemoryChallenges struct{ c *memoryCore }

// AddChallenge registers a challenge definition.
func (s *MemoryChallenges) AddChallenge(ch models.Challenge) *models.Challenge {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	ch.CreatedAt = time.Now()
	s.c.defs[ch.ID] = &ch
	return &ch
}

func (s *MemoryChallenges) GetChallenge(id string) (*models.Challenge, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	ch, ok := s.c.defs[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "challenge not found")
	}
	c := *ch
	return &c, nil
}

func (s *MemoryChallenges) ActiveChallenges(sportID string) ([]models.Challenge, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	var out []models.Challenge
	for _, ch := range s.c.defs {
		if ch.SportID == sportID && ch.IsActive {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryChallenges) InsertAttempt(a *models.ChallengeAttempt) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CompletedAt.IsZero() {
		a.CompletedAt = time.Now()
	}
	c := *a
	s.c.attempts = append(s.c.attempts, &c)
	return nil
}

func (s *MemoryChallenges) AttemptsForUser(userID string, limit int) ([]models.ChallengeAttempt, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	var out []models.ChallengeAttempt
	for i := len(s.c.attempts) - 1; i >= 0; i-- {
		if s.c.attempts[i].UserID == userID {
			out = append(out, *s.c.attempts[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
