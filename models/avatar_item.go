package models

import "time"

// How an unlock record came to exist.
const (
	UnlockViaDefault     = "default"
	UnlockViaAchievement = "achievement"
	UnlockViaPurchase    = "purchase"
)

// AvatarItem is a cosmetic catalog entry. The unlock requirements are all
// nullable: nil means "not required". An item with SportID == nil is
// universal across sports. Read-only to the engine; maintained by content
// administration.
type AvatarItem struct {
	ID       string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name     string  `gorm:"not null" json:"name"`
	ItemType string  `gorm:"type:varchar(32);not null" json:"item_type"` // e.g., jersey, shoes, headband
	SportID  *string `gorm:"index" json:"sport_id,omitempty"`

	IsDefault bool `gorm:"default:false" json:"is_default"`
	IsActive  bool `gorm:"default:true" json:"is_active"`

	RequiredMatches    *int64 `json:"required_matches,omitempty"`
	RequiredChallenges *int64 `json:"required_challenges,omitempty"`
	RequiredInvites    *int64 `json:"required_invites,omitempty"`
	RequiredXp         *int64 `json:"required_xp,omitempty"`

	RpCost *int64 `json:"rp_cost,omitempty"` // purchase path, nil = not purchasable

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// HasRequirements reports whether any achievement requirement is declared.
func (i *AvatarItem) HasRequirements() bool {
	return i.RequiredMatches != nil || i.RequiredChallenges != nil ||
		i.RequiredInvites != nil || i.RequiredXp != nil
}

// UnlockRecord marks one item unlocked for one user. Unique per
// (user_id, item_id) — re-evaluation of a satisfied predicate must never
// create a second row.
type UnlockRecord struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID     string    `gorm:"uniqueIndex:idx_user_item;not null" json:"user_id"`
	ItemID     string    `gorm:"uniqueIndex:idx_user_item;not null" json:"item_id"`
	UnlockedVia string   `gorm:"type:varchar(16);not null" json:"unlocked_via"`
	UnlockedAt time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

// UnlockedItem is the shape returned to callers when an item is newly
// unlocked by a finalized match or a recorded attempt.
type UnlockedItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ItemType string `json:"item_type"`
}

func ptrInt64(v int64) *int64 { return &v }

// DefaultCatalog seeds the items table on first boot (content admin replaces
// these in production).
var DefaultCatalog = []AvatarItem{
	{Name: "Classic Jersey", ItemType: "jersey", IsDefault: true},
	{Name: "Court Sneakers", ItemType: "shoes", IsDefault: true},
	{Name: "Rookie Headband", ItemType: "headband", RequiredMatches: ptrInt64(1)},
	{Name: "Gym Rat Wristband", ItemType: "wristband", RequiredChallenges: ptrInt64(10)},
	{Name: "Recruiter Cap", ItemType: "hat", RequiredInvites: ptrInt64(5)},
	{Name: "Veteran Jersey", ItemType: "jersey", RequiredMatches: ptrInt64(25), RequiredXp: ptrInt64(2500)},
	{Name: "Gold Chain", ItemType: "accessory", RpCost: ptrInt64(200)},
}
