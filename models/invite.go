package models

import "time"

// Invite tracks one user inviting another onto the platform. Accepted
// invites feed the inviter's usersInvited stat (and thereby the
// requiredInvites unlock predicates).
type Invite struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	InviterID string `gorm:"index;not null" json:"inviter_id"`
	InviteeID string `gorm:"uniqueIndex;not null" json:"invitee_id"`
	SportID   string `gorm:"index;not null" json:"sport_id"`

	InviteCodeUsed string     `json:"invite_code_used"`
	Credited       bool       `gorm:"default:false" json:"credited"`
	CreditedAt     *time.Time `json:"credited_at,omitempty"`

	Timestamps
}
