package models

import "time"

// Conversation is the unique thread between a requesting user and a
// commissioner. The (user_id, commissioner_id) pair is unique; creation goes
// through an upsert so concurrent first contacts never produce duplicates.
type Conversation struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	UserID         uint `json:"userId" gorm:"not null;uniqueIndex:idx_conversations_pair,priority:1"`
	CommissionerID uint `json:"commissionerId" gorm:"not null;uniqueIndex:idx_conversations_pair,priority:2"`

	LastMessageAt         *time.Time `json:"lastMessageAt"`
	UnreadForUser         int        `json:"unreadForUser" gorm:"not null;default:0"`
	UnreadForCommissioner int        `json:"unreadForCommissioner" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Listing decorations, populated by the conversations endpoint only.
	Messages     []Message      `json:"messages,omitempty" gorm:"-"`
	User         *PublicProfile `json:"user,omitempty" gorm:"-"`
	Commissioner *PublicProfile `json:"commissioner,omitempty" gorm:"-"`
}

// IsParty reports whether the given user id belongs to either side.
func (c *Conversation) IsParty(userID uint) bool {
	return c.UserID == userID || c.CommissionerID == userID
}
