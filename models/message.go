package models

import "time"

// Message is append-only chat content. Property and sender fields are
// denormalized snapshots taken at send time, so later edits to the property
// or the account never rewrite history. Only IsRead changes after creation.
type Message struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	ConversationID uint `json:"conversationId" gorm:"not null;index"`

	PropertyID    *uint  `json:"propertyId" gorm:"index"`
	PropertyName  string `json:"propertyName" gorm:"size:256"`
	PropertyImage string `json:"propertyImage" gorm:"size:512"`
	PropertyLink  string `json:"propertyLink" gorm:"size:512"`

	SenderName  string `json:"senderName" gorm:"size:160"`
	SenderEmail string `json:"senderEmail" gorm:"size:160"`
	SenderPhone string `json:"senderPhone" gorm:"size:32"`

	// UserID is nil for messages imported from the legacy anonymous lead path.
	UserID *uint  `json:"userId" gorm:"index"`
	Body   string `json:"body" gorm:"type:text;not null"`

	IsRead    bool      `json:"isRead" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}
