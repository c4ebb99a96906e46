package models

import "time"

// Message is an immutable chat message between two users who have (or had,
// at creation time) a friendship. Messages intentionally carry no foreign
// key to users or friendships: history outlives both the relationship and
// the accounts, so neither removal cascades into messages.
type Message struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SenderEmail   string    `gorm:"index;type:varchar(255)" json:"sender"`
	ReceiverEmail string    `gorm:"index;type:varchar(255)" json:"receiver"`
	Content       string    `gorm:"type:text" json:"content"`
	AttachmentURL string    `gorm:"type:text" json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
