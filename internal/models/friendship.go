package models

import "time"

// FriendshipRequest is a directional, pending invitation identified by the
// ordered pair (to, from). A request (A,B) and its reverse (B,A) are
// distinct entities and are never merged automatically.
type FriendshipRequest struct {
	ToEmail   string    `gorm:"primaryKey;type:varchar(255)" json:"to"`
	FromEmail string    `gorm:"primaryKey;type:varchar(255)" json:"from"`
	CreatedAt time.Time `json:"createdAt"`

	To   User `gorm:"foreignKey:ToEmail;references:Email;constraint:OnDelete:CASCADE" json:"-"`
	From User `gorm:"foreignKey:FromEmail;references:Email;constraint:OnDelete:CASCADE" json:"-"`
}

// Friendship is the established, symmetric relation. The pair is stored in
// canonical order (UserAEmail < UserBEmail) so both orientations map to the
// same row. Use NewFriendship to construct one.
type Friendship struct {
	UserAEmail string    `gorm:"primaryKey;type:varchar(255)" json:"userA"`
	UserBEmail string    `gorm:"primaryKey;type:varchar(255)" json:"userB"`
	CreatedAt  time.Time `json:"createdAt"`

	UserA User `gorm:"foreignKey:UserAEmail;references:Email;constraint:OnDelete:CASCADE" json:"-"`
	UserB User `gorm:"foreignKey:UserBEmail;references:Email;constraint:OnDelete:CASCADE" json:"-"`
}

// NewFriendship normalizes the pair into canonical order.
func NewFriendship(a, b string) Friendship {
	if b < a {
		a, b = b, a
	}
	return Friendship{UserAEmail: a, UserBEmail: b}
}

// Contains reports whether email is one of the two participants.
func (f Friendship) Contains(email string) bool {
	return f.UserAEmail == email || f.UserBEmail == email
}

// Other returns the counterpart of email in the pair, or "" when email is
// not a participant.
func (f Friendship) Other(email string) string {
	switch email {
	case f.UserAEmail:
		return f.UserBEmail
	case f.UserBEmail:
		return f.UserAEmail
	}
	return ""
}
