package models

import "time"

// Conversation pairs two users. User1ID is always the lexically smaller id, so the
// unique index on (user1_id, user2_id) admits one row per unordered pair.
type Conversation struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	User1ID       string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_conversations_pair" json:"user1_id"`
	User2ID       string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_conversations_pair;index" json:"user2_id"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CanonicalPair orders two user ids the way conversations store them.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func (c *Conversation) HasUser(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherUser returns the participant that is not userID.
func (c *Conversation) OtherUser(userID string) (string, bool) {
	switch userID {
	case c.User1ID:
		return c.User2ID, true
	case c.User2ID:
		return c.User1ID, true
	}
	return "", false
}

// LastActivity is the last message time, or the creation time for an empty conversation.
func (c *Conversation) LastActivity() time.Time {
	if c.LastMessageAt != nil {
		return *c.LastMessageAt
	}
	return c.CreatedAt
}
