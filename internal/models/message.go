package models

import (
	"time"
)

type Message struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);not null;index:idx_messages_conversation_created" json:"conversation_id"`
	SenderID       string    `gorm:"type:varchar(36);not null" json:"sender_id"`
	ReceiverID     string    `gorm:"type:varchar(36);not null;index" json:"receiver_id"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	CreatedAt      time.Time `gorm:"index:idx_messages_conversation_created" json:"created_at"`
	IsRead         bool      `gorm:"not null;default:false" json:"is_read"`

	//Foreign Key Relationship
	Conversation Conversation `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}
