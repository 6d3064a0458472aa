package repository

import (
	"context"

	"github.com/myshagun/backend/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateMessage appends the message and moves the conversation's last_message_at to
// the message time in one transaction.
func (r *MessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Conversation").Create(message).Error; err != nil {
			return err
		}
		result := tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("last_message_at", message.CreatedAt)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return WrapDBError(err)
}

// MarkRead flips is_read on every unread message in the conversation addressed to
// receiverID and returns how many rows changed.
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, receiverID string) (int64, error) {
	result := conn(ctx, r.db).
		Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, receiverID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, WrapDBError(result.Error)
	}
	return result.RowsAffected, nil
}

// ListByConversation returns the conversation's messages oldest first.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := conn(ctx, r.db).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return messages, nil
}

// LastMessages returns the newest message of each conversation keyed by conversation
// id. Conversations without messages are absent.
func (r *MessageRepository) LastMessages(ctx context.Context, conversationIDs []string) (map[string]*models.Message, error) {
	last := make(map[string]*models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return last, nil
	}

	newest := r.db.Model(&models.Message{}).
		Select("conversation_id, MAX(created_at) AS newest_at").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var messages []models.Message
	err := conn(ctx, r.db).
		Table("messages AS m").
		Select("m.*").
		Joins("JOIN (?) AS newest ON m.conversation_id = newest.conversation_id AND m.created_at = newest.newest_at", newest).
		Order("m.id").
		Find(&messages).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	for i := range messages {
		// Same-timestamp ties keep the first id.
		if _, ok := last[messages[i].ConversationID]; !ok {
			last[messages[i].ConversationID] = &messages[i]
		}
	}
	return last, nil
}

type unreadRow struct {
	ConversationID string
	Unread         int64
}

// UnreadCounts returns unread message counts for receiverID keyed by conversation id.
func (r *MessageRepository) UnreadCounts(ctx context.Context, receiverID string, conversationIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	var rows []unreadRow
	err := conn(ctx, r.db).
		Model(&models.Message{}).
		Select("conversation_id, COUNT(*) AS unread").
		Where("receiver_id = ? AND is_read = ? AND conversation_id IN ?", receiverID, false, conversationIDs).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	for _, row := range rows {
		counts[row.ConversationID] = row.Unread
	}
	return counts, nil
}
