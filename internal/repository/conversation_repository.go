package repository

import (
	"context"
	"errors"

	"github.com/myshagun/backend/internal/models"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// FindByPair returns the conversation between a and b in either order, or nil, nil.
func (r *ConversationRepository) FindByPair(ctx context.Context, a, b string) (*models.Conversation, error) {
	return r.findByPair(conn(ctx, r.db), a, b)
}

// FindCommittedByPair is FindByPair for use after a unique conflict: inside a
// transaction it still sees the row the conflicting writer committed.
func (r *ConversationRepository) FindCommittedByPair(ctx context.Context, a, b string) (*models.Conversation, error) {
	return r.findByPair(latestCommitted(ctx, conn(ctx, r.db)), a, b)
}

func (r *ConversationRepository) findByPair(q *gorm.DB, a, b string) (*models.Conversation, error) {
	user1, user2 := models.CanonicalPair(a, b)

	var conversation models.Conversation
	err := q.Where("user1_id = ? AND user2_id = ?", user1, user2).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &conversation, nil
}

// Create stores the conversation with its pair in canonical order. A second row for
// the same pair yields ErrDuplicateKey.
func (r *ConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	conversation.User1ID, conversation.User2ID = models.CanonicalPair(conversation.User1ID, conversation.User2ID)
	return WrapDBError(insertIsolated(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Create(conversation).Error
	}))
}

// GetByID returns nil, nil for an unknown id.
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := conn(ctx, r.db).Where("id = ?", id).First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &conversation, nil
}

// ListForUser returns every conversation userID takes part in.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := conn(ctx, r.db).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&conversations).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return conversations, nil
}

// CountForPair is used by tests and diagnostics to check the singleton invariant.
func (r *ConversationRepository) CountForPair(ctx context.Context, a, b string) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.Conversation{}).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return 0, WrapDBError(err)
	}
	return count, nil
}
