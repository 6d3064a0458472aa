package service

import (
	"context"
	"errors"

	"github.com/myshagun/backend/internal/metrics"
	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/pkg/apperr"
	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

// ConversationResolver hands out the single conversation of an unordered user pair.
type ConversationResolver struct {
	conversations ConversationStore
}

func NewConversationResolver(conversations ConversationStore) *ConversationResolver {
	return &ConversationResolver{conversations: conversations}
}

// FindOrCreate returns the id of the conversation between a and b, creating it when
// none exists. Two callers racing on the same pair both get the winner's id.
func (r *ConversationResolver) FindOrCreate(ctx context.Context, a, b string) (string, error) {
	if a == "" || b == "" {
		return "", apperr.Validation("both participants are required")
	}
	if a == b {
		return "", apperr.Validation("a conversation needs two different users")
	}

	existing, err := r.conversations.FindByPair(ctx, a, b)
	if err != nil {
		return "", storeError(err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	user1, user2 := models.CanonicalPair(a, b)
	conversation := &models.Conversation{User1ID: user1, User2ID: user2}

	err = r.conversations.Create(ctx, conversation)
	if err == nil {
		metrics.ConversationsCreatedTotal.Inc()
		logger.Log.Info("Conversation created",
			zap.String("conversation_id", conversation.ID),
			zap.String("user1_id", user1),
			zap.String("user2_id", user2),
		)
		return conversation.ID, nil
	}
	if !errors.Is(err, repository.ErrDuplicateKey) {
		logger.Log.Error("Failed to create conversation",
			zap.String("user1_id", user1),
			zap.String("user2_id", user2),
			zap.Error(err),
		)
		return "", storeError(err)
	}

	winner, err := r.conversations.FindCommittedByPair(ctx, a, b)
	if err != nil {
		return "", storeError(err)
	}
	if winner == nil {
		return "", apperr.Unavailable(errors.New("conversation missing after unique conflict"))
	}

	logger.Log.Debug("Conversation created concurrently, using existing row",
		zap.String("conversation_id", winner.ID),
	)
	return winner.ID, nil
}
