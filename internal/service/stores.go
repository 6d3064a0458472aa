package service

import (
	"context"
	"errors"

	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/pkg/apperr"
)

// The repository contracts services depend on. The gorm repositories satisfy them;
// tests swap in doubles to force conflict paths.

// Transactor runs fn in one transaction; stores called with the ctx fn receives
// take part in it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetByUserIDs(ctx context.Context, userIDs []string) (map[string]*models.Profile, error)
	Exists(ctx context.Context, userID string) (bool, error)
	Update(ctx context.Context, userID string, fields map[string]interface{}) error
	Discover(ctx context.Context, viewerID string, filter repository.DiscoverFilter) ([]*models.Profile, error)
}

type LikeStore interface {
	Exists(ctx context.Context, fromID, toID string) (bool, error)
	Create(ctx context.Context, like *models.Like) error
}

type ConversationStore interface {
	FindByPair(ctx context.Context, a, b string) (*models.Conversation, error)
	// FindCommittedByPair re-reads the pair after a unique conflict.
	FindCommittedByPair(ctx context.Context, a, b string) (*models.Conversation, error)
	Create(ctx context.Context, conversation *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	MarkRead(ctx context.Context, conversationID, receiverID string) (int64, error)
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
	LastMessages(ctx context.Context, conversationIDs []string) (map[string]*models.Message, error)
	UnreadCounts(ctx context.Context, receiverID string, conversationIDs []string) (map[string]int64, error)
}

// storeError passes application errors through and reports anything else as the
// store being unavailable.
func storeError(err error) error {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Unavailable(err)
}
