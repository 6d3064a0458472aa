package service

import (
	"context"
	"errors"
	"strings"

	"github.com/myshagun/backend/internal/broker"
	"github.com/myshagun/backend/internal/metrics"
	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/pkg/apperr"
	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

// Outcome messages returned to the liker.
const (
	MsgAlreadyLiked = "Already liked"
	MsgLikeAdded    = "Like added"
	MsgMatch        = "It's a match!"
)

var (
	ErrSelfLike      = apperr.Validation("you cannot like yourself")
	ErrMissingLikeID = apperr.Validation("likedUserId is required")
)

// LikeResult is the outcome of one like request. ConversationID is set only on a match.
type LikeResult struct {
	Matched        bool
	ConversationID *string
	Message        string
}

type MatchService struct {
	tx       Transactor
	profiles ProfileStore
	likes    LikeStore
	resolver *ConversationResolver
	inbox    broker.InboxBroker
}

// NewMatchService wires the like flow. A nil tx runs each like without a
// surrounding transaction.
func NewMatchService(tx Transactor, profiles ProfileStore, likes LikeStore, resolver *ConversationResolver, inbox broker.InboxBroker) *MatchService {
	return &MatchService{
		tx:       tx,
		profiles: profiles,
		likes:    likes,
		resolver: resolver,
		inbox:    inbox,
	}
}

// RegisterLike records from's interest in to. It reports alreadyLiked when the like
// existed before, including when a concurrent request inserted it first.
func (s *MatchService) RegisterLike(ctx context.Context, from, to string) (bool, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return false, ErrMissingLikeID
	}
	if from == to {
		return false, ErrSelfLike
	}

	exists, err := s.profiles.Exists(ctx, to)
	if err != nil {
		return false, storeError(err)
	}
	if !exists {
		return false, ErrProfileNotFound
	}

	already, err := s.likes.Exists(ctx, from, to)
	if err != nil {
		return false, storeError(err)
	}
	if already {
		return true, nil
	}

	err = s.likes.Create(ctx, &models.Like{FromProfileID: from, ToProfileID: to})
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, repository.ErrDuplicateKey):
		logger.Log.Debug("Like inserted concurrently",
			zap.String("from", from),
			zap.String("to", to),
		)
		return true, nil
	default:
		logger.Log.Error("Failed to store like",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err),
		)
		return false, storeError(err)
	}
}

// FindOrCreateConversation resolves the pair's single conversation.
func (s *MatchService) FindOrCreateConversation(ctx context.Context, a, b string) (string, error) {
	return s.resolver.FindOrCreate(ctx, a, b)
}

// Like registers the like and, when the other user already liked back, makes sure
// the pair has a conversation. The like and the conversation commit together, so a
// failed match leaves no like behind and the retry can complete it.
func (s *MatchService) Like(ctx context.Context, from, to string) (*LikeResult, error) {
	var (
		result         *LikeResult
		conversationID string
	)
	err := s.withinTransaction(ctx, func(ctx context.Context) error {
		alreadyLiked, err := s.RegisterLike(ctx, from, to)
		if err != nil {
			return err
		}
		if alreadyLiked {
			result = &LikeResult{Message: MsgAlreadyLiked}
			return nil
		}

		mutual, err := s.likes.Exists(ctx, to, from)
		if err != nil {
			return storeError(err)
		}
		if !mutual {
			result = &LikeResult{Message: MsgLikeAdded}
			return nil
		}

		conversationID, err = s.resolver.FindOrCreate(ctx, from, to)
		if err != nil {
			return err
		}
		result = &LikeResult{Matched: true, ConversationID: &conversationID, Message: MsgMatch}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	switch {
	case result.Matched:
		metrics.LikesTotal.WithLabelValues(metrics.LikeMatched).Inc()
		metrics.MatchesTotal.Inc()
		bumpInbox(ctx, s.inbox, from, to)
		logger.Log.Info("Mutual match",
			zap.String("from", from),
			zap.String("to", to),
			zap.String("conversation_id", conversationID),
		)
	case result.Message == MsgAlreadyLiked:
		metrics.LikesTotal.WithLabelValues(metrics.LikeAlready).Inc()
	default:
		metrics.LikesTotal.WithLabelValues(metrics.LikeAdded).Inc()
		logger.Log.Info("Like added",
			zap.String("from", from),
			zap.String("to", to),
		)
	}
	return result, nil
}

func (s *MatchService) withinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTransaction(ctx, fn)
}

// bumpInbox advances inbox versions. Failures are logged, never returned.
func bumpInbox(ctx context.Context, inbox broker.InboxBroker, userIDs ...string) {
	if inbox == nil {
		return
	}
	if err := inbox.Bump(ctx, userIDs...); err != nil {
		logger.Log.Warn("Failed to bump inbox version",
			zap.Strings("user_ids", userIDs),
			zap.Error(err),
		)
	}
}
