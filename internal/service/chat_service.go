package service

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/myshagun/backend/internal/broker"
	"github.com/myshagun/backend/internal/metrics"
	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/pkg/apperr"
	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

const maxMessageLength = 5000

var (
	ErrEmptyMessage          = apperr.Validation("message cannot be empty")
	ErrMessageTooLong        = apperr.Validation("message must be at most 5000 characters")
	ErrMissingReceiver       = apperr.Validation("receiverId is required")
	ErrSelfMessage           = apperr.Validation("you cannot message yourself")
	ErrReceiverNotFound      = apperr.NotFound("receiver not found")
	ErrConversationNotFound  = apperr.NotFound("conversation not found")
	ErrNotConversationMember = apperr.Forbidden("you are not part of this conversation")
)

type SendResult struct {
	ConversationID string
	MessageID      string
}

// ConversationSummary is one row of a member's inbox.
type ConversationSummary struct {
	ID             string     `json:"id"`
	OtherUserID    string     `json:"other_user_id"`
	OtherUserName  string     `json:"other_user_name"`
	OtherUserPhoto string     `json:"other_user_photo"`
	LastMessage    *string    `json:"last_message"`
	LastMessageAt  *time.Time `json:"last_message_at"`
	UnreadCount    int64      `json:"unread_count"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ChatService struct {
	profiles      ProfileStore
	conversations ConversationStore
	messages      MessageStore
	resolver      *ConversationResolver
	inbox         broker.InboxBroker
}

func NewChatService(
	profiles ProfileStore,
	conversations ConversationStore,
	messages MessageStore,
	resolver *ConversationResolver,
	inbox broker.InboxBroker,
) *ChatService {
	return &ChatService{
		profiles:      profiles,
		conversations: conversations,
		messages:      messages,
		resolver:      resolver,
		inbox:         inbox,
	}
}

// SendMessage appends text to the sender/receiver conversation, creating it on first
// contact. No prior like or match is needed.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	receiverID = strings.TrimSpace(receiverID)

	switch {
	case receiverID == "":
		return nil, ErrMissingReceiver
	case text == "":
		return nil, ErrEmptyMessage
	case utf8.RuneCountInString(text) > maxMessageLength:
		return nil, ErrMessageTooLong
	case senderID == receiverID:
		return nil, ErrSelfMessage
	}

	exists, err := s.profiles.Exists(ctx, receiverID)
	if err != nil {
		return nil, storeError(err)
	}
	if !exists {
		return nil, ErrReceiverNotFound
	}

	conversationID, err := s.resolver.FindOrCreate(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Message:        text,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		logger.Log.Error("Failed to store message",
			zap.String("conversation_id", conversationID),
			zap.String("sender_id", senderID),
			zap.Error(err),
		)
		return nil, storeError(err)
	}

	metrics.MessagesSentTotal.Inc()
	bumpInbox(ctx, s.inbox, senderID, receiverID)

	logger.Log.Debug("Message sent",
		zap.String("message_id", msg.ID),
		zap.String("conversation_id", conversationID),
		zap.String("sender_id", senderID),
	)

	return &SendResult{ConversationID: conversationID, MessageID: msg.ID}, nil
}

// ListConversations returns the user's conversations, most recent activity first.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	conversations, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	if len(conversations) == 0 {
		return summaries, nil
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastActivity().After(conversations[j].LastActivity())
	})

	otherIDs := make([]string, 0, len(conversations))
	conversationIDs := make([]string, 0, len(conversations))
	for _, c := range conversations {
		other, _ := c.OtherUser(userID)
		otherIDs = append(otherIDs, other)
		conversationIDs = append(conversationIDs, c.ID)
	}

	profiles, err := s.profiles.GetByUserIDs(ctx, otherIDs)
	if err != nil {
		return nil, storeError(err)
	}
	unread, err := s.messages.UnreadCounts(ctx, userID, conversationIDs)
	if err != nil {
		return nil, storeError(err)
	}
	lastMessages, err := s.messages.LastMessages(ctx, conversationIDs)
	if err != nil {
		return nil, storeError(err)
	}

	for i, c := range conversations {
		summary := ConversationSummary{
			ID:            c.ID,
			OtherUserID:   otherIDs[i],
			LastMessageAt: c.LastMessageAt,
			UnreadCount:   unread[c.ID],
			CreatedAt:     c.CreatedAt,
		}
		if p, ok := profiles[otherIDs[i]]; ok {
			summary.OtherUserName = p.FullName()
			summary.OtherUserPhoto = p.PhotoURL
		}

		if last, ok := lastMessages[c.ID]; ok {
			text := last.Message
			summary.LastMessage = &text
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// GetMessages marks everything addressed to userID as read and returns the whole
// conversation oldest first.
func (s *ChatService) GetMessages(ctx context.Context, userID, conversationID string) ([]models.Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, apperr.Validation("conversationId is required")
	}

	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, storeError(err)
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	if !conversation.HasUser(userID) {
		logger.Log.Warn("Conversation access denied",
			zap.String("user_id", userID),
			zap.String("conversation_id", conversationID),
		)
		return nil, ErrNotConversationMember
	}

	marked, err := s.messages.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if marked > 0 {
		// Unread counts changed.
		bumpInbox(ctx, s.inbox, userID)
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, storeError(err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// InboxVersion returns the counter polling clients compare to decide whether to refetch.
func (s *ChatService) InboxVersion(ctx context.Context, userID string) (int64, error) {
	if s.inbox == nil {
		return 0, nil
	}
	v, err := s.inbox.Version(ctx, userID)
	if err != nil {
		logger.Log.Error("Failed to read inbox version",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return 0, apperr.Unavailable(err)
	}
	return v, nil
}
