package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/myshagun/backend/internal/broker"
	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/internal/service"
	"github.com/myshagun/backend/internal/testutil"
	"github.com/myshagun/backend/pkg/apperr"
	"github.com/myshagun/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ChatServiceIntegrationTestSuite struct {
	suite.Suite
	testDB    *testutil.TestDatabase
	testRedis *testutil.TestRedis
	inbox     *broker.RedisInboxBroker
	convRepo  *repository.ConversationRepository
	chat      *service.ChatService

	alice *models.Profile
	bob   *models.Profile
	carol *models.Profile
}

func (s *ChatServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	inbox, err := broker.NewRedisInboxBroker(context.Background(), s.testRedis.URL)
	require.NoError(s.T(), err)
	s.inbox = inbox

	profileRepo := repository.NewProfileRepository(s.testDB.DB)
	s.convRepo = repository.NewConversationRepository(s.testDB.DB)
	messageRepo := repository.NewMessageRepository(s.testDB.DB)
	resolver := service.NewConversationResolver(s.convRepo)

	s.chat = service.NewChatService(profileRepo, s.convRepo, messageRepo, resolver, s.inbox)
}

func (s *ChatServiceIntegrationTestSuite) TearDownSuite() {
	s.inbox.Close()
	s.testRedis.Teardown(s.T())
	s.testDB.Teardown(s.T())
}

func (s *ChatServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.testRedis.Server.FlushAll()

	s.alice = testutil.CreateTestUserWithProfile(s.T(), s.testDB.DB, "alice", models.GenderFemale)
	s.bob = testutil.CreateTestUserWithProfile(s.T(), s.testDB.DB, "bob", models.GenderMale)
	s.carol = testutil.CreateTestUserWithProfile(s.T(), s.testDB.DB, "carol", models.GenderFemale)
}

func (s *ChatServiceIntegrationTestSuite) TestSendMessage_WithoutMatchCreatesConversation() {
	ctx := context.Background()

	result, err := s.chat.SendMessage(ctx, s.alice.UserID, s.bob.UserID, "  namaste  ")
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), result.ConversationID)
	assert.NotEmpty(s.T(), result.MessageID)

	var stored models.Message
	require.NoError(s.T(), s.testDB.DB.First(&stored, "id = ?", result.MessageID).Error)
	assert.Equal(s.T(), "namaste", stored.Message)
	assert.Equal(s.T(), s.bob.UserID, stored.ReceiverID)
	assert.False(s.T(), stored.IsRead)
}

func (s *ChatServiceIntegrationTestSuite) TestSendMessage_ConversationSingleton() {
	ctx := context.Background()

	first, err := s.chat.SendMessage(ctx, s.alice.UserID, s.bob.UserID, "hi")
	require.NoError(s.T(), err)
	second, err := s.chat.SendMessage(ctx, s.bob.UserID, s.alice.UserID, "hello")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), first.ConversationID, second.ConversationID)

	n, err := s.convRepo.CountForPair(ctx, s.alice.UserID, s.bob.UserID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), n)

	var messages int64
	s.testDB.DB.Model(&models.Message{}).Where("conversation_id = ?", first.ConversationID).Count(&messages)
	assert.Equal(s.T(), int64(2), messages)
}

func (s *ChatServiceIntegrationTestSuite) TestSendMessage_UpdatesLastMessageAt() {
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	result, err := s.chat.SendMessage(ctx, s.alice.UserID, s.bob.UserID, "hi")
	require.NoError(s.T(), err)

	conversation, err := s.convRepo.GetByID(ctx, result.ConversationID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), conversation.LastMessageAt)
	assert.True(s.T(), conversation.LastMessageAt.After(before))
}

func (s *ChatServiceIntegrationTestSuite) TestSendMessage_BumpsBothInboxes() {
	ctx := context.Background()

	_, err := s.chat.SendMessage(ctx, s.alice.UserID, s.bob.UserID, "hi")
	require.NoError(s.T(), err)

	aliceVersion, err := s.chat.InboxVersion(ctx, s.alice.UserID)
	require.NoError(s.T(), err)
	bobVersion, err := s.chat.InboxVersion(ctx, s.bob.UserID)
	require.NoError(s.T(), err)
	carolVersion, err := s.chat.InboxVersion(ctx, s.carol.UserID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), int64(1), aliceVersion)
	assert.Equal(s.T(), int64(1), bobVersion)
	assert.Equal(s.T(), int64(0), carolVersion)
}

func (s *ChatServiceIntegrationTestSuite) TestSendMessage_Validation() {
	ctx := context.Background()
	testCases := []struct {
		name     string
		receiver string
		text     string
		code     apperr.Code
	}{
		{"empty_text", s.bob.UserID, "", apperr.CodeInvalidArgument},
		{"whitespace_text", s.bob.UserID, " \n\t ", apperr.CodeInvalidArgument},
		{"too_long", s.bob.UserID, strings.Repeat("a", 5001), apperr.CodeInvalidArgument},
		{"missing_receiver", "", "hi", apperr.CodeInvalidArgument},
		{"self", s.alice.UserID, "hi", apperr.CodeInvalidArgument},
		{"unknown_receiver", "00000000-0000-0000-0000-000000000000", "hi", apperr.CodeNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.chat.SendMessage(ctx, s.alice.UserID, tc.receiver, tc.text)
			assert.Equal(s.T(), tc.code, apperr.CodeOf(err))
		})
	}

	var conversations int64
	s.testDB.DB.Model(&models.Conversation{}).Count(&conversations)
	assert.Equal(s.T(), int64(0), conversations)
}

func (s *ChatServiceIntegrationTestSuite) TestSendMessage_MaxLengthAccepted() {
	_, err := s.chat.SendMessage(context.Background(), s.alice.UserID, s.bob.UserID, strings.Repeat("म", 5000))
	assert.NoError(s.T(), err)
}

func (s *ChatServiceIntegrationTestSuite) TestGetMessages_MarksOnlyCallerMessagesRead() {
	ctx := context.Background()
	conversation := testutil.CreateTestConversation(s.T(), s.testDB.DB, s.alice.UserID, s.bob.UserID)
	base := time.Now().UTC().Add(-time.Hour)

	toBob1 := testutil.CreateTestMessage(s.T(), s.testDB.DB, conversation.ID, s.alice.UserID, s.bob.UserID, "one", base)
	fromBob := testutil.CreateTestMessage(s.T(), s.testDB.DB, conversation.ID, s.bob.UserID, s.alice.UserID, "two", base.Add(time.Minute))
	toBob2 := testutil.CreateTestMessage(s.T(), s.testDB.DB, conversation.ID, s.alice.UserID, s.bob.UserID, "three", base.Add(2*time.Minute))

	messages, err := s.chat.GetMessages(ctx, s.bob.UserID, conversation.ID)
	require.NoError(s.T(), err)

	require.Len(s.T(), messages, 3)
	assert.Equal(s.T(), []string{toBob1.ID, fromBob.ID, toBob2.ID},
		[]string{messages[0].ID, messages[1].ID, messages[2].ID}, "oldest first")
	assert.True(s.T(), messages[0].IsRead)
	assert.False(s.T(), messages[1].IsRead, "bob's own message stays unread")
	assert.True(s.T(), messages[2].IsRead)

	var stillUnread models.Message
	require.NoError(s.T(), s.testDB.DB.First(&stillUnread, "id = ?", fromBob.ID).Error)
	assert.False(s.T(), stillUnread.IsRead)
}

func (s *ChatServiceIntegrationTestSuite) TestGetMessages_NotFoundAndForbidden() {
	ctx := context.Background()
	conversation := testutil.CreateTestConversation(s.T(), s.testDB.DB, s.alice.UserID, s.bob.UserID)
	testutil.CreateTestMessage(s.T(), s.testDB.DB, conversation.ID, s.alice.UserID, s.bob.UserID, "private", time.Now().UTC())

	_, err := s.chat.GetMessages(ctx, s.alice.UserID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(s.T(), err, service.ErrConversationNotFound)

	_, err = s.chat.GetMessages(ctx, s.carol.UserID, conversation.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotConversationMember)
	assert.Equal(s.T(), apperr.CodePermissionDenied, apperr.CodeOf(err))

	var unread int64
	s.testDB.DB.Model(&models.Message{}).Where("is_read = ?", false).Count(&unread)
	assert.Equal(s.T(), int64(1), unread, "a rejected read must not mark anything")
}

func (s *ChatServiceIntegrationTestSuite) TestListConversations_OrderAndUnread() {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	withBob := testutil.CreateTestConversation(s.T(), s.testDB.DB, s.alice.UserID, s.bob.UserID)
	withCarol := testutil.CreateTestConversation(s.T(), s.testDB.DB, s.carol.UserID, s.alice.UserID)

	testutil.CreateTestMessage(s.T(), s.testDB.DB, withBob.ID, s.bob.UserID, s.alice.UserID, "old", base)
	testutil.CreateTestMessage(s.T(), s.testDB.DB, withCarol.ID, s.carol.UserID, s.alice.UserID, "newer", base.Add(time.Minute))
	testutil.CreateTestMessage(s.T(), s.testDB.DB, withCarol.ID, s.carol.UserID, s.alice.UserID, "newest", base.Add(2*time.Minute))
	s.testDB.DB.Model(withBob).Update("last_message_at", base)
	s.testDB.DB.Model(withCarol).Update("last_message_at", base.Add(2*time.Minute))

	list, err := s.chat.ListConversations(ctx, s.alice.UserID)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)

	assert.Equal(s.T(), withCarol.ID, list[0].ID)
	assert.Equal(s.T(), "carol Test", list[0].OtherUserName)
	require.NotNil(s.T(), list[0].LastMessage)
	assert.Equal(s.T(), "newest", *list[0].LastMessage)
	assert.Equal(s.T(), int64(2), list[0].UnreadCount)

	assert.Equal(s.T(), withBob.ID, list[1].ID)
	assert.Equal(s.T(), int64(1), list[1].UnreadCount)

	_, err = s.chat.GetMessages(ctx, s.alice.UserID, withCarol.ID)
	require.NoError(s.T(), err)
	list, err = s.chat.ListConversations(ctx, s.alice.UserID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), list[0].UnreadCount)
}

func (s *ChatServiceIntegrationTestSuite) TestListConversations_EmptyConversationUsesCreatedAt() {
	ctx := context.Background()
	testutil.CreateTestConversation(s.T(), s.testDB.DB, s.alice.UserID, s.bob.UserID)

	list, err := s.chat.ListConversations(ctx, s.bob.UserID)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	assert.Nil(s.T(), list[0].LastMessage)
	assert.Nil(s.T(), list[0].LastMessageAt)
	assert.Equal(s.T(), s.alice.UserID, list[0].OtherUserID)

	none, err := s.chat.ListConversations(ctx, s.carol.UserID)
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), none)
	assert.Empty(s.T(), none)
}

func TestChatServiceIntegration(t *testing.T) {
	suite.Run(t, new(ChatServiceIntegrationTestSuite))
}
