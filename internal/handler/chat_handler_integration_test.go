package handler_test

import (
	"net/http"
	"testing"

	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ChatHandlerIntegrationTestSuite struct {
	suite.Suite
	server *testServer

	alice, bob, carol                *models.Profile
	aliceToken, bobToken, carolToken string
}

func (s *ChatHandlerIntegrationTestSuite) SetupSuite() {
	s.server = newTestServer(s.T())
}

func (s *ChatHandlerIntegrationTestSuite) TearDownSuite() {
	s.server.close(s.T())
}

func (s *ChatHandlerIntegrationTestSuite) SetupTest() {
	db := s.server.testDB.DB
	testutil.CleanDatabase(s.T(), db)
	s.server.testRedis.Server.FlushAll()

	s.alice = testutil.CreateTestUserWithProfile(s.T(), db, "alice", models.GenderFemale)
	s.bob = testutil.CreateTestUserWithProfile(s.T(), db, "bob", models.GenderMale)
	s.carol = testutil.CreateTestUserWithProfile(s.T(), db, "carol", models.GenderFemale)
	s.aliceToken = tokenFor(s.T(), s.alice.UserID)
	s.bobToken = tokenFor(s.T(), s.bob.UserID)
	s.carolToken = tokenFor(s.T(), s.carol.UserID)
}

func (s *ChatHandlerIntegrationTestSuite) like(token, target string) map[string]any {
	w := s.server.do(http.MethodPost, "/api/chat/like", token, map[string]string{"likedUserId": target})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	return decode(s.T(), w)
}

func (s *ChatHandlerIntegrationTestSuite) TestLikeFlow() {
	first := s.like(s.aliceToken, s.bob.UserID)
	assert.Equal(s.T(), "Like added", first["msg"])
	assert.Equal(s.T(), false, first["match"])
	assert.Nil(s.T(), first["conversationId"])

	again := s.like(s.aliceToken, s.bob.UserID)
	assert.Equal(s.T(), "Already liked", again["msg"])
	assert.Equal(s.T(), false, again["match"])

	match := s.like(s.bobToken, s.alice.UserID)
	assert.Equal(s.T(), "It's a match!", match["msg"])
	assert.Equal(s.T(), true, match["match"])
	assert.NotEmpty(s.T(), match["conversationId"])

	w := s.server.do(http.MethodGet, "/api/chat/conversations", s.aliceToken, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	conversations := decode(s.T(), w)["conversations"].([]any)
	require.Len(s.T(), conversations, 1)
	assert.Equal(s.T(), match["conversationId"], conversations[0].(map[string]any)["id"])
}

func (s *ChatHandlerIntegrationTestSuite) TestLikeErrors() {
	testCases := []struct {
		name   string
		target string
		status int
	}{
		{"self", s.alice.UserID, http.StatusBadRequest},
		{"missing", "", http.StatusBadRequest},
		{"unknown", "no-such-user", http.StatusNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.server.do(http.MethodPost, "/api/chat/like", s.aliceToken, map[string]string{"likedUserId": tc.target})

			assert.Equal(s.T(), tc.status, w.Code, w.Body.String())
			assert.NotEmpty(s.T(), decode(s.T(), w)["error"])
		})
	}
}

func (s *ChatHandlerIntegrationTestSuite) TestRequiresAuthentication() {
	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/chat/like"},
		{http.MethodPost, "/api/chat/send"},
		{http.MethodGet, "/api/chat/conversations"},
		{http.MethodGet, "/api/chat/messages/anything"},
		{http.MethodGet, "/api/chat/updates"},
	}

	for _, r := range routes {
		w := s.server.do(r.method, r.path, "", nil)
		assert.Equal(s.T(), http.StatusUnauthorized, w.Code, r.path)
	}
}

func (s *ChatHandlerIntegrationTestSuite) TestSendAndRead() {
	w := s.server.do(http.MethodPost, "/api/chat/send", s.aliceToken, map[string]string{
		"receiverId": s.bob.UserID,
		"message":    "Namaste!",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	sent := decode(s.T(), w)
	assert.Equal(s.T(), "Message sent", sent["msg"])
	conversationID := sent["conversationId"].(string)
	assert.NotEmpty(s.T(), sent["messageId"])

	// Bob sees one unread message.
	w = s.server.do(http.MethodGet, "/api/chat/conversations", s.bobToken, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	conversations := decode(s.T(), w)["conversations"].([]any)
	require.Len(s.T(), conversations, 1)
	summary := conversations[0].(map[string]any)
	assert.Equal(s.T(), s.alice.UserID, summary["other_user_id"])
	assert.Equal(s.T(), "alice Test", summary["other_user_name"])
	assert.Equal(s.T(), "Namaste!", summary["last_message"])
	assert.EqualValues(s.T(), 1, summary["unread_count"])

	w = s.server.do(http.MethodGet, "/api/chat/messages/"+conversationID, s.bobToken, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	messages := decode(s.T(), w)["messages"].([]any)
	require.Len(s.T(), messages, 1)
	assert.Equal(s.T(), "Namaste!", messages[0].(map[string]any)["message"])

	w = s.server.do(http.MethodGet, "/api/chat/conversations", s.bobToken, nil)
	summary = decode(s.T(), w)["conversations"].([]any)[0].(map[string]any)
	assert.EqualValues(s.T(), 0, summary["unread_count"])

	// Carol is not a participant.
	w = s.server.do(http.MethodGet, "/api/chat/messages/"+conversationID, s.carolToken, nil)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = s.server.do(http.MethodGet, "/api/chat/messages/does-not-exist", s.bobToken, nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *ChatHandlerIntegrationTestSuite) TestSendValidation() {
	testCases := []struct {
		name     string
		receiver string
		message  string
		status   int
	}{
		{"empty_message", "bob", "   ", http.StatusBadRequest},
		{"missing_receiver", "", "hi", http.StatusBadRequest},
		{"self", "alice", "hi", http.StatusBadRequest},
		{"unknown_receiver", "nobody", "hi", http.StatusNotFound},
	}

	ids := map[string]string{"alice": s.alice.UserID, "bob": s.bob.UserID, "nobody": "nobody", "": ""}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.server.do(http.MethodPost, "/api/chat/send", s.aliceToken, map[string]string{
				"receiverId": ids[tc.receiver],
				"message":    tc.message,
			})
			assert.Equal(s.T(), tc.status, w.Code, w.Body.String())
		})
	}
}

func (s *ChatHandlerIntegrationTestSuite) TestUpdatesVersionAdvances() {
	version := func(token string) float64 {
		w := s.server.do(http.MethodGet, "/api/chat/updates", token, nil)
		require.Equal(s.T(), http.StatusOK, w.Code)
		return decode(s.T(), w)["version"].(float64)
	}

	assert.Equal(s.T(), float64(0), version(s.bobToken))

	w := s.server.do(http.MethodPost, "/api/chat/send", s.aliceToken, map[string]string{
		"receiverId": s.bob.UserID,
		"message":    "hello",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	assert.Equal(s.T(), float64(1), version(s.bobToken))
	assert.Equal(s.T(), float64(1), version(s.aliceToken))
	assert.Equal(s.T(), float64(0), version(s.carolToken))
}

func TestChatHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ChatHandlerIntegrationTestSuite))
}
