package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/myshagun/backend/internal/broker"
	"github.com/myshagun/backend/internal/handler"
	"github.com/myshagun/backend/internal/middleware"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/internal/service"
	"github.com/myshagun/backend/internal/storage"
	"github.com/myshagun/backend/internal/testutil"
	"github.com/myshagun/backend/internal/utils"
	"github.com/myshagun/backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret-key"
	maxPhotoSize = 64 * 1024
)

// testServer is the full API router on SQLite and miniredis.
type testServer struct {
	testDB    *testutil.TestDatabase
	testRedis *testutil.TestRedis
	inbox     *broker.RedisInboxBroker
	uploadDir string
	router    *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	ts := &testServer{
		testDB:    testutil.SetupTestDatabase(t),
		testRedis: testutil.SetupTestRedis(t),
		uploadDir: t.TempDir(),
	}

	inbox, err := broker.NewRedisInboxBroker(context.Background(), ts.testRedis.URL)
	require.NoError(t, err)
	ts.inbox = inbox

	photos, err := storage.NewLocalStore(ts.uploadDir, "http://test.local")
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(ts.testDB.DB)
	profileRepo := repository.NewProfileRepository(ts.testDB.DB)
	likeRepo := repository.NewLikeRepository(ts.testDB.DB)
	convRepo := repository.NewConversationRepository(ts.testDB.DB)
	messageRepo := repository.NewMessageRepository(ts.testDB.DB)

	resolver := service.NewConversationResolver(convRepo)
	authService := service.NewAuthService(userRepo, testSecret, time.Hour)
	profileService := service.NewProfileService(profileRepo, likeRepo, photos)
	matchService := service.NewMatchService(repository.NewTransactor(ts.testDB.DB), profileRepo, likeRepo, resolver, inbox)
	chatService := service.NewChatService(profileRepo, convRepo, messageRepo, resolver, inbox)

	ts.router = gin.New()
	handler.RegisterRoutes(ts.router, handler.Handlers{
		Auth:    handler.NewAuthHandler(authService, false),
		Profile: handler.NewProfileHandler(profileService, maxPhotoSize),
		Chat:    handler.NewChatHandler(matchService, chatService),
	}, middleware.AuthMiddleware(testSecret))

	return ts
}

func (ts *testServer) close(t *testing.T) {
	ts.inbox.Close()
	ts.testRedis.Teardown(t)
	ts.testDB.Teardown(t)
}

func tokenFor(t *testing.T, userID string) string {
	token, err := utils.GenerateToken(userID, userID+"@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends body as JSON (when not nil) with a bearer token (when not empty).
func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func (ts *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}
