package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myshagun/backend/internal/service"
)

type ChatHandler struct {
	matchService *service.MatchService
	chatService  *service.ChatService
}

func NewChatHandler(matchService *service.MatchService, chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		matchService: matchService,
		chatService:  chatService,
	}
}

type LikeRequest struct {
	LikedUserID string `json:"likedUserId"`
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func (h *ChatHandler) Like(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.matchService.Like(c.Request.Context(), userID, req.LikedUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":            result.Message,
		"match":          result.Matched,
		"conversationId": result.ConversationID,
	})
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), userID, req.ReceiverID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":            "Message sent",
		"conversationId": result.ConversationID,
		"messageId":      result.MessageID,
	})
}

func (h *ChatHandler) Conversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.chatService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (h *ChatHandler) Messages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messages, err := h.chatService.GetMessages(c.Request.Context(), userID, c.Param("conversationId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Updates lets polling clients skip refetching when nothing changed.
func (h *ChatHandler) Updates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	version, err := h.chatService.InboxVersion(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}
