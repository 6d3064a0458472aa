package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Chat    *ChatHandler
}

// RegisterRoutes mounts the /api tree. auth guards every route except register and login.
func RegisterRoutes(router gin.IRouter, h Handlers, auth gin.HandlerFunc) {
	api := router.Group("/api")

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(auth)
	{
		protected.GET("/profile/me", h.Profile.GetMe)
		protected.PUT("/profile/me", h.Profile.UpdateMe)
		protected.POST("/profile/photo", h.Profile.UploadPhoto)
		protected.GET("/profiles", h.Profile.List)
		protected.GET("/profiles/:id", h.Profile.Get)

		chat := protected.Group("/chat")
		chat.POST("/like", h.Chat.Like)
		chat.POST("/send", h.Chat.Send)
		chat.GET("/conversations", h.Chat.Conversations)
		chat.GET("/messages/:conversationId", h.Chat.Messages)
		chat.GET("/updates", h.Chat.Updates)
	}
}
