package handlers

import "github.com/gin-gonic/gin"

// Set groups the HTTP handlers registered by RegisterRoutes.
type Set struct {
	Users         *UserHandler
	Conversations *ConversationHandler
	Messages      *MessageHandler
	Reactions     *ReactionHandler
}

// RegisterRoutes wires the public sign-up routes and the authenticated API.
func RegisterRoutes(router gin.IRouter, authMiddleware gin.HandlerFunc, h Set) {
	router.POST("/users", h.Users.CreateUser)
	router.GET("/users/check-email", h.Users.CheckEmail)

	api := router.Group("/", authMiddleware)

	api.GET("/users", h.Users.ListUsers)
	api.GET("/users/me", h.Users.GetMe)
	api.PATCH("/users/me", h.Users.UpdateMe)
	api.PUT("/users/me/avatar", h.Users.UpdateAvatar)
	api.GET("/users/:user_id", h.Users.GetUser)

	api.GET("/conversations", h.Conversations.ListConversations)
	api.POST("/conversations/personal", h.Conversations.CreatePersonal)
	api.POST("/conversations/group", h.Conversations.CreateGroup)
	api.GET("/conversations/personal/exists", h.Conversations.PersonalExists)
	api.GET("/conversations/:conversation_id", h.Conversations.GetConversation)
	api.GET("/conversations/:conversation_id/peer", h.Conversations.GetPeer)

	api.GET("/conversations/:conversation_id/messages", h.Messages.ListMessages)
	api.POST("/conversations/:conversation_id/messages", h.Messages.SendMessage)
	api.POST("/conversations/:conversation_id/read", h.Messages.MarkRead)
	api.GET("/messages/:message_id", h.Messages.GetMessage)
	api.PATCH("/messages/:message_id", h.Messages.EditMessage)

	api.GET("/messages/:message_id/reactions", h.Reactions.ListReactions)
	api.PUT("/messages/:message_id/reactions", h.Reactions.SetReaction)
	api.DELETE("/messages/:message_id/reactions", h.Reactions.RemoveReaction)
}
