package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/services"
)

// MessageHandler serves message history, sending, editing and read marks.
type MessageHandler struct {
	messages      *services.MessageService
	conversations *services.ConversationService
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages *services.MessageService, conversations *services.ConversationService) *MessageHandler {
	return &MessageHandler{messages: messages, conversations: conversations}
}

// ListMessages returns the conversation history oldest first.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id", "conversation")
	if !ok {
		return
	}
	if !ensureParticipant(c, h.conversations, conversationID) {
		return
	}

	msgs, err := h.messages.ListMessages(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessage stores a message from the caller and broadcasts it.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id", "conversation")
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := h.messages.SendMessage(c.Request.Context(), conversationID, actorID(c), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkRead zeroes the caller's unread counter for the conversation.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id", "conversation")
	if !ok {
		return
	}
	if err := h.messages.MarkConversationRead(c.Request.Context(), conversationID, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) GetMessage(c *gin.Context) {
	messageID, ok := parseID(c, "message_id", "message")
	if !ok {
		return
	}
	msg, err := h.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ensureParticipant(c, h.conversations, msg.ConversationID) {
		return
	}
	c.JSON(http.StatusOK, msg)
}

// EditMessage replaces the body of one of the caller's own messages.
func (h *MessageHandler) EditMessage(c *gin.Context) {
	messageID, ok := parseID(c, "message_id", "message")
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	existing, err := h.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing.SenderID != actorID(c) {
		respondError(c, apperrors.Forbidden("only the sender can edit a message"))
		return
	}

	msg, err := h.messages.EditMessage(c.Request.Context(), messageID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// ensureParticipant writes 404 or 403 and returns false unless the caller
// belongs to the conversation.
func ensureParticipant(c *gin.Context, conversations *services.ConversationService, conversationID int64) bool {
	conv, err := conversations.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !conv.HasParticipant(actorID(c)) {
		respondError(c, apperrors.Forbidden("not a conversation participant"))
		return false
	}
	return true
}
