package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/services"
)

// ReactionHandler serves per-message reactions.
type ReactionHandler struct {
	reactions     *services.ReactionService
	messages      *services.MessageService
	conversations *services.ConversationService
}

func NewReactionHandler(reactions *services.ReactionService, messages *services.MessageService, conversations *services.ConversationService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions, messages: messages, conversations: conversations}
}

func (h *ReactionHandler) ListReactions(c *gin.Context) {
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
	reactions, err := h.reactions.ListReactions(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}

// SetReaction replaces the caller's reaction on the message.
func (h *ReactionHandler) SetReaction(c *gin.Context) {
	messageID, ok := parseID(c, "message_id", "message")
	if !ok {
		return
	}

	var req struct {
		Reaction string `json:"reaction" binding:"required,oneof=like love haha sad angry wow"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reactions, err := h.reactions.SetReaction(c.Request.Context(), messageID, actorID(c), models.ReactionType(req.Reaction))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}

// RemoveReaction clears the caller's reaction; clearing nothing still succeeds.
func (h *ReactionHandler) RemoveReaction(c *gin.Context) {
	messageID, ok := parseID(c, "message_id", "message")
	if !ok {
		return
	}
	reactions, err := h.reactions.RemoveReaction(c.Request.Context(), messageID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}
