package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/services"
	"messenger-service/internal/telemetry"
)

// ConversationHandler manages personal and group conversation endpoints.
type ConversationHandler struct {
	conversations *services.ConversationService
	emitter       *telemetry.AuditEmitter
}

// NewConversationHandler builds a ConversationHandler. emitter may be nil.
func NewConversationHandler(conversations *services.ConversationService, emitter *telemetry.AuditEmitter) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, emitter: emitter}
}

// ListConversations returns the caller's conversations with their own unread counts.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	summaries, err := h.conversations.ListConversationsForUser(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// CreatePersonal returns 201 with a new conversation or 200 with the existing one.
func (h *ConversationHandler) CreatePersonal(c *gin.Context) {
	var req struct {
		UserID       int64  `json:"user_id" binding:"required"`
		DisplayImage string `json:"display_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID := actorID(c)
	conv, created, err := h.conversations.CreatePersonalConversation(c.Request.Context(), userID, req.UserID, req.DisplayImage)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.emitter.Emit(c.Request.Context(), "INFO", "personal conversation "+strconv.FormatInt(conv.ID, 10)+" created", requestIDFromContext(c), &userID)
	}
	c.JSON(status, conv)
}

// CreateGroup creates a group of the caller plus the listed users.
func (h *ConversationHandler) CreateGroup(c *gin.Context) {
	var req struct {
		ParticipantIDs []int64 `json:"participant_ids" binding:"required,min=1"`
		DisplayName    string  `json:"display_name"`
		DisplayImage   string  `json:"display_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID := actorID(c)
	ids := append([]int64{userID}, req.ParticipantIDs...)
	conv, err := h.conversations.CreateGroupConversation(c.Request.Context(), ids, req.DisplayName, req.DisplayImage)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO", "group conversation "+strconv.FormatInt(conv.ID, 10)+" created", requestIDFromContext(c), &userID)
	c.JSON(http.StatusCreated, conv)
}

// PersonalExists answers whether the caller already has a personal conversation with user_id.
func (h *ConversationHandler) PersonalExists(c *gin.Context) {
	other, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || other <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	lookup, err := h.conversations.ExistingPersonalConversation(c.Request.Context(), actorID(c), other)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lookup)
}

// GetConversation returns a conversation the caller participates in.
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id", "conversation")
	if !ok {
		return
	}
	conv, err := h.conversations.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !conv.HasParticipant(actorID(c)) {
		respondError(c, apperrors.Forbidden("not a conversation participant"))
		return
	}
	c.JSON(http.StatusOK, conv)
}

// GetPeer returns the other participant of a personal conversation.
func (h *ConversationHandler) GetPeer(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id", "conversation")
	if !ok {
		return
	}
	peer, err := h.conversations.PeerOf(c.Request.Context(), conversationID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, peer)
}
