package models

// Live event types pushed to websocket subscribers.
const (
	EventMessageCreated      = "message.created"
	EventMessageUpdated      = "message.updated"
	EventReactionUpdated     = "reaction.updated"
	EventConversationRead    = "conversation.read"
	EventConversationUpdated = "conversation.updated"
)

// ConversationEvent is broadcast to a conversation room.
type ConversationEvent struct {
	Type           string       `json:"type"`
	ConversationID int64        `json:"conversation_id"`
	Message        *MessageView `json:"message,omitempty"`
	MessageID      int64        `json:"message_id,omitempty"`
	UserID         int64        `json:"user_id,omitempty"`
	Reactions      []Reaction   `json:"reactions,omitempty"`
}

// UserEvent is broadcast to a single user's room so their conversation list refreshes.
type UserEvent struct {
	Type         string               `json:"type"`
	Conversation *ConversationSummary `json:"conversation,omitempty"`
}
