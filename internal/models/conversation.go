package models

import (
	"fmt"
	"time"
)

type ConversationType string

const (
	ConversationPersonal ConversationType = "personal"
	ConversationGroup    ConversationType = "group"
)

// Conversation is a personal (two users) or group chat thread.
type Conversation struct {
	ID              int64            `db:"id" json:"id"`
	Type            ConversationType `db:"type" json:"type"`
	ParticipantIDs  []int64          `db:"-" json:"participant_ids"`
	DisplayName     string           `db:"display_name" json:"display_name"`
	DisplayImage    string           `db:"display_image" json:"display_image"`
	LastMessageText *string          `db:"last_message_text" json:"last_message_text,omitempty"`
	UnreadCounts    map[int64]int    `db:"-" json:"unread_counts"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether userID belongs to the conversation.
func (c Conversation) HasParticipant(userID int64) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ConversationSummary is a conversation as seen by one participant.
type ConversationSummary struct {
	ID              int64            `db:"id" json:"id"`
	Type            ConversationType `db:"type" json:"type"`
	DisplayName     string           `db:"display_name" json:"display_name"`
	DisplayImage    string           `db:"display_image" json:"display_image"`
	LastMessageText *string          `db:"last_message_text" json:"last_message_text,omitempty"`
	UnreadCount     int              `db:"unread_count" json:"unread_count"`
	ParticipantIDs  []int64          `db:"-" json:"participant_ids"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// NewConversation is the input to conversation creation in the store.
type NewConversation struct {
	Type           ConversationType
	ParticipantIDs []int64
	DisplayName    string
	DisplayImage   string
}

// PersonalLookup answers whether a personal conversation exists for a pair.
type PersonalLookup struct {
	Exists         bool   `json:"exists"`
	ConversationID *int64 `json:"conversation_id,omitempty"`
}

// PersonalKey is the order-independent identity of a user pair.
func PersonalKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
