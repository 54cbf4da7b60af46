package models

import "time"

// Message is a chat message with its read receipts and reactions.
type Message struct {
	ID             int64      `db:"id" json:"id"`
	ConversationID int64      `db:"conversation_id" json:"conversation_id"`
	SenderID       int64      `db:"sender_id" json:"sender_id"`
	Body           string     `db:"body" json:"body"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	ReadBy         []int64    `db:"-" json:"read_by"`
	Reactions      []Reaction `db:"-" json:"reactions"`
}

// MessageView is a message enriched with the sender snapshot.
type MessageView struct {
	Message
	Sender SenderSnapshot `json:"sender"`
}
