package models

import "time"

// User is a directory profile. ConversationIDs is derived from participation, in join order.
type User struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	AvatarImage     string    `db:"avatar_image" json:"avatar_image"`
	ConversationIDs []int64   `db:"-" json:"conversation_ids"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// UserPatch carries optional profile fields; nil means unchanged.
type UserPatch struct {
	Name  *string
	Email *string
}

// SenderSnapshot is the sender info attached to messages at read time.
type SenderSnapshot struct {
	Name        string `json:"name"`
	AvatarImage string `json:"avatar_image"`
}

// UnknownSender is rendered when a sender no longer resolves.
var UnknownSender = SenderSnapshot{Name: "Unknown", AvatarImage: ""}
