package models

// ReactionType is one of a closed set of emotive tags.
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionHaha  ReactionType = "haha"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
	ReactionWow   ReactionType = "wow"
)

// Valid reports whether r belongs to the enumeration.
func (r ReactionType) Valid() bool {
	switch r {
	case ReactionLike, ReactionLove, ReactionHaha, ReactionSad, ReactionAngry, ReactionWow:
		return true
	}
	return false
}

// Reaction is a single user's active reaction on a message.
type Reaction struct {
	MessageID int64        `db:"message_id" json:"-"`
	UserID    int64        `db:"user_id" json:"user_id"`
	Reaction  ReactionType `db:"reaction" json:"reaction"`
}
