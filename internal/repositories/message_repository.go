package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

// MessageRepository defines message persistence together with the unread
// counters that each send and read updates.
type MessageRepository interface {
	CreateMessage(ctx context.Context, conversationID, senderID int64, body string) (models.Message, error)
	ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int64) (models.Message, error)
	UpdateMessageBody(ctx context.Context, messageID int64, body string) (models.Message, error)
	MarkConversationRead(ctx context.Context, conversationID, userID int64) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, conversation_id, sender_id, body, created_at, updated_at`

type messageUserRow struct {
	MessageID int64 `db:"message_id"`
	UserID    int64 `db:"user_id"`
}

// CreateMessage appends a message and, in the same transaction, zeroes the
// sender's counter, increments every other participant's counter and records
// the last message text. The conversation row is locked so concurrent sends
// serialize and creation order matches commit order.
func (r *MessageRepo) CreateMessage(ctx context.Context, conversationID, senderID int64, body string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var locked int64
	if err = tx.GetContext(ctx, &locked, `SELECT id FROM conversations WHERE id=$1 FOR UPDATE`, conversationID); err != nil {
		return models.Message{}, translateError(err, ErrConversationNotFound)
	}

	var msg models.Message
	if err = tx.GetContext(ctx, &msg, `INSERT INTO messages (conversation_id, sender_id, body) VALUES ($1, $2, $3) RETURNING `+messageColumns,
		conversationID, senderID, body); err != nil {
		return models.Message{}, translateError(err, ErrConversationNotFound)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE conversation_participants
        SET unread_count = CASE WHEN user_id=$2 THEN 0 ELSE unread_count + 1 END
        WHERE conversation_id=$1`, conversationID, senderID); err != nil {
		return models.Message{}, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE conversations SET last_message_text=$2 WHERE id=$1`, conversationID, body); err != nil {
		return models.Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	msg.ReadBy = []int64{}
	msg.Reactions = []models.Reaction{}
	return msg, nil
}

// ListMessages returns the conversation's messages by creation time, ties by id.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	msgs := []models.Message{}
	if err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC, id ASC`, conversationID); err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return msgs, nil
	}

	var reads []messageUserRow
	if err := r.db.SelectContext(ctx, &reads, `SELECT mr.message_id, mr.user_id FROM message_reads mr
        INNER JOIN messages m ON m.id = mr.message_id
        WHERE m.conversation_id=$1 ORDER BY mr.read_at ASC, mr.user_id ASC`, conversationID); err != nil {
		return nil, err
	}
	var reactions []models.Reaction
	if err := r.db.SelectContext(ctx, &reactions, `SELECT rx.message_id, rx.user_id, rx.reaction FROM message_reactions rx
        INNER JOIN messages m ON m.id = rx.message_id
        WHERE m.conversation_id=$1 ORDER BY rx.user_id ASC`, conversationID); err != nil {
		return nil, err
	}

	readBy := map[int64][]int64{}
	for _, row := range reads {
		readBy[row.MessageID] = append(readBy[row.MessageID], row.UserID)
	}
	byMessage := map[int64][]models.Reaction{}
	for _, rx := range reactions {
		byMessage[rx.MessageID] = append(byMessage[rx.MessageID], rx)
	}
	for i := range msgs {
		msgs[i].ReadBy = nonNilIDs(readBy[msgs[i].ID])
		msgs[i].Reactions = nonNilReactions(byMessage[msgs[i].ID])
	}
	return msgs, nil
}

// GetMessage retrieves a single message with receipts and reactions.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	var msg models.Message
	if err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID); err != nil {
		return models.Message{}, translateError(err, ErrMessageNotFound)
	}
	return r.withState(ctx, msg)
}

// UpdateMessageBody replaces the body. updated_at is kept strictly after created_at.
func (r *MessageRepo) UpdateMessageBody(ctx context.Context, messageID int64, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `UPDATE messages
        SET body=$2, updated_at=GREATEST(clock_timestamp(), created_at + interval '1 microsecond')
        WHERE id=$1 RETURNING `+messageColumns, messageID, body)
	if err != nil {
		return models.Message{}, translateError(err, ErrMessageNotFound)
	}
	return r.withState(ctx, msg)
}

// MarkConversationRead zeroes the user's counter and records read receipts for
// every message the user did not author.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var exists bool
	if err = tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM conversations WHERE id=$1)`, conversationID); err != nil {
		return err
	}
	if !exists {
		err = ErrConversationNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE conversation_participants SET unread_count=0 WHERE conversation_id=$1 AND user_id=$2`, conversationID, userID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO message_reads (message_id, user_id)
        SELECT id, $2 FROM messages WHERE conversation_id=$1 AND sender_id<>$2
        ON CONFLICT (message_id, user_id) DO NOTHING`, conversationID, userID); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

func (r *MessageRepo) withState(ctx context.Context, msg models.Message) (models.Message, error) {
	readBy := []int64{}
	if err := r.db.SelectContext(ctx, &readBy, `SELECT user_id FROM message_reads WHERE message_id=$1 ORDER BY read_at ASC, user_id ASC`, msg.ID); err != nil {
		return models.Message{}, err
	}
	reactions := []models.Reaction{}
	if err := r.db.SelectContext(ctx, &reactions, `SELECT message_id, user_id, reaction FROM message_reactions WHERE message_id=$1 ORDER BY user_id ASC`, msg.ID); err != nil {
		return models.Message{}, err
	}
	msg.ReadBy = readBy
	msg.Reactions = reactions
	return msg, nil
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func nonNilReactions(rx []models.Reaction) []models.Reaction {
	if rx == nil {
		return []models.Reaction{}
	}
	return rx
}
