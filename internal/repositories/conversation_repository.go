package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/models"
)

// ConversationRepository abstracts conversation and participant persistence.
type ConversationRepository interface {
	CreateConversation(ctx context.Context, input models.NewConversation) (models.Conversation, error)
	GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error)
	FindPersonalConversation(ctx context.Context, userA, userB int64) (models.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID int64) ([]models.ConversationSummary, error)
	GetSummary(ctx context.Context, conversationID, userID int64) (models.ConversationSummary, error)
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

const conversationColumns = `id, type, display_name, display_image, last_message_text, created_at`

type participantRow struct {
	ConversationID int64 `db:"conversation_id"`
	UserID         int64 `db:"user_id"`
	UnreadCount    int   `db:"unread_count"`
}

// CreateConversation inserts the conversation and its participants atomically.
// Personal conversations carry a unique pair key; a second insert for the same
// pair fails with a conflict.
func (r *ConversationRepo) CreateConversation(ctx context.Context, input models.NewConversation) (models.Conversation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Conversation{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var personalKey *string
	if input.Type == models.ConversationPersonal && len(input.ParticipantIDs) == 2 {
		key := models.PersonalKey(input.ParticipantIDs[0], input.ParticipantIDs[1])
		personalKey = &key
	}

	var conv models.Conversation
	if err = tx.GetContext(ctx, &conv, `INSERT INTO conversations (type, display_name, display_image, personal_key) VALUES ($1, $2, $3, $4) RETURNING `+conversationColumns,
		input.Type, input.DisplayName, input.DisplayImage, personalKey); err != nil {
		return models.Conversation{}, translateError(err, ErrConversationNotFound)
	}

	conv.ParticipantIDs = make([]int64, 0, len(input.ParticipantIDs))
	conv.UnreadCounts = make(map[int64]int, len(input.ParticipantIDs))
	for _, id := range input.ParticipantIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, conv.ID, id); err != nil {
			return models.Conversation{}, translateError(err, ErrUserNotFound)
		}
		conv.ParticipantIDs = append(conv.ParticipantIDs, id)
		conv.UnreadCounts[id] = 0
	}

	if err = tx.Commit(); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// GetConversation fetches a conversation with participants and unread counters.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, conversationID); err != nil {
		return models.Conversation{}, translateError(err, ErrConversationNotFound)
	}

	var rows []participantRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT conversation_id, user_id, unread_count FROM conversation_participants WHERE conversation_id=$1 ORDER BY joined_seq ASC`, conversationID); err != nil {
		return models.Conversation{}, err
	}
	conv.ParticipantIDs = make([]int64, 0, len(rows))
	conv.UnreadCounts = make(map[int64]int, len(rows))
	for _, row := range rows {
		conv.ParticipantIDs = append(conv.ParticipantIDs, row.UserID)
		conv.UnreadCounts[row.UserID] = row.UnreadCount
	}
	return conv, nil
}

// FindPersonalConversation looks up the personal conversation of an unordered pair.
func (r *ConversationRepo) FindPersonalConversation(ctx context.Context, userA, userB int64) (models.Conversation, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM conversations WHERE personal_key=$1`, models.PersonalKey(userA, userB)); err != nil {
		return models.Conversation{}, translateError(err, ErrConversationNotFound)
	}
	return r.GetConversation(ctx, id)
}

// ListConversationsForUser returns the user's conversations in join order.
func (r *ConversationRepo) ListConversationsForUser(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	summaries := []models.ConversationSummary{}
	query := `SELECT c.id, c.type, c.display_name, c.display_image, c.last_message_text, cp.unread_count, c.created_at
        FROM conversation_participants cp
        INNER JOIN conversations c ON c.id = cp.conversation_id
        WHERE cp.user_id=$1
        ORDER BY cp.joined_seq ASC`
	if err := r.db.SelectContext(ctx, &summaries, query, userID); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	ids := make([]int64, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
	}
	var rows []participantRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT conversation_id, user_id, unread_count FROM conversation_participants WHERE conversation_id = ANY($1) ORDER BY joined_seq ASC`, pq.Array(ids)); err != nil {
		return nil, err
	}
	members := make(map[int64][]int64, len(summaries))
	for _, row := range rows {
		members[row.ConversationID] = append(members[row.ConversationID], row.UserID)
	}
	for i := range summaries {
		summaries[i].ParticipantIDs = members[summaries[i].ID]
	}
	return summaries, nil
}

// GetSummary returns one conversation as seen by userID.
func (r *ConversationRepo) GetSummary(ctx context.Context, conversationID, userID int64) (models.ConversationSummary, error) {
	conv, err := r.GetConversation(ctx, conversationID)
	if err != nil {
		return models.ConversationSummary{}, err
	}
	if !conv.HasParticipant(userID) {
		return models.ConversationSummary{}, ErrConversationNotFound
	}
	return summaryFor(conv, userID), nil
}

// IsParticipant checks whether a user belongs to the conversation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM conversation_participants WHERE conversation_id=$1 AND user_id=$2)`, conversationID, userID)
	return exists, err
}

func summaryFor(conv models.Conversation, userID int64) models.ConversationSummary {
	return models.ConversationSummary{
		ID:              conv.ID,
		Type:            conv.Type,
		DisplayName:     conv.DisplayName,
		DisplayImage:    conv.DisplayImage,
		LastMessageText: conv.LastMessageText,
		UnreadCount:     conv.UnreadCounts[userID],
		ParticipantIDs:  conv.ParticipantIDs,
		CreatedAt:       conv.CreatedAt,
	}
}
