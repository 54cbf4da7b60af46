package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

// ReactionRepository stores at most one reaction per (message, user).
type ReactionRepository interface {
	UpsertReaction(ctx context.Context, messageID, userID int64, reaction models.ReactionType) error
	DeleteReaction(ctx context.Context, messageID, userID int64) error
	ListReactions(ctx context.Context, messageID int64) ([]models.Reaction, error)
}

// ReactionRepo is a sqlx implementation of ReactionRepository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs a ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// UpsertReaction sets the user's reaction, replacing any previous one.
func (r *ReactionRepo) UpsertReaction(ctx context.Context, messageID, userID int64, reaction models.ReactionType) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_reactions (message_id, user_id, reaction) VALUES ($1, $2, $3)
        ON CONFLICT (message_id, user_id) DO UPDATE SET reaction = EXCLUDED.reaction, updated_at = NOW()`, messageID, userID, reaction)
	return translateError(err, ErrMessageNotFound)
}

func (r *ReactionRepo) DeleteReaction(ctx context.Context, messageID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM message_reactions WHERE message_id=$1 AND user_id=$2`, messageID, userID)
	return err
}

func (r *ReactionRepo) ListReactions(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	reactions := []models.Reaction{}
	err := r.db.SelectContext(ctx, &reactions, `SELECT message_id, user_id, reaction FROM message_reactions WHERE message_id=$1 ORDER BY user_id ASC`, messageID)
	return reactions, err
}
