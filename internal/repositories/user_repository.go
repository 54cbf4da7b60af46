package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/models"
)

// UserRepository abstracts the user directory.
type UserRepository interface {
	CreateUser(ctx context.Context, name, email, avatarImage string) (models.User, error)
	GetUser(ctx context.Context, userID int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUsers(ctx context.Context, userIDs []int64) ([]models.User, error)
	UpdateUser(ctx context.Context, userID int64, patch models.UserPatch) (models.User, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarImage string) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, email, avatar_image, created_at`

func (r *UserRepo) CreateUser(ctx context.Context, name, email, avatarImage string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `INSERT INTO users (name, email, avatar_image) VALUES ($1, $2, $3) RETURNING `+userColumns,
		name, strings.ToLower(email), avatarImage)
	if err != nil {
		return models.User{}, translateError(err, ErrUserNotFound)
	}
	user.ConversationIDs = []int64{}
	return user, nil
}

// GetUser fetches a user with conversation ids in join order.
func (r *UserRepo) GetUser(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID); err != nil {
		return models.User{}, translateError(err, ErrUserNotFound)
	}
	return r.withConversations(ctx, user)
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, strings.ToLower(email)); err != nil {
		return models.User{}, translateError(err, ErrUserNotFound)
	}
	return r.withConversations(ctx, user)
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, strings.ToLower(email))
	return exists, err
}

// ListUsers returns every user ordered by id. Conversation ids are not loaded.
func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	return users, err
}

// GetUsers resolves a batch of ids; unknown ids are skipped.
func (r *UserRepo) GetUsers(ctx context.Context, userIDs []int64) ([]models.User, error) {
	users := []models.User{}
	if len(userIDs) == 0 {
		return users, nil
	}
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id ASC`, pq.Array(userIDs))
	return users, err
}

func (r *UserRepo) UpdateUser(ctx context.Context, userID int64, patch models.UserPatch) (models.User, error) {
	var email *string
	if patch.Email != nil {
		lowered := strings.ToLower(*patch.Email)
		email = &lowered
	}
	var user models.User
	err := r.db.GetContext(ctx, &user, `UPDATE users SET name=COALESCE($2, name), email=COALESCE($3, email) WHERE id=$1 RETURNING `+userColumns,
		userID, patch.Name, email)
	if err != nil {
		return models.User{}, translateError(err, ErrUserNotFound)
	}
	return r.withConversations(ctx, user)
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, userID int64, avatarImage string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `UPDATE users SET avatar_image=$2 WHERE id=$1 RETURNING `+userColumns, userID, avatarImage)
	if err != nil {
		return models.User{}, translateError(err, ErrUserNotFound)
	}
	return r.withConversations(ctx, user)
}

func (r *UserRepo) withConversations(ctx context.Context, user models.User) (models.User, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT conversation_id FROM conversation_participants WHERE user_id=$1 ORDER BY joined_seq ASC`, user.ID); err != nil {
		return models.User{}, err
	}
	user.ConversationIDs = ids
	return user, nil
}
