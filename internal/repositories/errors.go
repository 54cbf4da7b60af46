package repositories

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"messenger-service/internal/apperrors"
)

var (
	ErrUserNotFound         = apperrors.NotFound("user")
	ErrConversationNotFound = apperrors.NotFound("conversation")
	ErrMessageNotFound      = apperrors.NotFound("message")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translateError maps driver errors onto application error kinds.
func translateError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return apperrors.Conflict("record already exists", err)
		case pqForeignKeyViolation:
			return notFound
		}
	}
	return err
}
