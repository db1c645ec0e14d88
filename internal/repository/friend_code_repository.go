package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/travel-agency/internal/database"
	"github.com/iliyamo/travel-agency/internal/model"
)

// FriendCodeRepo stores the one invite code each user may own.  Both the
// user and the code are unique in friend_codes.
type FriendCodeRepo struct{ DB *sql.DB }

func NewFriendCodeRepo(db *sql.DB) *FriendCodeRepo { return &FriendCodeRepo{DB: db} }

func scanFriendCode(row *sql.Row) (model.FriendCode, error) {
	var (
		fc      model.FriendCode
		created int64
	)
	err := row.Scan(&fc.UserID, &fc.Code, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FriendCode{}, ErrNotFound
	}
	if err != nil {
		return model.FriendCode{}, fmt.Errorf("scan friend code: %w", err)
	}
	fc.CreatedAt = fromMillis(created)
	return fc, nil
}

// GetByUser returns the code owned by userID or ErrNotFound.
func (r *FriendCodeRepo) GetByUser(ctx context.Context, userID string) (model.FriendCode, error) {
	return scanFriendCode(r.DB.QueryRowContext(ctx,
		"SELECT user_id, code, created_at FROM friend_codes WHERE user_id=? LIMIT 1", userID))
}

// GetByCode returns the row registered under code or ErrNotFound.
func (r *FriendCodeRepo) GetByCode(ctx context.Context, code string) (model.FriendCode, error) {
	return scanFriendCode(r.DB.QueryRowContext(ctx,
		"SELECT user_id, code, created_at FROM friend_codes WHERE code=? LIMIT 1", code))
}

// Insert persists fc.  A clash on either the user or the code returns
// ErrDuplicate.
func (r *FriendCodeRepo) Insert(ctx context.Context, fc model.FriendCode) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO friend_codes (user_id, code, created_at) VALUES (?,?,?)",
		fc.UserID, fc.Code, toMillis(fc.CreatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert friend code: %w", err)
	}
	return nil
}
