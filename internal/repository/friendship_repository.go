package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/travel-agency/internal/database"
	"github.com/iliyamo/travel-agency/internal/model"
)

// FriendshipRepo persists friendship rows.  The pair_key column holds the
// canonical unordered pair so the database rejects a second row for the
// same two users regardless of direction.
type FriendshipRepo struct{ DB *sql.DB }

func NewFriendshipRepo(db *sql.DB) *FriendshipRepo { return &FriendshipRepo{DB: db} }

const friendshipColumns = "id, sender_id, receiver_id, status, created_at, updated_at, accepted_at"

func scanFriendship(row *sql.Row) (model.Friendship, error) {
	var (
		f                model.Friendship
		status           string
		created, updated int64
		accepted         sql.NullInt64
	)
	err := row.Scan(&f.ID, &f.SenderID, &f.ReceiverID, &status, &created, &updated, &accepted)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Friendship{}, ErrNotFound
	}
	if err != nil {
		return model.Friendship{}, fmt.Errorf("scan friendship: %w", err)
	}
	f.Status = model.FriendshipStatus(status)
	f.CreatedAt = fromMillis(created)
	f.UpdatedAt = fromMillis(updated)
	f.AcceptedAt = fromNullMillis(accepted)
	return f, nil
}

// Insert stores a new friendship.  ErrDuplicate means a row for the pair
// already exists in either direction.
func (r *FriendshipRepo) Insert(ctx context.Context, f model.Friendship) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO friendships ("+friendshipColumns+", pair_key) VALUES (?,?,?,?,?,?,?,?)",
		f.ID, f.SenderID, f.ReceiverID, string(f.Status),
		toMillis(f.CreatedAt), toMillis(f.UpdatedAt), nullMillis(f.AcceptedAt),
		model.PairKey(f.SenderID, f.ReceiverID))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert friendship: %w", err)
	}
	return nil
}

// GetByID loads a single friendship.
func (r *FriendshipRepo) GetByID(ctx context.Context, id string) (model.Friendship, error) {
	return scanFriendship(r.DB.QueryRowContext(ctx,
		"SELECT "+friendshipColumns+" FROM friendships WHERE id=? LIMIT 1", id))
}

// FindByPair returns the row linking a and b in either direction.
func (r *FriendshipRepo) FindByPair(ctx context.Context, a, b string) (model.Friendship, error) {
	return scanFriendship(r.DB.QueryRowContext(ctx,
		"SELECT "+friendshipColumns+" FROM friendships WHERE pair_key=? LIMIT 1", model.PairKey(a, b)))
}

// Transition moves a friendship from one status to another.  The update
// only applies while the row is still in the from status; otherwise
// ErrConflict (or ErrNotFound when the row is gone) is returned.
// acceptedAt is stamped when the target status is accepted.
func (r *FriendshipRepo) Transition(ctx context.Context, id string, from, to model.FriendshipStatus, at time.Time) (model.Friendship, error) {
	var accepted sql.NullInt64
	if to == model.FriendshipAccepted {
		accepted = nullMillis(&at)
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE friendships SET status=?, updated_at=?, accepted_at=? WHERE id=? AND status=?",
		string(to), toMillis(at), accepted, id, string(from))
	if err != nil {
		return model.Friendship{}, fmt.Errorf("update friendship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Friendship{}, err
		}
		return model.Friendship{}, ErrConflict
	}
	return r.GetByID(ctx, id)
}

// Reopen turns a rejected friendship back into a pending request from
// senderID to receiverID.
func (r *FriendshipRepo) Reopen(ctx context.Context, id, senderID, receiverID string, at time.Time) (model.Friendship, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE friendships SET sender_id=?, receiver_id=?, status=?, created_at=?, updated_at=?, accepted_at=NULL
		 WHERE id=? AND status=?`,
		senderID, receiverID, string(model.FriendshipPending), toMillis(at), toMillis(at),
		id, string(model.FriendshipRejected))
	if err != nil {
		return model.Friendship{}, fmt.Errorf("reopen friendship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Friendship{}, ErrConflict
	}
	return r.GetByID(ctx, id)
}

// Delete removes the row entirely.
func (r *FriendshipRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM friendships WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AreFriends reports whether an accepted friendship links a and b.
func (r *FriendshipRepo) AreFriends(ctx context.Context, a, b string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friendships WHERE pair_key=? AND status=?",
		model.PairKey(a, b), string(model.FriendshipAccepted)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count friendships: %w", err)
	}
	return n > 0, nil
}

// ListAccepted resolves every accepted friendship of userID to the other
// user's profile, most recently accepted first.
func (r *FriendshipRepo) ListAccepted(ctx context.Context, userID string) ([]model.FriendView, error) {
	const q = `SELECT f.id, f.status, f.created_at, f.accepted_at,
	                  CASE WHEN f.sender_id = ? THEN f.receiver_id ELSE f.sender_id END,
	                  COALESCE(u.display_name, ''), COALESCE(u.email, ''), COALESCE(u.photo_url, '')
	           FROM friendships f
	           LEFT JOIN users u ON u.id = CASE WHEN f.sender_id = ? THEN f.receiver_id ELSE f.sender_id END
	           WHERE f.status = ? AND (f.sender_id = ? OR f.receiver_id = ?)
	           ORDER BY f.accepted_at DESC, f.id`
	return r.listViews(ctx, q, userID, userID, string(model.FriendshipAccepted), userID, userID)
}

// ListPendingIncoming returns requests waiting on userID, newest first,
// each resolved to the sender's profile.
func (r *FriendshipRepo) ListPendingIncoming(ctx context.Context, userID string) ([]model.FriendView, error) {
	const q = `SELECT f.id, f.status, f.created_at, f.accepted_at, f.sender_id,
	                  COALESCE(u.display_name, ''), COALESCE(u.email, ''), COALESCE(u.photo_url, '')
	           FROM friendships f
	           LEFT JOIN users u ON u.id = f.sender_id
	           WHERE f.status = ? AND f.receiver_id = ?
	           ORDER BY f.created_at DESC, f.id`
	return r.listViews(ctx, q, string(model.FriendshipPending), userID)
}

func (r *FriendshipRepo) listViews(ctx context.Context, q string, args ...any) ([]model.FriendView, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}
	defer rows.Close()
	out := []model.FriendView{}
	for rows.Next() {
		var (
			v        model.FriendView
			status   string
			created  int64
			accepted sql.NullInt64
		)
		if err := rows.Scan(&v.FriendshipID, &status, &created, &accepted,
			&v.User.ID, &v.User.DisplayName, &v.User.Email, &v.User.PhotoURL); err != nil {
			return nil, fmt.Errorf("scan friendship: %w", err)
		}
		v.Status = model.FriendshipStatus(status)
		v.CreatedAt = fromMillis(created)
		v.AcceptedAt = fromNullMillis(accepted)
		out = append(out, v)
	}
	return out, rows.Err()
}
