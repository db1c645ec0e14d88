package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/travel-agency/internal/database"
	"github.com/iliyamo/travel-agency/internal/model"
)

// WishlistRepo stores saved content items together with the snapshot
// taken when they were saved.
type WishlistRepo struct{ DB *sql.DB }

func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{DB: db} }

// Insert stores item.  ErrDuplicate is returned when the user already
// saved the same (type, id).
func (r *WishlistRepo) Insert(ctx context.Context, item model.WishlistItem) error {
	data, err := json.Marshal(item.ItemData)
	if err != nil {
		return fmt.Errorf("encode item data: %w", err)
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO wishlist_items (id, user_id, item_type, item_id, item_data, created_at) VALUES (?,?,?,?,?,?)",
		item.ID, item.UserID, item.ItemType, item.ItemID, string(data), toMillis(item.CreatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert wishlist item: %w", err)
	}
	return nil
}

// Delete removes one saved item.
func (r *WishlistRepo) Delete(ctx context.Context, userID, itemType, itemID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE user_id=? AND item_type=? AND item_id=?",
		userID, itemType, itemID)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns every item saved by userID, newest first.
func (r *WishlistRepo) ListByUser(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, item_type, item_id, item_data, created_at
		 FROM wishlist_items WHERE user_id=? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()
	out := []model.WishlistItem{}
	for rows.Next() {
		var (
			it      model.WishlistItem
			data    string
			created int64
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.ItemType, &it.ItemID, &data, &created); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		if data != "" {
			if err := json.Unmarshal([]byte(data), &it.ItemData); err != nil {
				return nil, fmt.Errorf("decode item data: %w", err)
			}
		}
		it.CreatedAt = fromMillis(created)
		out = append(out, it)
	}
	return out, rows.Err()
}
