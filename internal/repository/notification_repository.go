package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/travel-agency/internal/model"
)

// NotificationRepo stores per-user notifications.  The data payload is a
// JSON object kept in a TEXT column.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

const notificationColumns = "id, user_id, type, title, message, data, read_flag, created_at"

type rowScanner interface{ Scan(...any) error }

func scanNotification(row rowScanner) (model.Notification, error) {
	var (
		n       model.Notification
		typ     string
		data    string
		created int64
	)
	err := row.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &data, &n.Read, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, ErrNotFound
	}
	if err != nil {
		return model.Notification{}, fmt.Errorf("scan notification: %w", err)
	}
	n.Type = model.NotificationType(typ)
	n.CreatedAt = fromMillis(created)
	n.Data = map[string]string{}
	if data != "" {
		if err := json.Unmarshal([]byte(data), &n.Data); err != nil {
			return model.Notification{}, fmt.Errorf("decode notification data: %w", err)
		}
	}
	return n, nil
}

// Insert stores n.
func (r *NotificationRepo) Insert(ctx context.Context, n model.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("encode notification data: %w", err)
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO notifications ("+notificationColumns+") VALUES (?,?,?,?,?,?,?,?)",
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, string(data), n.Read, toMillis(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// GetByID loads a notification.
func (r *NotificationRepo) GetByID(ctx context.Context, id string) (model.Notification, error) {
	return scanNotification(r.DB.QueryRowContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE id=? LIMIT 1", id))
}

// MarkRead sets the read flag.  Marking an already read row is not an
// error.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE notifications SET read_flag=? WHERE id=?", true, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows when the value did not change.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ListByUser returns the user's notifications newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	q := "SELECT " + notificationColumns + " FROM notifications WHERE user_id=?"
	args := []any{userID}
	if unreadOnly {
		q += " AND read_flag=?"
		args = append(args, false)
	}
	q += " ORDER BY created_at DESC, id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
