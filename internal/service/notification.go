package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/repository"
)

// Notifications records friendship notifications for a single recipient.
// Delivery is the stored row; nothing is pushed.
type Notifications struct {
	store NotificationStore
	clock func() time.Time
	newID func() string
}

func NewNotifications(store NotificationStore) *Notifications {
	return &Notifications{store: store, clock: systemClock, newID: newUUID}
}

// Emit stores a new unread notification for userID.
func (s *Notifications) Emit(ctx context.Context, userID string, typ model.NotificationType, title, message string, data map[string]string) (model.Notification, error) {
	if data == nil {
		data = map[string]string{}
	}
	n := model.Notification{
		ID:        s.newID(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: s.clock(),
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return model.Notification{}, fmt.Errorf("emit notification: %w", err)
	}
	return n, nil
}

// MarkRead flags a notification as read.  Only its recipient may do so.
func (s *Notifications) MarkRead(ctx context.Context, id, actorID string) (model.Notification, error) {
	n, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Notification{}, ErrNotFound
	}
	if err != nil {
		return model.Notification{}, fmt.Errorf("load notification: %w", err)
	}
	if n.UserID != actorID {
		return model.Notification{}, ErrForbidden
	}
	if err := s.store.MarkRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Notification{}, ErrNotFound
		}
		return model.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	n.Read = true
	return n, nil
}

// List returns the user's notifications, newest first.
func (s *Notifications) List(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	out, err := s.store.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}
