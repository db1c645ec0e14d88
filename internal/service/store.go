package service

import (
	"context"
	"time"

	"github.com/iliyamo/travel-agency/internal/model"
)

// The store interfaces below are satisfied by the repository package.
// Implementations report missing rows with repository.ErrNotFound,
// uniqueness clashes with repository.ErrDuplicate and lost conditional
// updates with repository.ErrConflict.

// UserStore resolves public profiles.
type UserStore interface {
	Profile(ctx context.Context, userID string) (model.PublicProfile, error)
}

// FriendCodeStore persists invite codes.
type FriendCodeStore interface {
	GetByUser(ctx context.Context, userID string) (model.FriendCode, error)
	GetByCode(ctx context.Context, code string) (model.FriendCode, error)
	Insert(ctx context.Context, fc model.FriendCode) error
}

// FriendChecker answers whether two users are accepted friends.
type FriendChecker interface {
	AreFriends(ctx context.Context, a, b string) (bool, error)
}

// FriendshipStore persists friendship rows.
type FriendshipStore interface {
	FriendChecker
	Insert(ctx context.Context, f model.Friendship) error
	GetByID(ctx context.Context, id string) (model.Friendship, error)
	FindByPair(ctx context.Context, a, b string) (model.Friendship, error)
	Transition(ctx context.Context, id string, from, to model.FriendshipStatus, at time.Time) (model.Friendship, error)
	Reopen(ctx context.Context, id, senderID, receiverID string, at time.Time) (model.Friendship, error)
	Delete(ctx context.Context, id string) error
	ListAccepted(ctx context.Context, userID string) ([]model.FriendView, error)
	ListPendingIncoming(ctx context.Context, userID string) ([]model.FriendView, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	Insert(ctx context.Context, n model.Notification) error
	GetByID(ctx context.Context, id string) (model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
}

// WishlistStore persists saved items.
type WishlistStore interface {
	Insert(ctx context.Context, item model.WishlistItem) error
	Delete(ctx context.Context, userID, itemType, itemID string) error
	ListByUser(ctx context.Context, userID string) ([]model.WishlistItem, error)
}

// BookingStore persists bookings and participants.
type BookingStore interface {
	Create(ctx context.Context, b model.Booking) error
	GetByID(ctx context.Context, id string) (model.Booking, error)
	GetByShareToken(ctx context.Context, token string) (model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	AddParticipant(ctx context.Context, bookingID string, p model.Participant) error
	Cancel(ctx context.Context, id string, at time.Time) error
}
