package model

import (
	"strings"
	"time"
)

// FriendCode is the shareable invite code owned by exactly one user.
type FriendCode struct {
	UserID    string    `json:"userId"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

// FriendshipStatus is the lifecycle state of a friendship row.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Friendship is a directed request between two users.  It becomes a
// symmetric relationship once the receiver accepts it.
type Friendship struct {
	ID         string           `json:"id"`
	SenderID   string           `json:"senderId"`
	ReceiverID string           `json:"receiverId"`
	Status     FriendshipStatus `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	AcceptedAt *time.Time       `json:"acceptedAt"`
}

// Involves reports whether userID is the sender or the receiver.
func (f Friendship) Involves(userID string) bool {
	return f.SenderID == userID || f.ReceiverID == userID
}

// Counterparty returns the other participant of the friendship.
func (f Friendship) Counterparty(userID string) string {
	if f.SenderID == userID {
		return f.ReceiverID
	}
	return f.SenderID
}

// PairKey canonicalises an unordered pair of user ids so that (a,b) and
// (b,a) map to the same key.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}

// FriendView is a friendship resolved to the counterparty's profile.
type FriendView struct {
	FriendshipID string           `json:"friendshipId"`
	Status       FriendshipStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	AcceptedAt   *time.Time       `json:"acceptedAt"`
	User         PublicProfile    `json:"user"`
}
