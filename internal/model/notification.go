package model

import "time"

// NotificationType enumerates friendship notification kinds.
type NotificationType string

const (
	NotificationFriendRequest   NotificationType = "friend_request"
	NotificationRequestAccepted NotificationType = "request_accepted"
	NotificationRequestRejected NotificationType = "request_rejected"
)

// Notification is addressed to a single user.  Data carries the
// friendship id and counterparty details.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"createdAt"`
}
