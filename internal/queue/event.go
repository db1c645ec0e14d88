// Package queue defines message payloads exchanged over the message broker.
package queue

// SocialQueueName is the durable queue (and default-exchange routing key)
// carrying friendship and group booking events.
const SocialQueueName = "social.events"

// Event types published on SocialQueueName.
const (
	EventFriendRequestSent     = "friend_request.sent"
	EventFriendRequestAccepted = "friend_request.accepted"
	EventFriendRequestRejected = "friend_request.rejected"
	EventFriendshipRemoved     = "friendship.removed"
	EventParticipantJoined     = "booking.participant_joined"
)

// SocialEvent is published after a friendship or booking change has been
// stored.  ActorID is the user who acted and SubjectID the user affected
// by it.  Consumers log or fan out from the payload without querying the
// primary database.
type SocialEvent struct {
	Type         string `json:"type"`
	FriendshipID string `json:"friendship_id,omitempty"`
	BookingID    string `json:"booking_id,omitempty"`
	ActorID      string `json:"actor_id"`
	SubjectID    string `json:"subject_id,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
