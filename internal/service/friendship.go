package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/travel-agency/internal/config"
	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/queue"
	"github.com/iliyamo/travel-agency/internal/repository"
)

// Friendships runs the request, accept, reject and remove lifecycle
// between two users.  Only the receiver decides a pending request; a
// decided request never changes state again except through the
// after_reject re-request policy.
type Friendships struct {
	store  FriendshipStore
	users  UserStore
	codes  *FriendCodes
	notes  *Notifications
	events EventPublisher
	policy config.FriendsPolicy
	clock  func() time.Time
	newID  func() string
}

func NewFriendships(store FriendshipStore, users UserStore, codes *FriendCodes, notes *Notifications, events EventPublisher, policy config.FriendsPolicy) *Friendships {
	return &Friendships{
		store:  store,
		users:  users,
		codes:  codes,
		notes:  notes,
		events: orNop(events),
		policy: policy,
		clock:  systemClock,
		newID:  newUUID,
	}
}

// SendRequest files a pending request from senderID to the owner of code.
func (s *Friendships) SendRequest(ctx context.Context, senderID, code string) (model.Friendship, error) {
	if strings.TrimSpace(code) == "" {
		return model.Friendship{}, invalidInput("friendCode is required")
	}
	receiverID, err := s.codes.Resolve(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return model.Friendship{}, ErrInvalidCode
	}
	if err != nil {
		return model.Friendship{}, err
	}
	if receiverID == senderID {
		return model.Friendship{}, ErrSelfRequest
	}

	now := s.clock()
	existing, err := s.store.FindByPair(ctx, senderID, receiverID)
	switch {
	case err == nil:
		if existing.Status != model.FriendshipRejected || s.policy.RerequestPolicy != config.RerequestAfterReject {
			return model.Friendship{}, ErrAlreadyExists
		}
		f, err := s.store.Reopen(ctx, existing.ID, senderID, receiverID, now)
		if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
			return model.Friendship{}, ErrAlreadyExists
		}
		if err != nil {
			return model.Friendship{}, fmt.Errorf("reopen friendship: %w", err)
		}
		s.afterRequest(ctx, f)
		return f, nil
	case !errors.Is(err, repository.ErrNotFound):
		return model.Friendship{}, fmt.Errorf("find friendship: %w", err)
	}

	f := model.Friendship{
		ID:         s.newID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.FriendshipPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Friendship{}, ErrAlreadyExists
		}
		return model.Friendship{}, fmt.Errorf("insert friendship: %w", err)
	}
	s.afterRequest(ctx, f)
	return f, nil
}

func (s *Friendships) afterRequest(ctx context.Context, f model.Friendship) {
	sender := s.profile(ctx, f.SenderID)
	s.notify(ctx, f.ReceiverID, model.NotificationFriendRequest,
		"New friend request",
		sender.Label()+" sent you a friend request",
		map[string]string{"friendshipId": f.ID, "senderId": f.SenderID, "senderName": sender.Label()})
	publish(ctx, s.events, queue.SocialEvent{
		Type: queue.EventFriendRequestSent, FriendshipID: f.ID,
		ActorID: f.SenderID, SubjectID: f.ReceiverID, OccurredAt: stamp(f.CreatedAt),
	})
}

// Accept lets the receiver accept a pending request.
func (s *Friendships) Accept(ctx context.Context, friendshipID, actorID string) (model.Friendship, error) {
	f, err := s.decide(ctx, friendshipID, actorID, model.FriendshipAccepted)
	if err != nil {
		return model.Friendship{}, err
	}
	accepter := s.profile(ctx, actorID)
	s.notify(ctx, f.SenderID, model.NotificationRequestAccepted,
		"Friend request accepted",
		accepter.Label()+" accepted your friend request",
		map[string]string{"friendshipId": f.ID, "accepterId": actorID, "accepterName": accepter.Label()})
	publish(ctx, s.events, queue.SocialEvent{
		Type: queue.EventFriendRequestAccepted, FriendshipID: f.ID,
		ActorID: actorID, SubjectID: f.SenderID, OccurredAt: stamp(f.UpdatedAt),
	})
	return f, nil
}

// Reject lets the receiver decline a pending request.  The sender is only
// told when reject notifications are enabled.
func (s *Friendships) Reject(ctx context.Context, friendshipID, actorID string) (model.Friendship, error) {
	f, err := s.decide(ctx, friendshipID, actorID, model.FriendshipRejected)
	if err != nil {
		return model.Friendship{}, err
	}
	if s.policy.NotifyOnReject {
		rejecter := s.profile(ctx, actorID)
		s.notify(ctx, f.SenderID, model.NotificationRequestRejected,
			"Friend request declined",
			rejecter.Label()+" declined your friend request",
			map[string]string{"friendshipId": f.ID, "rejecterId": actorID, "rejecterName": rejecter.Label()})
	}
	publish(ctx, s.events, queue.SocialEvent{
		Type: queue.EventFriendRequestRejected, FriendshipID: f.ID,
		ActorID: actorID, SubjectID: f.SenderID, OccurredAt: stamp(f.UpdatedAt),
	})
	return f, nil
}

func (s *Friendships) decide(ctx context.Context, friendshipID, actorID string, to model.FriendshipStatus) (model.Friendship, error) {
	f, err := s.load(ctx, friendshipID)
	if err != nil {
		return model.Friendship{}, err
	}
	if f.ReceiverID != actorID {
		return model.Friendship{}, ErrForbidden
	}
	if f.Status != model.FriendshipPending {
		return model.Friendship{}, fmt.Errorf("%w: request is already %s", ErrInvalidState, f.Status)
	}
	updated, err := s.store.Transition(ctx, f.ID, model.FriendshipPending, to, s.clock())
	switch {
	case errors.Is(err, repository.ErrConflict):
		return model.Friendship{}, fmt.Errorf("%w: request is no longer pending", ErrInvalidState)
	case errors.Is(err, repository.ErrNotFound):
		return model.Friendship{}, ErrNotFound
	case err != nil:
		return model.Friendship{}, fmt.Errorf("update friendship: %w", err)
	}
	return updated, nil
}

// Remove deletes a friendship in any state.  Either side may remove it.
func (s *Friendships) Remove(ctx context.Context, friendshipID, actorID string) error {
	f, err := s.load(ctx, friendshipID)
	if err != nil {
		return err
	}
	if !f.Involves(actorID) {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, f.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete friendship: %w", err)
	}
	publish(ctx, s.events, queue.SocialEvent{
		Type: queue.EventFriendshipRemoved, FriendshipID: f.ID,
		ActorID: actorID, SubjectID: f.Counterparty(actorID), OccurredAt: stamp(s.clock()),
	})
	return nil
}

// ListFriends returns the accepted friends of userID, most recently
// accepted first.
func (s *Friendships) ListFriends(ctx context.Context, userID string) ([]model.FriendView, error) {
	out, err := s.store.ListAccepted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return out, nil
}

// ListPendingIncoming returns requests waiting on userID, newest first.
func (s *Friendships) ListPendingIncoming(ctx context.Context, userID string) ([]model.FriendView, error) {
	out, err := s.store.ListPendingIncoming(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	return out, nil
}

func (s *Friendships) load(ctx context.Context, id string) (model.Friendship, error) {
	f, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Friendship{}, ErrNotFound
	}
	if err != nil {
		return model.Friendship{}, fmt.Errorf("load friendship: %w", err)
	}
	return f, nil
}

// profile falls back to a bare profile when the user cannot be loaded, so
// the notification still goes out with the generic label.
func (s *Friendships) profile(ctx context.Context, userID string) model.PublicProfile {
	p, err := s.users.Profile(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("friendships: load profile %s: %v", userID, err)
		}
		return model.PublicProfile{ID: userID}
	}
	return p
}

// notify writes the notification after the friendship change is stored.
// A failure here does not undo that change; it is logged.
func (s *Friendships) notify(ctx context.Context, userID string, typ model.NotificationType, title, message string, data map[string]string) {
	if _, err := s.notes.Emit(ctx, userID, typ, title, message, data); err != nil {
		log.Printf("friendships: %v", err)
	}
}
