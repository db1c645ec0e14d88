package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/queue"
	"github.com/iliyamo/travel-agency/internal/repository"
	"github.com/iliyamo/travel-agency/internal/utils"
)

// GuestPrefix marks participant ids of people who joined without an
// account.  The rest of the id is their lower-cased email.
const GuestPrefix = "guest:"

// GuestUserID is the participant id used for an unauthenticated joiner.
func GuestUserID(email string) string {
	return GuestPrefix + strings.ToLower(strings.TrimSpace(email))
}

// CreateBookingInput is what an owner supplies for a new booking.
type CreateBookingInput struct {
	ItemType   string
	ItemID     string
	ItemData   model.ItemSnapshot
	TravelDate string // YYYY-MM-DD, optional
	Guests     int
}

// JoinInput identifies the person joining a booking.  An empty UserID
// joins as a guest keyed by email.
type JoinInput struct {
	UserID string
	Name   string
	Email  string
	Phone  *string
}

// Bookings owns group bookings and the share-token join flow.
type Bookings struct {
	store    BookingStore
	users    UserStore
	events   EventPublisher
	clock    func() time.Time
	newID    func() string
	newToken func() (string, error)
}

func NewBookings(store BookingStore, users UserStore, events EventPublisher) *Bookings {
	return &Bookings{
		store:    store,
		users:    users,
		events:   orNop(events),
		clock:    systemClock,
		newID:    newUUID,
		newToken: func() (string, error) { return utils.RandomHex(32) },
	}
}

// Create books an item for ownerID, who becomes the first participant.
func (s *Bookings) Create(ctx context.Context, ownerID string, in CreateBookingInput) (model.Booking, error) {
	in.ItemType, in.ItemID = normalizeItem(in.ItemType, in.ItemID)
	in.TravelDate = strings.TrimSpace(in.TravelDate)
	if !model.ValidItemType(in.ItemType) {
		return model.Booking{}, invalidInput("unknown itemType " + in.ItemType)
	}
	if err := checkItemID(in.ItemID); err != nil {
		return model.Booking{}, err
	}
	if in.TravelDate != "" {
		if _, err := time.Parse("2006-01-02", in.TravelDate); err != nil {
			return model.Booking{}, invalidInput("travelDate must be YYYY-MM-DD")
		}
	}
	if in.Guests == 0 {
		in.Guests = 1
	}
	if in.Guests < 1 {
		return model.Booking{}, invalidInput("guests must be positive")
	}
	owner, err := s.users.Profile(ctx, ownerID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("load owner: %w", err)
	}
	token, err := s.newToken()
	if err != nil {
		return model.Booking{}, fmt.Errorf("share token: %w", err)
	}

	now := s.clock()
	b := model.Booking{
		ID:         s.newID(),
		UserID:     ownerID,
		ItemType:   in.ItemType,
		ItemID:     in.ItemID,
		ItemData:   in.ItemData,
		TravelDate: in.TravelDate,
		Guests:     in.Guests,
		Status:     model.BookingPending,
		ShareToken: token,
		CreatedAt:  now,
		UpdatedAt:  now,
		Participants: []model.Participant{{
			UserID:   ownerID,
			Name:     owner.Label(),
			Email:    owner.Email,
			JoinedAt: now,
			Status:   model.ParticipantJoined,
			Role:     model.RoleOwner,
		}},
	}
	if err := s.store.Create(ctx, b); err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	return b, nil
}

// Get returns a booking to its owner or one of its participants.  Only
// the owner sees the share token.
func (s *Bookings) Get(ctx context.Context, bookingID, actorID string) (model.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if b.UserID != actorID && !b.HasParticipant(actorID) {
		return model.Booking{}, ErrForbidden
	}
	return redact(b, actorID), nil
}

// ListMine returns bookings the user owns or joined, newest first.
func (s *Bookings) ListMine(ctx context.Context, userID string) ([]model.Booking, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	for i := range list {
		list[i] = redact(list[i], userID)
	}
	return list, nil
}

// Cancel cancels the booking.  Only the owner may cancel, and a cancelled
// booking can no longer be joined.
func (s *Bookings) Cancel(ctx context.Context, bookingID, actorID string) (model.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if b.UserID != actorID {
		return model.Booking{}, ErrForbidden
	}
	if b.Status == model.BookingCancelled {
		return model.Booking{}, fmt.Errorf("%w: booking is already cancelled", ErrInvalidState)
	}
	now := s.clock()
	switch err := s.store.Cancel(ctx, b.ID, now); {
	case errors.Is(err, repository.ErrConflict):
		return model.Booking{}, fmt.Errorf("%w: booking is already cancelled", ErrInvalidState)
	case errors.Is(err, repository.ErrNotFound):
		return model.Booking{}, ErrNotFound
	case err != nil:
		return model.Booking{}, fmt.Errorf("cancel booking: %w", err)
	}
	b.Status = model.BookingCancelled
	b.UpdatedAt = now
	return b, nil
}

// ShareToken returns the token the owner hands out to invite people.
func (s *Bookings) ShareToken(ctx context.Context, bookingID, actorID string) (string, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if b.UserID != actorID {
		return "", ErrForbidden
	}
	if b.Status == model.BookingCancelled {
		return "", ErrCancelled
	}
	return b.ShareToken, nil
}

// ValidateShareToken returns the booking token belongs to unless it is
// unknown or the booking was cancelled.
func (s *Bookings) ValidateShareToken(ctx context.Context, token string) (model.Booking, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Booking{}, ErrNotFound
	}
	b, err := s.store.GetByShareToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("load booking: %w", err)
	}
	if b.Status == model.BookingCancelled {
		return model.Booking{}, ErrCancelled
	}
	return b, nil
}

// JoinByToken validates token and joins its booking.
func (s *Bookings) JoinByToken(ctx context.Context, token string, in JoinInput) (model.Participant, error) {
	b, err := s.ValidateShareToken(ctx, token)
	if err != nil {
		return model.Participant{}, err
	}
	return s.Join(ctx, b.ID, in)
}

// Join appends a participant to the booking.  The same user can join only
// once; two different users joining at the same time both succeed.
func (s *Bookings) Join(ctx context.Context, bookingID string, in JoinInput) (model.Participant, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return model.Participant{}, invalidInput("name and email are required")
	}
	if !strings.Contains(in.Email, "@") {
		return model.Participant{}, invalidInput("email is invalid")
	}
	if tooLong(in.Name, maxNameLen) || tooLong(in.Email, maxEmailLen) {
		return model.Participant{}, invalidInput("name or email is too long")
	}
	if in.Phone != nil {
		p := strings.TrimSpace(*in.Phone)
		switch {
		case tooLong(p, maxPhoneLen):
			return model.Participant{}, invalidInput("phone is too long")
		case p == "":
			in.Phone = nil
		default:
			in.Phone = &p
		}
	}
	if in.UserID == "" {
		in.UserID = GuestUserID(in.Email)
	}

	b, err := s.load(ctx, bookingID)
	if err != nil {
		return model.Participant{}, err
	}
	if b.Status == model.BookingCancelled {
		return model.Participant{}, ErrCancelled
	}
	if b.HasParticipant(in.UserID) {
		return model.Participant{}, ErrAlreadyJoined
	}

	p := model.Participant{
		UserID:   in.UserID,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		JoinedAt: s.clock(),
		Status:   model.ParticipantJoined,
		Role:     model.RoleParticipant,
	}
	switch err := s.store.AddParticipant(ctx, b.ID, p); {
	case errors.Is(err, repository.ErrDuplicate):
		return model.Participant{}, ErrAlreadyJoined
	case errors.Is(err, repository.ErrConflict):
		// The booking vanished or was cancelled after it was loaded.
		if _, err := s.load(ctx, b.ID); err != nil {
			return model.Participant{}, err
		}
		return model.Participant{}, ErrCancelled
	case err != nil:
		return model.Participant{}, fmt.Errorf("join booking: %w", err)
	}
	publish(ctx, s.events, queue.SocialEvent{
		Type: queue.EventParticipantJoined, BookingID: b.ID,
		ActorID: p.UserID, SubjectID: b.UserID, OccurredAt: stamp(p.JoinedAt),
	})
	return p, nil
}

func (s *Bookings) load(ctx context.Context, id string) (model.Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("load booking: %w", err)
	}
	return b, nil
}

func redact(b model.Booking, viewerID string) model.Booking {
	if b.UserID != viewerID {
		b.ShareToken = ""
	}
	return b
}
