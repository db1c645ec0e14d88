package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/queue"
	"github.com/iliyamo/travel-agency/internal/repository"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fixedClock advances by one second on every call so orderings are
// deterministic.
func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := testNow
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type fakeUsers map[string]model.PublicProfile

func (u fakeUsers) Profile(_ context.Context, id string) (model.PublicProfile, error) {
	p, ok := u[id]
	if !ok {
		return model.PublicProfile{}, repository.ErrNotFound
	}
	return p, nil
}

type fakeCodes struct {
	mu     sync.Mutex
	byUser map[string]model.FriendCode
	byCode map[string]model.FriendCode
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{byUser: map[string]model.FriendCode{}, byCode: map[string]model.FriendCode{}}
}

func (f *fakeCodes) GetByUser(_ context.Context, userID string) (model.FriendCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fc, ok := f.byUser[userID]
	if !ok {
		return model.FriendCode{}, repository.ErrNotFound
	}
	return fc, nil
}

func (f *fakeCodes) GetByCode(_ context.Context, code string) (model.FriendCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fc, ok := f.byCode[code]
	if !ok {
		return model.FriendCode{}, repository.ErrNotFound
	}
	return fc, nil
}

func (f *fakeCodes) Insert(_ context.Context, fc model.FriendCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[fc.UserID]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := f.byCode[fc.Code]; ok {
		return repository.ErrDuplicate
	}
	f.byUser[fc.UserID] = fc
	f.byCode[fc.Code] = fc
	return nil
}

type fakeFriendships struct {
	mu   sync.Mutex
	rows map[string]model.Friendship
}

func newFakeFriendships() *fakeFriendships {
	return &fakeFriendships{rows: map[string]model.Friendship{}}
}

func (f *fakeFriendships) Insert(_ context.Context, fr model.Friendship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := model.PairKey(fr.SenderID, fr.ReceiverID)
	for _, r := range f.rows {
		if model.PairKey(r.SenderID, r.ReceiverID) == key {
			return repository.ErrDuplicate
		}
	}
	f.rows[fr.ID] = fr
	return nil
}

func (f *fakeFriendships) GetByID(_ context.Context, id string) (model.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return model.Friendship{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeFriendships) FindByPair(_ context.Context, a, b string) (model.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := model.PairKey(a, b)
	for _, r := range f.rows {
		if model.PairKey(r.SenderID, r.ReceiverID) == key {
			return r, nil
		}
	}
	return model.Friendship{}, repository.ErrNotFound
}

func (f *fakeFriendships) Transition(_ context.Context, id string, from, to model.FriendshipStatus, at time.Time) (model.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return model.Friendship{}, repository.ErrNotFound
	}
	if r.Status != from {
		return model.Friendship{}, repository.ErrConflict
	}
	r.Status = to
	r.UpdatedAt = at
	if to == model.FriendshipAccepted {
		t := at
		r.AcceptedAt = &t
	}
	f.rows[id] = r
	return r, nil
}

func (f *fakeFriendships) Reopen(_ context.Context, id, senderID, receiverID string, at time.Time) (model.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.Status != model.FriendshipRejected {
		return model.Friendship{}, repository.ErrConflict
	}
	r.SenderID, r.ReceiverID = senderID, receiverID
	r.Status = model.FriendshipPending
	r.CreatedAt, r.UpdatedAt, r.AcceptedAt = at, at, nil
	f.rows[id] = r
	return r, nil
}

func (f *fakeFriendships) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeFriendships) AreFriends(_ context.Context, a, b string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := model.PairKey(a, b)
	for _, r := range f.rows {
		if model.PairKey(r.SenderID, r.ReceiverID) == key && r.Status == model.FriendshipAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendships) ListAccepted(_ context.Context, userID string) ([]model.FriendView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.FriendView{}
	for _, r := range f.rows {
		if r.Status == model.FriendshipAccepted && r.Involves(userID) {
			out = append(out, model.FriendView{FriendshipID: r.ID, Status: r.Status, CreatedAt: r.CreatedAt,
				AcceptedAt: r.AcceptedAt, User: model.PublicProfile{ID: r.Counterparty(userID)}})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AcceptedAt.After(*out[j].AcceptedAt) })
	return out, nil
}

func (f *fakeFriendships) ListPendingIncoming(_ context.Context, userID string) ([]model.FriendView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.FriendView{}
	for _, r := range f.rows {
		if r.Status == model.FriendshipPending && r.ReceiverID == userID {
			out = append(out, model.FriendView{FriendshipID: r.ID, Status: r.Status, CreatedAt: r.CreatedAt,
				User: model.PublicProfile{ID: r.SenderID}})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeNotifications struct {
	mu   sync.Mutex
	rows []model.Notification
}

func (f *fakeNotifications) Insert(_ context.Context, n model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotifications) GetByID(_ context.Context, id string) (model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.ID == id {
			return n, nil
		}
	}
	return model.Notification{}, repository.ErrNotFound
}

func (f *fakeNotifications) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Notification{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		n := f.rows[i]
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) forUser(userID string) []model.Notification {
	out, _ := f.ListByUser(context.Background(), userID, false)
	return out
}

type fakeWishlist struct {
	mu   sync.Mutex
	rows []model.WishlistItem
}

func (f *fakeWishlist) Insert(_ context.Context, item model.WishlistItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == item.UserID && r.ItemType == item.ItemType && r.ItemID == item.ItemID {
			return repository.ErrDuplicate
		}
	}
	f.rows = append(f.rows, item)
	return nil
}

func (f *fakeWishlist) Delete(_ context.Context, userID, itemType, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.UserID == userID && r.ItemType == itemType && r.ItemID == itemID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeWishlist) ListByUser(_ context.Context, userID string) ([]model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.WishlistItem{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

type fakeBookings struct {
	mu   sync.Mutex
	rows map[string]model.Booking
}

func newFakeBookings() *fakeBookings { return &fakeBookings{rows: map[string]model.Booking{}} }

func (f *fakeBookings) Create(_ context.Context, b model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[b.ID]; ok {
		return repository.ErrDuplicate
	}
	b.Participants = append([]model.Participant(nil), b.Participants...)
	f.rows[b.ID] = b
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	b.Participants = append([]model.Participant(nil), b.Participants...)
	return b, nil
}

func (f *fakeBookings) GetByShareToken(ctx context.Context, token string) (model.Booking, error) {
	f.mu.Lock()
	var id string
	for _, b := range f.rows {
		if b.ShareToken == token {
			id = b.ID
		}
	}
	f.mu.Unlock()
	if id == "" {
		return model.Booking{}, repository.ErrNotFound
	}
	return f.GetByID(ctx, id)
}

func (f *fakeBookings) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	f.mu.Lock()
	var ids []string
	for _, b := range f.rows {
		if b.UserID == userID || b.HasParticipant(userID) {
			ids = append(ids, b.ID)
		}
	}
	f.mu.Unlock()
	sort.Strings(ids)
	out := []model.Booking{}
	for _, id := range ids {
		b, _ := f.GetByID(ctx, id)
		out = append(out, b)
	}
	return out, nil
}

// AddParticipant mirrors the single-statement insert of the SQL store.
func (f *fakeBookings) AddParticipant(_ context.Context, bookingID string, p model.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[bookingID]
	if !ok || b.Status == model.BookingCancelled {
		return repository.ErrConflict
	}
	if b.HasParticipant(p.UserID) {
		return repository.ErrDuplicate
	}
	b.Participants = append(b.Participants, p)
	f.rows[bookingID] = b
	return nil
}

func (f *fakeBookings) Cancel(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if b.Status == model.BookingCancelled {
		return repository.ErrConflict
	}
	b.Status = model.BookingCancelled
	b.UpdatedAt = at
	f.rows[id] = b
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.SocialEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.SocialEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
