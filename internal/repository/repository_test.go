package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/travel-agency/internal/database"
	"github.com/iliyamo/travel-agency/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.CreateTables(context.Background(), db); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return db
}

func createUser(t *testing.T, users *UserRepo, email, name string) string {
	t.Helper()
	id, err := users.Create(context.Background(), email, "password123", name, "CUSTOMER", 4)
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return id
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestUserRepoCreateAndLookup(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	ctx := context.Background()

	id := createUser(t, users, " Amina@Example.com ", "Amina")
	if _, err := users.Create(ctx, "amina@example.com", "x", "", "CUSTOMER", 4); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	u, err := users.GetByEmail(ctx, "AMINA@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u.ID != id || u.Email != "amina@example.com" || u.DisplayName != "Amina" {
		t.Fatalf("user = %+v", u)
	}
	if err := users.UpdateProfile(ctx, id, "Amina K", "/p.jpg"); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	p, err := users.Profile(ctx, id)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.DisplayName != "Amina K" || p.PhotoURL != "/p.jpg" {
		t.Fatalf("profile = %+v", p)
	}
	if _, err := users.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepoLifecycle(t *testing.T) {
	db := openTestDB(t)
	tokens := NewTokenRepo(db)
	ctx := context.Background()

	if err := tokens.StoreRefresh(ctx, "u1", "hash-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := tokens.StoreRefresh(ctx, "u1", "hash-old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("store expired: %v", err)
	}
	if uid, err := tokens.ValidateRefresh(ctx, "hash-1"); err != nil || uid != "u1" {
		t.Fatalf("validate = %q, %v", uid, err)
	}
	if _, err := tokens.ValidateRefresh(ctx, "hash-old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired token should be rejected, got %v", err)
	}
	if err := tokens.RevokeByHash(ctx, "hash-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := tokens.ValidateRefresh(ctx, "hash-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("revoked token should be rejected, got %v", err)
	}
}

func TestFriendCodeUniqueness(t *testing.T) {
	db := openTestDB(t)
	codes := NewFriendCodeRepo(db)
	ctx := context.Background()

	if err := codes.Insert(ctx, model.FriendCode{UserID: "u1", Code: "MOR-AB12CD", CreatedAt: base}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := codes.Insert(ctx, model.FriendCode{UserID: "u2", Code: "MOR-AB12CD", CreatedAt: base}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("same code for another user: %v", err)
	}
	if err := codes.Insert(ctx, model.FriendCode{UserID: "u1", Code: "MOR-ZZZZZZ", CreatedAt: base}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second code for same user: %v", err)
	}
	fc, err := codes.GetByCode(ctx, "MOR-AB12CD")
	if err != nil || fc.UserID != "u1" || !fc.CreatedAt.Equal(base) {
		t.Fatalf("get by code = %+v, %v", fc, err)
	}
	if _, err := codes.GetByUser(ctx, "u2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFriendshipPairIsUniqueInBothDirections(t *testing.T) {
	db := openTestDB(t)
	friends := NewFriendshipRepo(db)
	ctx := context.Background()

	f := model.Friendship{ID: "f1", SenderID: "b", ReceiverID: "a", Status: model.FriendshipPending, CreatedAt: base, UpdatedAt: base}
	if err := friends.Insert(ctx, f); err != nil {
		t.Fatalf("insert: %v", err)
	}
	reverse := model.Friendship{ID: "f2", SenderID: "a", ReceiverID: "b", Status: model.FriendshipPending, CreatedAt: base, UpdatedAt: base}
	if err := friends.Insert(ctx, reverse); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("reverse insert: expected ErrDuplicate, got %v", err)
	}
	got, err := friends.FindByPair(ctx, "a", "b")
	if err != nil || got.ID != "f1" {
		t.Fatalf("find by pair = %+v, %v", got, err)
	}
}

func TestFriendshipTransitionIsConditional(t *testing.T) {
	db := openTestDB(t)
	friends := NewFriendshipRepo(db)
	ctx := context.Background()

	f := model.Friendship{ID: "f1", SenderID: "b", ReceiverID: "a", Status: model.FriendshipPending, CreatedAt: base, UpdatedAt: base}
	if err := friends.Insert(ctx, f); err != nil {
		t.Fatalf("insert: %v", err)
	}
	at := base.Add(time.Minute)
	got, err := friends.Transition(ctx, "f1", model.FriendshipPending, model.FriendshipAccepted, at)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Status != model.FriendshipAccepted || got.AcceptedAt == nil || !got.AcceptedAt.Equal(at) {
		t.Fatalf("accepted row = %+v", got)
	}
	if _, err := friends.Transition(ctx, "f1", model.FriendshipPending, model.FriendshipRejected, at); !errors.Is(err, ErrConflict) {
		t.Fatalf("second transition: expected ErrConflict, got %v", err)
	}
	if _, err := friends.Transition(ctx, "nope", model.FriendshipPending, model.FriendshipRejected, at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing row: expected ErrNotFound, got %v", err)
	}
}

func TestFriendshipReopenRejected(t *testing.T) {
	db := openTestDB(t)
	friends := NewFriendshipRepo(db)
	ctx := context.Background()

	f := model.Friendship{ID: "f1", SenderID: "b", ReceiverID: "a", Status: model.FriendshipRejected, CreatedAt: base, UpdatedAt: base}
	if err := friends.Insert(ctx, f); err != nil {
		t.Fatalf("insert: %v", err)
	}
	at := base.Add(time.Hour)
	got, err := friends.Reopen(ctx, "f1", "a", "b", at)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got.SenderID != "a" || got.ReceiverID != "b" || got.Status != model.FriendshipPending || !got.CreatedAt.Equal(at) {
		t.Fatalf("reopened = %+v", got)
	}
	if _, err := friends.Reopen(ctx, "f1", "a", "b", at); !errors.Is(err, ErrConflict) {
		t.Fatalf("reopening a pending row: expected ErrConflict, got %v", err)
	}
}

func TestFriendshipListsResolveCounterparty(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	friends := NewFriendshipRepo(db)
	ctx := context.Background()

	a := createUser(t, users, "a@example.com", "Alice")
	b := createUser(t, users, "b@example.com", "Bob")
	c := createUser(t, users, "c@example.com", "")

	rows := []model.Friendship{
		{ID: "ab", SenderID: b, ReceiverID: a, Status: model.FriendshipPending, CreatedAt: base, UpdatedAt: base},
		{ID: "ca", SenderID: c, ReceiverID: a, Status: model.FriendshipPending, CreatedAt: base.Add(time.Minute), UpdatedAt: base},
	}
	for _, f := range rows {
		if err := friends.Insert(ctx, f); err != nil {
			t.Fatalf("insert %s: %v", f.ID, err)
		}
	}
	pending, err := friends.ListPendingIncoming(ctx, a)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 || pending[0].FriendshipID != "ca" || pending[0].User.Email != "c@example.com" {
		t.Fatalf("pending = %+v", pending)
	}
	if out, _ := friends.ListPendingIncoming(ctx, b); len(out) != 0 {
		t.Fatalf("sender should not see outgoing request as incoming: %+v", out)
	}

	if _, err := friends.Transition(ctx, "ab", model.FriendshipPending, model.FriendshipAccepted, base.Add(time.Hour)); err != nil {
		t.Fatalf("accept ab: %v", err)
	}
	if _, err := friends.Transition(ctx, "ca", model.FriendshipPending, model.FriendshipAccepted, base.Add(2*time.Hour)); err != nil {
		t.Fatalf("accept ca: %v", err)
	}
	list, err := friends.ListAccepted(ctx, a)
	if err != nil {
		t.Fatalf("list accepted: %v", err)
	}
	if len(list) != 2 || list[0].User.ID != c || list[1].User.ID != b || list[1].User.DisplayName != "Bob" {
		t.Fatalf("friends of a = %+v", list)
	}
	list, err = friends.ListAccepted(ctx, b)
	if err != nil || len(list) != 1 || list[0].User.ID != a {
		t.Fatalf("friends of b = %+v, %v", list, err)
	}
	if ok, _ := friends.AreFriends(ctx, a, b); !ok {
		t.Fatal("a and b should be friends")
	}
	if ok, _ := friends.AreFriends(ctx, b, c); ok {
		t.Fatal("b and c are not friends")
	}
	if err := friends.Delete(ctx, "ab"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := friends.Delete(ctx, "ab"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestNotificationRepo(t *testing.T) {
	db := openTestDB(t)
	notes := NewNotificationRepo(db)
	ctx := context.Background()

	for i, typ := range []model.NotificationType{model.NotificationFriendRequest, model.NotificationRequestAccepted} {
		n := model.Notification{
			ID: fmt.Sprintf("n%d", i), UserID: "u1", Type: typ, Title: "t", Message: "m",
			Data: map[string]string{"friendshipId": "f1"}, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := notes.Insert(ctx, n); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := notes.MarkRead(ctx, "n0"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := notes.MarkRead(ctx, "n0"); err != nil {
		t.Fatalf("mark read twice: %v", err)
	}
	if err := notes.MarkRead(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	all, err := notes.ListByUser(ctx, "u1", false)
	if err != nil || len(all) != 2 || all[0].ID != "n1" {
		t.Fatalf("list = %+v, %v", all, err)
	}
	if all[1].Data["friendshipId"] != "f1" || !all[1].Read {
		t.Fatalf("n0 = %+v", all[1])
	}
	unread, err := notes.ListByUser(ctx, "u1", true)
	if err != nil || len(unread) != 1 || unread[0].ID != "n1" {
		t.Fatalf("unread = %+v, %v", unread, err)
	}
}

func TestWishlistRepo(t *testing.T) {
	db := openTestDB(t)
	wl := NewWishlistRepo(db)
	ctx := context.Background()

	item := model.WishlistItem{ID: "w1", UserID: "u1", ItemType: model.ItemTravel, ItemID: "42",
		ItemData: model.ItemSnapshot{Title: "Atlas trek"}, CreatedAt: base}
	if err := wl.Insert(ctx, item); err != nil {
		t.Fatalf("insert: %v", err)
	}
	item.ID = "w2"
	if err := wl.Insert(ctx, item); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	other := model.WishlistItem{ID: "w3", UserID: "u1", ItemType: model.ItemCity, ItemID: "42", CreatedAt: base.Add(time.Second)}
	if err := wl.Insert(ctx, other); err != nil {
		t.Fatalf("insert other type: %v", err)
	}
	list, err := wl.ListByUser(ctx, "u1")
	if err != nil || len(list) != 2 || list[0].ID != "w3" || list[1].ItemData.Title != "Atlas trek" {
		t.Fatalf("list = %+v, %v", list, err)
	}
	if err := wl.Delete(ctx, "u1", model.ItemCity, "42"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := wl.Delete(ctx, "u1", model.ItemCity, "42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func newBooking(id, owner string) model.Booking {
	return model.Booking{
		ID: id, UserID: owner, ItemType: model.ItemExperience, ItemID: "7",
		ItemData: model.ItemSnapshot{Title: "Desert night"}, TravelDate: "2026-05-01", Guests: 2,
		Status: model.BookingPending, ShareToken: "tok-" + id, CreatedAt: base, UpdatedAt: base,
		Participants: []model.Participant{{
			UserID: owner, Name: "Owner", Email: "owner@example.com", JoinedAt: base,
			Status: model.ParticipantJoined, Role: model.RoleOwner,
		}},
	}
}

func TestBookingRepoJoinGuard(t *testing.T) {
	db := openTestDB(t)
	bookings := NewBookingRepo(db)
	ctx := context.Background()

	if err := bookings.Create(ctx, newBooking("b1", "owner")); err != nil {
		t.Fatalf("create: %v", err)
	}
	phone := "+212600000000"
	p := model.Participant{UserID: "u2", Name: "Guest", Email: "g@example.com", Phone: &phone,
		JoinedAt: base.Add(time.Minute), Status: model.ParticipantJoined, Role: model.RoleParticipant}
	if err := bookings.AddParticipant(ctx, "b1", p); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := bookings.AddParticipant(ctx, "b1", p); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second join: expected ErrDuplicate, got %v", err)
	}
	if err := bookings.AddParticipant(ctx, "missing", p); !errors.Is(err, ErrConflict) {
		t.Fatalf("join missing booking: expected ErrConflict, got %v", err)
	}

	b, err := bookings.GetByShareToken(ctx, "tok-b1")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if len(b.Participants) != 2 || b.Participants[1].Phone == nil || *b.Participants[1].Phone != phone {
		t.Fatalf("participants = %+v", b.Participants)
	}
	if b.ItemData.Title != "Desert night" || b.Guests != 2 {
		t.Fatalf("booking = %+v", b)
	}

	if err := bookings.Cancel(ctx, "b1", base.Add(time.Hour)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := bookings.Cancel(ctx, "b1", base.Add(time.Hour)); !errors.Is(err, ErrConflict) {
		t.Fatalf("second cancel: expected ErrConflict, got %v", err)
	}
	late := p
	late.UserID = "u3"
	if err := bookings.AddParticipant(ctx, "b1", late); !errors.Is(err, ErrConflict) {
		t.Fatalf("join cancelled booking: expected ErrConflict, got %v", err)
	}
}

func TestBookingRepoConcurrentJoins(t *testing.T) {
	db := openTestDB(t)
	bookings := NewBookingRepo(db)
	ctx := context.Background()
	if err := bookings.Create(ctx, newBooking("b1", "owner")); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, uid := range []string{"u2", "u3"} {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			errs <- bookings.AddParticipant(ctx, "b1", model.Participant{
				UserID: uid, Name: uid, Email: uid + "@example.com", JoinedAt: base,
				Status: model.ParticipantJoined, Role: model.RoleParticipant,
			})
		}(uid)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent join: %v", err)
		}
	}
	b, err := bookings.GetByID(ctx, "b1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(b.Participants) != 3 || !b.HasParticipant("u2") || !b.HasParticipant("u3") {
		t.Fatalf("participants = %+v", b.Participants)
	}
}

func TestBookingRepoListByUser(t *testing.T) {
	db := openTestDB(t)
	bookings := NewBookingRepo(db)
	ctx := context.Background()

	first := newBooking("b1", "owner")
	second := newBooking("b2", "other")
	second.CreatedAt = base.Add(time.Hour)
	for _, b := range []model.Booking{first, second} {
		if err := bookings.Create(ctx, b); err != nil {
			t.Fatalf("create %s: %v", b.ID, err)
		}
	}
	if err := bookings.AddParticipant(ctx, "b2", model.Participant{UserID: "owner", Name: "o", Email: "o@example.com",
		JoinedAt: base, Status: model.ParticipantJoined, Role: model.RoleParticipant}); err != nil {
		t.Fatalf("join: %v", err)
	}
	list, err := bookings.ListByUser(ctx, "owner")
	if err != nil || len(list) != 2 || list[0].ID != "b2" {
		t.Fatalf("list = %+v, %v", list, err)
	}
}
