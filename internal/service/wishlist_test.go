package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iliyamo/travel-agency/internal/model"
)

func TestWishlistAddListRemove(t *testing.T) {
	t.Parallel()
	h := newSocialHarness(defaultPolicy())
	ctx := context.Background()

	if _, err := h.wishlists.Add(ctx, "user-a", "Travel", "42", model.ItemSnapshot{Title: "Atlas trek"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := h.wishlists.Add(ctx, "user-a", "travel", "42", model.ItemSnapshot{}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate: expected ErrAlreadyExists, got %v", err)
	}
	if _, err := h.wishlists.Add(ctx, "user-a", "hotel", "1", model.ItemSnapshot{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad type: expected ErrInvalidInput, got %v", err)
	}
	if _, err := h.wishlists.Add(ctx, "user-a", "city", " ", model.ItemSnapshot{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing id: expected ErrInvalidInput, got %v", err)
	}
	list, err := h.wishlists.List(ctx, "user-a")
	if err != nil || len(list) != 1 || list[0].ItemType != model.ItemTravel {
		t.Fatalf("list = %+v, %v", list, err)
	}
	if err := h.wishlists.Remove(ctx, "user-a", "travel", "42"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := h.wishlists.Remove(ctx, "user-a", "travel", "42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("remove twice: expected ErrNotFound, got %v", err)
	}
}

func TestViewFriendWishlistRequiresAcceptedFriendship(t *testing.T) {
	t.Parallel()
	h := newSocialHarness(defaultPolicy())
	ctx := context.Background()

	if _, err := h.wishlists.Add(ctx, "user-a", "experience", "7", model.ItemSnapshot{Title: "Desert night"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := h.wishlists.Add(ctx, "user-a", "city", "fes", model.ItemSnapshot{}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Not friends at all.
	if _, err := h.wishlists.ViewFriendWishlist(ctx, "user-c", "user-a"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger: expected ErrForbidden, got %v", err)
	}
	// Pending is not enough.
	f := h.request(t, "user-b", "user-a")
	if _, err := h.wishlists.ViewFriendWishlist(ctx, "user-b", "user-a"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("pending: expected ErrForbidden, got %v", err)
	}
	if _, err := h.friendships.Accept(ctx, f.ID, "user-a"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	list, err := h.wishlists.ViewFriendWishlist(ctx, "user-b", "user-a")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %+v", list)
	}
	// Newest first; the empty snapshot is shown as a placeholder.
	if list[0].ItemID != "fes" || list[0].ItemData != model.PlaceholderSnapshot("fes") {
		t.Fatalf("first = %+v", list[0])
	}
	if list[1].ItemData.Title != "Desert night" {
		t.Fatalf("second = %+v", list[1])
	}
	// Friendship is symmetric.
	if _, err := h.wishlists.ViewFriendWishlist(ctx, "user-a", "user-b"); err != nil {
		t.Fatalf("reverse view: %v", err)
	}
}

func TestWishlistRemoveNormalizesLikeAdd(t *testing.T) {
	t.Parallel()
	h := newSocialHarness(defaultPolicy())
	ctx := context.Background()

	if _, err := h.wishlists.Add(ctx, "user-a", " Travel ", " 42 ", model.ItemSnapshot{}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := h.wishlists.Remove(ctx, "user-a", " TRAVEL", "42 "); err != nil {
		t.Fatalf("remove with padded keys: %v", err)
	}
	if list, _ := h.wishlists.List(ctx, "user-a"); len(list) != 0 {
		t.Fatalf("list after remove = %+v", list)
	}
}

func TestWishlistRejectsOverlongItemID(t *testing.T) {
	t.Parallel()
	h := newSocialHarness(defaultPolicy())
	if _, err := h.wishlists.Add(context.Background(), "user-a", "city", strings.Repeat("x", 65), model.ItemSnapshot{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := h.wishlists.Add(context.Background(), "user-a", "city", strings.Repeat("x", 64), model.ItemSnapshot{}); err != nil {
		t.Fatalf("64-character id: %v", err)
	}
}
