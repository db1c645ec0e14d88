package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/repository"
)

// Wishlists manages a user's saved items and the read-only view friends
// get of them.
type Wishlists struct {
	store   WishlistStore
	friends FriendChecker
	clock   func() time.Time
	newID   func() string
}

func NewWishlists(store WishlistStore, friends FriendChecker) *Wishlists {
	return &Wishlists{store: store, friends: friends, clock: systemClock, newID: newUUID}
}

// Add saves an item with the snapshot supplied by the client.  The
// snapshot is kept as-is and never refreshed.
func (s *Wishlists) Add(ctx context.Context, userID, itemType, itemID string, snapshot model.ItemSnapshot) (model.WishlistItem, error) {
	itemType, itemID = normalizeItem(itemType, itemID)
	if !model.ValidItemType(itemType) {
		return model.WishlistItem{}, invalidInput("unknown itemType " + itemType)
	}
	if err := checkItemID(itemID); err != nil {
		return model.WishlistItem{}, err
	}
	item := model.WishlistItem{
		ID:        s.newID(),
		UserID:    userID,
		ItemType:  itemType,
		ItemID:    itemID,
		ItemData:  snapshot,
		CreatedAt: s.clock(),
	}
	if err := s.store.Insert(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.WishlistItem{}, fmt.Errorf("%w: item is already in the wishlist", ErrAlreadyExists)
		}
		return model.WishlistItem{}, fmt.Errorf("add wishlist item: %w", err)
	}
	return item, nil
}

// Remove deletes a saved item.
func (s *Wishlists) Remove(ctx context.Context, userID, itemType, itemID string) error {
	itemType, itemID = normalizeItem(itemType, itemID)
	err := s.store.Delete(ctx, userID, itemType, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

// List returns the user's own wishlist, newest first.
func (s *Wishlists) List(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return withPlaceholders(items), nil
}

// ViewFriendWishlist returns friendID's wishlist to requesterID.  An
// accepted friendship between the two is the only access rule.
func (s *Wishlists) ViewFriendWishlist(ctx context.Context, requesterID, friendID string) ([]model.WishlistItem, error) {
	if strings.TrimSpace(friendID) == "" {
		return nil, invalidInput("friendId is required")
	}
	ok, err := s.friends.AreFriends(ctx, requesterID, friendID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if !ok || requesterID == friendID {
		return nil, ErrForbidden
	}
	return s.List(ctx, friendID)
}

func withPlaceholders(items []model.WishlistItem) []model.WishlistItem {
	for i := range items {
		if items[i].ItemData.IsEmpty() {
			items[i].ItemData = model.PlaceholderSnapshot(items[i].ItemID)
		}
	}
	return items
}
