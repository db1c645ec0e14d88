package model

import "time"

// Content types a wishlist entry or booking can point at.
const (
	ItemExperience = "experience"
	ItemTravel     = "travel"
	ItemService    = "service"
	ItemCity       = "city"
	ItemBlog       = "blog"
	ItemVehicle    = "vehicle"
)

// ValidItemType reports whether t is a known content type.
func ValidItemType(t string) bool {
	switch t {
	case ItemExperience, ItemTravel, ItemService, ItemCity, ItemBlog, ItemVehicle:
		return true
	}
	return false
}

// ItemSnapshot is a display copy of a content item taken when it was saved.
// It is never refreshed from the source content.
type ItemSnapshot struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// IsEmpty reports whether nothing was captured.
func (s ItemSnapshot) IsEmpty() bool {
	return s.Title == "" && s.Description == "" && s.Image == ""
}

const (
	PlaceholderDescription = "No description available"
	PlaceholderImage       = "/images/placeholder.jpg"
)

// PlaceholderSnapshot is shown for entries saved without a snapshot.
func PlaceholderSnapshot(itemID string) ItemSnapshot {
	return ItemSnapshot{
		Title:       "Item " + itemID,
		Description: PlaceholderDescription,
		Image:       PlaceholderImage,
	}
}

// WishlistItem is keyed by (UserID, ItemType, ItemID).
type WishlistItem struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	ItemType  string       `json:"itemType"`
	ItemID    string       `json:"itemId"`
	ItemData  ItemSnapshot `json:"itemData"`
	CreatedAt time.Time    `json:"createdAt"`
}
