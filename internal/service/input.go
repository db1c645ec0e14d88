package service

import (
	"strings"
	"unicode/utf8"
)

// Column widths of the user-supplied fields, in characters.
const (
	maxItemIDLen = 64
	maxNameLen   = 120
	maxEmailLen  = 255
	maxPhoneLen  = 40
)

func tooLong(s string, limit int) bool { return utf8.RuneCountInString(s) > limit }

// normalizeItem lowercases the type and trims both parts.  Add and Remove
// must agree on it.
func normalizeItem(itemType, itemID string) (string, string) {
	return strings.ToLower(strings.TrimSpace(itemType)), strings.TrimSpace(itemID)
}

func checkItemID(itemID string) error {
	switch {
	case itemID == "":
		return invalidInput("itemId is required")
	case tooLong(itemID, maxItemIDLen):
		return invalidInput("itemId is too long")
	}
	return nil
}
