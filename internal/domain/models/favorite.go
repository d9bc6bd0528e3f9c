package models

import "fmt"

// ItemType discriminates what a favorite points at. Kept as a typed
// constant rather than a free string so resolution can't silently
// dispatch on a typo.
type ItemType string

const (
	ItemFile   ItemType = "file"
	ItemFolder ItemType = "folder"
)

// ParseItemType validates a client-supplied item type.
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case ItemFile, ItemFolder:
		return ItemType(s), nil
	}
	return "", fmt.Errorf("invalid item type %q", s)
}

// Favorite is a weak reference to a file or folder. It does not own the
// referenced item; a favorited item may later be archived, leaving a
// dangling-but-tolerated entry.
type Favorite struct {
	ItemType ItemType `json:"item_type"`
	ItemID   string   `json:"item_id"`
}
