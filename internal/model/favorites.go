package model

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// Favorites holds frozen snapshots of favorited feed items, most recently
// favorited first. Entries are independent copies: later changes to the
// feed copy (read state, topic deletion) never reach them.
type Favorites struct {
	items []FeedItem
}

// NewFavorites creates the collection from persisted items.
func NewFavorites(items []FeedItem) *Favorites {
	f := &Favorites{}
	for _, item := range items {
		item.IsFavorite = true
		f.items = append(f.items, item)
	}
	return f
}

// Toggle favorites item, or unfavorites it if an entry with the same id
// exists. It reports whether the item is a favorite afterwards.
func (f *Favorites) Toggle(item FeedItem) (bool, error) {
	if f.Remove(item.ID) {
		return false, nil
	}
	snapshot, err := cloneItem(item)
	if err != nil {
		return false, err
	}
	snapshot.IsFavorite = true
	f.items = append([]FeedItem{snapshot}, f.items...)
	return true, nil
}

// Remove deletes the entry with the given id. Unknown ids are a no-op.
func (f *Favorites) Remove(id string) bool {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether an entry with the given id exists.
func (f *Favorites) Contains(id string) bool {
	for i := range f.items {
		if f.items[i].ID == id {
			return true
		}
	}
	return false
}

// Items returns a copy of the entries.
func (f *Favorites) Items() []FeedItem {
	out := make([]FeedItem, len(f.items))
	copy(out, f.items)
	return out
}

// Len returns the number of entries.
func (f *Favorites) Len() int {
	return len(f.items)
}

// cloneItem copies item so that no slice is shared with the feed copy.
func cloneItem(item FeedItem) (FeedItem, error) {
	clone := item
	clone.Sources = nil
	if item.Sources == nil {
		return clone, nil
	}
	if err := copier.CopyWithOption(&clone.Sources, &item.Sources, copier.Option{DeepCopy: true}); err != nil {
		return FeedItem{}, fmt.Errorf("copy sources: %w", err)
	}
	return clone, nil
}
