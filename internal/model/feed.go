package model

import "sort"

// FeedStore is the ordered collection of generated digests.
// It is always sorted descending by Timestamp after an insert.
type FeedStore struct {
	items []FeedItem
}

// NewFeedStore creates a store from previously persisted items.
// The items are re-sorted so the ordering invariant holds even for
// hand-edited or legacy data.
func NewFeedStore(items []FeedItem) *FeedStore {
	fs := &FeedStore{}
	fs.InsertMany(items)
	return fs
}

// InsertMany prepends items and stable-sorts the whole collection by
// Timestamp, newest first. Ties keep their relative insertion order.
func (fs *FeedStore) InsertMany(items []FeedItem) {
	if len(items) == 0 {
		return
	}
	merged := make([]FeedItem, 0, len(items)+len(fs.items))
	merged = append(merged, items...)
	merged = append(merged, fs.items...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	fs.items = merged
}

// RemoveByTopic removes every item belonging to topicID and returns how
// many were removed.
func (fs *FeedStore) RemoveByTopic(topicID string) int {
	kept := fs.items[:0]
	removed := 0
	for _, item := range fs.items {
		if item.TopicID == topicID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	// Clear the tail so removed items can be collected.
	for i := len(kept); i < len(fs.items); i++ {
		fs.items[i] = FeedItem{}
	}
	fs.items = kept
	return removed
}

// MarkRead sets IsRead on the item with the given id.
// Missing ids are ignored; it reports whether an item changed.
func (fs *FeedStore) MarkRead(itemID string) bool {
	i := fs.index(itemID)
	if i < 0 || fs.items[i].IsRead {
		return false
	}
	fs.items[i].IsRead = true
	return true
}

// SetFavorite updates the display flag on the feed copy of an item.
func (fs *FeedStore) SetFavorite(itemID string, favorite bool) bool {
	i := fs.index(itemID)
	if i < 0 {
		return false
	}
	fs.items[i].IsFavorite = favorite
	return true
}

// Get returns the item with the given id.
func (fs *FeedStore) Get(itemID string) (FeedItem, bool) {
	i := fs.index(itemID)
	if i < 0 {
		return FeedItem{}, false
	}
	return fs.items[i], true
}

// Items returns a copy of the items in display order.
func (fs *FeedStore) Items() []FeedItem {
	out := make([]FeedItem, len(fs.items))
	copy(out, fs.items)
	return out
}

// Len returns the number of items.
func (fs *FeedStore) Len() int {
	return len(fs.items)
}

func (fs *FeedStore) index(itemID string) int {
	for i := range fs.items {
		if fs.items[i].ID == itemID {
			return i
		}
	}
	return -1
}
