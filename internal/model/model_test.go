package model

import (
	"testing"
	"time"
)

func itemAt(id string, topicID string, ts int64) FeedItem {
	return FeedItem{
		ID:        id,
		TopicID:   topicID,
		Content:   "content " + id,
		Timestamp: time.Unix(ts, 0),
	}
}

func ids(items []FeedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFeedStoreInsertManyOrdersByTimestamp(t *testing.T) {
	fs := NewFeedStore(nil)
	fs.InsertMany([]FeedItem{itemAt("3", "t", 3), itemAt("1", "t", 1), itemAt("2", "t", 2)})
	fs.InsertMany([]FeedItem{itemAt("5", "t", 5), itemAt("4", "t", 4)})

	got := ids(fs.Items())
	want := []string{"5", "4", "3", "2", "1"}
	if !equalStrings(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestFeedStoreInsertManyIsStable(t *testing.T) {
	fs := NewFeedStore([]FeedItem{itemAt("old-a", "t", 10), itemAt("old-b", "t", 10)})
	fs.InsertMany([]FeedItem{itemAt("new-a", "t", 10), itemAt("new-b", "t", 10)})

	// Equal timestamps: new items were prepended, so they stay in front.
	got := ids(fs.Items())
	want := []string{"new-a", "new-b", "old-a", "old-b"}
	if !equalStrings(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestFeedStoreInsertManyEmpty(t *testing.T) {
	fs := NewFeedStore([]FeedItem{itemAt("1", "t", 1)})
	fs.InsertMany(nil)
	if fs.Len() != 1 {
		t.Errorf("Len = %d, want 1", fs.Len())
	}
}

func TestFeedStoreRemoveByTopic(t *testing.T) {
	fs := NewFeedStore([]FeedItem{
		itemAt("a1", "a", 3),
		itemAt("b1", "b", 2),
		itemAt("a2", "a", 1),
	})

	if n := fs.RemoveByTopic("a"); n != 2 {
		t.Errorf("removed %d, want 2", n)
	}
	if got := ids(fs.Items()); !equalStrings(got, []string{"b1"}) {
		t.Errorf("remaining = %v, want [b1]", got)
	}
	if n := fs.RemoveByTopic("missing"); n != 0 {
		t.Errorf("removed %d for unknown topic, want 0", n)
	}
}

func TestFeedStoreMarkRead(t *testing.T) {
	fs := NewFeedStore([]FeedItem{itemAt("1", "t", 1)})

	if !fs.MarkRead("1") {
		t.Error("MarkRead should report a change")
	}
	if fs.MarkRead("1") {
		t.Error("second MarkRead should be a no-op")
	}
	if fs.MarkRead("nope") {
		t.Error("MarkRead on missing id should be a no-op")
	}
	item, _ := fs.Get("1")
	if !item.IsRead {
		t.Error("item should be read")
	}
}

func TestFeedStoreItemsIsACopy(t *testing.T) {
	fs := NewFeedStore([]FeedItem{itemAt("1", "t", 1)})
	items := fs.Items()
	items[0].IsRead = true

	item, _ := fs.Get("1")
	if item.IsRead {
		t.Error("mutating Items() result must not change the store")
	}
}

func TestTopicRegistryAdd(t *testing.T) {
	r := NewTopicRegistry(nil)

	if !r.Add(Topic{ID: "1", Query: "  SpaceX Starship  "}) {
		t.Fatal("Add should accept a non-empty query")
	}
	if r.Add(Topic{ID: "2", Query: "   "}) {
		t.Error("Add should reject whitespace-only query")
	}
	if !r.Add(Topic{ID: "3", Query: "tour"}) {
		t.Fatal("Add should accept a non-empty query")
	}

	items := r.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(items))
	}
	if items[0].ID != "3" {
		t.Errorf("newest topic should be first, got %q", items[0].ID)
	}
	if items[1].Query != "SpaceX Starship" {
		t.Errorf("query should be trimmed, got %q", items[1].Query)
	}
}

func TestTopicRegistryRemove(t *testing.T) {
	r := NewTopicRegistry([]Topic{{ID: "1", Query: "a"}, {ID: "2", Query: "b"}})

	if !r.Remove("1") {
		t.Error("Remove should report removal")
	}
	if r.Remove("1") {
		t.Error("second Remove should be a no-op")
	}
	if r.Exists("1") {
		t.Error("topic 1 should be gone")
	}
	if !r.Exists("2") {
		t.Error("topic 2 should remain")
	}
}

func TestNewTopicRegistryDropsEmptyQueries(t *testing.T) {
	r := NewTopicRegistry([]Topic{{ID: "1", Query: ""}, {ID: "2", Query: "ok"}})
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestFavoritesToggleIsCopy(t *testing.T) {
	fs := NewFeedStore([]FeedItem{{
		ID:        "1",
		TopicID:   "t",
		Sources:   []SourceLink{{Title: "A", URL: "https://a.example"}},
		Timestamp: time.Unix(1, 0),
	}})
	favs := NewFavorites(nil)

	item, _ := fs.Get("1")
	on, err := favs.Toggle(item)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !on {
		t.Fatal("first Toggle should favorite")
	}

	// Mutate the feed copy; the favorite must not follow.
	fs.MarkRead("1")
	item.Sources[0].Title = "changed"

	fav := favs.Items()[0]
	if fav.IsRead {
		t.Error("favorite copy should not see read state of feed copy")
	}
	if fav.Sources[0].Title != "A" {
		t.Errorf("favorite sources should be a deep copy, got %q", fav.Sources[0].Title)
	}
	if !fav.IsFavorite {
		t.Error("favorite copy should be flagged")
	}
	if !fav.Timestamp.Equal(time.Unix(1, 0)) {
		t.Errorf("timestamp not preserved: %v", fav.Timestamp)
	}

	off, err := favs.Toggle(item)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if off {
		t.Error("second Toggle should unfavorite")
	}
	if favs.Len() != 0 {
		t.Errorf("Len = %d, want 0", favs.Len())
	}
}

func TestFavoritesRemoveMissing(t *testing.T) {
	favs := NewFavorites([]FeedItem{{ID: "1"}})
	if favs.Remove("x") {
		t.Error("Remove of unknown id should be a no-op")
	}
	if !favs.Contains("1") {
		t.Error("existing favorite should remain")
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"en", LangEnglish, true},
		{" ZH ", LangChinese, true},
		{"fr", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLanguage(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLanguage(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSettingsIsExcluded(t *testing.T) {
	s := Settings{ExcludedSources: []string{"Twitter"}}
	if !s.IsExcluded("twitter") {
		t.Error("match should be case-insensitive")
	}
	if s.IsExcluded("weibo") {
		t.Error("weibo is not excluded")
	}
}
