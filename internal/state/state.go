// Package state owns the application state: tracked topics, the digest feed,
// favorites, settings and the display language.
//
// All mutation goes through State under one mutex and is followed by an
// explicit save of the affected keys. Fetch goroutines never touch State
// directly; they hand their results to CommitRefresh. The UI only ever sees
// Snapshot copies.
package state

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/infopulse/internal/logging"
	"github.com/abelbrown/infopulse/internal/model"
	"github.com/abelbrown/infopulse/internal/store"
)

var (
	// ErrEmptyQuery is returned when a topic query is blank after trimming.
	ErrEmptyQuery = errors.New("topic query is empty")

	// ErrInvalidLanguage is returned for language codes other than en and zh.
	ErrInvalidLanguage = errors.New("unsupported language")
)

// Persister stores JSON-encodable values by key. *store.Store implements it.
type Persister interface {
	Save(key string, v any) error
	Load(key string, v any) (bool, error)
}

// Outcome is the finished fetch for one topic, ready to become a feed item.
type Outcome struct {
	TopicID    string
	TopicQuery string // query as it was when the fetch started
	Text       string
	Sources    []model.SourceLink
	FetchedAt  time.Time
}

// CommitResult reports what CommitRefresh did.
type CommitResult struct {
	Committed int
	Orphaned  int // results whose topic was removed while fetching
	Items     []model.FeedItem
}

// State is the application state controller.
type State struct {
	mu sync.Mutex

	persist     Persister
	defaultLang model.Language

	topics    *model.TopicRegistry
	feed      *model.FeedStore
	favorites *model.Favorites
	settings  model.Settings
	lang      model.Language

	now   func() time.Time
	newID func() string
}

// New creates an empty State. Call Load to restore persisted data.
// p may be nil, in which case nothing is saved.
func New(p Persister, defaultLang model.Language) *State {
	if !defaultLang.Valid() {
		defaultLang = model.DefaultLanguage
	}
	return &State{
		persist:     p,
		defaultLang: defaultLang,
		topics:      model.NewTopicRegistry(nil),
		feed:        model.NewFeedStore(nil),
		favorites:   model.NewFavorites(nil),
		lang:        defaultLang,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Load restores every collection from the persister. Missing or undecodable
// values are logged and replaced by their defaults; Load never fails.
func (s *State) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics, _ := loadKey[[]model.Topic](s.persist, store.KeyTopics)
	s.topics = model.NewTopicRegistry(topics)

	feed, _ := loadKey[[]model.FeedItem](s.persist, store.KeyFeed)
	s.feed = model.NewFeedStore(feed)

	favs, _ := loadKey[[]model.FeedItem](s.persist, store.KeyFavorites)
	for i := range favs {
		favs[i].IsFavorite = true
	}
	s.favorites = model.NewFavorites(favs)

	s.settings, _ = loadKey[model.Settings](s.persist, store.KeySettings)

	s.lang = s.defaultLang
	if raw, found := loadKey[string](s.persist, store.KeyLanguage); found {
		if lang, ok := model.ParseLanguage(raw); ok {
			s.lang = lang
		} else {
			logging.Warn("Ignoring persisted language", "value", raw)
		}
	}

	logging.Info("State loaded",
		"topics", s.topics.Len(),
		"feed", s.feed.Len(),
		"favorites", s.favorites.Len(),
		"lang", s.lang)
}

// loadKey decodes key into a fresh T. Unreadable values are logged and
// reported as missing.
func loadKey[T any](p Persister, key string) (T, bool) {
	var v T
	if p == nil {
		return v, false
	}
	found, err := p.Load(key, &v)
	if err != nil {
		logging.Warn("Discarding unreadable persisted value", "key", key, "error", err)
		var zero T
		return zero, false
	}
	return v, found
}

func (s *State) save(key string, v any) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(key, v); err != nil {
		logging.Error("Failed to persist state", "key", key, "error", err)
	}
}

func (s *State) saveTopics()    { s.save(store.KeyTopics, s.topics.Items()) }
func (s *State) saveFeed()      { s.save(store.KeyFeed, s.feed.Items()) }
func (s *State) saveFavorites() { s.save(store.KeyFavorites, s.favorites.Items()) }
func (s *State) saveSettings()  { s.save(store.KeySettings, s.settings) }
func (s *State) saveLanguage()  { s.save(store.KeyLanguage, string(s.lang)) }

// AddTopic registers a new topic at the front of the list. scheduleTime is
// an advisory "HH:MM"; blank or malformed values become the default.
func (s *State) AddTopic(query, scheduleTime string) (model.Topic, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.Topic{}, ErrEmptyQuery
	}
	if _, err := time.Parse("15:04", scheduleTime); err != nil {
		scheduleTime = model.DefaultScheduleTime
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Topic{
		ID:           s.newID(),
		Query:        query,
		ScheduleTime: scheduleTime,
		CreatedAt:    s.now(),
	}
	s.topics.Add(t)
	s.saveTopics()

	logging.Info("Topic added", "id", t.ID, "query", t.Query)
	return t, nil
}

// RemoveTopic deletes a topic and every feed item generated for it.
// Favorites are independent copies and are left alone. Unknown ids are a
// no-op.
func (s *State) RemoveTopic(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.topics.Remove(id) {
		return false
	}
	removed := s.feed.RemoveByTopic(id)
	s.saveTopics()
	s.saveFeed()

	logging.Info("Topic removed", "id", id, "feed_items_removed", removed)
	return true
}

// CommitRefresh turns finished fetches into feed items and inserts them as
// one batch. Results for topics that no longer exist are dropped.
func (s *State) CommitRefresh(outcomes []Outcome) CommitResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res CommitResult
	items := make([]model.FeedItem, 0, len(outcomes))
	for _, o := range outcomes {
		topic, ok := s.topics.Get(o.TopicID)
		if !ok {
			res.Orphaned++
			continue
		}
		query := o.TopicQuery
		if query == "" {
			query = topic.Query
		}
		ts := o.FetchedAt
		if ts.IsZero() {
			ts = s.now()
		}
		items = append(items, model.FeedItem{
			ID:         s.newID(),
			TopicID:    o.TopicID,
			TopicQuery: query,
			Content:    o.Text,
			Sources:    o.Sources,
			Timestamp:  ts,
		})
	}

	if len(items) > 0 {
		s.feed.InsertMany(items)
		s.saveFeed()
	}

	res.Committed = len(items)
	res.Items = items
	if res.Orphaned > 0 {
		logging.Info("Dropped results for removed topics", "count", res.Orphaned)
	}
	return res
}

// MarkRead flags a feed item as read.
func (s *State) MarkRead(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.feed.MarkRead(itemID) {
		return false
	}
	s.saveFeed()
	return true
}

// ToggleFavorite adds a feed item to favorites, or removes it if already
// there, and returns whether it is now a favorite. Favorites hold a copy, so
// later changes to the feed item (including its removal) don't affect them.
func (s *State) ToggleFavorite(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, inFeed := s.feed.Get(itemID)
	if !inFeed {
		// Only removal is possible for items no longer in the feed.
		if s.favorites.Remove(itemID) {
			s.saveFavorites()
		}
		return false
	}

	added, err := s.favorites.Toggle(item)
	if err != nil {
		logging.Error("Failed to copy favorite", "id", itemID, "error", err)
		return s.favorites.Contains(itemID)
	}
	s.feed.SetFavorite(itemID, added)
	s.saveFavorites()
	s.saveFeed()
	return added
}

// RemoveFavorite deletes an item from favorites.
func (s *State) RemoveFavorite(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.favorites.Remove(itemID) {
		return false
	}
	s.saveFavorites()
	if s.feed.SetFavorite(itemID, false) {
		s.saveFeed()
	}
	return true
}

// ToggleExcludedSource adds name to the denylist or removes it, and returns
// whether it is now excluded.
func (s *State) ToggleExcludedSource(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]string, 0, len(s.settings.ExcludedSources)+1)
	removed := false
	for _, ex := range s.settings.ExcludedSources {
		if strings.EqualFold(ex, name) {
			removed = true
			continue
		}
		kept = append(kept, ex)
	}
	if !removed {
		kept = append(kept, name)
	}
	s.settings.ExcludedSources = kept
	s.saveSettings()
	return !removed
}

// SetLanguage switches the display and prompt language.
func (s *State) SetLanguage(lang model.Language) error {
	if !lang.Valid() {
		return ErrInvalidLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lang = lang
	s.saveLanguage()
	return nil
}

// Language returns the current language.
func (s *State) Language() model.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Settings returns a copy of the current settings.
func (s *State) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Settings{ExcludedSources: append([]string(nil), s.settings.ExcludedSources...)}
}

// Snapshot returns a copy of the whole state for display.
func (s *State) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.Snapshot{
		Topics:    s.topics.Items(),
		Feed:      s.feed.Items(),
		Favorites: s.favorites.Items(),
		Settings:  model.Settings{ExcludedSources: append([]string(nil), s.settings.ExcludedSources...)},
		Language:  s.lang,
	}
}

// TopicsByID returns the named topics that still exist, in registry order.
// With no ids it returns every topic.
func (s *State) TopicsByID(ids ...string) []model.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.topics.Items()
	if len(ids) == 0 {
		return all
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]model.Topic, 0, len(ids))
	for _, t := range all {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
