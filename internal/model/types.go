// Package model defines the InfoPulse data model and its in-memory
// collections: the topic registry, the feed item store and favorites.
//
// # Thread Safety
//
// None of the collections in this package are safe for concurrent use.
// The state controller serializes access to them.
package model

import (
	"strings"
	"time"
)

// Language selects the digest and UI language.
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

// DefaultLanguage is used when nothing valid is persisted.
const DefaultLanguage = LangChinese

// ParseLanguage returns the language for s, or false if s is not supported.
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LangEnglish:
		return LangEnglish, true
	case LangChinese:
		return LangChinese, true
	}
	return "", false
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LangEnglish || l == LangChinese
}

// SourceLink is one cited reference backing a digest.
// Its position in FeedItem.Sources defines the 1-based citation index.
type SourceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Topic is a user-tracked query.
type Topic struct {
	ID           string    `json:"id"`
	Query        string    `json:"query"`
	ScheduleTime string    `json:"scheduleTime"` // "HH:MM", advisory only
	CreatedAt    time.Time `json:"createdAt"`
}

// DefaultScheduleTime is the digest time offered for new topics.
const DefaultScheduleTime = "07:00"

// FeedItem is one generated digest for one topic.
//
// TopicQuery is a snapshot of the topic's query at creation time and is
// never recomputed, so it survives deletion of the topic.
type FeedItem struct {
	ID         string       `json:"id"`
	TopicID    string       `json:"topicId"`
	TopicQuery string       `json:"topicQuery"`
	Content    string       `json:"content"`
	Sources    []SourceLink `json:"sources"`
	Timestamp  time.Time    `json:"timestamp"`
	IsRead     bool         `json:"isRead"`
	IsFavorite bool         `json:"isFavorite,omitempty"`
	ImageURL   string       `json:"imageUrl,omitempty"`
}

// Settings holds user preferences passed opaquely to the fetch collaborator.
type Settings struct {
	ExcludedSources []string `json:"excludedSources"`
}

// IsExcluded reports whether name is in the denylist.
func (s Settings) IsExcluded(name string) bool {
	for _, ex := range s.ExcludedSources {
		if strings.EqualFold(ex, name) {
			return true
		}
	}
	return false
}

// KnownSourceCategories are the source categories offered in the UI.
var KnownSourceCategories = []string{"twitter", "weibo", "reddit", "facebook", "tiktok"}

// Snapshot is an immutable copy of the application state handed to the UI.
type Snapshot struct {
	Topics    []Topic
	Feed      []FeedItem
	Favorites []FeedItem
	Settings  Settings
	Language  Language
}
