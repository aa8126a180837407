package model

import "strings"

// TopicRegistry is the user-managed list of tracked queries, newest first.
type TopicRegistry struct {
	topics []Topic
}

// NewTopicRegistry creates a registry from persisted topics, dropping any
// with an empty query.
func NewTopicRegistry(topics []Topic) *TopicRegistry {
	r := &TopicRegistry{}
	for _, t := range topics {
		t.Query = strings.TrimSpace(t.Query)
		if t.Query == "" {
			continue
		}
		r.topics = append(r.topics, t)
	}
	return r
}

// Add prepends a topic. Topics whose query is empty after trimming are
// ignored; callers validate input beforehand. It reports whether the topic
// was added.
func (r *TopicRegistry) Add(t Topic) bool {
	t.Query = strings.TrimSpace(t.Query)
	if t.Query == "" {
		return false
	}
	r.topics = append([]Topic{t}, r.topics...)
	return true
}

// Remove deletes the topic with the given id. Unknown ids are a no-op.
// The cascade into the feed store is the caller's job.
func (r *TopicRegistry) Remove(id string) bool {
	for i, t := range r.topics {
		if t.ID == id {
			r.topics = append(r.topics[:i], r.topics[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the topic with the given id.
func (r *TopicRegistry) Get(id string) (Topic, bool) {
	for _, t := range r.topics {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}

// Exists reports whether a topic with the given id is registered.
func (r *TopicRegistry) Exists(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Items returns a copy of the topics, newest first.
func (r *TopicRegistry) Items() []Topic {
	out := make([]Topic, len(r.topics))
	copy(out, r.topics)
	return out
}

// Len returns the number of topics.
func (r *TopicRegistry) Len() int {
	return len(r.topics)
}
