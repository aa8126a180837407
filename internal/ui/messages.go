// Package ui provides the Bubble Tea TUI for InfoPulse.
package ui

import "github.com/abelbrown/infopulse/internal/model"

// StateLoaded is sent once persisted state has been read.
type StateLoaded struct {
	Snapshot model.Snapshot
}

// StateChanged carries a fresh snapshot after any user mutation.
type StateChanged struct {
	Snapshot model.Snapshot
}

// TopicAdded is sent when AddTopic finishes.
type TopicAdded struct {
	Topic    model.Topic
	Snapshot model.Snapshot
	Err      error
}

// RefreshComplete is sent when a refresh batch has been committed.
type RefreshComplete struct {
	Requested int
	Committed int
	Failed    int
	Orphaned  int
	Snapshot  model.Snapshot
}
