// Package otel records refresh activity as structured events.
//
// Events are written as JSONL by an asynchronous Logger and, when a
// RingBuffer is attached, kept in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level is an event's severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind names what happened, as "<subsystem>.<action>".
type EventKind string

const (
	KindRefreshStart    EventKind = "refresh.start"
	KindRefreshComplete EventKind = "refresh.complete"
	KindFetchComplete   EventKind = "fetch.complete"
	KindFetchError      EventKind = "fetch.error"
	KindCommitOrphan    EventKind = "commit.orphan"

	KindTopicAdd    EventKind = "topic.add"
	KindTopicRemove EventKind = "topic.remove"

	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
)

// Event is one journal record. Only Kind is required.
type Event struct {
	Time      time.Time     `json:"t"`
	Level     Level         `json:"level,omitempty"`
	Kind      EventKind     `json:"kind"`
	Comp      string        `json:"comp,omitempty"` // "coord", "ui", "main"
	SessionID string        `json:"session_id,omitempty"`
	TopicID   string        `json:"topic_id,omitempty"`
	Query     string        `json:"query,omitempty"`
	Provider  string        `json:"provider,omitempty"`
	Count     int           `json:"count,omitempty"`
	Dur       time.Duration `json:"-"`
	DurMs     float64       `json:"dur_ms,omitempty"`
	Err       string        `json:"err,omitempty"`
	Msg       string        `json:"msg,omitempty"`
}

// MarshalJSON writes Dur as fractional milliseconds.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	p := plain(e)
	if e.Dur > 0 {
		p.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(p)
}
