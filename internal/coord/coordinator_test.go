package coord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/infopulse/internal/fetch"
	"github.com/abelbrown/infopulse/internal/model"
	"github.com/abelbrown/infopulse/internal/otel"
	"github.com/abelbrown/infopulse/internal/state"
)

// mockFetcher implements the fetcher interface for testing.
type mockFetcher struct {
	mu         sync.Mutex
	requests   []fetch.Request
	errs       map[string]error         // query -> error to return
	delays     map[string]time.Duration // query -> delay before answering
	onFetch    func(query string)       // called before answering
	fetchCount atomic.Int32
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, req fetch.Request) (fetch.Result, error) {
	m.fetchCount.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxFlight.Load()
		if n <= cur || m.maxFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	delay := m.delays[req.Query]
	err := m.errs[req.Query]
	hook := m.onFetch
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return fetch.Result{}, ctx.Err()
		case <-time.After(delay):
		}
	}
	if hook != nil {
		hook(req.Query)
	}
	if err != nil {
		return fetch.Result{}, err
	}
	return fetch.Result{
		Text:    "digest for " + req.Query + " [1]",
		Sources: []model.SourceLink{{Title: req.Query, URL: "https://example.com/" + req.Query}},
	}, nil
}

func (m *mockFetcher) getRequests() []fetch.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]fetch.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func newState(t *testing.T, queries ...string) (*state.State, []model.Topic) {
	t.Helper()
	s := state.New(nil, model.LangEnglish)
	var topics []model.Topic
	for _, q := range queries {
		topic, err := s.AddTopic(q, "")
		if err != nil {
			t.Fatalf("AddTopic(%q): %v", q, err)
		}
		topics = append(topics, topic)
	}
	return s, topics
}

func TestRefreshFetchesAllTopics(t *testing.T) {
	s, _ := newState(t, "a", "b", "c")
	s.ToggleExcludedSource("weibo")

	mock := &mockFetcher{}
	c := NewCoordinatorWithFetcher(s, mock, Options{})

	report := c.Refresh(context.Background())

	if report.Requested != 3 || report.Committed != 3 || !report.OK() {
		t.Errorf("unexpected report: %+v", report)
	}
	if got := mock.fetchCount.Load(); got != 3 {
		t.Errorf("expected 3 fetches, got %d", got)
	}
	for _, req := range mock.getRequests() {
		if req.Language != model.LangEnglish {
			t.Errorf("request language = %q", req.Language)
		}
		if len(req.ExcludedSources) != 1 || req.ExcludedSources[0] != "weibo" {
			t.Errorf("exclusions not forwarded: %+v", req)
		}
	}

	feed := s.Snapshot().Feed
	if len(feed) != 3 {
		t.Fatalf("expected 3 feed items, got %d", len(feed))
	}
	for _, it := range feed {
		if it.Content != "digest for "+it.TopicQuery+" [1]" || len(it.Sources) != 1 {
			t.Errorf("item does not match its topic: %+v", it)
		}
	}
}

func TestRefreshSingleTopic(t *testing.T) {
	s, topics := newState(t, "a", "b")
	mock := &mockFetcher{}
	c := NewCoordinatorWithFetcher(s, mock, Options{})

	report := c.Refresh(context.Background(), topics[1].ID)
	if report.Requested != 1 || report.Committed != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	reqs := mock.getRequests()
	if len(reqs) != 1 || reqs[0].Query != "b" {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestRefreshNoTopics(t *testing.T) {
	s, _ := newState(t)
	mock := &mockFetcher{}
	c := NewCoordinatorWithFetcher(s, mock, Options{})

	report := c.Refresh(context.Background())
	if report.Requested != 0 || mock.fetchCount.Load() != 0 {
		t.Errorf("nothing should be fetched: %+v", report)
	}
}

func TestRefreshPartialPolicy(t *testing.T) {
	s, topics := newState(t, "ok1", "bad", "ok2")
	boom := errors.New("boom")
	mock := &mockFetcher{errs: map[string]error{"bad": boom}}
	c := NewCoordinatorWithFetcher(s, mock, Options{Policy: Partial})

	report := c.Refresh(context.Background())
	if report.Committed != 2 || len(report.Failed) != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if !errors.Is(report.Failed[topics[1].ID], boom) {
		t.Errorf("failure not keyed by topic: %+v", report.Failed)
	}
	if len(s.Snapshot().Feed) != 2 {
		t.Errorf("successful results should be committed")
	}
}

func TestRefreshAllOrNothingPolicy(t *testing.T) {
	s, _ := newState(t, "ok1", "bad", "ok2")
	mock := &mockFetcher{errs: map[string]error{"bad": errors.New("boom")}}
	c := NewCoordinatorWithFetcher(s, mock, Options{Policy: AllOrNothing})

	report := c.Refresh(context.Background())
	if report.Committed != 0 || report.Discarded != 2 || len(report.Failed) != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(s.Snapshot().Feed) != 0 {
		t.Error("nothing should be committed when one fetch fails")
	}

	// With every fetch succeeding the batch commits.
	mock.mu.Lock()
	mock.errs = nil
	mock.mu.Unlock()
	report = c.Refresh(context.Background())
	if report.Committed != 3 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRefreshTimeout(t *testing.T) {
	s, topics := newState(t, "slow", "fast")
	mock := &mockFetcher{delays: map[string]time.Duration{"slow": time.Second}}
	c := NewCoordinatorWithFetcher(s, mock, Options{FetchTimeout: 50 * time.Millisecond})

	start := time.Now()
	report := c.Refresh(context.Background())
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("refresh did not honour the per-fetch timeout")
	}
	if report.Committed != 1 {
		t.Errorf("fast topic should commit: %+v", report)
	}
	if err := report.Failed[topics[0].ID]; !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("slow topic error = %v", err)
	}
}

func TestRefreshCancelledContext(t *testing.T) {
	s, _ := newState(t, "a", "b")
	mock := &mockFetcher{}
	c := NewCoordinatorWithFetcher(s, mock, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := c.Refresh(ctx)
	if report.Committed != 0 || len(report.Failed) != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
	if mock.fetchCount.Load() != 0 {
		t.Error("no fetch should start after cancellation")
	}
}

func TestRefreshDropsResultsForRemovedTopics(t *testing.T) {
	s, topics := newState(t, "keep", "doomed")
	doomed := topics[1].ID

	mock := &mockFetcher{}
	mock.onFetch = func(query string) {
		if query == "doomed" {
			s.RemoveTopic(doomed)
		}
	}
	c := NewCoordinatorWithFetcher(s, mock, Options{})

	report := c.Refresh(context.Background())
	if report.Committed != 1 || report.Orphaned != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	for _, it := range s.Snapshot().Feed {
		if it.TopicID == doomed {
			t.Errorf("result for removed topic was committed: %+v", it)
		}
	}
}

func TestRefreshMaxConcurrent(t *testing.T) {
	queries := make([]string, 8)
	delays := map[string]time.Duration{}
	for i := range queries {
		queries[i] = fmt.Sprintf("t%d", i)
		delays[queries[i]] = 20 * time.Millisecond
	}
	s, _ := newState(t, queries...)
	mock := &mockFetcher{delays: delays}
	c := NewCoordinatorWithFetcher(s, mock, Options{MaxConcurrent: 2})

	report := c.Refresh(context.Background())
	if report.Committed != 8 {
		t.Errorf("unexpected report: %+v", report)
	}
	if got := mock.maxFlight.Load(); got > 2 {
		t.Errorf("expected at most 2 concurrent fetches, saw %d", got)
	}
}

func TestOverlappingRefreshes(t *testing.T) {
	s, _ := newState(t, "a", "b", "c")
	mock := &mockFetcher{delays: map[string]time.Duration{"a": 10 * time.Millisecond}}
	c := NewCoordinatorWithFetcher(s, mock, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Refresh(context.Background())
		}()
	}
	wg.Wait()
	c.Close()

	feed := s.Snapshot().Feed
	if len(feed) != 12 {
		t.Fatalf("expected 12 items, got %d", len(feed))
	}
	for i := 1; i < len(feed); i++ {
		if feed[i].Timestamp.After(feed[i-1].Timestamp) {
			t.Fatalf("feed not ordered by recency at %d", i)
		}
	}
}

func TestCloseWaitsForInFlightRefresh(t *testing.T) {
	s, _ := newState(t, "slow")
	started := make(chan struct{})
	mock := &mockFetcher{
		delays: map[string]time.Duration{"slow": 20 * time.Millisecond},
	}
	c := NewCoordinatorWithFetcher(s, &startSignal{mockFetcher: mock, started: started}, Options{})

	done := make(chan Report, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-started

	c.Close()
	if got := len(s.Snapshot().Feed); got != 1 {
		t.Fatalf("Close returned before the in-flight refresh committed, feed has %d items", got)
	}
	if r := <-done; r.Committed != 1 {
		t.Errorf("committed %d, want 1", r.Committed)
	}
}

func TestRefreshAfterCloseIsSkipped(t *testing.T) {
	s, _ := newState(t, "a", "b")
	mock := &mockFetcher{}
	c := NewCoordinatorWithFetcher(s, mock, Options{})
	c.Close()

	r := c.Refresh(context.Background())
	if r.Requested != 0 || r.Committed != 0 {
		t.Errorf("refresh after close should do nothing, got %+v", r)
	}
	if got := mock.fetchCount.Load(); got != 0 {
		t.Errorf("expected no fetches after close, got %d", got)
	}
	if len(s.Snapshot().Feed) != 0 {
		t.Error("nothing should be committed after close")
	}
}

// startSignal closes started when the first fetch begins.
type startSignal struct {
	*mockFetcher
	started chan struct{}
	once    sync.Once
}

func (s *startSignal) Fetch(ctx context.Context, req fetch.Request) (fetch.Result, error) {
	s.once.Do(func() { close(s.started) })
	return s.mockFetcher.Fetch(ctx, req)
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("all_or_nothing") != AllOrNothing {
		t.Error("all_or_nothing should parse")
	}
	if ParsePolicy("") != Partial || ParsePolicy("bogus") != Partial {
		t.Error("unknown policies should default to partial")
	}
}

func TestRefreshEmitsEvents(t *testing.T) {
	s, _ := newState(t, "ok", "bad")
	mock := &mockFetcher{errs: map[string]error{"bad": context.DeadlineExceeded}}

	ring := otel.NewRingBuffer(16)
	events := otel.NewNullLogger()
	events.SetRingBuffer(ring)

	c := NewCoordinatorWithFetcher(s, mock, Options{Events: events})
	c.Refresh(context.Background())
	events.Close()

	stats := ring.Stats()
	if stats[otel.KindRefreshStart] != 1 || stats[otel.KindRefreshComplete] != 1 {
		t.Errorf("refresh events = %v", stats)
	}
	if stats[otel.KindFetchComplete] != 1 || stats[otel.KindFetchError] != 1 {
		t.Errorf("fetch events = %v", stats)
	}
	last := ring.Last(1)[0]
	if last.Kind != otel.KindRefreshComplete || last.Count != 1 {
		t.Errorf("last event = %+v", last)
	}
}
