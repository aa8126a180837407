// Package coord runs topic refreshes: one fetch per topic in parallel, then a
// single batched commit once every fetch has settled.
package coord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/infopulse/internal/fetch"
	"github.com/abelbrown/infopulse/internal/logging"
	"github.com/abelbrown/infopulse/internal/model"
	"github.com/abelbrown/infopulse/internal/otel"
	"github.com/abelbrown/infopulse/internal/state"
)

// defaultFetchTimeout bounds each individual fetch.
const defaultFetchTimeout = 60 * time.Second

// Policy decides what a refresh commits when some fetches fail.
type Policy string

const (
	// Partial commits every successful result.
	Partial Policy = "partial"
	// AllOrNothing commits only if every fetch succeeded.
	AllOrNothing Policy = "all_or_nothing"
)

// ParsePolicy maps a config value to a Policy, defaulting to Partial.
func ParsePolicy(s string) Policy {
	if Policy(s) == AllOrNothing {
		return AllOrNothing
	}
	return Partial
}

// fetcher interface for dependency injection (testing).
type fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (fetch.Result, error)
}

// committer is the slice of state.State the coordinator needs.
type committer interface {
	TopicsByID(ids ...string) []model.Topic
	Language() model.Language
	Settings() model.Settings
	CommitRefresh(outcomes []state.Outcome) state.CommitResult
}

// Options tune a Coordinator.
type Options struct {
	FetchTimeout  time.Duration // per fetch; 0 = 60s
	MaxConcurrent int           // 0 = one goroutine per topic
	Policy        Policy
	Events        *otel.Logger // optional
}

// Report summarizes one refresh.
type Report struct {
	Requested int
	Committed int
	Orphaned  int              // results dropped because the topic was removed mid-fetch
	Discarded int              // successes thrown away under AllOrNothing
	Failed    map[string]error // topic ID -> fetch error
	Items     []model.FeedItem // newly committed items
	Duration  time.Duration
}

// OK reports whether every requested fetch succeeded.
func (r Report) OK() bool {
	return len(r.Failed) == 0
}

// Coordinator fans topic fetches out and commits their results.
// Refreshes may overlap; commits are serialized by the state controller.
type Coordinator struct {
	state   committer
	fetcher fetcher
	opts    Options
	now     func() time.Time

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewCoordinator creates a Coordinator with the real fetcher.
func NewCoordinator(s *state.State, f *fetch.Fetcher, opts Options) *Coordinator {
	return NewCoordinatorWithFetcher(s, f, opts)
}

// NewCoordinatorWithFetcher allows injecting a custom fetcher (for testing).
func NewCoordinatorWithFetcher(s committer, f fetcher, opts Options) *Coordinator {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Policy == "" {
		opts.Policy = Partial
	}
	return &Coordinator{
		state:   s,
		fetcher: f,
		opts:    opts,
		now:     time.Now,
	}
}

// Close stops new refreshes from starting and blocks until every in-flight
// refresh has committed. Refresh calls made after Close do nothing.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}

// Refresh fetches the given topics (all topics when none are named) and
// commits the results as one batch. It blocks until the batch is committed.
func (c *Coordinator) Refresh(ctx context.Context, topicIDs ...string) Report {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		logging.Debug("Refresh skipped after close", "topics", len(topicIDs))
		return Report{Failed: map[string]error{}}
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	start := c.now()
	topics := c.state.TopicsByID(topicIDs...)
	report := Report{Requested: len(topics), Failed: map[string]error{}}
	if len(topics) == 0 {
		return report
	}

	// Language and exclusions are fixed for the whole batch.
	lang := c.state.Language()
	excluded := c.state.Settings().ExcludedSources

	logging.Info("Refresh started", "topics", len(topics), "lang", lang, "policy", c.opts.Policy)
	c.opts.Events.Emit(otel.Event{Kind: otel.KindRefreshStart, Comp: "coord", Count: len(topics)})

	outcomes := make([]state.Outcome, len(topics))
	errs := make([]error, len(topics))

	var g errgroup.Group
	if c.opts.MaxConcurrent > 0 {
		g.SetLimit(c.opts.MaxConcurrent)
	}
	for i, topic := range topics {
		i, topic := i, topic
		g.Go(func() error {
			outcomes[i], errs[i] = c.fetchTopic(ctx, topic, lang, excluded)
			return nil // never fail the group - errors reported per-topic
		})
	}
	_ = g.Wait()

	var ok []state.Outcome
	for i, topic := range topics {
		if errs[i] != nil {
			report.Failed[topic.ID] = errs[i]
			logging.Warn("Topic fetch failed", "topic", topic.Query, "error", errs[i])
			continue
		}
		ok = append(ok, outcomes[i])
	}

	if c.opts.Policy == AllOrNothing && len(report.Failed) > 0 {
		report.Discarded = len(ok)
		ok = nil
	}

	if len(ok) > 0 {
		res := c.state.CommitRefresh(ok)
		report.Committed = res.Committed
		report.Orphaned = res.Orphaned
		report.Items = res.Items
	}

	report.Duration = c.now().Sub(start)
	if report.Orphaned > 0 {
		c.opts.Events.Emit(otel.Event{Kind: otel.KindCommitOrphan, Comp: "coord", Count: report.Orphaned})
	}
	c.opts.Events.Emit(otel.Event{
		Kind:  otel.KindRefreshComplete,
		Comp:  "coord",
		Count: report.Committed,
		Dur:   report.Duration,
		Msg:   fmt.Sprintf("%d/%d committed, %d failed", report.Committed, report.Requested, len(report.Failed)),
	})
	logging.Info("Refresh finished",
		"requested", report.Requested,
		"committed", report.Committed,
		"failed", len(report.Failed),
		"orphaned", report.Orphaned,
		"discarded", report.Discarded,
		"duration", report.Duration)
	return report
}

// fetchTopic fetches a single topic with timeout.
func (c *Coordinator) fetchTopic(ctx context.Context, topic model.Topic, lang model.Language, excluded []string) (state.Outcome, error) {
	if ctx.Err() != nil {
		return state.Outcome{}, ctx.Err()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
	defer cancel()

	began := time.Now()
	res, err := c.fetcher.Fetch(fetchCtx, fetch.Request{
		Query:           topic.Query,
		Language:        lang,
		ExcludedSources: excluded,
	})
	c.opts.Events.FetchDone(topic.ID, topic.Query, time.Since(began), err)
	if err != nil {
		return state.Outcome{}, err
	}

	return state.Outcome{
		TopicID:    topic.ID,
		TopicQuery: topic.Query,
		Text:       res.Text,
		Sources:    res.Sources,
		FetchedAt:  c.now(),
	}, nil
}
