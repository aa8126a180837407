package brain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/abelbrown/infopulse/internal/logging"
)

const defaultNewsEndpoint = "https://news.google.com/rss/search"

// NewsProvider answers searches from a news RSS search endpoint. It needs no
// credentials and is used when no LLM provider is configured.
type NewsProvider struct {
	endpoint string
	maxItems int
	client   *http.Client
}

// NewNewsProvider creates a news search provider
func NewNewsProvider(endpoint string, maxItems int, timeout time.Duration) *NewsProvider {
	if endpoint == "" {
		endpoint = defaultNewsEndpoint
	}
	if maxItems <= 0 {
		maxItems = 6
	}
	return &NewsProvider{
		endpoint: endpoint,
		maxItems: maxItems,
		client:   &http.Client{Timeout: timeout},
	}
}

func (n *NewsProvider) Name() string {
	return "news"
}

func (n *NewsProvider) Available() bool {
	return true
}

// searchURL builds the locale-specific search URL for query.
func (n *NewsProvider) searchURL(query, lang string) string {
	v := url.Values{}
	v.Set("q", query)
	if lang == "zh" {
		v.Set("hl", "zh-CN")
		v.Set("gl", "CN")
		v.Set("ceid", "CN:zh-Hans")
	} else {
		v.Set("hl", "en-US")
		v.Set("gl", "US")
		v.Set("ceid", "US:en")
	}
	return n.endpoint + "?" + v.Encode()
}

func (n *NewsProvider) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if ctx.Err() != nil {
		return SearchResponse{}, ctx.Err()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, n.searchURL(req.Query, req.Language), nil)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "InfoPulse/0.1")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SearchResponse{}, &APIError{Provider: "news", StatusCode: resp.StatusCode, Body: resp.Status}
	}

	// Parsers carry state, so one per search.
	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("failed to parse feed: %w", err)
	}

	var lines []string
	var sources []Source
	for _, item := range feed.Items {
		if len(sources) >= n.maxItems {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}
		if excluded(item, req.Exclusions) {
			continue
		}
		sources = append(sources, Source{Title: item.Title, URL: item.Link})
		lines = append(lines, fmt.Sprintf("- %s%s [%d]", item.Title, n.dateSuffix(item, req.Language), len(sources)))
	}

	logging.Debug("News search response", "query", req.Query, "items", len(feed.Items), "kept", len(sources))

	if len(sources) == 0 {
		return SearchResponse{Model: n.Name()}, nil
	}

	heading := fmt.Sprintf("**Latest headlines for %s**", req.Query)
	if req.Language == "zh" {
		heading = fmt.Sprintf("**%s 最新动态**", req.Query)
	}

	return SearchResponse{
		Content: heading + "\n\n" + strings.Join(lines, "\n"),
		Model:   n.Name(),
		Sources: sources,
	}, nil
}

func (n *NewsProvider) dateSuffix(item *gofeed.Item, lang string) string {
	t := item.PublishedParsed
	if t == nil {
		t = item.UpdatedParsed
	}
	if t == nil {
		return ""
	}
	if lang == "zh" {
		return fmt.Sprintf("（%d月%d日）", t.Month(), t.Day())
	}
	return " (" + t.Format("Jan 2") + ")"
}

// excluded reports whether item comes from one of the excluded sources,
// matched against the link host and the headline.
func excluded(item *gofeed.Item, exclusions []string) bool {
	if len(exclusions) == 0 {
		return false
	}
	host := ""
	if u, err := url.Parse(item.Link); err == nil {
		host = strings.ToLower(u.Hostname())
	}
	title := strings.ToLower(item.Title)
	for _, ex := range exclusions {
		ex = strings.ToLower(strings.TrimSpace(ex))
		if ex == "" {
			continue
		}
		if strings.Contains(host, ex) || strings.Contains(title, ex) {
			return true
		}
	}
	return false
}
