package search

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/vioflow/ainews/internal/pipeerr"
)

const defaultFeedBaseURL = "https://news.google.com/rss/search"

// NewsFeed queries the Google News RSS search feed. The orchestrator uses it
// only when the primary provider is rate limited or comes back empty.
type NewsFeed struct {
	parser     *gofeed.Parser
	baseURL    string
	maxResults int
}

func NewNewsFeed(timeout time.Duration, maxResults int) *NewsFeed {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &NewsFeed{
		parser:     parser,
		baseURL:    defaultFeedBaseURL,
		maxResults: maxResults,
	}
}

// Search maps feed items onto the collector record shape, keeping feed order.
func (f *NewsFeed) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query+" when:1d")
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	feed, err := f.parser.ParseURLWithContext(f.baseURL+"?"+params.Encode(), ctx)
	if err != nil {
		return nil, pipeerr.Classify(pipeerr.StageSearch, err)
	}

	var results []Result
	for _, item := range feed.Items {
		if len(results) >= f.maxResults {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}
		results = append(results, Result{
			Title:   item.Title,
			Snippet: stripTags(item.Description),
			URL:     item.Link,
		})
	}

	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// stripTags drops markup from feed descriptions, which Google News ships as
// anchor lists.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
