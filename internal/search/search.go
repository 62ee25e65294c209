// Package search collects recent news records for a topic query. The
// primary provider is the DuckDuckGo HTML endpoint; a Google News RSS
// fallback covers throttled or empty primary responses.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vioflow/ainews/internal/pipeerr"
)

// Result is one collected news record. Provider order is preserved for
// downstream ranking.
type Result struct {
	Title   string
	Snippet string
	URL     string
}

// ErrNoResults signals an empty but otherwise healthy provider response.
var ErrNoResults = pipeerr.New(pipeerr.StageSearch, pipeerr.EmptyResult, "no results for query")

const (
	defaultBaseURL = "https://html.duckduckgo.com/html/"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Client queries the DuckDuckGo HTML endpoint.
type Client struct {
	http       *http.Client
	baseURL    string
	region     string
	timeLimit  string
	maxResults int
}

// NewClient builds a collector restricted to the last 24 hours, no region
// filter, matching the provider parameters the digest was tuned on.
func NewClient(timeout time.Duration, maxResults int) *Client {
	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		region:     "wt-wt",
		timeLimit:  "d",
		maxResults: maxResults,
	}
}

// Search returns the ordered records for query, or ErrNoResults.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("kl", c.region)
	params.Set("df", c.timeLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, pipeerr.New(pipeerr.StageSearch, pipeerr.Generic, "could not build search request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pipeerr.Classify(pipeerr.StageSearch, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusAccepted, http.StatusForbidden, http.StatusTooManyRequests:
		// DuckDuckGo answers throttled scrapers with 202/403 challenge pages.
		return nil, pipeerr.New(pipeerr.StageSearch, pipeerr.RateLimited,
			fmt.Sprintf("provider throttled the query (status %d)", resp.StatusCode))
	default:
		return nil, pipeerr.New(pipeerr.StageSearch, pipeerr.Generic,
			fmt.Sprintf("provider returned status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, pipeerr.New(pipeerr.StageSearch, pipeerr.Generic, "could not parse provider response")
	}

	results := parseResults(doc, c.maxResults)
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

func parseResults(doc *goquery.Document, max int) []Result {
	var results []Result

	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= max {
			return false
		}

		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		href = decodeRedirect(href)
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())

		if title == "" || href == "" {
			return true
		}
		results = append(results, Result{Title: title, Snippet: snippet, URL: href})
		return true
	})

	return results
}

// decodeRedirect unwraps //duckduckgo.com/l/?uddg=<encoded> redirect hrefs
// so the digest links point at the real source.
func decodeRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
