// Package scraper fetches full article text to enrich the model prompt.
// Failures here are tolerable: the orchestrator logs and moves on, the
// search snippets alone are enough to build a digest.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const minParagraphLen = 20

// Fetcher retrieves pages and keeps paragraph text only, truncated to a
// fixed character budget to bound model input size.
type Fetcher struct {
	http     *http.Client
	maxChars int
}

func NewFetcher(timeout time.Duration, maxChars int) *Fetcher {
	return &Fetcher{
		http:     &http.Client{Timeout: timeout},
		maxChars: maxChars,
	}
}

// Extract downloads pageURL and returns its paragraph text.
func (f *Fetcher) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ainews/1.0)")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) >= minParagraphLen {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return "", errors.New("no paragraph content")
	}

	return truncateRunes(strings.Join(paragraphs, "\n"), f.maxChars), nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
