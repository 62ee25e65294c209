// Package app sequences the pipeline: collect raw material for both topics,
// enrich it with full-page text, summarize, deliver. One run per invocation;
// the external scheduler owns cadence.
package app

import (
	"context"
	"time"

	"github.com/vioflow/ainews/internal/config"
	"github.com/vioflow/ainews/internal/gemini"
	"github.com/vioflow/ainews/internal/logger"
	"github.com/vioflow/ainews/internal/metrics"
	"github.com/vioflow/ainews/internal/pipeerr"
	"github.com/vioflow/ainews/internal/retry"
	"github.com/vioflow/ainews/internal/scraper"
	"github.com/vioflow/ainews/internal/search"
	"github.com/vioflow/ainews/internal/telegram"
)

// Stage contracts. Real clients live in their own packages; tests inject
// fakes through the same seams.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

type PageFetcher interface {
	Extract(ctx context.Context, url string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, m gemini.Material) (string, error)
}

type Sender interface {
	Send(ctx context.Context, text string) error
}

type App struct {
	cfg        *config.Config
	searcher   Searcher
	fallback   Searcher
	fetcher    PageFetcher
	summarizer Summarizer
	sender     Sender

	scrapePause time.Duration
	closeFn     func()
}

// New wires the real providers into an App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	gem, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:         cfg,
		searcher:    search.NewClient(cfg.RequestTimeout, cfg.MaxSearchResults),
		fallback:    search.NewNewsFeed(cfg.RequestTimeout, cfg.MaxSearchResults),
		fetcher:     scraper.NewFetcher(cfg.RequestTimeout, cfg.ScrapeMaxChars),
		summarizer:  gem,
		sender:      telegram.New(cfg.TelegramToken, cfg.TelegramChatID, cfg.RequestTimeout, cfg.MessageMaxLen, cfg.SendDelay),
		scrapePause: 500 * time.Millisecond,
		closeFn:     gem.Close,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// Run executes one complete pipeline pass.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	logger.Info("starting news digest run")

	material, err := a.collect(ctx)
	if err != nil {
		return a.fail(err)
	}

	a.enrich(ctx, material)

	var digest string
	err = retry.Do(ctx, a.retryConfig(), pipeerr.StageGeneration, func() error {
		var genErr error
		digest, genErr = a.summarizer.Summarize(ctx, *material)
		return genErr
	})
	if err != nil {
		return a.fail(err)
	}
	metrics.Global.AddSummary()
	logger.Info("digest generated", "chars", len(digest))

	for _, problem := range gemini.CheckFormat(digest) {
		logger.Warn("digest format violation", "problem", problem)
	}

	err = retry.Do(ctx, a.retryConfig(), pipeerr.StageDelivery, func() error {
		return a.sender.Send(ctx, digest)
	})
	if err != nil {
		return a.fail(err)
	}

	metrics.Global.SetLastRun(time.Since(start))
	logger.Info("run completed", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (a *App) retryConfig() retry.Config {
	return retry.Config{MaxAttempts: a.cfg.RetryAttempts, Delay: a.cfg.RetryDelay}
}

// collect gathers both topic result sets. A single empty topic is tolerated;
// the run fails closed only when nothing at all came back.
func (a *App) collect(ctx context.Context) (*gemini.Material, error) {
	logger.Info("searching advancements topic")
	advancements := a.searchTopic(ctx, a.cfg.Topics.Advancements)

	logger.Info("searching general topic")
	general := a.searchTopic(ctx, a.cfg.Topics.General)

	if len(advancements) == 0 && len(general) == 0 {
		return nil, pipeerr.New(pipeerr.StageSearch, pipeerr.EmptyResult, "both topic searches came back empty")
	}

	logger.Info("material collected", "advancements", len(advancements), "general", len(general))
	return &gemini.Material{Advancements: advancements, General: general}, nil
}

func (a *App) searchTopic(ctx context.Context, query string) []search.Result {
	var results []search.Result
	err := retry.Do(ctx, a.retryConfig(), pipeerr.StageSearch, func() error {
		var sErr error
		results, sErr = a.searcher.Search(ctx, query)
		return sErr
	})
	if err == nil {
		metrics.Global.AddSearch()
		return results
	}

	if a.fallback == nil {
		return nil
	}

	logger.Info("falling back to news feed search", "category", pipeerr.CategoryOf(err).String())
	results, err = a.fallback.Search(ctx, query)
	if err != nil {
		logger.Warn("fallback search failed", "category", pipeerr.CategoryOf(err).String())
		return nil
	}
	metrics.Global.AddFallback()
	return results
}

// enrich fetches full-page text for the top result of each topic. Strictly
// best-effort: a page that refuses to load costs a log line, not the run.
func (a *App) enrich(ctx context.Context, m *gemini.Material) {
	if a.fetcher == nil || a.cfg.ScrapeMaxArticles <= 0 {
		return
	}

	urls := topURLs(m, a.cfg.ScrapeMaxArticles)
	articles := make(map[string]string, len(urls))

	for i, u := range urls {
		text, err := a.fetcher.Extract(ctx, u)
		if err != nil {
			logger.Debug("skipping article", "url", u, "err", err)
			continue
		}
		articles[u] = text
		metrics.Global.AddPageScraped()

		if i < len(urls)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.scrapePause):
			}
		}
	}

	if len(articles) > 0 {
		m.Articles = articles
		logger.Info("material enriched", "articles", len(articles))
	}
}

func topURLs(m *gemini.Material, perTopic int) []string {
	var urls []string
	for _, list := range [][]search.Result{m.Advancements, m.General} {
		for i, r := range list {
			if i >= perTopic {
				break
			}
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// fail records the failure and logs one coarse ops-facing line derived from
// the structured error, then hands the error back for the exit status.
func (a *App) fail(err error) error {
	metrics.Global.SetError(err.Error())

	stage := pipeerr.StageOf(err)
	category := pipeerr.CategoryOf(err)

	switch {
	case category == pipeerr.Timeout:
		logger.Error("run failed: the operation took too long and timed out", "stage", stage)
	case stage == pipeerr.StageSearch || stage == pipeerr.StageGeneration:
		logger.Error("run failed: could not retrieve or summarize the news", "category", category.String())
	case stage == pipeerr.StageDelivery:
		logger.Error("run failed: the delivery service encountered an error", "category", category.String())
	default:
		logger.Error("run failed: unexpected internal error")
	}
	return err
}
