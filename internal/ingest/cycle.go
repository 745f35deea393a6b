// Package ingest runs one clear-fetch-classify-write refresh of the record
// store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moodwire/news-pulse/internal/cache"
	"github.com/moodwire/news-pulse/internal/feed"
	"github.com/moodwire/news-pulse/internal/models"
	"github.com/moodwire/news-pulse/internal/sentiment"
)

// Store is the slice of the record store a cycle writes.
type Store interface {
	Clear(ctx context.Context, batchSize int) (int64, error)
	Insert(ctx context.Context, rec models.NewsRecord) error
}

// Feed hands out the current headlines.
type Feed interface {
	TopHeadlines(ctx context.Context, params feed.Params) ([]feed.Article, error)
}

// Classifier labels one text.
type Classifier interface {
	Classify(ctx context.Context, text string) (*sentiment.Result, error)
}

// Stats summarizes one finished cycle.
type Stats struct {
	Fetched  int
	Inserted int
	Skipped  int
}

// Cycle wires the collaborators for one refresh. It holds no state across
// runs; every Run starts from the store as it finds it.
type Cycle struct {
	store      Store
	feed       Feed
	classifier Classifier
	labels     *cache.Cache
	params     feed.Params
	batchSize  int
	log        *slog.Logger
	now        func() time.Time
}

// New builds a Cycle. labels may be nil to classify every title fresh.
func New(store Store, f Feed, classifier Classifier, labels *cache.Cache, params feed.Params, batchSize int, log *slog.Logger) *Cycle {
	return &Cycle{
		store:      store,
		feed:       f,
		classifier: classifier,
		labels:     labels,
		params:     params,
		batchSize:  batchSize,
		log:        log,
		now:        time.Now,
	}
}

// Run executes one refresh: clear the store, fetch the feed, classify each
// article, insert one record per article. A feed failure aborts the cycle
// (the clear has already happened by then); a classify or insert failure
// skips that one article and the cycle continues.
func (c *Cycle) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	deleted, err := c.store.Clear(ctx, c.batchSize)
	if err != nil {
		return stats, fmt.Errorf("clear store: %w", err)
	}
	c.log.Debug("store cleared", slog.Int64("deleted", deleted))

	articles, err := c.feed.TopHeadlines(ctx, c.params)
	if err != nil {
		return stats, fmt.Errorf("fetch headlines: %w", err)
	}
	stats.Fetched = len(articles)

	for _, article := range articles {
		title := strings.TrimSpace(article.Title)
		if title == "" {
			stats.Skipped++
			c.log.Warn("skipping article with empty title")
			continue
		}

		label, err := c.classify(ctx, title)
		if err != nil {
			stats.Skipped++
			c.log.Warn("skipping article, classification failed",
				slog.String("title", title),
				slog.Any("err", err),
			)
			continue
		}

		rec := models.NewsRecord{
			Sentiment: label,
			Timestamp: c.normalizeTimestamp(article.PublishedAt),
			Title:     title,
		}

		if err := c.store.Insert(ctx, rec); err != nil {
			stats.Skipped++
			c.log.Warn("skipping article, insert failed",
				slog.String("title", title),
				slog.Any("err", err),
			)
			continue
		}
		stats.Inserted++
	}

	c.log.Info("ingestion cycle finished",
		slog.Int("fetched", stats.Fetched),
		slog.Int("inserted", stats.Inserted),
		slog.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func (c *Cycle) classify(ctx context.Context, title string) (models.Sentiment, error) {
	key := cache.Key(title)
	if c.labels != nil {
		if label, ok := c.labels.Get(key); ok {
			return label, nil
		}
	}

	result, err := c.classifier.Classify(ctx, title)
	if err != nil {
		return "", err
	}

	if c.labels != nil {
		c.labels.Put(key, result.Label)
	}
	return result.Label, nil
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// normalizeTimestamp coerces whatever the feed sent into an RFC 3339 UTC
// string. The timestamp is half of the record key, so two articles that
// name the same instant must normalize to the same string.
func (c *Cycle) normalizeTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, f := range timestampFormats {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts.UTC().Format(time.RFC3339)
		}
	}
	return c.now().UTC().Format(time.RFC3339)
}
