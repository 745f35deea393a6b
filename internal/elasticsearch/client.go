package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/moodwire/news-pulse/internal/models"
)

// ErrUnavailable reports that the record store could not be read or written.
var ErrUnavailable = errors.New("record store unavailable")

// Client wraps go-elasticsearch with the record-store operations this
// project needs: keyed insert, per-sentiment recent query, and full clear.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// RecentResult bundles one partition's hits with the partition total.
type RecentResult struct {
	Total int64
	Items []models.NewsRecord
}

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"sentiment": map[string]any{"type": "keyword"},
			"timestamp": map[string]any{"type": "date"},
			"title":     map[string]any{"type": "text"},
		},
	},
}

// New instantiates the Elasticsearch client.
func New(addr, index string, logger *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{es: es, index: index, log: logger}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: ping: %s", ErrUnavailable, res.Status())
	}

	return nil
}

// EnsureIndex creates the records index with its mapping. The sentiment
// term filter and the timestamp sort both depend on this mapping, so every
// binary calls it on startup; an already-existing index is a no-op.
func (c *Client) EnsureIndex(ctx context.Context) error {
	exists := esapi.IndicesExistsRequest{Index: []string{c.index}}
	res, err := exists.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("%w: index exists check: %v", ErrUnavailable, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	payload, err := json.Marshal(indexMapping)
	if err != nil {
		return fmt.Errorf("marshal index mapping: %w", err)
	}

	create := esapi.IndicesCreateRequest{
		Index: c.index,
		Body:  bytes.NewReader(payload),
	}
	createRes, err := create.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("%w: create index: %v", ErrUnavailable, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		body, _ := io.ReadAll(createRes.Body)
		// Lost the race against another starting binary; the index is there.
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index failed: %s", strings.TrimSpace(string(body)))
	}

	c.log.Info("created index", slog.String("index", c.index))
	return nil
}

// Insert writes one record keyed by (sentiment, timestamp). A record with
// the same key already in the index is silently overwritten.
func (c *Client) Insert(ctx context.Context, rec models.NewsRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: rec.Key(),
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("%w: index record: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%w: index record: %s", ErrUnavailable, strings.TrimSpace(string(body)))
	}

	return nil
}

// RecentBySentiment returns up to limit records of one sentiment, newest
// first. An empty partition yields an empty Items slice, not an error.
func (c *Client) RecentBySentiment(ctx context.Context, sentiment models.Sentiment, limit int) (*RecentResult, error) {
	if limit <= 0 {
		limit = 10
	}

	body := map[string]any{
		"size":             limit,
		"track_total_hits": true,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"sentiment": string(sentiment)}},
				},
			},
		},
		"sort": []map[string]any{
			{"timestamp": map[string]any{"order": "desc"}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%w: search: %s", ErrUnavailable, strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.NewsRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.NewsRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}

	return &RecentResult{
		Total: parsed.Hits.Total.Value,
		Items: items,
	}, nil
}

// Clear removes every record from the index by enumerating document IDs in
// pages of batchSize and deleting each one. The store has no truncate
// primitive, so this two-phase loop is the clear operation; it is a no-op
// on an empty index. Concurrent readers may observe a partially cleared
// index while it runs.
func (c *Client) Clear(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	totalDeleted := int64(0)

	for {
		ids, err := c.listIDs(ctx, batchSize)
		if err != nil {
			return totalDeleted, err
		}
		if len(ids) == 0 {
			return totalDeleted, nil
		}

		for _, id := range ids {
			req := esapi.DeleteRequest{
				Index:      c.index,
				DocumentID: id,
			}
			res, err := req.Do(ctx, c.es)
			if err != nil {
				return totalDeleted, fmt.Errorf("%w: delete record: %v", ErrUnavailable, err)
			}
			res.Body.Close()

			// 404 means someone already deleted it; still gone.
			if res.IsError() && res.StatusCode != http.StatusNotFound {
				return totalDeleted, fmt.Errorf("%w: delete record %s: %s", ErrUnavailable, id, res.Status())
			}
			totalDeleted++
		}

		// The next enumeration page must not see the documents deleted above.
		if err := c.refresh(ctx); err != nil {
			return totalDeleted, err
		}
	}
}

func (c *Client) listIDs(ctx context.Context, size int) ([]string, error) {
	body := map[string]any{
		"size":    size,
		"_source": false,
		"query": map[string]any{
			"match_all": map[string]any{},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal enumerate body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%w: enumerate: %s", ErrUnavailable, strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode enumerate response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (c *Client) refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return fmt.Errorf("%w: refresh: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: refresh: %s", ErrUnavailable, res.Status())
	}
	return nil
}

// Health pings Elasticsearch to ensure connectivity.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}
