// Package feed is the client for the upstream headline provider. The
// provider is a black box: a top-headlines endpoint that returns a status
// string plus a list of articles for a country/category pair.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnavailable reports that the feed call failed or the provider
// answered with a non-ok status. The cycle aborts on it.
var ErrUnavailable = errors.New("feed unavailable")

// Article is one raw headline as the provider returns it. PublishedAt is
// passed through untouched; normalization happens at ingestion.
type Article struct {
	Title       string `json:"title"`
	PublishedAt string `json:"publishedAt"`
}

// Params narrow the top-headlines request.
type Params struct {
	Country  string
	Category string
	PageSize int
}

// Client talks to the headline provider over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New builds a Client against baseURL. The API key travels as a query
// parameter, which is how the provider expects it.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type headlinesResponse struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

// TopHeadlines fetches the current headlines for the configured slice of
// the feed. Any transport error or a payload status other than "ok" maps
// to ErrUnavailable.
func (c *Client) TopHeadlines(ctx context.Context, params Params) ([]Article, error) {
	q := url.Values{}
	if params.Country != "" {
		q.Set("country", params.Country)
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	q.Set("apiKey", c.apiKey)

	endpoint := c.baseURL + "/v2/top-headlines?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build headlines request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var raw headlinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}

	if raw.Status != "ok" {
		if raw.Message != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, raw.Code, raw.Message)
		}
		return nil, fmt.Errorf("%w: status %q (http %d)", ErrUnavailable, raw.Status, resp.StatusCode)
	}

	return raw.Articles, nil
}
