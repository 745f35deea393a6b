// Package sentiment is the client for the external text classifier. The
// classifier takes raw text and answers with one of the four labels plus
// per-label confidence scores.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/moodwire/news-pulse/internal/models"
)

// ErrClassification reports that one classify call failed or produced an
// unusable result. The caller skips that headline and moves on.
var ErrClassification = errors.New("classification failed")

// Result is one classification outcome.
type Result struct {
	Label  models.Sentiment
	Scores map[string]float64
}

// Client talks to the classifier service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Client against baseURL with a per-call timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label  string             `json:"label"`
	Scores map[string]float64 `json:"scores"`
}

// Classify sends one text to the classifier. Transport errors, non-2xx
// answers, and labels outside the recognized set all map to
// ErrClassification.
func (c *Client) Classify(ctx context.Context, text string) (*Result, error) {
	payload, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrClassification, resp.StatusCode)
	}

	var raw classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrClassification, err)
	}

	label, err := models.ParseSentiment(raw.Label)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}

	return &Result{Label: label, Scores: raw.Scores}, nil
}
