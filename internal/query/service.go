// Package query answers "most recent N records of sentiment S" requests.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/moodwire/news-pulse/internal/elasticsearch"
	"github.com/moodwire/news-pulse/internal/models"
)

// ErrInvalidSentiment reports a missing or unrecognized sentiment value.
// It is the one client-causable failure, so the transport layer maps it to
// a 400 with the valid labels spelled out.
var ErrInvalidSentiment = errors.New("invalid sentiment")

// Store is the read slice of the record store.
type Store interface {
	RecentBySentiment(ctx context.Context, sentiment models.Sentiment, limit int) (*elasticsearch.RecentResult, error)
}

// Result is one answered query. Truncated is set when the partition holds
// more records than were returned.
type Result struct {
	Records   []models.NewsRecord
	Truncated bool
}

// Service validates requests and delegates to the store. It never writes.
type Service struct {
	store        Store
	defaultLimit int
	maxLimit     int
}

// New builds a Service with the limit defaults the API hands out.
func New(store Store, defaultLimit, maxLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &Service{store: store, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Recent returns up to limit records of the requested sentiment, newest
// first. An invalid sentiment fails before any store access; limit <= 0
// means the default.
func (s *Service) Recent(ctx context.Context, rawSentiment string, limit int) (*Result, error) {
	label, err := models.ParseSentiment(rawSentiment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSentiment, err)
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	res, err := s.store.RecentBySentiment(ctx, label, limit)
	if err != nil {
		return nil, err
	}

	return &Result{
		Records:   res.Items,
		Truncated: res.Total > int64(len(res.Items)),
	}, nil
}
