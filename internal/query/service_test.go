package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moodwire/news-pulse/internal/elasticsearch"
	"github.com/moodwire/news-pulse/internal/models"
	"github.com/moodwire/news-pulse/internal/query"
)

type stubStore struct {
	calls     int
	gotLabel  models.Sentiment
	gotLimit  int
	result    *elasticsearch.RecentResult
	resultErr error
}

func (s *stubStore) RecentBySentiment(_ context.Context, label models.Sentiment, limit int) (*elasticsearch.RecentResult, error) {
	s.calls++
	s.gotLabel = label
	s.gotLimit = limit
	if s.resultErr != nil {
		return nil, s.resultErr
	}
	return s.result, nil
}

func TestRecentRejectsUnknownSentimentWithoutStoreAccess(t *testing.T) {
	store := &stubStore{}
	svc := query.New(store, 10, 100)

	_, err := svc.Recent(context.Background(), "UNKNOWN", 5)
	require.ErrorIs(t, err, query.ErrInvalidSentiment)
	require.Equal(t, 0, store.calls)

	_, err = svc.Recent(context.Background(), "", 5)
	require.ErrorIs(t, err, query.ErrInvalidSentiment)
	require.Equal(t, 0, store.calls)
}

func TestRecentAppliesDefaultLimit(t *testing.T) {
	store := &stubStore{result: &elasticsearch.RecentResult{Items: []models.NewsRecord{}}}
	svc := query.New(store, 10, 100)

	_, err := svc.Recent(context.Background(), "POSITIVE", 0)
	require.NoError(t, err)
	require.Equal(t, models.SentimentPositive, store.gotLabel)
	require.Equal(t, 10, store.gotLimit)
}

func TestRecentClampsLimitToMax(t *testing.T) {
	store := &stubStore{result: &elasticsearch.RecentResult{Items: []models.NewsRecord{}}}
	svc := query.New(store, 10, 100)

	_, err := svc.Recent(context.Background(), "negative", 5000)
	require.NoError(t, err)
	require.Equal(t, models.SentimentNegative, store.gotLabel)
	require.Equal(t, 100, store.gotLimit)
}

func TestRecentReturnsRecordsVerbatim(t *testing.T) {
	records := []models.NewsRecord{
		{Sentiment: models.SentimentPositive, Timestamp: "2024-01-01T00:00:03Z", Title: "newest"},
		{Sentiment: models.SentimentPositive, Timestamp: "2024-01-01T00:00:01Z", Title: "older"},
	}
	store := &stubStore{result: &elasticsearch.RecentResult{Total: 2, Items: records}}
	svc := query.New(store, 10, 100)

	result, err := svc.Recent(context.Background(), "POSITIVE", 10)
	require.NoError(t, err)
	require.Equal(t, records, result.Records)
	require.False(t, result.Truncated)
}

func TestRecentFlagsTruncation(t *testing.T) {
	records := []models.NewsRecord{
		{Sentiment: models.SentimentMixed, Timestamp: "2024-01-01T00:00:02Z", Title: "a"},
		{Sentiment: models.SentimentMixed, Timestamp: "2024-01-01T00:00:01Z", Title: "b"},
	}
	store := &stubStore{result: &elasticsearch.RecentResult{Total: 7, Items: records}}
	svc := query.New(store, 10, 100)

	result, err := svc.Recent(context.Background(), "MIXED", 2)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.True(t, result.Truncated)
}

func TestRecentSurfacesStorageFailure(t *testing.T) {
	store := &stubStore{resultErr: elasticsearch.ErrUnavailable}
	svc := query.New(store, 10, 100)

	_, err := svc.Recent(context.Background(), "NEUTRAL", 10)
	require.ErrorIs(t, err, elasticsearch.ErrUnavailable)
}

func TestRecentEmptyPartitionIsNotAnError(t *testing.T) {
	store := &stubStore{result: &elasticsearch.RecentResult{Total: 0, Items: []models.NewsRecord{}}}
	svc := query.New(store, 10, 100)

	result, err := svc.Recent(context.Background(), "NEUTRAL", 10)
	require.NoError(t, err)
	require.Empty(t, result.Records)
	require.False(t, result.Truncated)
}
