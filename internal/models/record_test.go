package models_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moodwire/news-pulse/internal/models"
)

func TestParseSentiment(t *testing.T) {
	for _, want := range models.Sentiments {
		got, err := models.ParseSentiment(string(want))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	got, err := models.ParseSentiment("  positive ")
	require.NoError(t, err)
	require.Equal(t, models.SentimentPositive, got)

	_, err = models.ParseSentiment("UNKNOWN")
	require.Error(t, err)

	_, err = models.ParseSentiment("")
	require.Error(t, err)
}

func TestRecordKey(t *testing.T) {
	rec := models.NewsRecord{
		Sentiment: models.SentimentPositive,
		Timestamp: "2024-01-01T00:00:00Z",
		Title:     "X",
	}
	require.Equal(t, "POSITIVE#2024-01-01T00:00:00Z", rec.Key())

	other := models.NewsRecord{
		Sentiment: models.SentimentPositive,
		Timestamp: "2024-01-01T00:00:00Z",
		Title:     "a different headline",
	}
	require.Equal(t, rec.Key(), other.Key())
}
