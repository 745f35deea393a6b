package sentiment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moodwire/news-pulse/internal/models"
	"github.com/moodwire/news-pulse/internal/sentiment"
)

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/classify", r.URL.Path)

		var body struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Markets rally on rate cut hopes", body.Text)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"label": "POSITIVE",
			"scores": map[string]float64{
				"POSITIVE": 0.91,
				"NEGATIVE": 0.02,
				"NEUTRAL":  0.05,
				"MIXED":    0.02,
			},
		})
	}))
	defer srv.Close()

	client := sentiment.New(srv.URL, 5*time.Second)
	result, err := client.Classify(context.Background(), "Markets rally on rate cut hopes")
	require.NoError(t, err)
	require.Equal(t, models.SentimentPositive, result.Label)
	require.InDelta(t, 0.91, result.Scores["POSITIVE"], 0.001)
}

func TestClassifyUnknownLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"label": "ECSTATIC"})
	}))
	defer srv.Close()

	client := sentiment.New(srv.URL, 5*time.Second)
	_, err := client.Classify(context.Background(), "some headline")
	require.ErrorIs(t, err, sentiment.ErrClassification)
}

func TestClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := sentiment.New(srv.URL, 5*time.Second)
	_, err := client.Classify(context.Background(), "some headline")
	require.ErrorIs(t, err, sentiment.ErrClassification)
}

func TestClassifyTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := sentiment.New(srv.URL, time.Second)
	_, err := client.Classify(context.Background(), "some headline")
	require.ErrorIs(t, err, sentiment.ErrClassification)
}
