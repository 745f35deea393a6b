package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/moodwire/news-pulse/internal/ingest"
)

type stubCycle struct {
	runs  int
	stats ingest.Stats
	err   error
}

func (s *stubCycle) Run(_ context.Context) (ingest.Stats, error) {
	s.runs++
	return s.stats, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessTriggerRunsCycle(t *testing.T) {
	cycle := &stubCycle{stats: ingest.Stats{Fetched: 3, Inserted: 3}}

	payload, err := json.Marshal(ingestCommand{
		Kind:        "ingest",
		ID:          "0c7f8a9e-1111-2222-3333-444455556666",
		RequestedAt: "2024-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	err = processTrigger(context.Background(), discardLogger(), cycle, kafka.Message{Value: payload})
	require.NoError(t, err)
	require.Equal(t, 1, cycle.runs)
}

func TestProcessTriggerRejectsUnknownKind(t *testing.T) {
	cycle := &stubCycle{}

	payload, err := json.Marshal(ingestCommand{Kind: "purge", ID: "x"})
	require.NoError(t, err)

	err = processTrigger(context.Background(), discardLogger(), cycle, kafka.Message{Value: payload})
	require.Error(t, err)
	require.Equal(t, 0, cycle.runs)
}

func TestProcessTriggerRejectsMalformedPayload(t *testing.T) {
	cycle := &stubCycle{}

	err := processTrigger(context.Background(), discardLogger(), cycle, kafka.Message{Value: []byte("{broken")})
	require.Error(t, err)
	require.Equal(t, 0, cycle.runs)
}

func TestProcessTriggerPropagatesCycleFailure(t *testing.T) {
	wantErr := errors.New("feed unavailable")
	cycle := &stubCycle{err: wantErr}

	payload, err := json.Marshal(ingestCommand{Kind: "ingest", ID: "y"})
	require.NoError(t, err)

	err = processTrigger(context.Background(), discardLogger(), cycle, kafka.Message{Value: payload})
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, 1, cycle.runs)
}
