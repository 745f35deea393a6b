package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/moodwire/news-pulse/internal/config"
	"github.com/moodwire/news-pulse/internal/logger"
)

// ingestCommand mirrors the payload the worker expects.
type ingestCommand struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	RequestedAt string `json:"requested_at"`
}

func main() {
	log := logger.New("scheduler")
	cfg, err := config.LoadScheduler()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic,
		MaxAttempts: 3,
	})
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("scheduler running",
		slog.String("topic", cfg.KafkaTopic),
		slog.Duration("interval", cfg.Interval),
	)

	// Trigger once on start so a fresh deployment has data before the
	// first tick.
	publishTrigger(ctx, log, writer)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			publishTrigger(ctx, log, writer)
		}
	}
}

func publishTrigger(ctx context.Context, log *slog.Logger, writer *kafka.Writer) {
	cmd := ingestCommand{
		Kind:        "ingest",
		ID:          uuid.NewString(),
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		log.Error("marshal trigger", slog.Any("err", err))
		return
	}

	subCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := writer.WriteMessages(subCtx, kafka.Message{
		Key:   []byte(cmd.ID),
		Value: payload,
	}); err != nil {
		log.Warn("publish trigger failed (will retry on next interval)", slog.Any("err", err))
		return
	}

	log.Info("trigger published", slog.String("trigger_id", cmd.ID))
}
