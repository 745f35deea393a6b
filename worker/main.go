package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/moodwire/news-pulse/internal/cache"
	"github.com/moodwire/news-pulse/internal/config"
	"github.com/moodwire/news-pulse/internal/elasticsearch"
	"github.com/moodwire/news-pulse/internal/feed"
	"github.com/moodwire/news-pulse/internal/ingest"
	"github.com/moodwire/news-pulse/internal/logger"
	"github.com/moodwire/news-pulse/internal/sentiment"
)

// ingestCommand is the tagged trigger payload the scheduler publishes.
// Kind is checked explicitly so an unrelated message on the topic is
// rejected instead of silently running a cycle.
type ingestCommand struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	RequestedAt string `json:"requested_at"`
}

const commandKindIngest = "ingest"

type cycleRunner interface {
	Run(ctx context.Context) (ingest.Stats, error)
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := esClient.EnsureIndex(startupCtx); err != nil {
		cancel()
		log.Error("ensure index", slog.Any("err", err))
		os.Exit(1)
	}
	cancel()

	feedClient := feed.New(cfg.FeedBaseURL, cfg.FeedAPIKey)
	classifier := sentiment.New(cfg.ClassifierAddr, cfg.ClassifyTimeout)
	labels := cache.New(cfg.LabelCacheCapacity, cfg.LabelCacheTTL)

	cycle := ingest.New(esClient, feedClient, classifier, labels,
		feed.Params{
			Country:  cfg.FeedCountry,
			Category: cfg.FeedCategory,
			PageSize: cfg.FeedPageSize,
		},
		cfg.ClearBatchSize,
		log,
	)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processTrigger(ctx, log, cycle, msg); err != nil {
			// A failed cycle is not retried here; the next scheduled
			// trigger is the retry. The trigger is still consumed.
			log.Error("ingestion trigger failed",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func processTrigger(ctx context.Context, log *slog.Logger, cycle cycleRunner, msg kafka.Message) error {
	var cmd ingestCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		return fmt.Errorf("decode trigger: %w", err)
	}
	if cmd.Kind != commandKindIngest {
		return fmt.Errorf("unexpected trigger kind %q", cmd.Kind)
	}

	log.Info("ingestion cycle starting", slog.String("trigger_id", cmd.ID))

	stats, err := cycle.Run(ctx)
	if err != nil {
		return fmt.Errorf("cycle %s: %w", cmd.ID, err)
	}

	log.Info("ingestion trigger done",
		slog.String("trigger_id", cmd.ID),
		slog.Int("fetched", stats.Fetched),
		slog.Int("inserted", stats.Inserted),
		slog.Int("skipped", stats.Skipped),
	)
	return nil
}
