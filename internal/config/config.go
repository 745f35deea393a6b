package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Worker holds configuration for the ingestion worker: the trigger topic it
// consumes plus the two upstream collaborators of a cycle.
type Worker struct {
	Common
	KafkaBrokers  []string
	KafkaTopic    string
	KafkaConsumer string

	FeedBaseURL  string
	FeedAPIKey   string
	FeedCountry  string
	FeedCategory string
	FeedPageSize int

	ClassifierAddr  string
	ClassifyTimeout time.Duration

	LabelCacheCapacity int
	LabelCacheTTL      time.Duration

	ClearBatchSize int
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr     string
	DefaultLimit int
	MaxLimit     int
}

// Scheduler configures the periodic ingestion trigger.
type Scheduler struct {
	KafkaBrokers []string
	KafkaTopic   string
	Interval     time.Duration
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common: Common{
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "news_records"),
		},
		KafkaBrokers:  splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "ingest_triggers"),
		KafkaConsumer: getEnv("KAFKA_CONSUMER_GROUP", "ingest-worker"),

		FeedBaseURL:  getEnv("FEED_BASE_URL", "https://newsapi.org"),
		FeedAPIKey:   getEnv("FEED_API_KEY", ""),
		FeedCountry:  getEnv("FEED_COUNTRY", "us"),
		FeedCategory: getEnv("FEED_CATEGORY", "general"),
		FeedPageSize: getInt("FEED_PAGE_SIZE", 100),

		ClassifierAddr:  getEnv("CLASSIFIER_ADDR", "http://classifier:8000"),
		ClassifyTimeout: getDuration("CLASSIFIER_TIMEOUT", "10s"),

		LabelCacheCapacity: getInt("WORKER_LABEL_CACHE_CAPACITY", 4096),
		LabelCacheTTL:      getDuration("WORKER_LABEL_CACHE_TTL", "10m"),

		ClearBatchSize: getInt("WORKER_CLEAR_BATCH_SIZE", 500),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.FeedAPIKey == "" {
		return nil, fmt.Errorf("FEED_API_KEY must be set")
	}
	if c.FeedPageSize <= 0 {
		return nil, fmt.Errorf("FEED_PAGE_SIZE must be positive")
	}
	if c.ClassifyTimeout <= 0 {
		return nil, fmt.Errorf("CLASSIFIER_TIMEOUT must be positive")
	}
	if c.LabelCacheCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_LABEL_CACHE_CAPACITY must be positive")
	}
	if c.ClearBatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_CLEAR_BATCH_SIZE must be positive")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common: Common{
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "news_records"),
		},
		BindAddr:     getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultLimit: getInt("API_DEFAULT_LIMIT", 10),
		MaxLimit:     getInt("API_MAX_LIMIT", 100),
	}

	if c.DefaultLimit <= 0 {
		return nil, fmt.Errorf("API_DEFAULT_LIMIT must be positive")
	}
	if c.MaxLimit <= 0 {
		return nil, fmt.Errorf("API_MAX_LIMIT must be positive")
	}
	if c.DefaultLimit > c.MaxLimit {
		return nil, fmt.Errorf("API_DEFAULT_LIMIT cannot exceed API_MAX_LIMIT")
	}

	return c, nil
}

// LoadScheduler builds a Scheduler config from environment variables.
func LoadScheduler() (*Scheduler, error) {
	c := &Scheduler{
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "ingest_triggers"),
		Interval:     getDuration("SCHEDULER_INTERVAL", "3m"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
