package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/moodwire/news-pulse/internal/config"
	"github.com/moodwire/news-pulse/internal/elasticsearch"
	"github.com/moodwire/news-pulse/internal/logger"
	"github.com/moodwire/news-pulse/internal/models"
	"github.com/moodwire/news-pulse/internal/query"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	srv := &server{
		log:     log,
		es:      esClient,
		queries: query.New(esClient, cfg.DefaultLimit, cfg.MaxLimit),
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/news", srv.handleNews)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log     *slog.Logger
	es      *elasticsearch.Client
	queries *query.Service
}

type errorResponse struct {
	Error string `json:"error"`
}

type newsResponse struct {
	Records   []models.NewsRecord `json:"records"`
	Truncated bool                `json:"truncated"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.es.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rawSentiment := strings.TrimSpace(r.URL.Query().Get("sentiment"))
	limit := parseLimit(r.URL.Query().Get("limit"))

	result, err := s.queries.Recent(ctx, rawSentiment, limit)
	if err != nil {
		switch {
		case errors.Is(err, query.ErrInvalidSentiment):
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("sentiment must be one of %s", labelList()),
			})
		case errors.Is(err, elasticsearch.ErrUnavailable):
			s.log.Error("query records", slog.Any("err", err))
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "storage unavailable"})
		default:
			s.log.Error("query records", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, newsResponse{
		Records:   result.Records,
		Truncated: result.Truncated,
	})
}

func labelList() string {
	labels := make([]string, 0, len(models.Sentiments))
	for _, s := range models.Sentiments {
		labels = append(labels, string(s))
	}
	return strings.Join(labels, ", ")
}

// parseLimit returns 0 for a missing or unusable limit; the query service
// substitutes its default.
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
