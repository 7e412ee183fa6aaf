package main

import (
	"context"
	"log"
	"net/http"

	"github.com/nyayasetu/legal-assistant-rag/internal/assist"
	"github.com/nyayasetu/legal-assistant-rag/internal/config"
	"github.com/nyayasetu/legal-assistant-rag/internal/db"
	"github.com/nyayasetu/legal-assistant-rag/internal/history"
	"github.com/nyayasetu/legal-assistant-rag/internal/httpapi"
	"github.com/nyayasetu/legal-assistant-rag/internal/index"
	"github.com/nyayasetu/legal-assistant-rag/internal/ingest"
	"github.com/nyayasetu/legal-assistant-rag/internal/llm"
	"github.com/nyayasetu/legal-assistant-rag/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	gemini, err := llm.NewGeminiClient(ctx, llm.Config{
		APIKey:     cfg.GeminiAPIKey,
		ChatModel:  cfg.ChatModel,
		EmbedModel: cfg.EmbedModel,
		EmbedDim:   cfg.EmbedDim,
		Timeout:    cfg.ProviderTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to init Gemini client: %v", err)
	}

	var idx index.Index
	if cfg.DatabaseURL != "" {
		pool := db.NewPool(cfg.DatabaseURL)
		defer pool.Close()
		idx = index.NewPgIndex(pool, cfg.EmbedDim)
		logger.Info("using pgvector index")
	} else {
		idx = index.NewMemoryIndex(cfg.EmbedDim)
		logger.Warn("DATABASE_URL not set, using in-memory index")
	}

	var store assist.HistoryStore
	if cfg.RedisURL != "" {
		redisStore, err := history.NewRedisStore(cfg.RedisURL, cfg.HistoryLimit)
		if err != nil {
			log.Fatalf("failed to init Redis history store: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info("using redis history store")
	} else {
		store = history.NewMemoryStore(cfg.HistoryLimit)
		logger.Warn("REDIS_URL not set, using in-memory history store")
	}

	classifier := assist.NewClassifier(gemini, logger)
	sections := assist.NewSectionExpert(gemini, gemini, idx, cfg.TopK, cfg.RelevanceFloor, logger)
	documents := assist.NewDocumentExpert(gemini, gemini, idx, sections, cfg.TopK, cfg.RelevanceFloor, logger)
	general := assist.NewGeneralHandler(gemini, logger)
	router := assist.NewRouter(classifier, sections, documents, general, idx, store, cfg.RouteThreshold, logger)

	ingester := ingest.NewService(gemini, idx, ingest.DefaultChunkSize, logger)

	h := httpapi.NewHandler(router, ingester, idx, store, cfg.RequestTimeout, logger)
	handler := corsMiddleware(httpapi.NewRouter(h))

	addr := ":" + cfg.Port
	logger.WithField("addr", addr).Info("API listening")
	log.Fatal(http.ListenAndServe(addr, handler))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == "http://localhost:3000" || origin == "http://127.0.0.1:3000" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
