package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything tunable from the environment. The retrieval and
// routing knobs (top-K, relevance floor, routing threshold, history bound)
// are deliberately configuration rather than constants.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	LogLevel    string

	GeminiAPIKey string
	ChatModel    string
	EmbedModel   string
	EmbedDim     int

	TopK           int
	RelevanceFloor float64
	RouteThreshold float64
	HistoryLimit   int

	RequestTimeout  time.Duration
	ProviderTimeout time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey: apiKey,
		ChatModel:    getEnv("CHAT_MODEL", "gemini-2.5-flash"),
		EmbedModel:   getEnv("EMBED_MODEL", "models/text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),

		TopK:           getEnvInt("TOP_K", 5),
		RelevanceFloor: getEnvFloat("RELEVANCE_FLOOR", 0.25),
		RouteThreshold: getEnvFloat("ROUTE_THRESHOLD", 0.4),
		HistoryLimit:   getEnvInt("HISTORY_LIMIT", 10),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT_SECS", 30*time.Second),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT_SECS", 15*time.Second),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}
