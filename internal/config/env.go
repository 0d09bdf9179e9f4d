package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string

	DatabaseURL string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	AIProvider    string // "gemini" or "openai"
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	EmbedModel    string
	GenModel      string
	EmbedDim      int

	ChunkSize           int
	ChunkOverlap        int
	ItemTokenLimit      int
	RequestTokenBudget  int
	SignedURLTTLSeconds int

	TopK          int
	MinSimilarity float64

	EmbedCacheSize       int
	EmbedCacheTTLMinutes int

	RecordingWorkers int
	CleanupCron      string
}

// LoadConfig reads the environment (optionally seeded from .env) and returns
// the runtime configuration.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "classpark-materials"),

		AIProvider:    getEnv("AI_PROVIDER", "gemini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		EmbedModel:    getEnv("EMBED_MODEL", ""),
		GenModel:      getEnv("GEN_MODEL", ""),
		EmbedDim:      getEnvInt("EMBED_DIM", 1536),

		ChunkSize:           getEnvInt("CHUNK_SIZE", 1200),
		ChunkOverlap:        getEnvInt("CHUNK_OVERLAP", 200),
		ItemTokenLimit:      getEnvInt("ITEM_TOKEN_LIMIT", 8000),
		RequestTokenBudget:  getEnvInt("REQUEST_TOKEN_BUDGET", 250000),
		SignedURLTTLSeconds: getEnvInt("SIGNED_URL_TTL_SECONDS", 300),

		TopK:          getEnvInt("RETRIEVAL_TOP_K", 6),
		MinSimilarity: getEnvFloat("RETRIEVAL_MIN_SIMILARITY", 0.2),

		EmbedCacheSize:       getEnvInt("EMBED_CACHE_SIZE", 2048),
		EmbedCacheTTLMinutes: getEnvInt("EMBED_CACHE_TTL_MINUTES", 60),

		RecordingWorkers: getEnvInt("RECORDING_WORKERS", 2),
		CleanupCron:      getEnv("CLEANUP_CRON", "17 * * * *"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return f
}
