package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/classpark")

	cfg := LoadConfig()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "gemini", cfg.AIProvider)
	require.Equal(t, 1536, cfg.EmbedDim)
	require.Equal(t, 1200, cfg.ChunkSize)
	require.Equal(t, 200, cfg.ChunkOverlap)
	require.Equal(t, 8000, cfg.ItemTokenLimit)
	require.Equal(t, 250000, cfg.RequestTokenBudget)
	require.Equal(t, 6, cfg.TopK)
	require.InDelta(t, 0.2, cfg.MinSimilarity, 1e-9)
	require.Equal(t, 2, cfg.RecordingWorkers)
	require.Equal(t, "17 * * * *", cfg.CleanupCron)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/classpark")
	t.Setenv("PORT", "9090")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("CHUNK_SIZE", "800")
	t.Setenv("RETRIEVAL_MIN_SIMILARITY", "0.35")

	cfg := LoadConfig()
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "openai", cfg.AIProvider)
	require.Equal(t, 800, cfg.ChunkSize)
	require.InDelta(t, 0.35, cfg.MinSimilarity, 1e-9)
}

func TestGetEnvInt_BadValueFallsBack(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	require.Equal(t, 1200, getEnvInt("CHUNK_SIZE", 1200))
}
