package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 150_000, cfg.Fetch.MaxChars)
	assert.Equal(t, 4, cfg.Fetch.MaxConcurrency)
	assert.Equal(t, 1500, cfg.Chunk.MaxChunkSize)
	assert.Equal(t, 200, cfg.Chunk.OverlapSize)
	assert.Equal(t, "hash", cfg.Embed.Provider)
	assert.Equal(t, 1536, cfg.Embed.Dimensions)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VESTOR_STORE_DRIVER", "sqlite")
	t.Setenv("VESTOR_FETCH_MAX_CHARS", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 5000, cfg.Fetch.MaxChars)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
}
