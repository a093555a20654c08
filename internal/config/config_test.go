package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 5, cfg.DBMaxIdleConns)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.Equal(t, 60, cfg.GameDurationSeconds)
	assert.Equal(t, 3, cfg.CountdownSeconds)
	assert.Equal(t, 5, cfg.MaxSearchDepth)
	assert.Equal(t, 3, cfg.SolutionPathCount)
	assert.Equal(t, 50, cfg.EndpointPickAttempts)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "40")
	t.Setenv("REDIS_POOL_SIZE", "4")
	t.Setenv("GAME_DURATION_SECONDS", "90")

	cfg := Load()

	assert.Equal(t, 40, cfg.DBMaxOpenConns)
	assert.Equal(t, 4, cfg.RedisPoolSize)
	assert.Equal(t, 90, cfg.GameDurationSeconds)
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("MAX_SEARCH_DEPTH", "not-a-number")

	assert.Equal(t, 5, Load().MaxSearchDepth)
}
