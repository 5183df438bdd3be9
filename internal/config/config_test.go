package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "DB_PATH", "DATABASE_URL", "REDIS_URL", "CACHE_TTL", "SEED_PATH", "LOG_LEVEL",
	"SEASON_YEAR", "OPTIMIZER_MAX_ATTEMPTS", "OPTIMIZER_STAGNATION_THRESHOLD",
	"OPTIMIZER_YIELD_INTERVAL", "OPTIMIZER_RADIUS_STEP", "OPTIMIZER_MAX_RADIUS",
	"OPTIMIZER_SEED", "OPTIMIZER_WRAP_AROUND",
}

// clearEnv blanks every variable Load reads; Get treats blank as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestGet(t *testing.T) {
	t.Setenv("ROUTE_TEST_KEY", "  value ")
	assert.Equal(t, "value", Get("ROUTE_TEST_KEY", "fallback"))

	t.Setenv("ROUTE_TEST_KEY", "   ")
	assert.Equal(t, "fallback", Get("ROUTE_TEST_KEY", "fallback"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
redis_url: redis://localhost:6379/0
cache_ttl: 90s
season_year: 2027
optimizer:
  radius_step: 25
  max_attempts: 40
  wrap_around: true
`), 0o600))

	t.Setenv("PORT", "7070")
	t.Setenv("OPTIMIZER_SEED", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2027, cfg.SeasonYear)
	assert.Equal(t, 25.0, cfg.Optimizer.RadiusStep)
	assert.Equal(t, 40, cfg.Optimizer.MaxAttempts)
	assert.True(t, cfg.Optimizer.WrapAround)
	assert.Equal(t, int64(42), cfg.Optimizer.Seed)
	assert.Equal(t, "data/app.db", cfg.DBPath)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: [1, 2"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("CACHE_TTL", "soon")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("CACHE_TTL", "-1s")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("CACHE_TTL", "")
	t.Setenv("OPTIMIZER_MAX_ATTEMPTS", "many")
	_, err = Load("")
	assert.Error(t, err)
}
