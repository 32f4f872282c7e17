package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngineConfigDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewEngineConfigHolder(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig(), holder.Get())
}

func TestEngineConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := []byte("engine:\n  ambienceWindow: 7\n  ratingWindow: 10\n  hotIdleTimeout: 10m\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engine.yml"), content, 0o600))

	holder, err := NewEngineConfigHolder(zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 7, cfg.AmbienceWindow)
	assert.Equal(t, 10, cfg.RatingWindow)
	assert.Equal(t, 10*time.Minute, cfg.HotIdleTimeout)
	assert.Equal(t, 100, cfg.CatalogLimit)
}

func TestEngineConfigRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engine.yml"), []byte("engine:\n  ambienceWindow: 0\n"), 0o600))

	_, err := NewEngineConfigHolder(zap.NewNop())
	assert.Error(t, err)
}

func TestEngineConfigBoundsAmbienceWindow(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engine.yml"), []byte("engine:\n  ambienceWindow: 8\n"), 0o600))

	_, err := NewEngineConfigHolder(zap.NewNop())
	assert.Error(t, err)

	holder := NewStaticEngineConfigHolder(DefaultEngineConfig())
	cfg := DefaultEngineConfig()
	cfg.AmbienceWindow = MaxAmbienceWindow + 1
	assert.Error(t, holder.Set(cfg))
	assert.Equal(t, MaxAmbienceWindow, holder.Get().AmbienceWindow)

	cfg.AmbienceWindow = 3
	require.NoError(t, holder.Set(cfg))
	assert.Equal(t, 3, holder.Get().AmbienceWindow)
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "REDIS")
	t.Setenv("CATALOG_ENABLED", "yes")
	t.Setenv("DEMO_LAT", "47.2186")

	cfg := Load()
	assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
	assert.True(t, cfg.Catalog.Enabled)
	assert.InDelta(t, 47.2186, cfg.Demo.Lat, 1e-9)
	assert.Equal(t, "Paris", cfg.Demo.City)
}
