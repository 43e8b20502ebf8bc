package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "https://api.linkcut.io", cfg.BaseURL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, time.Minute, cfg.RefreshMargin)
	require.Empty(t, cfg.StatePath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LINKCUT_API_URL", "http://localhost:8080")
	t.Setenv("LINKCUT_ACCESS_TTL", "5m")
	t.Setenv("LINKCUT_REFRESH_MARGIN", "30s")
	t.Setenv("LINKCUT_STATE_PATH", "/tmp/linkcut.json")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8080", cfg.BaseURL)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 30*time.Second, cfg.RefreshMargin)
	require.Equal(t, "/tmp/linkcut.json", cfg.StatePath)
}

func TestRefreshPeriod(t *testing.T) {
	c := Config{AccessTTL: 15 * time.Minute, RefreshMargin: time.Minute}
	require.Equal(t, 14*time.Minute, c.RefreshPeriod())

	// margin swallowing the TTL falls back to half the lifetime
	c = Config{AccessTTL: 30 * time.Second, RefreshMargin: time.Minute}
	require.Equal(t, 15*time.Second, c.RefreshPeriod())
}
