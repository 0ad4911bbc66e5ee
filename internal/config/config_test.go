package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scout/internal/config"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := config.Defaults()
	cfg.Network.RPC = "https://mainnet.infura.io/v3/YOUR-KEY"
	cfg.Search.RoutePrefix = "/scan/"
	cfg.Output.Verbose = true

	require.NoError(t, config.Save(cfg, path))

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Version, loaded.Version)
	assert.Equal(t, cfg.Network.RPC, loaded.Network.RPC)
	assert.Equal(t, "/scan/", loaded.Search.RoutePrefix)
	assert.True(t, loaded.Output.Verbose)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "~/.scout", cfg.Home)
	assert.Equal(t, config.DefaultETHRPCURL, cfg.Network.RPC)
	assert.Equal(t, config.DefaultENSRegistry, cfg.Network.Registry)
	assert.Equal(t, "/explorer/", cfg.Search.RoutePrefix)
	assert.Equal(t, 300*time.Millisecond, cfg.SettleDelay())
	assert.Zero(t, cfg.LookupTimeout())
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unclosed"), 0o600))

	_, err := config.Load(path)
	require.ErrorIs(t, err, scouterr.ErrConfigInvalid)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  settle_delay_ms: 0\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.SettleDelay())
	assert.Equal(t, "/explorer/", cfg.Search.RoutePrefix)
	assert.Equal(t, config.DefaultETHRPCURL, cfg.Network.RPC)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		ok     bool
	}{
		{"defaults", func(*config.Config) {}, true},
		{"local node", func(c *config.Config) { c.Network.RPC = "http://127.0.0.1:8545" }, true},
		{"remote http", func(c *config.Config) { c.Network.RPC = "http://node.example.com" }, false},
		{"prefix without slash", func(c *config.Config) { c.Search.RoutePrefix = "explorer" }, false},
		{"negative delay", func(c *config.Config) { c.Search.SettleDelayMS = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, scouterr.ErrConfigInvalid)
		})
	}
}

func TestPaths(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Home = "/tmp/scout-home"
	assert.Equal(t, "/tmp/scout-home/config.yaml", config.Path(cfg.Home))
	assert.Equal(t, "/tmp/scout-home/route.json", cfg.RoutePath())
	assert.Equal(t, "/tmp/scout-home/cache/lookups.json", cfg.CachePath())

	cfg.Cache.File = "/var/cache/scout.json"
	assert.Equal(t, "/var/cache/scout.json", cfg.CachePath())
}

func TestDefaultHome(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ".scout", filepath.Base(config.DefaultHome()))
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/etc/scout", config.ExpandHome("/etc/scout"))
	assert.Equal(t, "relative/path", config.ExpandHome("relative/path"))

	expanded := config.ExpandHome("~/logs/scout.log")
	assert.NotContains(t, expanded, "~")
	assert.Equal(t, "scout.log", filepath.Base(expanded))
}
