package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scout/internal/cache"
	"github.com/mrz1836/scout/internal/chain/rpc"
	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/ens"
	"github.com/mrz1836/scout/internal/metrics"
	"github.com/mrz1836/scout/internal/output"
	"github.com/mrz1836/scout/internal/search"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

func TestNewCommandContext(t *testing.T) {
	setupTestEnv(t, output.FormatText)

	cc := NewCommandContext(cfg, logger, formatter)
	assert.Same(t, cfg, cc.Config)
	assert.Same(t, logger, cc.Logger)
	assert.Same(t, formatter, cc.Formatter)
	assert.Same(t, metrics.Global, cc.Metrics)
	assert.NotNil(t, cc.Names)

	m := &metrics.Metrics{}
	assert.Same(t, m, cc.WithMetrics(m).Metrics)
}

func TestCommandContext_NameServiceBuiltOnce(t *testing.T) {
	setupTestEnv(t, output.FormatText)

	builds := 0
	stub := newStubNames()
	cc := NewCommandContext(cfg, logger, formatter).WithNameServiceFactory(
		func(ConfigProvider, *metrics.Metrics) (search.NameService, error) {
			builds++
			return stub, nil
		})

	first, err := cc.NameService()
	require.NoError(t, err)
	second, err := cc.NameService()
	require.NoError(t, err)

	assert.Equal(t, 1, builds)
	assert.Same(t, first, second)
	assert.IsType(t, &cache.CachedNameService{}, first)
}

func TestCommandContext_NameServiceWithoutCache(t *testing.T) {
	setupTestEnv(t, output.FormatText)
	cfg.Cache.Enabled = false
	stub := newStubNames()
	withNames(t, stub)

	cc := NewCommandContext(cfg, logger, formatter)
	names, err := cc.NameService()
	require.NoError(t, err)
	assert.Same(t, stub, names)
	require.NoError(t, cc.Close())
	assert.NoFileExists(t, cfg.CachePath())
}

func TestCommandContext_ClosePersistsCache(t *testing.T) {
	setupTestEnv(t, output.FormatText)
	withNames(t, newStubNames())

	cc := NewCommandContext(cfg, logger, formatter)
	names, err := cc.NameService()
	require.NoError(t, err)

	_, err = names.ForwardResolve(context.Background(), testName)
	require.NoError(t, err)
	require.NoError(t, cc.Close())

	lc, err := cache.NewFileStorage(cfg.CachePath()).Load()
	require.NoError(t, err)
	entry, ok, _ := lc.Get(cache.MethodForward, testName)
	require.True(t, ok)
	assert.Equal(t, testAddress, entry.Value)
}

func TestNewENSNameService(t *testing.T) {
	t.Run("requires an endpoint", func(t *testing.T) {
		c := config.Defaults()
		c.Network.RPC = "  "

		_, err := newENSNameService(c, nil)
		require.ErrorIs(t, err, rpc.ErrEndpointRequired)
		assert.Equal(t, scouterr.ExitConfig, scouterr.ExitCode(err))
	})

	t.Run("builds an ENS client", func(t *testing.T) {
		names, err := newENSNameService(config.Defaults(), &metrics.Metrics{})
		require.NoError(t, err)
		assert.IsType(t, &ens.Client{}, names)
	})

	t.Run("rejects a bad registry", func(t *testing.T) {
		c := config.Defaults()
		c.Network.Registry = "not-an-address"

		_, err := newENSNameService(c, nil)
		require.Error(t, err)
	})
}

func TestCommandTimeout(t *testing.T) {
	c := config.Defaults()
	c.Network.TimeoutSeconds = 2
	c.Network.RetryAttempts = 3
	assert.Equal(t, 36*time.Second, commandTimeout(c))

	c.Network.RetryAttempts = 0
	assert.Equal(t, 12*time.Second, commandTimeout(c))

	c.Network.TimeoutSeconds = 0
	assert.Zero(t, commandTimeout(c))
}
