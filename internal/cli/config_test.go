package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/output"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

func TestGetConfigValue(t *testing.T) {
	testCfg := config.Defaults()
	testCfg.Home = "/test/home"
	testCfg.Output.DefaultFormat = "json"
	testCfg.Output.Verbose = true
	testCfg.Logging.Level = "debug"
	testCfg.Network.RPC = "https://eth.example.com"
	testCfg.Network.FallbackRPCs = []string{"https://a.example.com", "https://b.example.com"}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "home", path: "home", want: "/test/home"},
		{name: "unknown single key", path: "unknown", wantErr: true},
		{name: "output.default_format", path: "output.default_format", want: "json"},
		{name: "output.verbose", path: "output.verbose", want: "true"},
		{name: "logging.level", path: "logging.level", want: "debug"},
		{name: "network.rpc", path: "network.rpc", want: "https://eth.example.com"},
		{name: "network.chain_id", path: "network.chain_id", want: "1"},
		{name: "network.fallback_rpcs", path: "network.fallback_rpcs", want: "https://a.example.com,https://b.example.com"},
		{name: "search.route_prefix", path: "search.route_prefix", want: "/explorer/"},
		{name: "search.settle_delay_ms", path: "search.settle_delay_ms", want: "300"},
		{
			name: "section", path: "avatar",
			want: "ipfs_gateway: https://ipfs.io/ipfs/\narweave_gateway: https://arweave.net/",
		},
		{name: "unknown nested", path: "network.unknown", wantErr: true},
		{name: "path through scalar", path: "home.sub", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := getConfigValue(testCfg, tc.path)
			if tc.wantErr {
				require.ErrorIs(t, err, scouterr.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSetConfigValue(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		updated, err := setConfigValue(config.Defaults(), "search.route_prefix", "/eth/")
		require.NoError(t, err)
		assert.Equal(t, "/eth/", updated.Search.RoutePrefix)
	})

	t.Run("string that looks like a number", func(t *testing.T) {
		updated, err := setConfigValue(config.Defaults(), "logging.level", "0")
		require.NoError(t, err)
		assert.Equal(t, "0", updated.Logging.Level)
	})

	t.Run("int", func(t *testing.T) {
		updated, err := setConfigValue(config.Defaults(), "search.settle_delay_ms", "0")
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Search.SettleDelayMS)
	})

	t.Run("bool", func(t *testing.T) {
		updated, err := setConfigValue(config.Defaults(), "cache.enabled", "false")
		require.NoError(t, err)
		assert.False(t, updated.Cache.Enabled)
	})

	t.Run("list", func(t *testing.T) {
		updated, err := setConfigValue(config.Defaults(), "network.fallback_rpcs", "https://a.example.com, https://b.example.com")
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, updated.Network.FallbackRPCs)
	})

	t.Run("other values are kept", func(t *testing.T) {
		orig := config.Defaults()
		orig.Network.RPC = "https://eth.example.com"
		updated, err := setConfigValue(orig, "output.verbose", "true")
		require.NoError(t, err)
		assert.True(t, updated.Output.Verbose)
		assert.Equal(t, "https://eth.example.com", updated.Network.RPC)
		assert.False(t, orig.Output.Verbose, "original config is not modified")
	})

	t.Run("invalid int", func(t *testing.T) {
		_, err := setConfigValue(config.Defaults(), "network.chain_id", "mainnet")
		require.ErrorIs(t, err, scouterr.ErrInvalidInput)
	})

	t.Run("section", func(t *testing.T) {
		_, err := setConfigValue(config.Defaults(), "network", "x")
		require.ErrorIs(t, err, scouterr.ErrInvalidInput)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := setConfigValue(config.Defaults(), "network.nope", "x")
		require.ErrorIs(t, err, scouterr.ErrNotFound)
	})
}

func TestRunConfigInit(t *testing.T) {
	setupTestEnv(t, output.FormatText)
	cmd, buf := newTestCmd()

	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, buf.String(), "Configuration initialized")

	loaded, err := config.Load(config.Path(cfg.Home))
	require.NoError(t, err)
	assert.Equal(t, cfg.Home, loaded.Home)

	t.Run("refuses to overwrite", func(t *testing.T) {
		err := runConfigInit(cmd, nil)
		require.Error(t, err)
		var se *scouterr.ScoutError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Suggestion, "--force")
	})

	t.Run("force", func(t *testing.T) {
		configForce = true
		t.Cleanup(func() { configForce = false })
		require.NoError(t, runConfigInit(cmd, nil))
	})
}

func TestRunConfigShow_MasksCredentials(t *testing.T) {
	buf := setupTestEnv(t, output.FormatText)
	cfg.Network.RPC = "https://mainnet.infura.io/v3/0123456789abcdef0123"

	require.NoError(t, runConfigShow(nil, nil))
	assert.Contains(t, buf.String(), "rpc: https://mainnet.infura.io/v3/0123...")
	assert.NotContains(t, buf.String(), "0123456789abcdef0123")
	assert.Equal(t, "https://mainnet.infura.io/v3/0123456789abcdef0123", cfg.Network.RPC)
}

func TestRunConfigShow_JSON(t *testing.T) {
	buf := setupTestEnv(t, output.FormatJSON)

	require.NoError(t, runConfigShow(nil, nil))

	var shown map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &shown))
	search, ok := shown["search"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/explorer/", search["route_prefix"])
}

func TestRunConfigSet(t *testing.T) {
	setupTestEnv(t, output.FormatText)
	cmd, buf := newTestCmd()

	require.NoError(t, runConfigSet(cmd, []string{"search.settle_delay_ms", "0"}))
	assert.Equal(t, "Set search.settle_delay_ms = 0\n", buf.String())

	loaded, err := config.Load(config.Path(cfg.Home))
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Search.SettleDelayMS)
	assert.Equal(t, cfg.Home, loaded.Home)

	t.Run("rejects invalid config", func(t *testing.T) {
		err := runConfigSet(cmd, []string{"search.route_prefix", "explorer"})
		require.ErrorIs(t, err, scouterr.ErrConfigInvalid)

		reloaded, err := config.Load(config.Path(cfg.Home))
		require.NoError(t, err)
		assert.Equal(t, "/explorer/", reloaded.Search.RoutePrefix)
	})
}

func TestRunConfigPath(t *testing.T) {
	setupTestEnv(t, output.FormatText)
	cmd, buf := newTestCmd()

	require.NoError(t, configPathCmd.RunE(cmd, nil))
	assert.Equal(t, config.Path(cfg.Home)+"\n", buf.String())
}

func newChainIDServer(t *testing.T, chainID string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		_ = json.Unmarshal(body, &req)
		assert.Equal(t, "eth_chainId", req.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":"` + chainID + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunConfigCheck(t *testing.T) {
	t.Run("matching chain", func(t *testing.T) {
		setupTestEnv(t, output.FormatText)
		cfg.Network.RPC = newChainIDServer(t, "0x1").URL
		cmd, buf := newTestCmd()

		require.NoError(t, runConfigCheck(cmd, nil))
		assert.Contains(t, buf.String(), "reports chain ID 1")
	})

	t.Run("wrong chain", func(t *testing.T) {
		setupTestEnv(t, output.FormatText)
		cfg.Network.RPC = newChainIDServer(t, "0xaa36a7").URL
		cmd, _ := newTestCmd()

		err := runConfigCheck(cmd, nil)
		require.ErrorIs(t, err, scouterr.ErrConfigInvalid)
		var se *scouterr.ScoutError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "11155111", se.Details["actual"])
	})

	t.Run("unreachable", func(t *testing.T) {
		setupTestEnv(t, output.FormatText)
		srv := newChainIDServer(t, "0x1")
		cfg.Network.RPC = srv.URL
		srv.Close()
		cmd, _ := newTestCmd()

		err := runConfigCheck(cmd, nil)
		require.ErrorIs(t, err, scouterr.ErrNetworkError)
		assert.Equal(t, scouterr.ExitUnavailable, scouterr.ExitCode(err))
	})

	t.Run("invalid config", func(t *testing.T) {
		setupTestEnv(t, output.FormatText)
		cfg.Network.RPC = "http://rpc.example.com"
		cmd, _ := newTestCmd()

		require.ErrorIs(t, runConfigCheck(cmd, nil), scouterr.ErrConfigInvalid)
	})
}

func TestMaskedConfig(t *testing.T) {
	c := config.Defaults()
	c.Network.FallbackRPCs = []string{"https://user:pw@rpc.example.com/"}
	masked := maskedConfig(c)
	assert.Equal(t, []string{"https://redacted@rpc.example.com/"}, masked.Network.FallbackRPCs)
	assert.Equal(t, "https://user:pw@rpc.example.com/", c.Network.FallbackRPCs[0])
}
