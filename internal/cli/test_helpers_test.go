package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/metrics"
	"github.com/mrz1836/scout/internal/output"
	"github.com/mrz1836/scout/internal/search"
)

const (
	testAddress = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	testName    = "vitalik.eth"
	testAvatar  = "https://euc.li/vitalik.eth"
	testTxHash  = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
)

// setupTestEnv points the CLI globals at a temporary home and returns the
// buffer the formatter writes to. The previous globals are restored on cleanup.
func setupTestEnv(t *testing.T, format output.Format) *bytes.Buffer {
	t.Helper()

	origCfg := cfg
	origLogger := logger
	origFormatter := formatter
	origNames := defaultNameServices
	t.Cleanup(func() {
		cfg = origCfg
		logger = origLogger
		formatter = origFormatter
		defaultNameServices = origNames
	})

	testCfg := config.Defaults()
	testCfg.Home = t.TempDir()
	testCfg.Search.SettleDelayMS = 0
	cfg = testCfg

	logger = config.NullLogger()

	var buf bytes.Buffer
	formatter = output.NewFormatter(format, &buf)
	return &buf
}

// withNames makes new command contexts use names instead of an RPC-backed service.
func withNames(t *testing.T, names search.NameService) {
	t.Helper()
	orig := defaultNameServices
	t.Cleanup(func() { defaultNameServices = orig })
	defaultNameServices = func(ConfigProvider, *metrics.Metrics) (search.NameService, error) {
		return names, nil
	}
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

// stubNames answers lookups from fixed records.
type stubNames struct {
	forward map[string]string
	reverse map[string]string
	avatars map[string]string
	err     error

	mu    sync.Mutex
	calls []string
}

func newStubNames() *stubNames {
	return &stubNames{
		forward: map[string]string{testName: testAddress},
		reverse: map[string]string{strings.ToLower(testAddress): testName},
		avatars: map[string]string{testName: testAvatar},
	}
}

func (s *stubNames) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubNames) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubNames) ForwardResolve(_ context.Context, name string) (string, error) {
	s.record("forward:" + name)
	if s.err != nil {
		return "", s.err
	}
	return s.forward[name], nil
}

func (s *stubNames) ReverseResolve(_ context.Context, address string) (string, error) {
	s.record("reverse:" + address)
	if s.err != nil {
		return "", s.err
	}
	return s.reverse[strings.ToLower(address)], nil
}

func (s *stubNames) ResolveAvatar(_ context.Context, name string) (string, error) {
	s.record("avatar:" + name)
	if s.err != nil {
		return "", s.err
	}
	return s.avatars[name], nil
}
