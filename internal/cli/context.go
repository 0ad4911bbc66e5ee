package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/scout/internal/cache"
	"github.com/mrz1836/scout/internal/chain"
	"github.com/mrz1836/scout/internal/chain/rpc"
	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/ens"
	"github.com/mrz1836/scout/internal/metrics"
	"github.com/mrz1836/scout/internal/output"
	"github.com/mrz1836/scout/internal/route"
	"github.com/mrz1836/scout/internal/search"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

// NameServiceFactory builds the name service for a configuration.
type NameServiceFactory func(c ConfigProvider, m *metrics.Metrics) (search.NameService, error)

// defaultNameServices builds the name service for new command contexts.
//
//nolint:gochecknoglobals // Replaced in tests to avoid network access
var defaultNameServices NameServiceFactory = newENSNameService

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Config    *config.Config
	Logger    *config.Logger
	Formatter *output.Formatter
	Metrics   *metrics.Metrics
	Names     NameServiceFactory

	names        search.NameService
	lookupCache  *cache.LookupCache
	cacheStorage *cache.FileStorage
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) *CommandContext {
	return &CommandContext{
		Config:    cfg,
		Logger:    logger,
		Formatter: formatter,
		Metrics:   metrics.Global,
		Names:     defaultNameServices,
	}
}

// WithNameServiceFactory replaces how the name service is built.
func (c *CommandContext) WithNameServiceFactory(f NameServiceFactory) *CommandContext {
	c.Names = f
	return c
}

// WithMetrics sets the metrics sink.
func (c *CommandContext) WithMetrics(m *metrics.Metrics) *CommandContext {
	c.Metrics = m
	return c
}

// NameService returns the name service, wrapped in the lookup cache when
// caching is enabled. It is built once per context.
func (c *CommandContext) NameService() (search.NameService, error) {
	if c.names != nil {
		return c.names, nil
	}

	names, err := c.Names(c.Config, c.Metrics)
	if err != nil {
		return nil, err
	}

	if c.Config.Cache.Enabled {
		c.cacheStorage = cache.NewFileStorage(c.Config.CachePath())
		c.lookupCache, err = c.cacheStorage.Load()
		if errors.Is(err, cache.ErrCorruptCache) {
			c.Logger.Error("lookup cache reset: %v", err)
		} else if err != nil {
			return nil, err
		}
		names = cache.NewCachedNameService(names, c.lookupCache, c.Config.CacheTTL(), c.Metrics)
	}

	c.names = names
	return names, nil
}

// Router opens the router whose route is persisted under the home directory.
func (c *CommandContext) Router() (*route.FileRouter, error) {
	return route.NewFileRouter(c.Config.RoutePath(), c.Config.GetRoutePrefix())
}

// NewSession creates a search session wired to router and the name service.
func (c *CommandContext) NewSession(router *route.FileRouter) (*search.Session, error) {
	names, err := c.NameService()
	if err != nil {
		return nil, err
	}

	session := search.NewSession(names, router, search.Options{
		RoutePrefix:   c.Config.GetRoutePrefix(),
		SettleDelay:   c.Config.SettleDelay(),
		LookupTimeout: c.Config.LookupTimeout(),
		Logger:        c.Logger,
		Recorder:      c.Metrics,
	})
	router.Subscribe(session.RouteChanged)
	return session, nil
}

// Close persists the lookup cache.
func (c *CommandContext) Close() error {
	if c.cacheStorage == nil || c.lookupCache == nil {
		return nil
	}
	if err := c.cacheStorage.Save(c.lookupCache); err != nil {
		c.Logger.Error("saving lookup cache: %v", err)
		return err
	}
	return nil
}

// newENSNameService resolves names against the configured Ethereum endpoint.
func newENSNameService(c ConfigProvider, m *metrics.Metrics) (search.NameService, error) {
	network := c.GetNetwork()
	if strings.TrimSpace(network.RPC) == "" {
		return nil, scouterr.WithSuggestion(rpc.ErrEndpointRequired,
			fmt.Sprintf("set network.rpc in the config file or %s", config.EnvETHRPC))
	}

	client, err := rpc.NewClient(network.RPC,
		rpc.WithTimeout(c.RequestTimeout()),
		rpc.WithRateLimiter(chain.NewRateLimiter(network.RequestsPerSec, network.Burst)),
		rpc.WithRetry(chain.RetryConfig{
			MaxAttempts: network.RetryAttempts,
			BaseDelay:   chain.DefaultRetryConfig().BaseDelay,
			MaxDelay:    chain.DefaultRetryConfig().MaxDelay,
		}),
		rpc.WithFallbacks(network.FallbackRPCs...),
		rpc.WithObserver(m.RecordRPCCall),
	)
	if err != nil {
		return nil, err
	}

	avatar := c.GetAvatar()
	names, err := ens.NewClient(client, ens.Options{
		Registry:      network.Registry,
		VerifyReverse: network.VerifyReverse,
		Gateways: ens.Gateways{
			IPFS:    avatar.IPFSGateway,
			Arweave: avatar.ArweaveGateway,
		},
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
