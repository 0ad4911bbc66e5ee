// Package config provides configuration management for Scout.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/scout/internal/fileutil"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version int           `yaml:"version"`
	Home    string        `yaml:"home"`
	Network NetworkConfig `yaml:"network"`
	Search  SearchConfig  `yaml:"search"`
	Avatar  AvatarConfig  `yaml:"avatar"`
	Cache   CacheConfig   `yaml:"cache"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// NetworkConfig defines the Ethereum endpoint used for name resolution.
type NetworkConfig struct {
	RPC            string   `yaml:"rpc"`
	FallbackRPCs   []string `yaml:"fallback_rpcs,omitempty"`
	ChainID        int      `yaml:"chain_id"`
	Registry       string   `yaml:"registry"`
	RequestsPerSec float64  `yaml:"requests_per_second"`
	Burst          int      `yaml:"burst"`
	RetryAttempts  int      `yaml:"retry_attempts"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	VerifyReverse  bool     `yaml:"verify_reverse"`
}

// SearchConfig defines explorer routing and search behavior.
type SearchConfig struct {
	RoutePrefix          string `yaml:"route_prefix"`
	SettleDelayMS        int    `yaml:"settle_delay_ms"`
	LookupTimeoutSeconds int    `yaml:"lookup_timeout_seconds"`
	ExternalExplorer     string `yaml:"external_explorer"`
	Concurrency          int    `yaml:"concurrency"`
}

// AvatarConfig defines the gateways used to turn avatar records into fetchable URLs.
type AvatarConfig struct {
	IPFSGateway    string `yaml:"ipfs_gateway"`
	ArweaveGateway string `yaml:"arweave_gateway"`
}

// CacheConfig defines lookup cache settings.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	File       string `yaml:"file"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, scouterr.WithCause(scouterr.ErrConfigInvalid, err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), fileutil.DirPermissions); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Validate checks the configuration for values the resolver cannot work with.
func (c *Config) Validate() error {
	if err := ValidateRPCURL(c.Network.RPC); err != nil {
		return scouterr.WithDetails(scouterr.WithCause(scouterr.ErrConfigInvalid, err), map[string]string{
			"field": "network.rpc",
		})
	}
	if !strings.HasPrefix(c.Search.RoutePrefix, "/") || !strings.HasSuffix(c.Search.RoutePrefix, "/") {
		return scouterr.WithSuggestion(
			scouterr.WithDetails(scouterr.ErrConfigInvalid, map[string]string{
				"field": "search.route_prefix",
				"value": c.Search.RoutePrefix,
			}),
			"route prefix must start and end with '/', e.g. /explorer/",
		)
	}
	if c.Search.SettleDelayMS < 0 || c.Search.LookupTimeoutSeconds < 0 {
		return scouterr.WithDetails(scouterr.ErrConfigInvalid, map[string]string{
			"field": "search",
		})
	}
	return nil
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	if xdg.Home == "" {
		return path
	}
	return filepath.Join(xdg.Home, path[2:])
}

// GetHome returns the scout home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetETHRPC returns the Ethereum RPC URL.
func (c *Config) GetETHRPC() string {
	return c.Network.RPC
}

// GetETHFallbackRPCs returns the fallback Ethereum RPC URLs.
func (c *Config) GetETHFallbackRPCs() []string {
	return c.Network.FallbackRPCs
}

// GetNetwork returns the Ethereum network settings.
func (c *Config) GetNetwork() NetworkConfig {
	return c.Network
}

// GetAvatar returns the avatar gateway settings.
func (c *Config) GetAvatar() AvatarConfig {
	return c.Avatar
}

// GetRoutePrefix returns the explorer route prefix.
func (c *Config) GetRoutePrefix() string {
	return c.Search.RoutePrefix
}

// SettleDelay returns the delay before loading ends on a no-op navigation.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Search.SettleDelayMS) * time.Millisecond
}

// LookupTimeout returns the per-lookup timeout, zero meaning none.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.Search.LookupTimeoutSeconds) * time.Second
}

// RequestTimeout returns the HTTP timeout for a single RPC request.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Network.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached lookups remain fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// CachePath returns the resolved lookup cache file path.
func (c *Config) CachePath() string {
	if c.Cache.File != "" {
		return ExpandHome(c.Cache.File)
	}
	return filepath.Join(ExpandHome(c.Home), "cache", "lookups.json")
}

// RoutePath returns the file that persists the CLI's current explorer route.
func (c *Config) RoutePath() string {
	return filepath.Join(ExpandHome(c.Home), "route.json")
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default scout home directory.
func DefaultHome() string {
	return filepath.Join(xdg.Home, ".scout")
}
