package cli

import (
	"time"

	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/output"
	"github.com/mrz1836/scout/internal/search"
)

// Compile-time interface checks.
var (
	_ ConfigProvider    = (*config.Config)(nil)
	_ LogWriter         = (*config.Logger)(nil)
	_ search.LogWriter  = (*config.Logger)(nil)
	_ search.AttrLogger = (*config.Logger)(nil)
	_ FormatProvider    = (*output.Formatter)(nil)
)

// ConfigProvider provides read access to configuration values.
// This interface enables mocking configuration in tests.
type ConfigProvider interface {
	// GetHome returns the scout home directory path.
	GetHome() string

	// GetNetwork returns the Ethereum network settings.
	GetNetwork() config.NetworkConfig

	// GetAvatar returns the avatar gateway settings.
	GetAvatar() config.AvatarConfig

	// GetRoutePrefix returns the explorer route prefix.
	GetRoutePrefix() string

	// RequestTimeout returns the HTTP timeout for a single RPC request.
	RequestTimeout() time.Duration

	// LookupTimeout returns the per-lookup timeout, zero meaning none.
	LookupTimeout() time.Duration

	// GetLoggingLevel returns the configured logging level.
	GetLoggingLevel() string

	// GetOutputFormat returns the default output format.
	GetOutputFormat() string

	// IsVerbose returns true if verbose output is enabled.
	IsVerbose() bool
}

// LogWriter provides logging capabilities.
// This interface enables mocking logging in tests.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)

	// Close closes the logger and releases resources.
	Close() error
}

// FormatProvider provides output format information.
// This interface enables mocking output formatting in tests.
type FormatProvider interface {
	// Format returns the current output format.
	Format() output.Format
}
