package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Environment variable names.
const (
	EnvHome         = "SCOUT_HOME"
	EnvETHRPC       = "SCOUT_ETH_RPC"
	EnvOutputFormat = "SCOUT_OUTPUT_FORMAT"
	EnvVerbose      = "SCOUT_VERBOSE"
	EnvLogLevel     = "SCOUT_LOG_LEVEL"
	EnvRoutePrefix  = "SCOUT_ROUTE_PREFIX"
	EnvSettleDelay  = "SCOUT_SETTLE_DELAY_MS"
	EnvNoCache      = "SCOUT_NO_CACHE"
	EnvNoColor      = "NO_COLOR"
)

var (
	// ErrInsecureRPCURL indicates a plain-http RPC URL pointing at a remote host.
	ErrInsecureRPCURL = errors.New("RPC URL must use https or wss for remote hosts")

	// ErrUnsupportedScheme indicates an RPC URL scheme other than http(s)/ws(s).
	ErrUnsupportedScheme = errors.New("unsupported RPC URL scheme")
)

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvETHRPC); v != "" {
		cfg.Network.RPC = SanitizeURL(v)
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvRoutePrefix); v != "" {
		cfg.Search.RoutePrefix = v
	}

	if v := os.Getenv(EnvSettleDelay); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.Search.SettleDelayMS = ms
		}
	}

	if v := os.Getenv(EnvNoCache); v != "" && parseBool(v) {
		cfg.Cache.Enabled = false
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL trims whitespace and drops control and space characters left over
// from copy-pasting an RPC URL.
func SanitizeURL(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

// minSecretLength is the shortest URL path segment treated as an API key.
const minSecretLength = 16

// MaskURL hides credentials in an RPC URL for display. User info and query
// values are replaced and path segments that look like API keys are shortened.
func MaskURL(raw string) string {
	clean := SanitizeURL(raw)
	u, err := url.Parse(clean)
	if err != nil || u.Host == "" {
		return clean
	}

	if u.User != nil {
		u.User = url.User("redacted")
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			q.Set(k, "redacted")
		}
		u.RawQuery = q.Encode()
	}
	segments := strings.Split(u.Path, "/")
	for i, s := range segments {
		if len(s) >= minSecretLength {
			segments[i] = s[:4] + "..."
		}
	}
	u.Path = strings.Join(segments, "/")
	u.RawPath = ""
	return u.String()
}

// ValidateRPCURL accepts https/wss URLs, and http/ws only for loopback hosts.
// An empty URL is accepted so callers can fall back to defaults.
func ValidateRPCURL(raw string) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing RPC URL: %w", err)
	}

	switch u.Scheme {
	case "https", "wss":
		return nil
	case "http", "ws":
		if isLoopback(u.Hostname()) {
			return nil
		}
		return ErrInsecureRPCURL
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
