// Package cli implements the Scout command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/metrics"
	"github.com/mrz1836/scout/internal/output"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter

	buildInfo BuildInfo
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Search an Ethereum explorer by transaction, address, or ENS name",
	Long: `Scout classifies what you type into an explorer search bar, resolves it to an
on-chain identity, and tells you which explorer page it belongs on.

Transaction hashes go straight to their page. Addresses are reverse-resolved to
their primary ENS name and avatar. ENS names are forward-resolved to an address
first. Scout remembers the page you are on, so searching for it again is a no-op.

Example:
  scout search vitalik.eth
  scout search 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045
  scout whois vitalik.eth nick.eth 0xb8c2C29ee19D8307cb7255e1Cd9CbDE883A267d5
  scout shell`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		reportMetrics(cmd.ErrOrStderr())
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return scouterr.ExitCode(err)
}

// SetBuildInfo records version details shown by --version.
func SetBuildInfo(info BuildInfo) {
	buildInfo = info
	rootCmd.Version = formatVersion(info)
}

func formatVersion(info BuildInfo) string {
	v, commit, date := info.Version, info.Commit, info.Date
	if v == "" {
		v = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, date)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(home))
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Defaults()
		cfg.Home = home
	default:
		return scouterr.WithSuggestion(err, "fix or remove "+config.Path(home))
	}

	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, config.ExpandHome(cfg.Logging.File))
	if err != nil {
		// Logging is best effort.
		logger = config.NullLogger()
	}
	logger.SetJSONOutput(cfg.Logging.JSON)

	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	formatter = output.NewFormatter(output.DetectFormat(os.Stdout, explicitFormat), os.Stdout)
	formatter.SetColor(cfg.Output.Color)

	return nil
}

// reportMetrics logs the run's counters and, in verbose mode, prints a summary.
func reportMetrics(w io.Writer) {
	if cfg == nil || logger == nil {
		return
	}
	snap := metrics.Global.Snapshot()
	logger.Debug("metrics: searches=%d lookups=%d lookup_errors=%d rpc_calls=%d rpc_errors=%d cache_hits=%d cache_misses=%d",
		snap.SearchesTotal, snap.LookupsTotal, snap.LookupErrorsTotal,
		snap.RPCCallsTotal, snap.RPCErrorsTotal, snap.CacheHits, snap.CacheMisses)

	if cfg.IsVerbose() && snap.RPCCallsTotal+snap.CacheHits > 0 {
		output.Info(w, "%d RPC calls (avg %.1fms, %d errors), cache hit rate %.0f%%",
			snap.RPCCallsTotal, snap.RPCLatencyAvgMs, snap.RPCErrorsTotal, snap.CacheHitRatePercent)
	}
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "scout data directory (default: ~/.scout)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	SetBuildInfo(BuildInfo{})
}
