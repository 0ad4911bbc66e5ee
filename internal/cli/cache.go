package cli

import (
	"errors"
	"io"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/cache"
	"github.com/mrz1836/scout/internal/output"
)

// cacheCmd is the parent command for lookup cache operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the lookup cache",
	Long: `Inspect or clear cached name service answers.

Forward, reverse, and avatar lookups are cached under the home directory for
cache.ttl_minutes. Answers without a record are cached too.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List cached lookups",
	Long: `List cached lookups with their age. With --match, only entries whose key
fuzzy-matches the pattern are shown, best match first.

Example:
  scout cache show
  scout cache show --match vtlk`,
	Args: cobra.NoArgs,
	RunE: runCacheShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached lookup",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stale cached lookups",
	Long: `Remove cached lookups older than cache.ttl_minutes, or --older-than.

Example:
  scout cache prune
  scout cache prune --older-than 1h`,
	Args: cobra.NoArgs,
	RunE: runCachePrune,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	cachePruneAge time.Duration
	cacheMatch    string
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	cacheShowCmd.Flags().StringVar(&cacheMatch, "match", "", "only show entries whose key fuzzy-matches this pattern")
	cachePruneCmd.Flags().DurationVar(&cachePruneAge, "older-than", 0, "maximum entry age (default: cache.ttl_minutes)")
}

// cacheEntryView is one cached lookup with its age.
type cacheEntryView struct {
	cache.Entry

	AgeSeconds int64 `json:"age_seconds"`
	Stale      bool  `json:"stale"`
}

type cacheView struct {
	Path    string           `json:"path"`
	Entries []cacheEntryView `json:"entries"`
}

// RenderText writes the entries as a table.
func (v cacheView) RenderText(w io.Writer) error {
	if len(v.Entries) == 0 {
		outln(w, "Cache is empty.")
		return nil
	}
	t := output.NewTable("METHOD", "KEY", "VALUE", "AGE")
	for _, e := range v.Entries {
		age := (time.Duration(e.AgeSeconds) * time.Second).String()
		if e.Stale {
			age += " (stale)"
		}
		t.AddRow(string(e.Method), e.Key, dash(e.Value), age)
	}
	return t.Render(w)
}

// loadLookupCache opens the cache file. A corrupt file is reset with a warning.
func loadLookupCache(w io.Writer) (*cache.FileStorage, *cache.LookupCache, error) {
	storage := cache.NewFileStorage(cfg.CachePath())
	lc, err := storage.Load()
	if errors.Is(err, cache.ErrCorruptCache) {
		output.Warn(w, "%v", err)
		return storage, lc, nil
	}
	return storage, lc, err
}

func runCacheShow(cmd *cobra.Command, _ []string) error {
	storage, lc, err := loadLookupCache(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ttl := cfg.CacheTTL()
	now := time.Now()
	view := cacheView{Path: storage.Path(), Entries: make([]cacheEntryView, 0, lc.Size())}
	for _, e := range matchEntries(lc.List(), cacheMatch) {
		age := now.Sub(e.UpdatedAt)
		view.Entries = append(view.Entries, cacheEntryView{
			Entry:      e,
			AgeSeconds: int64(age / time.Second),
			Stale:      ttl > 0 && age > ttl,
		})
	}
	return formatter.Print(view)
}

// entryKeys adapts cache entries to fuzzy.Source.
type entryKeys []cache.Entry

func (k entryKeys) String(i int) string { return k[i].Key }
func (k entryKeys) Len() int            { return len(k) }

// matchEntries keeps entries whose key fuzzy-matches pattern, best first.
func matchEntries(entries []cache.Entry, pattern string) []cache.Entry {
	if pattern == "" {
		return entries
	}
	matches := fuzzy.FindFrom(pattern, entryKeys(entries))
	matched := make([]cache.Entry, len(matches))
	for i, m := range matches {
		matched[i] = entries[m.Index]
	}
	return matched
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	storage := cache.NewFileStorage(cfg.CachePath())
	if err := storage.Delete(); err != nil {
		return err
	}
	logger.Debug("lookup cache cleared: %s", storage.Path())
	return output.FormatSuccess(cmd.OutOrStdout(), "Lookup cache cleared.", formatter.Format())
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	maxAge := cachePruneAge
	if maxAge <= 0 {
		maxAge = cfg.CacheTTL()
	}

	storage, lc, err := loadLookupCache(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	removed := lc.Prune(maxAge)
	if err := storage.Save(lc); err != nil {
		return err
	}
	logger.Debug("pruned %d cache entries older than %s", removed, maxAge)

	if formatter.IsJSON() {
		return formatter.Print(map[string]int{"removed": removed, "remaining": lc.Size()})
	}
	out(cmd.OutOrStdout(), "Removed %d stale entries, %d remaining.\n", removed, lc.Size())
	return nil
}
