package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/scout/internal/output"
	"github.com/mrz1836/scout/internal/search"
)

// whoisCmd resolves many inputs concurrently without touching the route.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var whoisCmd = &cobra.Command{
	Use:   "whois <input>...",
	Short: "Resolve identities for many addresses or names",
	Long: `Resolve each input to an identity without navigating. Addresses are
reverse-resolved to their primary name, names are forward-resolved to their
address, and the avatar is looked up for every name found.

Lookups run concurrently, bounded by search.concurrency. A failed input is
reported in its own row and does not stop the others.

Example:
  scout whois vitalik.eth nick.eth
  scout whois 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045 -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWhois,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(whoisCmd)
}

// whoisRow is the identity found for one input.
type whoisRow struct {
	Input    string          `json:"input"`
	Kind     search.Kind     `json:"kind"`
	Identity search.Identity `json:"identity"`
	Error    string          `json:"error,omitempty"`
}

type whoisView []whoisRow

// RenderText writes the rows as a table.
func (v whoisView) RenderText(w io.Writer) error {
	t := output.NewTable("INPUT", "KIND", "ADDRESS", "NAME", "AVATAR")
	for _, row := range v {
		address, name, avatar := dash(row.Identity.Address), dash(row.Identity.Name), dash(row.Identity.Avatar)
		if row.Error != "" {
			name = "error: " + row.Error
		}
		t.AddRow(row.Input, row.Kind.String(), address, name, avatar)
	}
	return t.Render(w)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runWhois(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cfg, logger, formatter)
	defer func() { _ = cc.Close() }()

	names, err := cc.NameService()
	if err != nil {
		return err
	}
	resolver := search.NewIdentityResolver(names, cc.Logger, cc.Metrics, cc.Config.LookupTimeout())

	ctx, cancel := contextWithTimeout(cmd, commandTimeout(cc.Config))
	defer cancel()

	view, err := resolveAll(ctx, resolver, args, cc.Config.Search.Concurrency)
	if err != nil {
		return err
	}
	return cc.Formatter.Print(view)
}

// resolveAll resolves every input with at most limit lookups in flight.
// Per-input failures are kept in their rows; only cancellation fails the batch.
func resolveAll(ctx context.Context, resolver *search.IdentityResolver, inputs []string, limit int) (whoisView, error) {
	view := make(whoisView, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, input := range inputs {
		g.Go(func() error {
			c := search.Classify(input)
			id, err := resolver.Resolve(gctx, c, nil)
			if c.Kind == search.KindAddress {
				id.Address = c.Value
			}
			view[i] = whoisRow{Input: input, Kind: c.Kind, Identity: id}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				view[i].Error = output.NewErrorDetail(err).Message
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}
