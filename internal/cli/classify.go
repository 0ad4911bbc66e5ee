package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/output"
	"github.com/mrz1836/scout/internal/search"
)

// classifyCmd prints how inputs would be searched, without any lookups.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var classifyCmd = &cobra.Command{
	Use:   "classify <input>...",
	Short: "Show how inputs would be searched",
	Long: `Classify each input as a transaction hash, an address, or an ENS name and
show the explorer path it maps to. No network requests are made, so names are
reported as names even if they would not resolve.

Example:
  scout classify vitalik.eth 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(classifyCmd)
}

// classifyRow is one classified input.
type classifyRow struct {
	Input string      `json:"input"`
	Kind  search.Kind `json:"kind"`
	Path  string      `json:"path,omitempty"`
}

type classifyView []classifyRow

// RenderText writes the rows as a table.
func (v classifyView) RenderText(w io.Writer) error {
	t := output.NewTable("INPUT", "KIND", "PATH")
	for _, row := range v {
		path := row.Path
		if path == "" {
			path = "-"
		}
		t.AddRow(row.Input, row.Kind.String(), path)
	}
	return t.Render(w)
}

func runClassify(_ *cobra.Command, args []string) error {
	nav := search.NewNavigator(cfg.GetRoutePrefix(), nil)

	view := make(classifyView, 0, len(args))
	for _, arg := range args {
		c := search.Classify(arg)
		row := classifyRow{Input: arg, Kind: c.Kind}
		if path, ok := nav.Path(c.Kind, c.Value); ok {
			row.Path = path
		}
		view = append(view, row)
	}
	return formatter.Print(view)
}
