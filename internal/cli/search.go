package cli

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/ens"
	"github.com/mrz1836/scout/internal/output"
	"github.com/mrz1836/scout/internal/search"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var searchQR bool

// searchCmd runs one search cycle.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var searchCmd = &cobra.Command{
	Use:   "search <input>",
	Short: "Search for a transaction, address, or ENS name",
	Long: `Classify the input, resolve it to an on-chain identity, and move to its
explorer page.

Transaction hashes go to /explorer/tx/<hash> without any lookups. Addresses go
to /explorer/address/<address> and are reverse-resolved to a primary name and
avatar. ENS names are forward-resolved first; a name that does not resolve is
reported as invalid.

Searching for the page you are already on does not navigate again.

Example:
  scout search vitalik.eth
  scout search 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045 --qr
  scout search 0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchQR, "qr", false, "show the resolved address (or transaction hash) as a QR code")
}

// searchView is the printable result of a search.
type searchView struct {
	Input    string          `json:"input"`
	Kind     search.Kind     `json:"kind"`
	Outcome  search.Outcome  `json:"outcome"`
	Path     string          `json:"path,omitempty"`
	Identity search.Identity `json:"identity"`
	Display  string          `json:"display,omitempty"`
	Link     string          `json:"link,omitempty"`

	colors aurora.Aurora
}

// RenderText writes the view as aligned key/value lines.
func (v searchView) RenderText(w io.Writer) error {
	t := output.NewTable()
	t.SetNoHeader(true)
	t.AddRow("Kind:", v.Kind.String())
	t.AddRow("Outcome:", outcomeText(v.colors, v.Outcome))
	t.AddRow("Path:", v.Path)
	if v.Identity.Address != "" {
		t.AddRow("Address:", v.Identity.Address)
	}
	if v.Identity.Name != "" {
		t.AddRow("Name:", v.Identity.Name)
	}
	if v.Identity.Avatar != "" {
		t.AddRow("Avatar:", v.Identity.Avatar)
	}
	if v.Link != "" {
		t.AddRow("Link:", v.Link)
	}
	return t.Render(w)
}

// outcomeText colors an outcome: green when the page changed, yellow when it
// was already shown.
func outcomeText(colors aurora.Aurora, o search.Outcome) string {
	if colors == nil {
		return o.String()
	}
	switch o {
	case search.OutcomeNavigated:
		return colors.Green(o.String()).String()
	case search.OutcomeAlreadyAtTarget:
		return colors.Yellow(o.String()).String()
	case search.OutcomeInvalid:
		return colors.Red(o.String()).String()
	default:
		return o.String()
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cfg, logger, formatter)
	defer func() { _ = cc.Close() }()

	router, err := cc.Router()
	if err != nil {
		return err
	}
	session, err := cc.NewSession(router)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, cancel := contextWithTimeout(cmd, commandTimeout(cc.Config))
	defer cancel()

	res := session.SubmitSearch(ctx, args[0])
	if res.Outcome == search.OutcomeInvalid {
		return searchError(session.RawInput(), res.Err)
	}
	if res.Err != nil {
		return res.Err
	}
	if err := router.Err(); err != nil {
		logger.Error("persisting route: %v", err)
	}

	view := newSearchView(cc.Config.Search.ExternalExplorer, session.RawInput(), res, router.Current().Path)
	view.colors = cc.Formatter.Colors()
	if err := cc.Formatter.Print(view); err != nil {
		return err
	}
	if searchQR && !cc.Formatter.IsJSON() {
		data := qrPayload(view)
		if data == "" {
			output.Warn(cmd.ErrOrStderr(), "nothing to encode as a QR code")
			return nil
		}
		return output.RenderQR(cc.Formatter.Writer(), data, output.DefaultQRConfig())
	}
	return nil
}

// qrPayload is the resolved address, the input of an address search, or the
// hash of a transaction search.
func qrPayload(view searchView) string {
	if view.Identity.Address != "" {
		return view.Identity.Address
	}
	switch view.Kind {
	case search.KindAddress, search.KindTransaction:
		return view.Input
	default:
		return ""
	}
}

func newSearchView(explorer, input string, res search.Result, currentPath string) searchView {
	view := searchView{
		Input:    input,
		Kind:     res.Kind,
		Outcome:  res.Outcome,
		Path:     res.Path,
		Identity: res.Identity,
		Display:  res.Identity.DisplayText(),
	}
	if explorer != "" {
		id := res.Identity.Address
		if id == "" {
			id = input
		}
		view.Link = search.ExternalURL(explorer, currentPath, id)
	}
	return view
}

// searchError adds input details and, for names, a spelling suggestion.
func searchError(input string, err error) error {
	if err == nil {
		err = scouterr.ErrInvalidFormat
	}
	if !scouterr.Is(err, scouterr.ErrNameNotResolved) {
		return err
	}
	err = scouterr.WithDetails(err, map[string]string{"input": input})
	if s := ens.Suggest(input); s != "" {
		return scouterr.WithSuggestion(err, fmt.Sprintf("did you mean %s?", s))
	}
	return err
}
