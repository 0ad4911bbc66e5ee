package cli

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/output"
	"github.com/mrz1836/scout/internal/route"
	"github.com/mrz1836/scout/internal/search"
)

const shellPrompt = "scout> "

// shellCmd runs an interactive search session.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive search session",
	Long: `Read searches from standard input, one per line, against a single session.

If the current route already points at a transaction or address, it is
searched first. Lines starting with ':' are commands:

  :edit <text>   change the input without searching
  :state         show the session state
  :route <path>  move to another page, as a link click would
  :help          show this help
  :quit, :q      leave the shell

An empty line searches the current input again.

Example:
  scout shell
  printf 'vitalik.eth\n:state\n' | scout shell -o json`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(shellCmd)
}

// stateView renders a session snapshot.
type stateView struct {
	search.State

	Error string `json:"error,omitempty"`
}

func newStateView(st search.State) stateView {
	v := stateView{State: st}
	if st.Err != nil {
		v.Error = output.NewErrorDetail(st.Err).Message
	}
	return v
}

// RenderText writes the snapshot as aligned key/value lines.
func (v stateView) RenderText(w io.Writer) error {
	t := output.NewTable()
	t.SetNoHeader(true)
	t.AddRow("Phase:", v.Phase.String())
	t.AddRow("Outcome:", v.Outcome.String())
	t.AddRow("Input:", v.RawInput)
	t.AddRow("Kind:", v.Kind.String())
	t.AddRow("Route:", v.Route.Path)
	t.AddRow("Loading:", boolText(v.Loading))
	t.AddRow("Invalid:", boolText(v.Invalid))
	if !v.Identity.IsZero() {
		t.AddRow("Identity:", v.Identity.DisplayText())
	}
	if v.Identity.Avatar != "" {
		t.AddRow("Avatar:", v.Identity.Avatar)
	}
	if v.ShowAddressBook {
		t.AddRow("Address book:", "available")
	}
	if v.Error != "" {
		t.AddRow("Error:", v.Error)
	}
	return t.Render(w)
}

func boolText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// shell holds what one interactive session needs.
type shell struct {
	cc       *CommandContext
	router   *route.FileRouter
	session  *search.Session
	explorer string
	w        io.Writer
}

func runShell(cmd *cobra.Command, _ []string) error {
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

	sh := &shell{
		cc:       cc,
		router:   router,
		session:  session,
		explorer: cc.Config.Search.ExternalExplorer,
		w:        cc.Formatter.Writer(),
	}
	return sh.run(cmd.Context(), cmd.InOrStdin())
}

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if res, ok := sh.session.Resume(ctx); ok {
		sh.report(res)
	}

	scanner := bufio.NewScanner(in)
	interactive := output.IsTerminal(sh.w) && !sh.cc.Formatter.IsJSON()
	for {
		if interactive {
			out(sh.w, shellPrompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if done := sh.handle(ctx, strings.TrimSpace(scanner.Text())); done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// handle runs one line and reports whether the shell should exit.
func (sh *shell) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ":") {
		if line == "" {
			sh.report(sh.session.SubmitSearch(ctx))
		} else {
			sh.report(sh.session.SubmitSearch(ctx, line))
		}
		return false
	}

	command, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "q", "quit", "exit":
		return true
	case "edit", "e":
		sh.session.EditInput(arg)
	case "state", "s":
		sh.print(newStateView(sh.session.State()))
	case "route", "r":
		if arg == "" {
			outln(sh.w, sh.router.Current().Path)
			return false
		}
		sh.router.NavigateTo(arg)
		if err := sh.router.Err(); err != nil {
			sh.cc.Logger.Error("persisting route: %v", err)
		}
	case "help", "h", "?":
		outln(sh.w, "commands: :edit <text>, :state, :route [path], :help, :quit")
	default:
		output.Warn(sh.w, "unknown command :%s (try :help)", command)
	}
	return false
}

func (sh *shell) report(res search.Result) {
	switch {
	case res.Outcome == search.OutcomeInvalid:
		_ = output.FormatError(sh.w, searchError(sh.session.RawInput(), res.Err), sh.cc.Formatter.Format())
	case res.Err != nil:
		_ = output.FormatError(sh.w, res.Err, sh.cc.Formatter.Format())
	default:
		view := newSearchView(sh.explorer, sh.session.RawInput(), res, sh.router.Current().Path)
		view.colors = sh.cc.Formatter.Colors()
		sh.print(view)
	}
}

func (sh *shell) print(v any) {
	if err := sh.cc.Formatter.Print(v); err != nil {
		sh.cc.Logger.Error("writing output: %v", err)
	}
}
