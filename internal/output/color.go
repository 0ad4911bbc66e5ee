package output

import (
	"io"

	"github.com/logrusorgru/aurora"
)

// Color modes accepted by output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Colors returns an aurora instance that colors text only when mode allows it:
// always, or auto with w attached to a terminal.
func Colors(w io.Writer, mode string) aurora.Aurora {
	switch mode {
	case ColorAlways:
		return aurora.NewAurora(true)
	case ColorNever:
		return aurora.NewAurora(false)
	default:
		return aurora.NewAurora(IsTerminal(w))
	}
}
