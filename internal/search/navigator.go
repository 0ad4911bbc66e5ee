package search

import (
	"strings"
)

// Route segments under the explorer prefix.
const (
	segmentTx      = "tx/"
	segmentAddress = "address/"
)

// Route is the active location of the explorer.
type Route struct {
	Path  string `json:"path"`
	Query string `json:"query,omitempty"`
}

// Router changes and reports the active route. NavigateTo is fire-and-forget:
// completion is observed only through Session.RouteChanged.
type Router interface {
	NavigateTo(path string)
	Current() Route
}

// Outcome is how a search cycle ended.
type Outcome int

// Cycle outcomes.
const (
	OutcomeNone Outcome = iota
	OutcomeNavigated
	OutcomeAlreadyAtTarget
	OutcomeInvalid
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNavigated:
		return "navigated"
	case OutcomeAlreadyAtTarget:
		return "already_at_target"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "none"
	}
}

// MarshalText renders the outcome by name in JSON output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Navigator builds canonical explorer paths and skips navigation to the page
// that is already shown.
type Navigator struct {
	prefix string
	router Router
}

// NewNavigator creates a navigator rooted at prefix (e.g. "/explorer/").
func NewNavigator(prefix string, router Router) *Navigator {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Navigator{prefix: prefix, router: router}
}

// Prefix returns the route prefix.
func (n *Navigator) Prefix() string {
	return n.prefix
}

// Path returns the canonical path for an identifier of the given kind.
// Only transactions and addresses have pages.
func (n *Navigator) Path(kind Kind, identifier string) (string, bool) {
	switch kind {
	case KindTransaction:
		return n.prefix + segmentTx + identifier, true
	case KindAddress:
		return n.prefix + segmentAddress + identifier, true
	default:
		return "", false
	}
}

// Plan decides the outcome without navigating.
func (n *Navigator) Plan(kind Kind, identifier string) (Outcome, string) {
	target, ok := n.Path(kind, identifier)
	if !ok {
		return OutcomeInvalid, ""
	}
	if strings.EqualFold(target, n.router.Current().Path) {
		return OutcomeAlreadyAtTarget, target
	}
	return OutcomeNavigated, target
}

// Navigate moves to the canonical page unless it is already current.
func (n *Navigator) Navigate(kind Kind, identifier string) (Outcome, string) {
	outcome, target := n.Plan(kind, identifier)
	if outcome == OutcomeNavigated {
		n.router.NavigateTo(target)
	}
	return outcome, target
}

// Identifier extracts the identifier a route encodes: the segment after the
// entity segment ("/explorer/address/0x…"), or the first segment otherwise.
func (n *Navigator) Identifier(path string) string {
	rest, ok := strings.CutPrefix(path, n.prefix)
	if !ok {
		rest, ok = strings.CutPrefix(path+"/", n.prefix)
		if !ok {
			return ""
		}
	}

	var segments []string
	for _, s := range strings.Split(rest, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	switch len(segments) {
	case 0:
		return ""
	case 1:
		return segments[0]
	default:
		return segments[1]
	}
}

// IsAddressPage reports whether path shows an address.
func IsAddressPage(path string) bool {
	return strings.Contains(path, "/"+segmentAddress)
}

// ExternalURL links the current input to an external block explorer, picking
// the address or transaction page from the current route.
func ExternalURL(explorerBase, currentPath, input string) string {
	segment := strings.TrimSuffix(segmentTx, "/")
	if IsAddressPage(currentPath) {
		segment = strings.TrimSuffix(segmentAddress, "/")
	}
	return strings.TrimSuffix(explorerBase, "/") + "/" + segment + "/" + input
}
